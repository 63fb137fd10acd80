package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/devcamper/api"
	"github.com/irsalhamdi/devcamper/api/background"
	"github.com/irsalhamdi/devcamper/config"
	"github.com/irsalhamdi/devcamper/core/aggregate"
	"github.com/irsalhamdi/devcamper/core/auth"
	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/email"
	"github.com/irsalhamdi/devcamper/geocode"
	"github.com/irsalhamdi/devcamper/rate"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting server")
	defer logger.Info("shutdown complete")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	const prefix = "DEVCAMPER"
	var cfg config.Config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate db: %w", err)
	}

	mail := email.New(cfg.Email.Host, cfg.Email.Port, cfg.Email.Address, cfg.Email.Password, cfg.Email.FromName, cfg.Email.FromEmail)

	var geo geocode.Geocoder
	if cfg.Geocoder.APIKey != "" {
		geo = geocode.NewMapQuest(cfg.Geocoder.URL, cfg.Geocoder.APIKey, cfg.Geocoder.Timeout)
	} else {
		logger.Warn("no geocoder api key, bootcamps will be stored without a location")
	}

	bg := background.New(logger)

	limiter := rate.NewLimiter(cfg.Limits.ForgotPasswordBurst, cfg.Limits.ForgotPasswordEvery, cfg.Limits.ClientExpiry)
	defer limiter.Stop()

	scheduler := cron.New()
	if cfg.Reconcile.Schedule != "" {
		_, err := scheduler.AddFunc(cfg.Reconcile.Schedule, func() {
			if err := aggregate.Reconcile(context.Background(), db); err != nil {
				logger.WithError(err).Error("reconciling bootcamp averages")
				return
			}
			logger.Debug("bootcamp averages reconciled")
		})
		if err != nil {
			return fmt.Errorf("scheduling reconcile %q: %w", cfg.Reconcile.Schedule, err)
		}
	}
	scheduler.Start()

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Web.CorsOrigin,
		Log:        logger,
		DB:         db,
		Auth: auth.Config{
			Secret:       []byte(cfg.Auth.JWTSecret),
			Expire:       cfg.Auth.JWTExpire,
			CookieName:   cfg.Auth.CookieName,
			CookieExpire: cfg.Auth.CookieExpire,
			SecureCookie: cfg.Auth.SecureCookie,
		},
		Mailer:        mail,
		Geocoder:      geo,
		Background:    bg,
		ForgotLimiter: limiter,
	})

	api := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		select {
		case <-scheduler.Stop().Done():
		case <-ctx.Done():
		}

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		if err := bg.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not complete all background tasks: %w", err)
		}
	}
	return nil
}
