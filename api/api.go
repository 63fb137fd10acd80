package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/devcamper/api/background"
	"github.com/irsalhamdi/devcamper/api/middleware"
	"github.com/irsalhamdi/devcamper/api/web"
	"github.com/irsalhamdi/devcamper/api/weberr"
	"github.com/irsalhamdi/devcamper/core/aggregate"
	"github.com/irsalhamdi/devcamper/core/auth"
	"github.com/irsalhamdi/devcamper/core/bootcamp"
	"github.com/irsalhamdi/devcamper/core/claims"
	"github.com/irsalhamdi/devcamper/core/course"
	"github.com/irsalhamdi/devcamper/core/review"
	"github.com/irsalhamdi/devcamper/core/user"
	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/email"
	"github.com/irsalhamdi/devcamper/geocode"
	"github.com/irsalhamdi/devcamper/rate"
	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const prefix = "/api/v1"

type APIConfig struct {
	CorsOrigin    string
	Log           logrus.FieldLogger
	DB            *sqlx.DB
	Auth          auth.Config
	Mailer        email.Mailer
	Geocoder      geocode.Geocoder
	Background    *background.Background
	ForgotLimiter *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	a.NotFoundHandler = a.wrap(func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return weberr.NotFound(errors.New("route not found"))
	})

	authen := auth.Authenticate(cfg.DB, cfg.Auth)
	admin := auth.Authorize(claims.RoleAdmin)
	publisher := auth.Authorize(claims.RolePublisher, claims.RoleAdmin)
	reviewer := auth.Authorize(claims.RoleUser, claims.RoleAdmin)

	hook := aggregate.Hook{DB: cfg.DB, Log: cfg.Log}

	a.Handle(http.MethodGet, "/health", handleHealth(cfg.DB))

	a.Handle(http.MethodPost, "/auth/register", auth.HandleRegister(cfg.DB, cfg.Auth))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Auth))
	a.Handle(http.MethodGet, "/auth/me", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodGet, "/auth/logout", auth.HandleLogout(cfg.Auth), authen)
	a.Handle(http.MethodPut, "/auth/updateuserdetails", auth.HandleUpdateDetails(cfg.DB), authen)
	a.Handle(http.MethodPut, "/auth/updateuserpassword", auth.HandleUpdatePassword(cfg.DB, cfg.Auth), authen)
	a.Handle(http.MethodPost, "/auth/forgotpassword", auth.HandleForgotPassword(cfg.DB, cfg.Mailer, cfg.Background, cfg.ForgotLimiter))
	a.Handle(http.MethodPut, "/auth/resetpassword/{resettoken}", auth.HandleResetPassword(cfg.DB, cfg.Auth))

	a.Handle(http.MethodGet, "/bootcamps/radius/{zipcode}/{distance}", bootcamp.HandleRadius(cfg.DB, cfg.Geocoder))
	a.Handle(http.MethodGet, "/bootcamps/{bootcampId}/courses", course.HandleListByBootcamp(cfg.DB))
	a.Handle(http.MethodPost, "/bootcamps/{bootcampId}/courses", course.HandleCreate(cfg.DB, hook), authen, publisher)
	a.Handle(http.MethodGet, "/bootcamps/{bootcampId}/reviews", review.HandleListByBootcamp(cfg.DB))
	a.Handle(http.MethodPost, "/bootcamps/{bootcampId}/reviews", review.HandleCreate(cfg.DB, hook), authen, reviewer)
	a.Handle(http.MethodGet, "/bootcamps/{id}", bootcamp.HandleShow(cfg.DB, course.Embed))
	a.Handle(http.MethodGet, "/bootcamps", bootcamp.HandleList(cfg.DB, course.Embed))
	a.Handle(http.MethodPost, "/bootcamps", bootcamp.HandleCreate(cfg.DB, cfg.Geocoder, cfg.Log), authen, publisher)
	a.Handle(http.MethodPut, "/bootcamps/{id}", bootcamp.HandleUpdate(cfg.DB, cfg.Geocoder, cfg.Log), authen, publisher)
	a.Handle(http.MethodDelete, "/bootcamps/{id}", bootcamp.HandleDelete(cfg.DB, cfg.Log, course.DeleteByBootcamp, review.DeleteByBootcamp), authen, publisher)

	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.DB))
	a.Handle(http.MethodPut, "/courses/{id}", course.HandleUpdate(cfg.DB, hook), authen, publisher)
	a.Handle(http.MethodDelete, "/courses/{id}", course.HandleDelete(cfg.DB, hook), authen, publisher)

	a.Handle(http.MethodGet, "/reviews/{id}", review.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/reviews", review.HandleList(cfg.DB))
	a.Handle(http.MethodPut, "/reviews/{id}", review.HandleUpdate(cfg.DB, hook), authen, reviewer)
	a.Handle(http.MethodDelete, "/reviews/{id}", review.HandleDelete(cfg.DB, hook), authen, reviewer)

	a.Handle(http.MethodGet, "/users/{id}", user.HandleShow(cfg.DB), authen, admin)
	a.Handle(http.MethodGet, "/users", user.HandleList(cfg.DB), authen, admin)
	a.Handle(http.MethodPost, "/users", user.HandleCreate(cfg.DB), authen, admin)
	a.Handle(http.MethodPut, "/users/{id}", user.HandleUpdate(cfg.DB), authen, admin)
	a.Handle(http.MethodDelete, "/users/{id}", user.HandleDelete(cfg.DB), authen, admin)

	if cfg.CorsOrigin == "" {
		return a.Router
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CorsOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(a.Router)
}

func handleHealth(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := database.StatusCheck(ctx, db); err != nil {
			return weberr.InternalError(err)
		}
		return web.RespondData(ctx, w, "ok", http.StatusOK)
	}
}

func (a *api) wrap(handler web.Handler, mw ...web.Middleware) http.Handler {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {
	a.Router.Handle(prefix+path, a.wrap(handler, mw...)).Methods(method)
}
