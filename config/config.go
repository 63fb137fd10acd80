package config

import "time"

type Config struct {
	Web       Web
	DB        DB
	Auth      Auth
	Email     Email
	Geocoder  Geocoder
	Reconcile Reconcile
	Limits    Limits
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:5000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
	CorsOrigin      string
}

type DB struct {
	User         string `conf:"default:postgres"`
	Password     string `conf:"default:postgres,mask"`
	Host         string `conf:"default:localhost:5432"`
	Name         string `conf:"default:devcamper"`
	MaxIdleConns int    `conf:"default:2"`
	MaxOpenConns int    `conf:"default:10"`
	DisableTLS   bool   `conf:"default:true"`
}

type Auth struct {
	JWTSecret    string        `conf:"required,mask"`
	JWTExpire    time.Duration `conf:"default:720h"`
	CookieName   string        `conf:"default:token"`
	CookieExpire time.Duration `conf:"default:720h"`
	SecureCookie bool
}

type Email struct {
	Host      string `conf:"default:smtp.mailtrap.io"`
	Port      int    `conf:"default:2525"`
	Address   string
	Password  string `conf:"mask"`
	FromName  string `conf:"default:DevCamper"`
	FromEmail string `conf:"default:noreply@devcamper.io"`
}

type Geocoder struct {
	URL     string        `conf:"default:https://www.mapquestapi.com/geocoding/v1/address"`
	APIKey  string        `conf:"mask"`
	Timeout time.Duration `conf:"default:5s"`
}

type Reconcile struct {
	Schedule string `conf:"default:@every 1h"`
}

type Limits struct {
	ForgotPasswordBurst int           `conf:"default:3"`
	ForgotPasswordEvery time.Duration `conf:"default:1m"`
	ClientExpiry        time.Duration `conf:"default:30m"`
}
