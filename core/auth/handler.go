package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/devcamper/api/background"
	"github.com/irsalhamdi/devcamper/api/web"
	"github.com/irsalhamdi/devcamper/api/weberr"
	"github.com/irsalhamdi/devcamper/core/claims"
	"github.com/irsalhamdi/devcamper/core/user"
	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/email"
	"github.com/irsalhamdi/devcamper/random"
	"github.com/irsalhamdi/devcamper/rate"
	"github.com/irsalhamdi/devcamper/validate"
	"github.com/jmoiron/sqlx"
)

const resetTokenLifetime = 10 * time.Minute

type Register struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user publisher"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DetailsUp struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type PasswordUp struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type Forgot struct {
	Email string `json:"email" validate:"required,email"`
}

type Reset struct {
	Password string `json:"password" validate:"required,min=6"`
}

func sendToken(ctx context.Context, w http.ResponseWriter, cfg Config, u user.User) error {
	now := time.Now()
	token, err := cfg.Issue(u.ID, now)
	if err != nil {
		return err
	}

	http.SetCookie(w, cfg.Cookie(token, now))
	return web.Respond(ctx, w, web.Envelope{Success: true, Token: token}, http.StatusOK)
}

func current(ctx context.Context, db sqlx.ExtContext) (user.User, error) {
	clm, err := claims.Get(ctx)
	if err != nil {
		return user.User{}, unauthorized("no principal")
	}

	u, err := user.Fetch(ctx, db, clm.UserID)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return user.User{}, unauthorized("principal vanished")
		}
		return user.User{}, fmt.Errorf("fetching user[%s]: %w", clm.UserID, err)
	}
	return u, nil
}

func HandleRegister(db *sqlx.DB, cfg Config) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var reg Register
		if err := web.Decode(w, r, &reg); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		if err := validate.Check(reg); err != nil {
			return weberr.BadRequest(err)
		}

		u, err := user.New(user.UserNew(reg), time.Now().UTC())
		if err != nil {
			return err
		}

		if err := user.Insert(ctx, db, u); err != nil {
			return err
		}

		return sendToken(ctx, w, cfg, u)
	}
}

func HandleLogin(db *sqlx.DB, cfg Config) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in Login
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		if in.Email == "" || in.Password == "" {
			return weberr.BadRequest(errors.New("please provide an email and password"))
		}

		errInvalid := weberr.NotAuthorized(errors.New("invalid credentials"))

		u, err := user.FetchByEmail(ctx, db, in.Email)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return errInvalid
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		if !u.CheckPassword(in.Password) {
			return errInvalid
		}

		return sendToken(ctx, w, cfg, u)
	}
}

func HandleLogout(cfg Config) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		http.SetCookie(w, cfg.ClearCookie(time.Now()))
		return web.RespondData(ctx, w, web.Empty, http.StatusOK)
	}
}

func HandleUpdateDetails(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := current(ctx, db)
		if err != nil {
			return err
		}

		var up DetailsUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if u, err = user.Apply(u, user.UserUp{Name: up.Name, Email: up.Email}); err != nil {
			return err
		}
		if err := user.Save(ctx, db, u); err != nil {
			return err
		}

		return web.RespondData(ctx, w, u, http.StatusOK)
	}
}

func HandleUpdatePassword(db *sqlx.DB, cfg Config) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := current(ctx, db)
		if err != nil {
			return err
		}

		var up PasswordUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		if err := validate.Check(up); err != nil {
			return weberr.BadRequest(err)
		}

		if !u.CheckPassword(up.CurrentPassword) {
			return weberr.NotAuthorized(errors.New("current password is incorrect"))
		}

		if u, err = user.Apply(u, user.UserUp{Password: &up.NewPassword}); err != nil {
			return err
		}
		if err := user.Save(ctx, db, u); err != nil {
			return err
		}

		return sendToken(ctx, w, cfg, u)
	}
}

// HandleForgotPassword stores a short lived reset token for the user and mails
// them the URL that consumes it. The mail goes out in the background; when it
// cannot be delivered the token is withdrawn.
func HandleForgotPassword(db *sqlx.DB, mailer email.Mailer, bg *background.Background, lim *rate.Limiter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in Forgot
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		if !lim.Check(in.Email) {
			return weberr.TooManyRequests(errors.New("too many password reset requests, try again later"))
		}

		u, err := user.FetchByEmail(ctx, db, in.Email)
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.NotFound(fmt.Errorf("there is no user with email %s", in.Email))
			}
			return fmt.Errorf("fetching user by email: %w", err)
		}

		token, err := random.Token(20)
		if err != nil {
			return fmt.Errorf("generating reset token: %w", err)
		}

		hash := random.Hash(token)
		expire := time.Now().UTC().Add(resetTokenLifetime)
		if err := user.SetResetToken(ctx, db, u.ID, hash, expire); err != nil {
			return err
		}

		msg := email.Message{
			To:      u.Email,
			Subject: "Password Reset",
			Text:    "Please make a PUT request to the following URL to reset the password:\n\n" + resetURL(r, token),
		}

		withdraw := func(ctx context.Context) error {
			return user.ClearResetToken(ctx, db, u.ID, hash)
		}

		err = bg.Go("reset-password-email", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			if err := mailer.Send(ctx, msg); err != nil {
				if werr := withdraw(ctx); werr != nil {
					return fmt.Errorf("withdrawing reset token of user[%s] after %v: %w", u.ID, err, werr)
				}
				return err
			}
			return nil
		})
		if err != nil {
			if werr := withdraw(ctx); werr != nil {
				return fmt.Errorf("withdrawing reset token of user[%s]: %w", u.ID, werr)
			}
			return weberr.InternalError(fmt.Errorf("email cannot be sent: %w", err))
		}

		return web.RespondData(ctx, w, "Email sent", http.StatusOK)
	}
}

func resetURL(r *http.Request, token string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", scheme, r.Host, token)
}

func HandleResetPassword(db *sqlx.DB, cfg Config) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in Reset
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}
		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		hash := random.Hash(web.Param(r, "resettoken"))
		u, err := user.FetchByResetToken(ctx, db, hash, time.Now().UTC())
		if err != nil {
			if errors.Is(err, database.ErrDBNotFound) {
				return weberr.BadRequest(errors.New("invalid token"))
			}
			return fmt.Errorf("fetching user by reset token: %w", err)
		}

		if u, err = user.Apply(u, user.UserUp{Password: &in.Password}); err != nil {
			return err
		}
		u.ResetPasswordToken = nil
		u.ResetPasswordExpire = nil

		if err := user.Save(ctx, db, u); err != nil {
			return err
		}

		return sendToken(ctx, w, cfg, u)
	}
}
