package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/irsalhamdi/devcamper/api/web"
	"github.com/irsalhamdi/devcamper/api/weberr"
	"github.com/irsalhamdi/devcamper/core/claims"
	"github.com/irsalhamdi/devcamper/core/user"
	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/validate"
	"github.com/jmoiron/sqlx"
)

// ErrUnauthorized is the only thing a client learns about a rejected
// credential.
var ErrUnauthorized = errors.New("not authorized to access this route")

func unauthorized(cause string) error {
	return weberr.NotAuthorized(ErrUnauthorized, weberr.WithFields(map[string]interface{}{
		"cause": cause,
	}))
}

// Authenticate resolves the request credential to its user and stores the
// principal in the context. Missing, malformed, expired or forged
// credentials, and credentials of deleted users, all yield the same 401.
func Authenticate(db *sqlx.DB, cfg Config) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			token := cfg.Extract(r)
			if token == "" {
				return unauthorized("missing credential")
			}

			id, err := cfg.Verify(token)
			if err != nil {
				return unauthorized(err.Error())
			}
			if err := validate.CheckID(id); err != nil {
				return unauthorized("malformed subject")
			}

			u, err := user.Fetch(ctx, db, id)
			if err != nil {
				if errors.Is(err, database.ErrDBNotFound) {
					return unauthorized("unknown subject")
				}
				return fmt.Errorf("fetching principal[%s]: %w", id, err)
			}

			ctx = claims.Set(ctx, claims.Claims{UserID: u.ID, Role: u.Role})
			return handler(ctx, w, r.WithContext(ctx))
		}
		return h
	}
	return m
}

// Authorize lets through principals holding one of roles. It must run after
// Authenticate.
func Authorize(roles ...string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, err := claims.Get(ctx)
			if err != nil {
				return unauthorized("no principal")
			}

			if !clm.HasRole(roles...) {
				return weberr.NotAuthorized(fmt.Errorf("user role %s is not authorized to access this route", clm.Role))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
