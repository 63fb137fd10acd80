package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/devcamper/api/web"
	"github.com/irsalhamdi/devcamper/api/weberr"
	"github.com/irsalhamdi/devcamper/core/claims"
	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/query"
	"github.com/irsalhamdi/devcamper/validate"
	"github.com/jmoiron/sqlx"
)

var errDuplicated = errors.New("duplicate field value entered")

func fetch(ctx context.Context, db sqlx.ExtContext, id string) (User, error) {
	notFound := weberr.NotFound(fmt.Errorf("no user with id %s", id))
	if err := validate.CheckID(id); err != nil {
		return User{}, notFound
	}

	u, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return User{}, notFound
		}
		return User{}, fmt.Errorf("fetching user[%s]: %w", id, err)
	}
	return u, nil
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q, err := Schema.Parse(r.URL.Query())
		if err != nil {
			return weberr.BadRequest(err)
		}

		users, total, err := Query(ctx, db, q)
		if err != nil {
			return fmt.Errorf("querying users: %w", err)
		}

		data, err := query.Project(users, q.Select)
		if err != nil {
			return fmt.Errorf("projecting users: %w", err)
		}

		return web.RespondList(ctx, w, data, len(users), q.Paginate(total))
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}
		return web.RespondData(ctx, w, u, http.StatusOK)
	}
}

// HandleShowCurrent returns the authenticated user.
func HandleShowCurrent(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		u, err := fetch(ctx, db, clm.UserID)
		if err != nil {
			return err
		}
		return web.RespondData(ctx, w, u, http.StatusOK)
	}
}

// New validates un and builds the user it describes, with a hashed password
// and the user role by default.
func New(un UserNew, now time.Time) (User, error) {
	if err := validate.Check(un); err != nil {
		return User{}, weberr.BadRequest(err)
	}

	hash, err := HashPassword(un.Password)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	role := un.Role
	if role == "" {
		role = claims.RoleUser
	}

	return User{
		ID:           validate.GenerateID(),
		Name:         un.Name,
		Email:        un.Email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
	}, nil
}

// Insert stores u, reporting a taken email as a bad request.
func Insert(ctx context.Context, db sqlx.ExtContext, u User) error {
	if err := Create(ctx, db, u); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return weberr.BadRequest(errDuplicated, weberr.WithFields(map[string]interface{}{"email": u.Email}))
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var un UserNew
		if err := web.Decode(w, r, &un); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		u, err := New(un, time.Now().UTC())
		if err != nil {
			return err
		}

		if err := Insert(ctx, db, u); err != nil {
			return err
		}

		return web.RespondData(ctx, w, u, http.StatusCreated)
	}
}

// Apply merges up into u.
func Apply(u User, up UserUp) (User, error) {
	if err := validate.Check(up); err != nil {
		return User{}, weberr.BadRequest(err)
	}

	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.Role != nil {
		u.Role = *up.Role
	}
	if up.Password != nil {
		hash, err := HashPassword(*up.Password)
		if err != nil {
			return User{}, fmt.Errorf("hashing password: %w", err)
		}
		u.PasswordHash = hash
	}
	return u, nil
}

// Save persists u, reporting a taken email as a bad request.
func Save(ctx context.Context, db sqlx.ExtContext, u User) error {
	if err := Update(ctx, db, u); err != nil {
		if errors.Is(err, database.ErrDBDuplicatedEntry) {
			return weberr.BadRequest(errDuplicated, weberr.WithFields(map[string]interface{}{"email": u.Email}))
		}
		return fmt.Errorf("updating user[%s]: %w", u.ID, err)
	}
	return nil
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		var up UserUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		if u, err = Apply(u, up); err != nil {
			return err
		}

		if err := Save(ctx, db, u); err != nil {
			return err
		}

		return web.RespondData(ctx, w, u, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		u, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if err := Delete(ctx, db, u.ID); err != nil {
			return err
		}

		return web.RespondData(ctx, w, web.Empty, http.StatusOK)
	}
}
