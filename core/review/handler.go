package review

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/devcamper/api/web"
	"github.com/irsalhamdi/devcamper/api/weberr"
	"github.com/irsalhamdi/devcamper/core/aggregate"
	"github.com/irsalhamdi/devcamper/core/bootcamp"
	"github.com/irsalhamdi/devcamper/core/claims"
	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/query"
	"github.com/irsalhamdi/devcamper/validate"
	"github.com/jmoiron/sqlx"
)

func fetch(ctx context.Context, db sqlx.ExtContext, id string) (Review, error) {
	notFound := weberr.NotFound(fmt.Errorf("no review with id %s", id))
	if err := validate.CheckID(id); err != nil {
		return Review{}, notFound
	}

	rv, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Review{}, notFound
		}
		return Review{}, fmt.Errorf("fetching review[%s]: %w", id, err)
	}
	return rv, nil
}

func populate(ctx context.Context, db sqlx.ExtContext, rs []Review) error {
	refs := make([]*query.Ref, len(rs))
	for i := range rs {
		refs[i] = &rs[i].Bootcamp
	}
	return bootcamp.Populate(ctx, db, refs)
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q, err := Schema.Parse(r.URL.Query())
		if err != nil {
			return weberr.BadRequest(err)
		}

		rs, total, err := Query(ctx, db, q)
		if err != nil {
			return fmt.Errorf("querying reviews: %w", err)
		}

		if err := populate(ctx, db, rs); err != nil {
			return fmt.Errorf("populating reviews: %w", err)
		}

		data, err := query.Project(rs, q.Select)
		if err != nil {
			return fmt.Errorf("projecting reviews: %w", err)
		}

		return web.RespondList(ctx, w, data, len(rs), q.Paginate(total))
	}
}

func HandleListByBootcamp(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := bootcamp.Load(ctx, db, web.Param(r, "bootcampId"))
		if err != nil {
			return err
		}

		rs, err := FetchByBootcamp(ctx, db, b.ID)
		if err != nil {
			return err
		}

		return web.RespondList(ctx, w, rs, len(rs), nil)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		rv, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		rs := []Review{rv}
		if err := populate(ctx, db, rs); err != nil {
			return fmt.Errorf("populating review[%s]: %w", rv.ID, err)
		}

		return web.RespondData(ctx, w, rs[0], http.StatusOK)
	}
}

func New(rn ReviewNew, bootcampID, userID string, now time.Time) (Review, error) {
	if err := validate.Check(rn); err != nil {
		return Review{}, weberr.BadRequest(err)
	}

	return Review{
		ID:        validate.GenerateID(),
		Bootcamp:  query.Ref{ID: bootcampID},
		UserID:    userID,
		Title:     rn.Title,
		Text:      rn.Text,
		Rating:    rn.Rating,
		CreatedAt: now,
	}, nil
}

// HandleCreate records the principal's review of a bootcamp. Each user
// reviews a bootcamp at most once.
func HandleCreate(db *sqlx.DB, hook aggregate.Hook) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		b, err := bootcamp.Load(ctx, db, web.Param(r, "bootcampId"))
		if err != nil {
			return err
		}

		var rn ReviewNew
		if err := web.Decode(w, r, &rn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		rv, err := New(rn, b.ID, clm.UserID, time.Now().UTC())
		if err != nil {
			return err
		}

		if err := Create(ctx, db, rv); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return weberr.BadRequest(fmt.Errorf("user %s has already submitted a review for bootcamp %s", clm.UserID, b.ID))
			}
			return fmt.Errorf("creating review: %w", err)
		}
		hook.Rating(ctx, b.ID)

		return web.RespondData(ctx, w, rv, http.StatusCreated)
	}
}

func Apply(rv Review, up ReviewUp) (Review, error) {
	if err := validate.Check(up); err != nil {
		return Review{}, weberr.BadRequest(err)
	}

	if up.Title != nil {
		rv.Title = *up.Title
	}
	if up.Text != nil {
		rv.Text = *up.Text
	}
	if up.Rating != nil {
		rv.Rating = *up.Rating
	}
	return rv, nil
}

func HandleUpdate(db *sqlx.DB, hook aggregate.Hook) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		rv, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if !claims.Allowed(clm, rv) {
			return weberr.NotAuthorized(fmt.Errorf("user %s is not authorized to update review %s", clm.UserID, rv.ID))
		}

		var up ReviewUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		rating := rv.Rating
		if rv, err = Apply(rv, up); err != nil {
			return err
		}

		if err := Update(ctx, db, rv); err != nil {
			return fmt.Errorf("updating review[%s]: %w", rv.ID, err)
		}
		if rv.Rating != rating {
			hook.Rating(ctx, rv.Bootcamp.ID)
		}

		return web.RespondData(ctx, w, rv, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB, hook aggregate.Hook) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		rv, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if !claims.Allowed(clm, rv) {
			return weberr.NotAuthorized(fmt.Errorf("user %s is not authorized to delete review %s", clm.UserID, rv.ID))
		}

		if err := Delete(ctx, db, rv.ID); err != nil {
			return err
		}
		hook.Rating(ctx, rv.Bootcamp.ID)

		return web.RespondData(ctx, w, web.Empty, http.StatusOK)
	}
}
