package course

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

func fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	notFound := weberr.NotFound(fmt.Errorf("no course with id %s", id))
	if err := validate.CheckID(id); err != nil {
		return Course{}, notFound
	}

	c, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Course{}, notFound
		}
		return Course{}, fmt.Errorf("fetching course[%s]: %w", id, err)
	}
	return c, nil
}

// populate replaces the bootcamp id of every course with its summary.
func populate(ctx context.Context, db sqlx.ExtContext, cs []Course) error {
	refs := make([]*query.Ref, len(cs))
	for i := range cs {
		refs[i] = &cs[i].Bootcamp
	}
	return bootcamp.Populate(ctx, db, refs)
}

// Embed groups the courses of the bootcamps in ids by bootcamp. Every id is
// present in the result.
func Embed(ctx context.Context, db sqlx.ExtContext, ids []string) (map[string]interface{}, error) {
	cs, err := FetchByBootcamps(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]Course, len(ids))
	for _, id := range ids {
		grouped[id] = []Course{}
	}
	for _, c := range cs {
		grouped[c.Bootcamp.ID] = append(grouped[c.Bootcamp.ID], c)
	}

	m := make(map[string]interface{}, len(grouped))
	for id, g := range grouped {
		m[id] = g
	}
	return m, nil
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q, err := Schema.Parse(r.URL.Query())
		if err != nil {
			return weberr.BadRequest(err)
		}

		cs, total, err := Query(ctx, db, q)
		if err != nil {
			return fmt.Errorf("querying courses: %w", err)
		}

		if err := populate(ctx, db, cs); err != nil {
			return fmt.Errorf("populating courses: %w", err)
		}

		data, err := query.Project(cs, q.Select)
		if err != nil {
			return fmt.Errorf("projecting courses: %w", err)
		}

		return web.RespondList(ctx, w, data, len(cs), q.Paginate(total))
	}
}

// HandleListByBootcamp returns every course of a bootcamp, unpaginated.
func HandleListByBootcamp(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := bootcamp.Load(ctx, db, web.Param(r, "bootcampId"))
		if err != nil {
			return err
		}

		cs, err := FetchByBootcamps(ctx, db, []string{b.ID})
		if err != nil {
			return err
		}

		return web.RespondList(ctx, w, cs, len(cs), nil)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		cs := []Course{c}
		if err := populate(ctx, db, cs); err != nil {
			return fmt.Errorf("populating course[%s]: %w", c.ID, err)
		}

		return web.RespondData(ctx, w, cs[0], http.StatusOK)
	}
}

// New validates cn and builds the course it describes under bootcampID.
func New(cn CourseNew, bootcampID, userID string, now time.Time) (Course, error) {
	if err := validate.Check(cn); err != nil {
		return Course{}, weberr.BadRequest(err)
	}

	return Course{
		ID:                   validate.GenerateID(),
		Bootcamp:             query.Ref{ID: bootcampID},
		UserID:               userID,
		Title:                cn.Title,
		Description:          cn.Description,
		Weeks:                cn.Weeks,
		Tuition:              *cn.Tuition,
		MinimumSkill:         cn.MinimumSkill,
		ScholarshipAvailable: cn.ScholarshipAvailable,
		CreatedAt:            now,
	}, nil
}

// HandleCreate adds a course to a bootcamp owned by the principal.
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

		if !claims.Allowed(clm, b) {
			return weberr.NotAuthorized(fmt.Errorf("user %s is not authorized to add a course to bootcamp %s", clm.UserID, b.ID))
		}

		var cn CourseNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		c, err := New(cn, b.ID, clm.UserID, time.Now().UTC())
		if err != nil {
			return err
		}

		if err := Create(ctx, db, c); err != nil {
			return fmt.Errorf("creating course: %w", err)
		}
		hook.Cost(ctx, b.ID)

		return web.RespondData(ctx, w, c, http.StatusCreated)
	}
}

// Apply merges up into c.
func Apply(c Course, up CourseUp) (Course, error) {
	if err := validate.Check(up); err != nil {
		return Course{}, weberr.BadRequest(err)
	}

	if up.Title != nil {
		c.Title = *up.Title
	}
	if up.Description != nil {
		c.Description = *up.Description
	}
	if up.Weeks != nil {
		c.Weeks = *up.Weeks
	}
	if up.Tuition != nil {
		c.Tuition = *up.Tuition
	}
	if up.MinimumSkill != nil {
		c.MinimumSkill = *up.MinimumSkill
	}
	if up.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *up.ScholarshipAvailable
	}
	return c, nil
}

func HandleUpdate(db *sqlx.DB, hook aggregate.Hook) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		c, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if !claims.Allowed(clm, c) {
			return weberr.NotAuthorized(fmt.Errorf("user %s is not authorized to update course %s", clm.UserID, c.ID))
		}

		var up CourseUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		tuition := c.Tuition
		if c, err = Apply(c, up); err != nil {
			return err
		}

		if err := Update(ctx, db, c); err != nil {
			return fmt.Errorf("updating course[%s]: %w", c.ID, err)
		}
		if c.Tuition != tuition {
			hook.Cost(ctx, c.Bootcamp.ID)
		}

		return web.RespondData(ctx, w, c, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB, hook aggregate.Hook) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		c, err := fetch(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if !claims.Allowed(clm, c) {
			return weberr.NotAuthorized(fmt.Errorf("user %s is not authorized to delete course %s", clm.UserID, c.ID))
		}

		if err := Delete(ctx, db, c.ID); err != nil {
			return err
		}
		hook.Cost(ctx, c.Bootcamp.ID)

		return web.RespondData(ctx, w, web.Empty, http.StatusOK)
	}
}
