package bootcamp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/irsalhamdi/devcamper/api/web"
	"github.com/irsalhamdi/devcamper/api/weberr"
	"github.com/irsalhamdi/devcamper/core/claims"
	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/geocode"
	"github.com/irsalhamdi/devcamper/query"
	"github.com/irsalhamdi/devcamper/validate"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const defaultPhoto = "no-photo.jpg"

var errDuplicated = errors.New("duplicate field value entered")

// Embed loads the children to show inside each of the bootcamps in ids.
type Embed func(ctx context.Context, db sqlx.ExtContext, ids []string) (map[string]interface{}, error)

// Cascade removes the children of a deleted bootcamp.
type Cascade func(ctx context.Context, db sqlx.ExtContext, bootcampID string) error

// Load fetches the bootcamp with id, reporting a missing or malformed id as
// not found.
func Load(ctx context.Context, db sqlx.ExtContext, id string) (Bootcamp, error) {
	notFound := weberr.NotFound(fmt.Errorf("no bootcamp with id %s", id))
	if err := validate.CheckID(id); err != nil {
		return Bootcamp{}, notFound
	}

	b, err := Fetch(ctx, db, id)
	if err != nil {
		if errors.Is(err, database.ErrDBNotFound) {
			return Bootcamp{}, notFound
		}
		return Bootcamp{}, fmt.Errorf("fetching bootcamp[%s]: %w", id, err)
	}
	return b, nil
}

func embed(ctx context.Context, db sqlx.ExtContext, bs []Bootcamp, courses Embed) error {
	if courses == nil || len(bs) == 0 {
		return nil
	}

	ids := make([]string, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}

	m, err := courses(ctx, db, ids)
	if err != nil {
		return fmt.Errorf("embedding courses: %w", err)
	}
	for i := range bs {
		bs[i].Courses = m[bs[i].ID]
	}
	return nil
}

// locate geocodes address. A failed lookup leaves the bootcamp without a
// location.
func locate(ctx context.Context, geo geocode.Geocoder, log logrus.FieldLogger, address string) *Location {
	if geo == nil {
		return nil
	}

	loc, err := geo.Geocode(ctx, address)
	if err != nil {
		log.WithField("address", address).WithError(err).Warn("geocoding bootcamp address")
		return nil
	}

	return &Location{
		Type:             "Point",
		Coordinates:      []float64{loc.Longitude, loc.Latitude},
		FormattedAddress: loc.FormattedAddress,
		Street:           loc.Street,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		Country:          loc.Country,
	}
}

func HandleList(db *sqlx.DB, courses Embed) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		q, err := Schema.Parse(r.URL.Query())
		if err != nil {
			return weberr.BadRequest(err)
		}

		bs, total, err := Query(ctx, db, q)
		if err != nil {
			return fmt.Errorf("querying bootcamps: %w", err)
		}

		if err := embed(ctx, db, bs, courses); err != nil {
			return err
		}

		data, err := query.Project(bs, q.Select, "courses")
		if err != nil {
			return fmt.Errorf("projecting bootcamps: %w", err)
		}

		return web.RespondList(ctx, w, data, len(bs), q.Paginate(total))
	}
}

func HandleShow(db *sqlx.DB, courses Embed) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := Load(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		bs := []Bootcamp{b}
		if err := embed(ctx, db, bs, courses); err != nil {
			return err
		}

		return web.RespondData(ctx, w, bs[0], http.StatusOK)
	}
}

// New validates bn and builds the bootcamp it describes for userID, with its
// slug derived from the name.
func New(bn BootcampNew, userID string, now time.Time) (Bootcamp, error) {
	if err := validate.Check(bn); err != nil {
		return Bootcamp{}, weberr.BadRequest(err)
	}

	return Bootcamp{
		ID:            validate.GenerateID(),
		UserID:        userID,
		Name:          bn.Name,
		Slug:          slug.Make(bn.Name),
		Description:   bn.Description,
		Website:       bn.Website,
		Phone:         bn.Phone,
		Email:         bn.Email,
		Address:       bn.Address,
		Careers:       bn.Careers,
		Photo:         defaultPhoto,
		Housing:       bn.Housing,
		JobAssistance: bn.JobAssistance,
		JobGuarantee:  bn.JobGuarantee,
		AcceptGi:      bn.AcceptGi,
		CreatedAt:     now,
	}, nil
}

// HandleCreate publishes a bootcamp owned by the principal. Only admins may
// own more than one.
func HandleCreate(db *sqlx.DB, geo geocode.Geocoder, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		var bn BootcampNew
		if err := web.Decode(w, r, &bn); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		b, err := New(bn, clm.UserID, time.Now().UTC())
		if err != nil {
			return err
		}

		// Unlocked first pass so a refused owner costs no geocoder lookup.
		if !clm.IsAdmin() {
			if err := checkOwner(ctx, db, clm.UserID); err != nil {
				return err
			}
		}
		b.Location = locate(ctx, geo, log, b.Address)

		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			if !clm.IsAdmin() {
				if err := LockOwner(ctx, tx, clm.UserID); err != nil {
					return err
				}
				if err := checkOwner(ctx, tx, clm.UserID); err != nil {
					return err
				}
			}

			if err := Create(ctx, tx, b); err != nil {
				if errors.Is(err, database.ErrDBDuplicatedEntry) {
					return weberr.BadRequest(errDuplicated, weberr.WithFields(map[string]interface{}{"name": b.Name}))
				}
				return fmt.Errorf("creating bootcamp: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		return web.RespondData(ctx, w, b, http.StatusCreated)
	}
}

func checkOwner(ctx context.Context, db sqlx.ExtContext, userID string) error {
	exists, err := ExistsByOwner(ctx, db, userID)
	if err != nil {
		return err
	}
	if exists {
		return weberr.BadRequest(fmt.Errorf("the user with id %s has already published a bootcamp", userID))
	}
	return nil
}

// Apply merges up into b. It reports whether the address changed, in which
// case the location is stale.
func Apply(b Bootcamp, up BootcampUp) (Bootcamp, bool, error) {
	if err := validate.Check(up); err != nil {
		return Bootcamp{}, false, weberr.BadRequest(err)
	}

	if up.Name != nil && *up.Name != b.Name {
		b.Name = *up.Name
		b.Slug = slug.Make(b.Name)
	}
	if up.Description != nil {
		b.Description = *up.Description
	}
	if up.Website != nil {
		b.Website = *up.Website
	}
	if up.Phone != nil {
		b.Phone = *up.Phone
	}
	if up.Email != nil {
		b.Email = *up.Email
	}
	if up.Careers != nil {
		b.Careers = *up.Careers
	}
	if up.Housing != nil {
		b.Housing = *up.Housing
	}
	if up.JobAssistance != nil {
		b.JobAssistance = *up.JobAssistance
	}
	if up.JobGuarantee != nil {
		b.JobGuarantee = *up.JobGuarantee
	}
	if up.AcceptGi != nil {
		b.AcceptGi = *up.AcceptGi
	}

	moved := up.Address != nil && *up.Address != b.Address
	if moved {
		b.Address = *up.Address
	}
	return b, moved, nil
}

func HandleUpdate(db *sqlx.DB, geo geocode.Geocoder, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		b, err := Load(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if !claims.Allowed(clm, b) {
			return weberr.NotAuthorized(fmt.Errorf("user %s is not authorized to update bootcamp %s", clm.UserID, b.ID))
		}

		var up BootcampUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(fmt.Errorf("unable to decode payload: %w", err))
		}

		b, moved, err := Apply(b, up)
		if err != nil {
			return err
		}
		if moved {
			b.Location = locate(ctx, geo, log, b.Address)
		}

		if err := Update(ctx, db, b); err != nil {
			if errors.Is(err, database.ErrDBDuplicatedEntry) {
				return weberr.BadRequest(errDuplicated, weberr.WithFields(map[string]interface{}{"name": b.Name}))
			}
			return fmt.Errorf("updating bootcamp[%s]: %w", b.ID, err)
		}

		return web.RespondData(ctx, w, b, http.StatusOK)
	}
}

// HandleDelete removes a bootcamp and then its children. A failed cascade is
// logged and does not fail the request.
func HandleDelete(db *sqlx.DB, log logrus.FieldLogger, cascades ...Cascade) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("not authorized to access this route"))
		}

		b, err := Load(ctx, db, web.Param(r, "id"))
		if err != nil {
			return err
		}

		if !claims.Allowed(clm, b) {
			return weberr.NotAuthorized(fmt.Errorf("user %s is not authorized to delete bootcamp %s", clm.UserID, b.ID))
		}

		if err := Delete(ctx, db, b.ID); err != nil {
			return err
		}

		for _, cascade := range cascades {
			if err := cascade(ctx, db, b.ID); err != nil {
				log.WithField("bootcamp_id", b.ID).WithError(err).Error("cascading bootcamp delete")
			}
		}

		return web.RespondData(ctx, w, web.Empty, http.StatusOK)
	}
}

// HandleRadius lists the bootcamps within distance miles of a zipcode.
func HandleRadius(db *sqlx.DB, geo geocode.Geocoder) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		zipcode := web.Param(r, "zipcode")

		distance, err := strconv.ParseFloat(web.Param(r, "distance"), 64)
		if err != nil || distance < 0 {
			return weberr.BadRequest(errors.New("distance must be a non negative number of miles"))
		}

		if geo == nil {
			return weberr.InternalError(errors.New("geocoder not configured"))
		}

		loc, err := geo.Geocode(ctx, zipcode)
		if err != nil {
			if errors.Is(err, geocode.ErrNoMatch) {
				return weberr.BadRequest(fmt.Errorf("could not locate zipcode %s", zipcode))
			}
			return fmt.Errorf("geocoding zipcode %s: %w", zipcode, err)
		}

		bs, err := WithinRadius(ctx, db, loc.Longitude, loc.Latitude, distance)
		if err != nil {
			return err
		}

		return web.RespondList(ctx, w, bs, len(bs), nil)
	}
}
