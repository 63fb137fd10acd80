package bootcamp

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/query"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// EarthRadius is the radius of the earth in miles.
const EarthRadius = 3963

var Schema = query.Schema{
	Table: "bootcamps",
	Key:   "bootcamp_id",
	Fields: map[string]query.Field{
		"user":                      {Column: "user_id", Kind: query.ID},
		"name":                      {Column: "name", Kind: query.String},
		"slug":                      {Column: "slug", Kind: query.String},
		"description":               {Column: "description", Kind: query.String},
		"website":                   {Column: "website", Kind: query.String},
		"phone":                     {Column: "phone", Kind: query.String},
		"email":                     {Column: "email", Kind: query.String},
		"address":                   {Column: "address", Kind: query.String},
		"location.formattedAddress": {Column: "formatted_address", Kind: query.String},
		"location.street":           {Column: "street", Kind: query.String},
		"location.city":             {Column: "city", Kind: query.String},
		"location.state":            {Column: "state", Kind: query.String},
		"location.zipcode":          {Column: "zipcode", Kind: query.String},
		"location.country":          {Column: "country", Kind: query.String},
		"careers":                   {Column: "careers", Kind: query.StringArray},
		"averageRating":             {Column: "average_rating", Kind: query.Number},
		"averageCost":               {Column: "average_cost", Kind: query.Number},
		"photo":                     {Column: "photo", Kind: query.String},
		"housing":                   {Column: "housing", Kind: query.Bool},
		"jobAssistance":             {Column: "job_assistance", Kind: query.Bool},
		"jobGuarantee":              {Column: "job_guarantee", Kind: query.Bool},
		"acceptGi":                  {Column: "accept_gi", Kind: query.Bool},
		"createdAt":                 {Column: "created_at", Kind: query.Time},
	},
}

func Create(ctx context.Context, db sqlx.ExtContext, b Bootcamp) error {
	const q = `
	INSERT INTO bootcamps
		(bootcamp_id, user_id, name, slug, description, website, phone, email, address,
		longitude, latitude, formatted_address, street, city, state, zipcode, country,
		careers, photo, housing, job_assistance, job_guarantee, accept_gi, created_at)
	VALUES
		(:bootcamp_id, :user_id, :name, :slug, :description, :website, :phone, :email, :address,
		:longitude, :latitude, :formatted_address, :street, :city, :state, :zipcode, :country,
		:careers, :photo, :housing, :job_assistance, :job_guarantee, :accept_gi, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, toRow(b)); err != nil {
		return database.Error(err)
	}
	return nil
}

// Update stores the editable fields of b. The owner and the averages are
// left untouched.
func Update(ctx context.Context, db sqlx.ExtContext, b Bootcamp) error {
	const q = `
	UPDATE bootcamps SET
		name = :name,
		slug = :slug,
		description = :description,
		website = :website,
		phone = :phone,
		email = :email,
		address = :address,
		longitude = :longitude,
		latitude = :latitude,
		formatted_address = :formatted_address,
		street = :street,
		city = :city,
		state = :state,
		zipcode = :zipcode,
		country = :country,
		careers = :careers,
		housing = :housing,
		job_assistance = :job_assistance,
		job_guarantee = :job_guarantee,
		accept_gi = :accept_gi
	WHERE bootcamp_id = :bootcamp_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, toRow(b)); err != nil {
		return database.Error(err)
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM bootcamps WHERE bootcamp_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting bootcamp[%s]: %w", id, err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Bootcamp, error) {
	const q = `SELECT * FROM bootcamps WHERE bootcamp_id = $1`

	var r row
	if err := sqlx.GetContext(ctx, db, &r, q, id); err != nil {
		return Bootcamp{}, database.Error(err)
	}
	return r.bootcamp(), nil
}

// LockOwner serialises bootcamp creation per owner until tx ends.
func LockOwner(ctx context.Context, tx sqlx.ExtContext, userID string) error {
	const q = `SELECT pg_advisory_xact_lock(hashtext($1))`

	if _, err := tx.ExecContext(ctx, q, userID); err != nil {
		return fmt.Errorf("locking owner[%s]: %w", userID, err)
	}
	return nil
}

func ExistsByOwner(ctx context.Context, db sqlx.ExtContext, userID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM bootcamps WHERE user_id = $1)`

	var exists bool
	if err := sqlx.GetContext(ctx, db, &exists, q, userID); err != nil {
		return false, fmt.Errorf("looking up bootcamps of user[%s]: %w", userID, err)
	}
	return exists, nil
}

// FetchSummaries returns the summaries of the bootcamps in ids, keyed by id.
// Unknown ids are absent from the result.
func FetchSummaries(ctx context.Context, db sqlx.ExtContext, ids []string) (map[string]Summary, error) {
	const q = `SELECT bootcamp_id, name, description FROM bootcamps WHERE bootcamp_id = ANY($1)`

	var ss []Summary
	if err := sqlx.SelectContext(ctx, db, &ss, q, pq.StringArray(ids)); err != nil {
		return nil, fmt.Errorf("selecting bootcamp summaries: %w", err)
	}

	m := make(map[string]Summary, len(ss))
	for _, s := range ss {
		m[s.ID] = s
	}
	return m, nil
}

func Query(ctx context.Context, db sqlx.ExtContext, q query.Query) ([]Bootcamp, int, error) {
	rows, total, err := query.Find[row](ctx, db, Schema, q)
	if err != nil {
		return nil, 0, err
	}
	return fromRows(rows), total, nil
}

// WithinRadius returns the located bootcamps at most miles away from the
// point, by great circle distance.
func WithinRadius(ctx context.Context, db sqlx.ExtContext, lng, lat, miles float64) ([]Bootcamp, error) {
	const q = `
	SELECT * FROM bootcamps
	WHERE longitude IS NOT NULL AND latitude IS NOT NULL
	AND 2 * $4 * asin(sqrt(
		power(sin(radians(latitude - $2) / 2), 2) +
		cos(radians($2)) * cos(radians(latitude)) * power(sin(radians(longitude - $1) / 2), 2)
	)) <= $3
	ORDER BY created_at DESC, bootcamp_id`

	rows := []row{}
	if err := sqlx.SelectContext(ctx, db, &rows, q, lng, lat, miles, EarthRadius); err != nil {
		return nil, fmt.Errorf("selecting bootcamps within %v miles: %w", miles, err)
	}
	return fromRows(rows), nil
}

// Populate fills every reference with the summary of its bootcamp. References
// to unknown bootcamps keep their bare id.
func Populate(ctx context.Context, db sqlx.ExtContext, refs []*query.Ref) error {
	if len(refs) == 0 {
		return nil
	}

	ids := make([]string, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}

	summaries, err := FetchSummaries(ctx, db, ids)
	if err != nil {
		return err
	}

	for _, r := range refs {
		if s, ok := summaries[r.ID]; ok {
			r.Doc = s
		}
	}
	return nil
}
