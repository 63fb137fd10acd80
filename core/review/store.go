package review

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/query"
	"github.com/jmoiron/sqlx"
)

var Schema = query.Schema{
	Table: "reviews",
	Key:   "review_id",
	Fields: map[string]query.Field{
		"bootcamp":  {Column: "bootcamp_id", Kind: query.ID},
		"user":      {Column: "user_id", Kind: query.ID},
		"title":     {Column: "title", Kind: query.String},
		"text":      {Column: "text", Kind: query.String},
		"rating":    {Column: "rating", Kind: query.Integer},
		"createdAt": {Column: "created_at", Kind: query.Time},
	},
}

func Create(ctx context.Context, db sqlx.ExtContext, r Review) error {
	const q = `
	INSERT INTO reviews
		(review_id, bootcamp_id, user_id, title, text, rating, created_at)
	VALUES
		(:review_id, :bootcamp_id, :user_id, :title, :text, :rating, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, r); err != nil {
		return database.Error(err)
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, r Review) error {
	const q = `
	UPDATE reviews SET
		title = :title,
		text = :text,
		rating = :rating
	WHERE review_id = :review_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, r); err != nil {
		return database.Error(err)
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM reviews WHERE review_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting review[%s]: %w", id, err)
	}
	return nil
}

// DeleteByBootcamp removes every review of a bootcamp.
func DeleteByBootcamp(ctx context.Context, db sqlx.ExtContext, bootcampID string) error {
	const q = `DELETE FROM reviews WHERE bootcamp_id = $1`

	if _, err := db.ExecContext(ctx, q, bootcampID); err != nil {
		return fmt.Errorf("deleting reviews of bootcamp[%s]: %w", bootcampID, err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Review, error) {
	const q = `SELECT * FROM reviews WHERE review_id = $1`

	var r Review
	if err := sqlx.GetContext(ctx, db, &r, q, id); err != nil {
		return Review{}, database.Error(err)
	}
	return r, nil
}

func FetchByBootcamp(ctx context.Context, db sqlx.ExtContext, bootcampID string) ([]Review, error) {
	const q = `
	SELECT * FROM reviews
	WHERE bootcamp_id = $1
	ORDER BY created_at DESC, review_id`

	rs := []Review{}
	if err := sqlx.SelectContext(ctx, db, &rs, q, bootcampID); err != nil {
		return nil, fmt.Errorf("selecting reviews of bootcamp[%s]: %w", bootcampID, err)
	}
	return rs, nil
}

func Query(ctx context.Context, db sqlx.ExtContext, q query.Query) ([]Review, int, error) {
	return query.Find[Review](ctx, db, Schema, q)
}
