package course

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/devcamper/database"
	"github.com/irsalhamdi/devcamper/query"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var Schema = query.Schema{
	Table: "courses",
	Key:   "course_id",
	Fields: map[string]query.Field{
		"bootcamp":             {Column: "bootcamp_id", Kind: query.ID},
		"user":                 {Column: "user_id", Kind: query.ID},
		"title":                {Column: "title", Kind: query.String},
		"description":          {Column: "description", Kind: query.String},
		"weeks":                {Column: "weeks", Kind: query.Integer},
		"tuition":              {Column: "tuition", Kind: query.Number},
		"minimumSkill":         {Column: "minimum_skill", Kind: query.String},
		"scholarshipAvailable": {Column: "scholarship_available", Kind: query.Bool},
		"createdAt":            {Column: "created_at", Kind: query.Time},
	},
}

func Create(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	INSERT INTO courses
		(course_id, bootcamp_id, user_id, title, description, weeks, tuition,
		minimum_skill, scholarship_available, created_at)
	VALUES
		(:course_id, :bootcamp_id, :user_id, :title, :description, :weeks, :tuition,
		:minimum_skill, :scholarship_available, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return database.Error(err)
	}
	return nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Course) error {
	const q = `
	UPDATE courses SET
		title = :title,
		description = :description,
		weeks = :weeks,
		tuition = :tuition,
		minimum_skill = :minimum_skill,
		scholarship_available = :scholarship_available
	WHERE course_id = :course_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return database.Error(err)
	}
	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM courses WHERE course_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting course[%s]: %w", id, err)
	}
	return nil
}

// DeleteByBootcamp removes every course of a bootcamp.
func DeleteByBootcamp(ctx context.Context, db sqlx.ExtContext, bootcampID string) error {
	const q = `DELETE FROM courses WHERE bootcamp_id = $1`

	if _, err := db.ExecContext(ctx, q, bootcampID); err != nil {
		return fmt.Errorf("deleting courses of bootcamp[%s]: %w", bootcampID, err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Course, error) {
	const q = `SELECT * FROM courses WHERE course_id = $1`

	var c Course
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		return Course{}, database.Error(err)
	}
	return c, nil
}

// FetchByBootcamps returns the courses of the bootcamps in ids, newest first.
func FetchByBootcamps(ctx context.Context, db sqlx.ExtContext, ids []string) ([]Course, error) {
	const q = `
	SELECT * FROM courses
	WHERE bootcamp_id = ANY($1)
	ORDER BY created_at DESC, course_id`

	cs := []Course{}
	if err := sqlx.SelectContext(ctx, db, &cs, q, pq.StringArray(ids)); err != nil {
		return nil, fmt.Errorf("selecting courses of %d bootcamps: %w", len(ids), err)
	}
	return cs, nil
}

func Query(ctx context.Context, db sqlx.ExtContext, q query.Query) ([]Course, int, error) {
	return query.Find[Course](ctx, db, Schema, q)
}
