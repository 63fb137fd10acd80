// Package aggregate keeps the averages a bootcamp derives from its courses
// and reviews in line with them.
package aggregate

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// RoundCost rounds a mean tuition up to the nearest 10.
func RoundCost(mean float64) float64 {
	return math.Ceil(mean/10) * 10
}

// AverageCost stores the rounded mean tuition of the courses of a bootcamp,
// or NULL when it has none.
func AverageCost(ctx context.Context, db sqlx.ExtContext, bootcampID string) error {
	var mean sql.NullFloat64
	const avg = `SELECT avg(tuition) FROM courses WHERE bootcamp_id = $1`
	if err := sqlx.GetContext(ctx, db, &mean, avg, bootcampID); err != nil {
		return fmt.Errorf("averaging tuition of bootcamp[%s]: %w", bootcampID, err)
	}

	var cost *float64
	if mean.Valid {
		c := RoundCost(mean.Float64)
		cost = &c
	}

	const q = `UPDATE bootcamps SET average_cost = $1 WHERE bootcamp_id = $2`
	if _, err := db.ExecContext(ctx, q, cost, bootcampID); err != nil {
		return fmt.Errorf("storing average cost of bootcamp[%s]: %w", bootcampID, err)
	}
	return nil
}

// AverageRating stores the mean rating of the reviews of a bootcamp, or NULL
// when it has none.
func AverageRating(ctx context.Context, db sqlx.ExtContext, bootcampID string) error {
	const q = `
	UPDATE bootcamps SET
		average_rating = (SELECT avg(rating) FROM reviews WHERE bootcamp_id = $1)
	WHERE bootcamp_id = $1`

	if _, err := db.ExecContext(ctx, q, bootcampID); err != nil {
		return fmt.Errorf("storing average rating of bootcamp[%s]: %w", bootcampID, err)
	}
	return nil
}

// Hook runs the recomputations after a successful child write. Failures are
// logged and never reach the caller, and the write having succeeded, a
// client hanging up does not cancel them.
type Hook struct {
	DB  sqlx.ExtContext
	Log logrus.FieldLogger
}

func (h Hook) Cost(ctx context.Context, bootcampID string) {
	ctx = context.WithoutCancel(ctx)
	if err := AverageCost(ctx, h.DB, bootcampID); err != nil {
		h.Log.WithField("bootcamp_id", bootcampID).WithError(err).Error("recomputing average cost")
	}
}

func (h Hook) Rating(ctx context.Context, bootcampID string) {
	ctx = context.WithoutCancel(ctx)
	if err := AverageRating(ctx, h.DB, bootcampID); err != nil {
		h.Log.WithField("bootcamp_id", bootcampID).WithError(err).Error("recomputing average rating")
	}
}

// Reconcile recomputes both averages of every bootcamp, repairing whatever a
// failed hook or a racing delete left behind.
func Reconcile(ctx context.Context, db sqlx.ExtContext) error {
	const q = `
	UPDATE bootcamps b SET
		average_cost = (SELECT ceil(avg(c.tuition) / 10) * 10 FROM courses c WHERE c.bootcamp_id = b.bootcamp_id),
		average_rating = (SELECT avg(r.rating) FROM reviews r WHERE r.bootcamp_id = b.bootcamp_id)`

	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("reconciling bootcamp averages: %w", err)
	}
	return nil
}
