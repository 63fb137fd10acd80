package test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/devcamper/core/aggregate"
)

type averages struct {
	Cost   sql.NullFloat64 `db:"average_cost"`
	Rating sql.NullFloat64 `db:"average_rating"`
}

func (env *TestEnv) averages(t *testing.T, bootcampID string) averages {
	t.Helper()
	var a averages
	const q = `SELECT average_cost, average_rating FROM bootcamps WHERE bootcamp_id = $1`
	if err := env.DB.GetContext(context.Background(), &a, q, bootcampID); err != nil {
		t.Fatalf("reading averages of %s: %v", bootcampID, err)
	}
	return a
}

func TestReconcile(t *testing.T) {
	env, err := NewTestEnv(t, "reconcile_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}
	bt := &bootcampTest{env}
	ct := &courseTest{env}
	rt := &reviewTest{env}

	env.as(t, env.PublisherEmail, env.PublisherPass)
	busy := bt.createBootcampOK(t, "Devworks")
	ct.createCourseOK(t, busy.ID, "Front End", 10000)
	ct.createCourseOK(t, busy.ID, "Full Stack", 12501)

	env.as(t, env.Publisher2Email, env.Publisher2Pass)
	empty := bt.createBootcampOK(t, "Quiet Camp")

	env.as(t, env.UserEmail, env.UserPass)
	rt.createReviewOK(t, busy.ID, 8)
	env.as(t, env.User2Email, env.User2Pass)
	rt.createReviewOK(t, busy.ID, 5)

	ctx := context.Background()
	const corrupt = `UPDATE bootcamps SET average_cost = 1, average_rating = 1`
	if _, err := env.DB.ExecContext(ctx, corrupt); err != nil {
		t.Fatalf("corrupting averages: %v", err)
	}

	if err := aggregate.Reconcile(ctx, env.DB); err != nil {
		t.Fatalf("reconciling: %v", err)
	}

	tests := []struct {
		name string
		id   string
		want averages
	}{
		{
			name: "with children",
			id:   busy.ID,
			want: averages{
				Cost:   sql.NullFloat64{Float64: 11260, Valid: true},
				Rating: sql.NullFloat64{Float64: 6.5, Valid: true},
			},
		},
		{
			name: "without children",
			id:   empty.ID,
			want: averages{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, env.averages(t, tt.id)); diff != "" {
				t.Fatalf("unexpected averages (-want +got):\n%s", diff)
			}
		})
	}
}
