package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Where renders the filters as a SQL predicate with ? bind vars, ready for
// Rebind. It is empty when there are no filters.
func (q Query) Where() (string, []interface{}) {
	if len(q.Filters) == 0 {
		return "", nil
	}

	conds := make([]string, 0, len(q.Filters))
	args := make([]interface{}, 0, len(q.Filters))
	for _, f := range q.Filters {
		switch {
		case f.Op == In && f.Kind == StringArray:
			conds = append(conds, f.Column+" && ?")
			args = append(args, pq.StringArray(f.Value.([]string)))
		case f.Op == In:
			conds = append(conds, f.Column+" = ANY(?)")
			args = append(args, pq.StringArray(f.Value.([]string)))
		case f.Op == Eq && f.Kind == StringArray:
			conds = append(conds, "? = ANY("+f.Column+")")
			args = append(args, f.Value)
		case f.Op == Eq:
			conds = append(conds, f.Column+" = ?")
			args = append(args, f.Value)
		default:
			conds = append(conds, fmt.Sprintf("%s %s ?", f.Column, comparisons[f.Op]))
			args = append(args, f.Value)
		}
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// OrderBy renders the sort order, newest first when none was requested.
// Ties are broken on key, when given, so pages never overlap.
func (q Query) OrderBy(key string) string {
	keys := make([]string, 0, len(q.Sort)+1)
	for _, o := range q.Sort {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		keys = append(keys, o.Column+" "+dir)
	}
	if len(keys) == 0 {
		keys = append(keys, "created_at DESC")
	}
	if key != "" {
		keys = append(keys, key+" ASC")
	}
	return " ORDER BY " + strings.Join(keys, ", ")
}

// Find returns one page of the rows of s.Table matching q, and how many rows
// match overall.
func Find[T any](ctx context.Context, db sqlx.ExtContext, s Schema, q Query) ([]T, int, error) {
	where, args := q.Where()

	var total int
	count := db.Rebind(`SELECT count(*) FROM ` + s.Table + where)
	if err := sqlx.GetContext(ctx, db, &total, count, args...); err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", s.Table, err)
	}

	stmt := db.Rebind(`SELECT * FROM ` + s.Table + where + q.OrderBy(s.Key) + ` LIMIT ? OFFSET ?`)
	args = append(args, q.Limit, q.Skip())

	rows := []T{}
	if err := sqlx.SelectContext(ctx, db, &rows, stmt, args...); err != nil {
		return nil, 0, fmt.Errorf("selecting %s: %w", s.Table, err)
	}

	return rows, total, nil
}
