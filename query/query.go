// Package query translates list request parameters into a filter,
// projection, sort order and pagination window over a table.
//
// A request such as
//
//	GET /courses?tuition[gte]=1000&minimumSkill=advanced&select=title,tuition&sort=-tuition&page=2
//
// keeps every course with tuition >= 1000 and minimum skill "advanced",
// returns only their id, title and tuition, orders them by tuition
// descending and skips the first page of 25.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/irsalhamdi/devcamper/validate"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

type Kind int

const (
	String Kind = iota
	Number
	Integer
	Bool
	Time
	ID
	StringArray
)

// Field binds an API field name to a column.
type Field struct {
	Column string
	Kind   Kind
}

// Schema describes the filterable, selectable and sortable fields of a table.
// Every table must have a created_at column, which is the default sort key.
// Key is its primary key column.
type Schema struct {
	Table  string
	Key    string
	Fields map[string]Field
}

type Op string

const (
	Eq  Op = "eq"
	Gt  Op = "gt"
	Gte Op = "gte"
	Lt  Op = "lt"
	Lte Op = "lte"
	In  Op = "in"
)

var comparisons = map[Op]string{
	Gt:  ">",
	Gte: ">=",
	Lt:  "<",
	Lte: "<=",
}

type Filter struct {
	Field  string
	Column string
	Kind   Kind
	Op     Op
	Raw    string
	Value  interface{}
}

type Order struct {
	Field  string
	Column string
	Desc   bool
}

type Query struct {
	Filters []Filter
	Select  []string
	Sort    []Order
	Page    int
	Limit   int
}

// Parse builds a Query from request parameters. Filters are kept sorted by
// field, operator and value so equal parameter sets give equal queries
// whatever their order.
func (s Schema) Parse(values url.Values) (Query, error) {
	q := Query{
		Page:  positive(values.Get("page"), DefaultPage),
		Limit: positive(values.Get("limit"), DefaultLimit),
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	for key, vals := range values {
		if reserved[key] {
			continue
		}

		name, op, err := splitKey(key)
		if err != nil {
			return Query{}, err
		}

		f, ok := s.Fields[name]
		if !ok {
			return Query{}, fmt.Errorf("cannot filter on unknown field %q", name)
		}

		for _, raw := range vals {
			flt, err := newFilter(name, f, op, raw)
			if err != nil {
				return Query{}, err
			}
			q.Filters = append(q.Filters, flt)
		}
	}

	sort.Slice(q.Filters, func(i, j int) bool {
		a, b := q.Filters[i], q.Filters[j]
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		if a.Op != b.Op {
			return a.Op < b.Op
		}
		return a.Raw < b.Raw
	})

	if sel := values.Get("select"); sel != "" {
		for _, name := range splitList(sel) {
			if _, ok := s.Fields[name]; !ok && name != "id" {
				return Query{}, fmt.Errorf("cannot select unknown field %q", name)
			}
			q.Select = append(q.Select, name)
		}
	}

	if srt := values.Get("sort"); srt != "" {
		for _, name := range splitList(srt) {
			desc := strings.HasPrefix(name, "-")
			name = strings.TrimPrefix(name, "-")

			f, ok := s.Fields[name]
			if !ok {
				return Query{}, fmt.Errorf("cannot sort on unknown field %q", name)
			}
			q.Sort = append(q.Sort, Order{Field: name, Column: f.Column, Desc: desc})
		}
	}

	return q, nil
}

func splitKey(key string) (string, Op, error) {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		return key, Eq, nil
	}
	if !strings.HasSuffix(key, "]") || i == 0 {
		return "", "", fmt.Errorf("malformed filter %q", key)
	}

	op := Op(key[i+1 : len(key)-1])
	switch op {
	case Gt, Gte, Lt, Lte, In:
		return key[:i], op, nil
	}
	return "", "", fmt.Errorf("unsupported operator %q in filter %q", op, key)
}

func newFilter(name string, f Field, op Op, raw string) (Filter, error) {
	flt := Filter{
		Field:  name,
		Column: f.Column,
		Kind:   f.Kind,
		Op:     op,
		Raw:    raw,
	}

	if _, ok := comparisons[op]; ok && (f.Kind == Bool || f.Kind == StringArray || f.Kind == ID) {
		return Filter{}, fmt.Errorf("field %q does not support operator %q", name, op)
	}

	if op == In {
		list := splitList(raw)
		if len(list) == 0 {
			return Filter{}, fmt.Errorf("empty list for filter %s[in]", name)
		}
		for _, v := range list {
			if _, err := parseValue(f.Kind, v); err != nil {
				return Filter{}, fmt.Errorf("invalid value %q for field %q: %w", v, name, err)
			}
		}
		flt.Value = list
		return flt, nil
	}

	v, err := parseValue(f.Kind, raw)
	if err != nil {
		return Filter{}, fmt.Errorf("invalid value %q for field %q: %w", raw, name, err)
	}
	flt.Value = v
	return flt, nil
}

func parseValue(k Kind, raw string) (interface{}, error) {
	switch k {
	case Number:
		return strconv.ParseFloat(raw, 64)
	case Integer:
		return strconv.Atoi(raw)
	case Bool:
		return strconv.ParseBool(raw)
	case Time:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, errors.New("expected an RFC 3339 timestamp or a date")
	case ID:
		if err := validate.CheckID(raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
	return raw, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positive(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Skip is the number of rows before the requested page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}
