package query

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *Page `json:"next,omitempty"`
	Prev *Page `json:"prev,omitempty"`
}

// Paginate describes the pages around q given the number of matching rows.
func (q Query) Paginate(total int) *Pagination {
	p := &Pagination{}
	if q.Skip()+q.Limit < total {
		p.Next = &Page{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Skip() > 0 {
		p.Prev = &Page{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}

// Project keeps the selected top level fields of every item, plus the id and
// the names in keep. Nested fields such as location.city keep their parent.
// Items are returned unchanged when nothing was selected.
func Project[T any](items []T, selected []string, keep ...string) (interface{}, error) {
	if len(selected) == 0 {
		return items, nil
	}

	wanted := map[string]bool{"id": true}
	for _, f := range selected {
		wanted[strings.SplitN(f, ".", 2)[0]] = true
	}
	for _, f := range keep {
		wanted[f] = true
	}

	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}

		var m map[string]json.RawMessage
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		for k := range m {
			if !wanted[k] {
				delete(m, k)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// Ref is a foreign key. It encodes as the bare id until Doc is populated,
// then as Doc.
type Ref struct {
	ID  string
	Doc interface{}
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Doc != nil {
		return json.Marshal(r.Doc)
	}
	return json.Marshal(r.ID)
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &r.ID); err == nil {
		return nil
	}

	var doc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	r.ID = doc.ID

	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Doc = raw
	return nil
}

// Scan reads the id from a uuid or text column.
func (r *Ref) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		r.ID = v
	case []byte:
		r.ID = string(v)
	case nil:
		r.ID = ""
	default:
		return fmt.Errorf("cannot scan %T into a reference", src)
	}
	r.Doc = nil
	return nil
}

func (r Ref) Value() (driver.Value, error) {
	return r.ID, nil
}
