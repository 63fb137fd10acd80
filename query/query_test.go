package query

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lib/pq"
)

var courses = Schema{
	Table: "courses",
	Key:   "course_id",
	Fields: map[string]Field{
		"title":        {Column: "title", Kind: String},
		"tuition":      {Column: "tuition", Kind: Number},
		"weeks":        {Column: "weeks", Kind: Integer},
		"minimumSkill": {Column: "minimum_skill", Kind: String},
		"scholarship":  {Column: "scholarship_available", Kind: Bool},
		"bootcamp":     {Column: "bootcamp_id", Kind: ID},
		"careers":      {Column: "careers", Kind: StringArray},
		"createdAt":    {Column: "created_at", Kind: Time},
	},
}

func parse(t *testing.T, raw string) Query {
	t.Helper()
	v, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("bad test query %q: %v", raw, err)
	}
	q, err := courses.Parse(v)
	if err != nil {
		t.Fatalf("parsing %q: %v", raw, err)
	}
	return q
}

// encode turns q back into request parameters; parsing the result gives q.
func encode(q Query) url.Values {
	v := make(url.Values)
	for _, f := range q.Filters {
		key := f.Field
		if f.Op != Eq {
			key += "[" + string(f.Op) + "]"
		}
		v.Add(key, f.Raw)
	}
	if len(q.Select) > 0 {
		v.Set("select", strings.Join(q.Select, ","))
	}
	if len(q.Sort) > 0 {
		keys := make([]string, 0, len(q.Sort))
		for _, o := range q.Sort {
			if o.Desc {
				keys = append(keys, "-"+o.Field)
			} else {
				keys = append(keys, o.Field)
			}
		}
		v.Set("sort", strings.Join(keys, ","))
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	return v
}

func TestParseDefaults(t *testing.T) {
	q := parse(t, "")

	want := Query{Page: 1, Limit: 25}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Fatalf("unexpected query (-want +got):\n%s", diff)
	}
	if q.Skip() != 0 {
		t.Fatalf("expected skip 0, got %d", q.Skip())
	}
	if got := q.OrderBy(courses.Key); got != " ORDER BY created_at DESC, course_id ASC" {
		t.Fatalf("unexpected default order %q", got)
	}
}

func TestParseFiltersAndOperators(t *testing.T) {
	q := parse(t, "tuition[gte]=1000&tuition[lt]=20000&minimumSkill=advanced&careers[in]=Business,UI/UX&select=title,tuition&sort=-tuition,title&page=3&limit=5")

	where, args := q.Where()
	wantWhere := " WHERE careers && ? AND minimum_skill = ? AND tuition >= ? AND tuition < ?"
	if where != wantWhere {
		t.Fatalf("unexpected where:\n got %q\nwant %q", where, wantWhere)
	}

	wantArgs := []interface{}{pq.StringArray{"Business", "UI/UX"}, "advanced", 1000.0, 20000.0}
	if diff := cmp.Diff(wantArgs, args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"title", "tuition"}, q.Select); diff != "" {
		t.Fatalf("unexpected select (-want +got):\n%s", diff)
	}
	if got := q.OrderBy(courses.Key); got != " ORDER BY tuition DESC, title ASC, course_id ASC" {
		t.Fatalf("unexpected order %q", got)
	}
	if q.Skip() != 10 || q.Limit != 5 {
		t.Fatalf("unexpected window skip=%d limit=%d", q.Skip(), q.Limit)
	}
}

func TestParseEqualityOnArrayAndIn(t *testing.T) {
	q := parse(t, "careers=Business&weeks[in]=4,8")

	where, args := q.Where()
	if where != " WHERE ? = ANY(careers) AND weeks = ANY(?)" {
		t.Fatalf("unexpected where %q", where)
	}
	wantArgs := []interface{}{"Business", pq.StringArray{"4", "8"}}
	if diff := cmp.Diff(wantArgs, args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}
}

func TestParseTypedValues(t *testing.T) {
	q := parse(t, "scholarship=true&createdAt[gt]=2024-01-02")

	_, args := q.Where()
	want := []interface{}{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), true}
	if diff := cmp.Diff(want, args); diff != "" {
		t.Fatalf("unexpected args (-want +got):\n%s", diff)
	}
}

func TestParseIsOrderIndependent(t *testing.T) {
	a := parse(t, "tuition[gte]=1000&minimumSkill=advanced&title=Front&tuition[lte]=9000")
	b := parse(t, "tuition[lte]=9000&title=Front&minimumSkill=advanced&tuition[gte]=1000")

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("parameter order changed the query (-a +b):\n%s", diff)
	}
}

func TestParseIgnoresReservedFields(t *testing.T) {
	plain := parse(t, "tuition[gte]=1000&minimumSkill=advanced")
	withReserved := parse(t, "select=title&minimumSkill=advanced&sort=-title&tuition[gte]=1000&page=4&limit=2")

	if diff := cmp.Diff(plain.Filters, withReserved.Filters); diff != "" {
		t.Fatalf("reserved fields leaked into the filter (-want +got):\n%s", diff)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"tuition[gte]=1000&minimumSkill=advanced",
		"careers[in]=Business,Other&sort=-tuition&select=title&page=2&limit=10",
		"title=a&title=b&weeks[lte]=12",
	}

	for _, in := range inputs {
		first := parse(t, in)
		second, err := courses.Parse(encode(first))
		if err != nil {
			t.Fatalf("re-parsing %q: %v", in, err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("parse is not idempotent for %q (-first +second):\n%s", in, diff)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"password=secret",
		"tuition[ne]=1",
		"tuition[gte=1",
		"[gte]=1",
		"tuition[gte]=cheap",
		"weeks=1.5",
		"scholarship=maybe",
		"scholarship[gt]=true",
		"careers[lt]=Business",
		"bootcamp=5d713995b721c3bb38c1f5d0",
		"tuition[in]=",
		"select=title,password",
		"sort=-password",
	}

	for _, raw := range tests {
		v, _ := url.ParseQuery(raw)
		if _, err := courses.Parse(v); err == nil {
			t.Errorf("expected %q to be rejected", raw)
		}
	}
}

func TestParseWindowFallbacks(t *testing.T) {
	tests := []struct {
		raw         string
		page, limit int
	}{
		{"page=0&limit=0", 1, 25},
		{"page=-2&limit=abc", 1, 25},
		{"page=2&limit=1000", 2, MaxLimit},
	}

	for _, tt := range tests {
		q := parse(t, tt.raw)
		if q.Page != tt.page || q.Limit != tt.limit {
			t.Errorf("%q: got page=%d limit=%d, want page=%d limit=%d", tt.raw, q.Page, q.Limit, tt.page, tt.limit)
		}
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		raw   string
		total int
		want  *Pagination
	}{
		{
			raw:   "page=2&limit=10",
			total: 25,
			want:  &Pagination{Next: &Page{Page: 3, Limit: 10}, Prev: &Page{Page: 1, Limit: 10}},
		},
		{
			raw:   "page=3&limit=10",
			total: 25,
			want:  &Pagination{Prev: &Page{Page: 2, Limit: 10}},
		},
		{
			raw:   "",
			total: 25,
			want:  &Pagination{},
		},
		{
			raw:   "limit=10",
			total: 20,
			want:  &Pagination{Next: &Page{Page: 2, Limit: 10}},
		},
		{
			raw:   "page=2&limit=10",
			total: 20,
			want:  &Pagination{Prev: &Page{Page: 1, Limit: 10}},
		},
	}

	for _, tt := range tests {
		got := parse(t, tt.raw).Paginate(tt.total)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%q over %d rows (-want +got):\n%s", tt.raw, tt.total, diff)
		}
	}
}

type item struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Tuition  float64           `json:"tuition"`
	Location map[string]string `json:"location"`
	Bootcamp Ref               `json:"bootcamp"`
}

func TestProject(t *testing.T) {
	items := []item{{
		ID:       "c1",
		Title:    "Front End",
		Tuition:  8000,
		Location: map[string]string{"city": "Boston"},
		Bootcamp: Ref{ID: "b1", Doc: map[string]string{"id": "b1", "name": "Devworks"}},
	}}

	out, err := Project(items, []string{"title", "location.city"}, "bootcamp")
	if err != nil {
		t.Fatal(err)
	}

	b, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}

	var got []map[string]interface{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}

	want := []map[string]interface{}{{
		"id":       "c1",
		"title":    "Front End",
		"location": map[string]interface{}{"city": "Boston"},
		"bootcamp": map[string]interface{}{"id": "b1", "name": "Devworks"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected projection (-want +got):\n%s", diff)
	}

	same, err := Project(items, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := same.([]item); !ok {
		t.Fatalf("expected items back untouched, got %T", same)
	}
}

func TestRef(t *testing.T) {
	b, err := json.Marshal(Ref{ID: "b1"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"b1"` {
		t.Fatalf("unpopulated ref encoded as %s", b)
	}

	var r Ref
	if err := json.Unmarshal([]byte(`{"id":"b2","name":"Codemasters"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.ID != "b2" || r.Doc == nil {
		t.Fatalf("unexpected ref %+v", r)
	}
}
