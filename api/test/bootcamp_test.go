package test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/devcamper/core/bootcamp"
	"github.com/irsalhamdi/devcamper/query"
)

type bootcampTest struct {
	*TestEnv
}

func newBootcamp(name string, careers ...string) map[string]any {
	if len(careers) == 0 {
		careers = []string{"Web Development"}
	}
	return map[string]any{
		"name":        name,
		"description": "Learn to build things for the web",
		"website":     "https://" + fmt.Sprintf("%x", name) + ".com",
		"address":     "233 Bay State Rd Boston MA 02215",
		"careers":     careers,
	}
}

func (bt *bootcampTest) createBootcampOK(t *testing.T, name string, careers ...string) bootcamp.Bootcamp {
	t.Helper()
	e := bt.expect(t, http.MethodPost, "/bootcamps", newBootcamp(name, careers...), http.StatusCreated)
	return decode[bootcamp.Bootcamp](t, e.Data)
}

func (bt *bootcampTest) showBootcampOK(t *testing.T, id string) bootcamp.Bootcamp {
	t.Helper()
	e := bt.expect(t, http.MethodGet, "/bootcamps/"+id, nil, http.StatusOK)
	return decode[bootcamp.Bootcamp](t, e.Data)
}

func TestBootcamp(t *testing.T) {
	env, err := NewTestEnv(t, "bootcamp_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}
	bt := &bootcampTest{env}

	bt.expect(t, http.MethodPost, "/bootcamps", newBootcamp("Anonymous"), http.StatusUnauthorized)

	bt.as(t, bt.UserEmail, bt.UserPass)
	bt.expect(t, http.MethodPost, "/bootcamps", newBootcamp("Not A Publisher"), http.StatusUnauthorized)

	bt.as(t, bt.PublisherEmail, bt.PublisherPass)
	b := bt.createBootcampOK(t, "Devworks Bootcamp", "Web Development", "UI/UX")
	if b.Slug != "devworks-bootcamp" {
		t.Fatalf("unexpected slug %q", b.Slug)
	}
	if b.Location == nil || b.Location.City != "Boston" || b.Location.Type != "Point" {
		t.Fatalf("expected a geocoded location, got %+v", b.Location)
	}

	lookups := bt.Geocodes.Load()
	bt.expect(t, http.MethodPost, "/bootcamps", newBootcamp("Second Bootcamp"), http.StatusBadRequest)
	if got := bt.Geocodes.Load(); got != lookups {
		t.Fatalf("expected a refused second bootcamp not to be geocoded, got %d lookups", got-lookups)
	}
	bt.expect(t, http.MethodPost, "/bootcamps", newBootcamp("Bad Careers", "Astrology"), http.StatusBadRequest)

	t.Run("ownership", func(t *testing.T) {
		bt.as(t, bt.Publisher2Email, bt.Publisher2Pass)
		bt.expect(t, http.MethodPut, "/bootcamps/"+b.ID, map[string]any{"description": "stolen"}, http.StatusUnauthorized)
		bt.expect(t, http.MethodDelete, "/bootcamps/"+b.ID, nil, http.StatusUnauthorized)

		bt.as(t, bt.PublisherEmail, bt.PublisherPass)
		e := bt.expect(t, http.MethodPut, "/bootcamps/"+b.ID, map[string]any{"description": "Updated", "housing": true}, http.StatusOK)
		got := decode[bootcamp.Bootcamp](t, e.Data)
		if got.Description != "Updated" || !got.Housing || got.Name != b.Name {
			t.Fatalf("unexpected merge %+v", got)
		}

		bt.as(t, bt.AdminEmail, bt.AdminPass)
		e = bt.expect(t, http.MethodPut, "/bootcamps/"+b.ID, map[string]any{"name": "Devworks Academy"}, http.StatusOK)
		got = decode[bootcamp.Bootcamp](t, e.Data)
		if got.Slug != "devworks-academy" || got.Description != "Updated" {
			t.Fatalf("unexpected admin merge %+v", got)
		}
	})

	t.Run("admin owns many", func(t *testing.T) {
		bt.as(t, bt.AdminEmail, bt.AdminPass)
		bt.createBootcampOK(t, "Admin One")
		bt.createBootcampOK(t, "Admin Two")

		bt.expect(t, http.MethodPost, "/bootcamps", newBootcamp("Admin One"), http.StatusBadRequest)
	})

	t.Run("show", func(t *testing.T) {
		got := bt.showBootcampOK(t, b.ID)
		if diff := cmp.Diff([]any{}, got.Courses); diff != "" {
			t.Fatalf("expected no courses (-want +got):\n%s", diff)
		}

		bt.expect(t, http.MethodGet, "/bootcamps/00000000-0000-0000-0000-000000000000", nil, http.StatusNotFound)
		bt.expect(t, http.MethodGet, "/bootcamps/not-an-id", nil, http.StatusNotFound)
		bt.expect(t, http.MethodGet, "/bootcamps/urn:uuid:"+b.ID, nil, http.StatusNotFound)
		bt.expect(t, http.MethodGet, "/bootcamps/"+strings.ReplaceAll(b.ID, "-", "")+"/courses", nil, http.StatusNotFound)
	})

	t.Run("radius", func(t *testing.T) {
		e := bt.expect(t, http.MethodGet, "/bootcamps/radius/02215/10", nil, http.StatusOK)
		if e.Count != 3 {
			t.Fatalf("expected 3 bootcamps in Boston, got %d", e.Count)
		}

		bt.expect(t, http.MethodGet, "/bootcamps/radius/02215/far", nil, http.StatusBadRequest)
		bt.expect(t, http.MethodGet, "/bootcamps/radius/nowhere/10", nil, http.StatusBadRequest)
	})

	t.Run("delete", func(t *testing.T) {
		bt.as(t, bt.PublisherEmail, bt.PublisherPass)
		e := bt.expect(t, http.MethodDelete, "/bootcamps/"+b.ID, nil, http.StatusOK)
		if string(e.Data) != "{}" {
			t.Fatalf("expected empty data, got %s", e.Data)
		}
		bt.expect(t, http.MethodGet, "/bootcamps/"+b.ID, nil, http.StatusNotFound)

		bt.createBootcampOK(t, "Devworks Again")
	})
}

func TestAdvancedQuery(t *testing.T) {
	env, err := NewTestEnv(t, "query_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}
	bt := &bootcampTest{env}

	bt.as(t, bt.AdminEmail, bt.AdminPass)
	for i := 0; i < 25; i++ {
		careers := []string{"Web Development"}
		if i%3 == 0 {
			careers = append(careers, "Business")
		}
		b := newBootcamp(fmt.Sprintf("Bootcamp %02d", i), careers...)
		b["housing"] = i%2 == 0
		bt.expect(t, http.MethodPost, "/bootcamps", b, http.StatusCreated)
	}

	e := bt.expect(t, http.MethodGet, "/bootcamps?page=2&limit=10", nil, http.StatusOK)
	if e.Count != 10 {
		t.Fatalf("expected a page of 10, got %d", e.Count)
	}
	exp := query.Pagination{
		Next: &query.Page{Page: 3, Limit: 10},
		Prev: &query.Page{Page: 1, Limit: 10},
	}
	if diff := cmp.Diff(exp, decode[query.Pagination](t, e.Pagination)); diff != "" {
		t.Fatalf("unexpected pagination (-want +got):\n%s", diff)
	}

	e = bt.expect(t, http.MethodGet, "/bootcamps?page=3&limit=10", nil, http.StatusOK)
	if p := decode[query.Pagination](t, e.Pagination); e.Count != 5 || p.Next != nil {
		t.Fatalf("expected a last page of 5, got %d %+v", e.Count, p)
	}

	counts := []struct {
		path string
		want int
	}{
		{"/bootcamps", 25},
		{"/bootcamps?housing=true", 13},
		{"/bootcamps?careers=Business", 9},
		{"/bootcamps?careers=Business&housing=true", 5},
		{"/bootcamps?careers[in]=Business,UI/UX", 9},
		{"/bootcamps?name[in]=Bootcamp%2001,Bootcamp%2002", 2},
		{"/bootcamps?location.city=Boston&limit=100", 25},
	}
	for _, tt := range counts {
		e := bt.expect(t, http.MethodGet, tt.path, nil, http.StatusOK)
		if e.Count != tt.want {
			t.Fatalf("%s: expected %d bootcamps, got %d", tt.path, tt.want, e.Count)
		}
	}

	e = bt.expect(t, http.MethodGet, "/bootcamps?sort=name&limit=1", nil, http.StatusOK)
	if got := decode[[]bootcamp.Bootcamp](t, e.Data); got[0].Name != "Bootcamp 00" {
		t.Fatalf("expected the first name, got %q", got[0].Name)
	}
	e = bt.expect(t, http.MethodGet, "/bootcamps?sort=-name&limit=1", nil, http.StatusOK)
	if got := decode[[]bootcamp.Bootcamp](t, e.Data); got[0].Name != "Bootcamp 24" {
		t.Fatalf("expected the last name, got %q", got[0].Name)
	}

	// Every bootcamp shares its city, so only the id keeps pages apart.
	seen := make(map[string]bool)
	for page := 1; page <= 5; page++ {
		e := bt.expect(t, http.MethodGet, fmt.Sprintf("/bootcamps?sort=location.city&limit=5&page=%d", page), nil, http.StatusOK)
		for _, b := range decode[[]bootcamp.Bootcamp](t, e.Data) {
			if seen[b.ID] {
				t.Fatalf("bootcamp %s listed on more than one page", b.ID)
			}
			seen[b.ID] = true
		}
	}
	if len(seen) != 25 {
		t.Fatalf("expected to page through 25 bootcamps, saw %d", len(seen))
	}

	e = bt.expect(t, http.MethodGet, "/bootcamps?select=name,location.city&limit=1", nil, http.StatusOK)
	fields := decode[[]map[string]any](t, e.Data)[0]
	for _, k := range []string{"id", "name", "location", "courses"} {
		if _, ok := fields[k]; !ok {
			t.Fatalf("expected field %s in %v", k, fields)
		}
	}
	if len(fields) != 4 {
		t.Fatalf("expected only the selected fields, got %v", fields)
	}

	for _, path := range []string{
		"/bootcamps?bogus=1",
		"/bootcamps?housing=maybe",
		"/bootcamps?averageCost[gte]=cheap",
		"/bootcamps?sort=bogus",
		"/bootcamps?select=bogus",
	} {
		bt.expect(t, http.MethodGet, path, nil, http.StatusBadRequest)
	}
}
