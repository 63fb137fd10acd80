package bootcamp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/irsalhamdi/devcamper/api/weberr"
)

func TestNew(t *testing.T) {
	bn := BootcampNew{
		Name:        "Devworks Bootcamp",
		Description: "Full stack web development",
		Website:     "https://devworks.com",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development", "UI/UX"},
	}

	b, err := New(bn, "4f2a1c0e-8b7d-4c6a-9e5f-1a2b3c4d5e6f", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if b.Slug != "devworks-bootcamp" {
		t.Fatalf("unexpected slug %q", b.Slug)
	}
	if b.Photo != defaultPhoto || b.UserID != "4f2a1c0e-8b7d-4c6a-9e5f-1a2b3c4d5e6f" {
		t.Fatalf("unexpected bootcamp %+v", b)
	}

	bn.Careers = []string{"Astrology"}
	_, err = New(bn, "u1", time.Now())
	if _, status, ok := weberr.Response(err); !ok || status != 400 {
		t.Fatalf("expected a bad request for an unknown career, got %v", err)
	}
}

func TestApply(t *testing.T) {
	b := Bootcamp{Name: "Old", Slug: "old", Address: "Boston", Careers: []string{"Other"}}

	name := "New Name"
	b, moved, err := Apply(b, BootcampUp{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if moved || b.Slug != "new-name" {
		t.Fatalf("unexpected result moved=%v slug=%q", moved, b.Slug)
	}

	addr := "Seattle"
	b, moved, err = Apply(b, BootcampUp{Address: &addr})
	if err != nil {
		t.Fatal(err)
	}
	if !moved || b.Address != "Seattle" {
		t.Fatalf("expected the address to move, got %+v", b)
	}
}

func TestRowRoundTrip(t *testing.T) {
	cost := 10000.0
	b := Bootcamp{
		ID:      "b1",
		UserID:  "u1",
		Name:    "Devworks",
		Careers: []string{"Business"},
		Location: &Location{
			Type:        "Point",
			Coordinates: []float64{-71.1, 42.3},
			City:        "Boston",
		},
		AverageCost: &cost,
		Photo:       defaultPhoto,
	}

	if diff := cmp.Diff(b, toRow(b).bootcamp()); diff != "" {
		t.Fatalf("bootcamp changed through its row (-want +got):\n%s", diff)
	}

	b.Location = nil
	got := toRow(b).bootcamp()
	if got.Location != nil {
		t.Fatalf("expected no location, got %+v", got.Location)
	}
}

func TestJSONShape(t *testing.T) {
	b := Bootcamp{
		ID:       "b1",
		Careers:  []string{},
		Location: &Location{Type: "Point", Coordinates: []float64{-71.1, 42.3}},
		Courses:  []string{},
	}

	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}

	if _, ok := m["averageCost"]; ok {
		t.Fatal("expected an unset average cost to be omitted")
	}
	loc := m["location"].(map[string]interface{})
	if loc["type"] != "Point" {
		t.Fatalf("unexpected location %v", loc)
	}
	if _, ok := m["courses"]; !ok {
		t.Fatal("expected embedded courses")
	}
}
