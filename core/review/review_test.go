package review

import (
	"testing"
	"time"

	"github.com/irsalhamdi/devcamper/api/weberr"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		valid  bool
	}{
		{"lowest", 1, true},
		{"highest", 10, true},
		{"zero", 0, false},
		{"above scale", 11, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rn := ReviewNew{Title: "Learned a ton", Text: "Great instructors", Rating: tt.rating}
			rv, err := New(rn, "b1", "u1", time.Now())

			if tt.valid {
				if err != nil {
					t.Fatalf("expected a valid review: %v", err)
				}
				if rv.Bootcamp.ID != "b1" || rv.OwnerID() != "u1" {
					t.Fatalf("unexpected review %+v", rv)
				}
				return
			}

			if _, status, ok := weberr.Response(err); !ok || status != 400 {
				t.Fatalf("expected a bad request, got %v", err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	rv := Review{Title: "Ok", Rating: 5}

	rating := 9
	rv, err := Apply(rv, ReviewUp{Rating: &rating})
	if err != nil {
		t.Fatal(err)
	}
	if rv.Rating != 9 || rv.Title != "Ok" {
		t.Fatalf("unexpected review %+v", rv)
	}

	long := string(make([]byte, 101))
	if _, err := Apply(rv, ReviewUp{Title: &long}); err == nil {
		t.Fatal("expected an over long title to be rejected")
	}
}
