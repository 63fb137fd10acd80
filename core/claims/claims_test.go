package claims

import (
	"context"
	"testing"
)

type owned string

func (o owned) OwnerID() string { return string(o) }

func TestAllowed(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		res    Owned
		want   bool
	}{
		{"owner", Claims{UserID: "u1", Role: RolePublisher}, owned("u1"), true},
		{"stranger", Claims{UserID: "u2", Role: RolePublisher}, owned("u1"), false},
		{"admin", Claims{UserID: "a1", Role: RoleAdmin}, owned("u1"), true},
		{"anonymous", Claims{}, owned(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allowed(tt.claims, tt.res); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestContext(t *testing.T) {
	if _, err := Get(context.Background()); err == nil {
		t.Fatal("expected missing claims error")
	}

	ctx := Set(context.Background(), Claims{UserID: "u1", Role: RoleUser})
	c, err := Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if c.UserID != "u1" || !c.HasRole(RoleUser, RoleAdmin) || c.HasRole(RolePublisher) {
		t.Fatalf("unexpected claims %+v", c)
	}
}
