package user

import (
	"net/http"
	"testing"
	"time"

	"github.com/irsalhamdi/devcamper/api/weberr"
	"github.com/irsalhamdi/devcamper/core/claims"
)

func TestNew(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	u, err := New(UserNew{Name: "John", Email: "john@gmail.com", Password: "123456"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != claims.RoleUser {
		t.Fatalf("expected default role %q, got %q", claims.RoleUser, u.Role)
	}
	if u.PasswordHash == "123456" || !u.CheckPassword("123456") || u.CheckPassword("654321") {
		t.Fatal("password was not hashed properly")
	}
	if u.ID == "" || !u.CreatedAt.Equal(now) {
		t.Fatalf("unexpected user %+v", u)
	}

	_, err = New(UserNew{Name: "John", Email: "not-an-email", Password: "123456"}, now)
	if _, status, ok := weberr.Response(err); !ok || status != http.StatusBadRequest {
		t.Fatalf("expected a bad request, got %v", err)
	}

	_, err = New(UserNew{Name: "John", Email: "john@gmail.com", Password: "123"}, now)
	if err == nil {
		t.Fatal("expected short passwords to be rejected")
	}
}

func TestApply(t *testing.T) {
	u, err := New(UserNew{Name: "Jane", Email: "jane@gmail.com", Password: "123456", Role: claims.RolePublisher}, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	name, pass := "Jane Doe", "abcdef"
	got, err := Apply(u, UserUp{Name: &name, Password: &pass})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != name || got.Email != u.Email || got.Role != claims.RolePublisher {
		t.Fatalf("unexpected merge %+v", got)
	}
	if !got.CheckPassword(pass) {
		t.Fatal("password not updated")
	}

	role := "owner"
	if _, err := Apply(u, UserUp{Role: &role}); err == nil {
		t.Fatal("expected an unknown role to be rejected")
	}
}
