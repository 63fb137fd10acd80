package random

import (
	"testing"
)

func TestToken(t *testing.T) {
	a, err := Token(20)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Token(20)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 40 || a == b {
		t.Fatalf("unexpected tokens %q %q", a, b)
	}
	if Hash(a) != Hash(a) || Hash(a) == Hash(b) {
		t.Fatal("hash must be deterministic and distinct")
	}
	if len(Hash(a)) != 64 {
		t.Fatalf("expected a sha256 hex digest, got %q", Hash(a))
	}
}
