package claims

import (
	"context"
	"errors"
)

const (
	RoleAdmin     = "admin"
	RolePublisher = "publisher"
	RoleUser      = "user"
)

// Claims is the principal attached to an authenticated request.
type Claims struct {
	UserID string
	Role   string
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("claim value missing from context")
	}
	return v, nil
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// HasRole reports whether the principal holds one of roles.
func (c Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// Owned is implemented by every resource that records who created it.
type Owned interface {
	OwnerID() string
}

// Allowed reports whether the principal may modify the resource: admins may
// modify anything, everybody else only what they own.
func Allowed(c Claims, res Owned) bool {
	return c.IsAdmin() || (c.UserID != "" && c.UserID == res.OwnerID())
}
