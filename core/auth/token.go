package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Config holds what is needed to sign credentials and hand them out as
// cookies.
type Config struct {
	Secret       []byte
	Expire       time.Duration
	CookieName   string
	CookieExpire time.Duration
	SecureCookie bool
}

// Issue signs a credential for userID valid from now until now+Expire.
func (c Config) Issue(userID string, now time.Time) (string, error) {
	rc := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.Expire)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, rc).SignedString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

// Verify checks the signature and expiry of token and returns its subject.
func (c Config) Verify(token string) (string, error) {
	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &rc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.Secret, nil
	})
	if err != nil {
		return "", err
	}

	if rc.Subject == "" {
		return "", errors.New("token has no subject")
	}
	if rc.ExpiresAt == nil {
		return "", errors.New("token has no expiry")
	}
	return rc.Subject, nil
}

// Extract returns the credential of r from the Authorization header or, when
// there is no bearer token, from the session cookie.
func (c Config) Extract(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}

	if ck, err := r.Cookie(c.CookieName); err == nil {
		return ck.Value
	}
	return ""
}

// Cookie carries token to the browser.
func (c Config) Cookie(token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     c.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(c.CookieExpire),
		HttpOnly: true,
		Secure:   c.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie replaces the session cookie with a short lived placeholder.
func (c Config) ClearCookie(now time.Time) *http.Cookie {
	ck := c.Cookie("none", now)
	ck.Expires = now.Add(10 * time.Second)
	return ck
}
