package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the current token pair. The access token is short-lived and
// kept in memory only; the refresh token is longer-lived, single-purpose, and
// the part that gets persisted.
type Credential struct {
	AccessToken  string
	RefreshToken string
	IssuedAt     time.Time
}

// ExpiresAt reads the exp claim out of the access token without verifying the
// signature — the client holds no key, and the value is advisory (display,
// logging). Returns false when the token is absent or carries no exp claim.
func (c *Credential) ExpiresAt() (time.Time, bool) {
	if c == nil || c.AccessToken == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
