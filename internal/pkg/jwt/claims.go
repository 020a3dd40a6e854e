// internal/pkg/jwt/claims.go
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the fleet API puts in its tokens. The subject is the
// account's phone number.
type Claims struct {
	Type  string `json:"type,omitempty"` // access or refresh
	Fresh bool   `json:"fresh,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the phone number the token was issued for.
func (c *Claims) Identity() string {
	return c.Subject
}

// ExpiresBy reports whether the token is expired at now. A token without an
// expiry counts as expired.
func (c *Claims) ExpiresBy(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !c.ExpiresAt.Time.After(now)
}

// IsRefresh reports whether the token may only be used to mint access tokens.
func (c *Claims) IsRefresh() bool {
	return c.Type == "refresh"
}
