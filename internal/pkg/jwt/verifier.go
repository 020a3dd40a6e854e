// internal/pkg/jwt/verifier.go
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Inspector reads fleet API tokens. Without a secret it only decodes them, which
// is enough to decide whether a stored token is worth sending. With the shared
// HMAC secret it also checks the signature.
type Inspector struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewInspector(secret string) *Inspector {
	return &Inspector{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
			jwt.WithoutClaimsValidation(),
		),
		now: time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin expiry checks.
func (i *Inspector) WithClock(now func() time.Time) *Inspector {
	i.now = now
	return i
}

// Inspect decodes tokenString. Expiry is not enforced here; see Unexpired.
func (i *Inspector) Inspect(tokenString string) (*Claims, error) {
	claims := &Claims{}

	if len(i.secret) == 0 {
		if _, _, err := i.parser.ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("failed to decode token: %w", err)
		}
		return claims, nil
	}

	token, err := i.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// Unexpired reports whether tokenString decodes and has an expiry in the future.
func (i *Inspector) Unexpired(tokenString string) bool {
	if tokenString == "" {
		return false
	}
	claims, err := i.Inspect(tokenString)
	if err != nil {
		return false
	}
	return !claims.ExpiresBy(i.now())
}

// ExpiresAt returns the token's expiry, or the zero time when it has none.
func (i *Inspector) ExpiresAt(tokenString string) time.Time {
	claims, err := i.Inspect(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
