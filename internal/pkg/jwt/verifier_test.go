package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pinned = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sign(t *testing.T, secret string, method jwt.SigningMethod, exp *time.Time) string {
	t.Helper()
	claims := Claims{
		Type:             "access",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "0712345678"},
	}
	if exp != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*exp)
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func at(d time.Duration) *time.Time {
	v := pinned.Add(d)
	return &v
}

func TestInspectorUnexpired(t *testing.T) {
	clock := func() time.Time { return pinned }

	t.Run("decode only without a secret", func(t *testing.T) {
		in := NewInspector("").WithClock(clock)
		assert.True(t, in.Unexpired(sign(t, "whatever", jwt.SigningMethodHS256, at(time.Hour))))
		assert.False(t, in.Unexpired(sign(t, "whatever", jwt.SigningMethodHS256, at(-time.Second))))
	})

	t.Run("expiry exactly now counts as expired", func(t *testing.T) {
		in := NewInspector("").WithClock(clock)
		assert.False(t, in.Unexpired(sign(t, "k", jwt.SigningMethodHS256, at(0))))
	})

	t.Run("no expiry counts as expired", func(t *testing.T) {
		in := NewInspector("").WithClock(clock)
		assert.False(t, in.Unexpired(sign(t, "k", jwt.SigningMethodHS256, nil)))
	})

	t.Run("garbage and empty", func(t *testing.T) {
		in := NewInspector("")
		assert.False(t, in.Unexpired(""))
		assert.False(t, in.Unexpired("not.a.token"))
	})

	t.Run("signature is checked with a secret", func(t *testing.T) {
		in := NewInspector("shared").WithClock(clock)
		assert.True(t, in.Unexpired(sign(t, "shared", jwt.SigningMethodHS384, at(time.Hour))))
		assert.False(t, in.Unexpired(sign(t, "other", jwt.SigningMethodHS256, at(time.Hour))))
	})
}

func TestInspect(t *testing.T) {
	in := NewInspector("")
	token := sign(t, "k", jwt.SigningMethodHS256, at(time.Hour))

	claims, err := in.Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "0712345678", claims.Identity())
	assert.False(t, claims.IsRefresh())
	assert.True(t, in.ExpiresAt(token).Equal(pinned.Add(time.Hour)))
	assert.True(t, in.ExpiresAt("junk").IsZero())
}
