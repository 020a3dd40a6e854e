// internal/middleware/helpers.go
package middleware

import (
	"fleetdash/internal/domain/user"
	"fleetdash/internal/pkg/session"
	"fleetdash/internal/service/auth"

	"github.com/gin-gonic/gin"
)

const (
	ctxSessionID   = "session_id"
	ctxSessionData = "session_data"
	ctxAuthSession = "auth_session"
	ctxUser        = "user"
	ctxToken       = "token"
	ctxRole        = "role"
)

func GetSessionID(c *gin.Context) (string, bool) {
	return getTyped[string](c, ctxSessionID)
}

func GetSessionData(c *gin.Context) (*session.SessionData, bool) {
	return getTyped[*session.SessionData](c, ctxSessionData)
}

func GetAuthSession(c *gin.Context) (*auth.Session, bool) {
	return getTyped[*auth.Session](c, ctxAuthSession)
}

func GetUser(c *gin.Context) (*user.User, bool) {
	return getTyped[*user.User](c, ctxUser)
}

// GetToken returns the fleet API access token of the signed-in user.
func GetToken(c *gin.Context) (string, bool) {
	return getTyped[string](c, ctxToken)
}

// MustGetSessionID gets the session id from context or panics
func MustGetSessionID(c *gin.Context) string {
	id, exists := GetSessionID(c)
	if !exists {
		panic("session_id not found in context")
	}
	return id
}

// MustGetUser gets the signed-in user from context or panics
func MustGetUser(c *gin.Context) *user.User {
	u, exists := GetUser(c)
	if !exists {
		panic("user not found in context")
	}
	return u
}

// MustGetToken gets the access token from context or panics
func MustGetToken(c *gin.Context) string {
	token, exists := GetToken(c)
	if !exists {
		panic("token not found in context")
	}
	return token
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get(ctxUser)
	return exists
}

// IsAdmin checks if user is an admin
func IsAdmin(c *gin.Context) bool {
	u, ok := GetUser(c)
	return ok && u.Role == user.RoleAdmin
}

func getTyped[T any](c *gin.Context, key string) (T, bool) {
	var zero T
	v, exists := c.Get(key)
	if !exists {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
