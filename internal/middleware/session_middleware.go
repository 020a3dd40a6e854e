// internal/middleware/session_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"fleetdash/internal/domain/user"
	xerrors "fleetdash/internal/pkg/errors"
	"fleetdash/internal/pkg/response"
	"fleetdash/internal/pkg/session"
	"fleetdash/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SessionHeader = "X-Session-ID"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge int
}

type SessionMiddleware struct {
	sessions    *session.Manager
	authService *auth.AuthService
	cookie      CookieConfig
	masterPhone string
	logger      *zap.Logger
}

// NewSessionMiddleware builds the session middleware. masterPhone, when set,
// names the account the fleet API lets administer users regardless of role.
func NewSessionMiddleware(sessions *session.Manager, authService *auth.AuthService, cookie CookieConfig, masterPhone string, logger *zap.Logger) *SessionMiddleware {
	if cookie.Name == "" {
		cookie.Name = "fleet_session"
	}
	return &SessionMiddleware{
		sessions:    sessions,
		authService: authService,
		cookie:      cookie,
		masterPhone: masterPhone,
		logger:      logger,
	}
}

// Session attaches the caller's dashboard session, creating one when the
// cookie is missing or stale.
func (m *SessionMiddleware) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var data *session.SessionData
		if id := m.extractSessionID(c); id != "" {
			existing, err := m.sessions.Get(ctx, id)
			switch {
			case err == nil:
				data = existing
			case errors.Is(err, xerrors.ErrSessionExpired):
			default:
				response.Error(c, http.StatusServiceUnavailable, "session store unavailable", err)
				return
			}
		}

		if data == nil {
			created, err := m.sessions.Create(ctx, c.ClientIP(), c.Request.UserAgent())
			if err != nil {
				response.Error(c, http.StatusServiceUnavailable, "session store unavailable", err)
				return
			}
			data = created
		} else if err := m.sessions.Touch(ctx, data); err != nil {
			m.logger.Warn("failed to touch session", zap.String("session_id", data.ID), zap.Error(err))
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.cookie.Name, data.ID, m.cookie.MaxAge, "/", "", m.cookie.Secure, true)
		c.Header(SessionHeader, data.ID)

		c.Set(ctxSessionID, data.ID)
		c.Set(ctxSessionData, data)
		c.Set(ctxAuthSession, m.authService.Open(m.sessions.Store(data.ID), c.ClientIP()))

		c.Next()
	}
}

// RequireUser rejects requests whose session is not signed in or whose token
// has expired. MUST be used after Session().
func (m *SessionMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := GetAuthSession(c)
		if !ok {
			response.Error(c, http.StatusInternalServerError, "session middleware missing", nil)
			return
		}

		if err := sess.Resume(c.Request.Context()); err != nil {
			response.FromError(c, "failed to resume session", err)
			return
		}
		if !sess.IsAuthenticated() {
			response.Unauthorized(c, "please login")
			return
		}

		u := sess.User()
		c.Set(ctxUser, u)
		c.Set(ctxToken, sess.Token())
		c.Set(ctxRole, string(u.Role))

		c.Next()
	}
}

// RequireRole allows only the listed roles. MUST be used after RequireUser().
func (m *SessionMiddleware) RequireRole(roles ...user.Role) gin.HandlerFunc {
	return m.requireRole("", roles)
}

// requireRole also admits the account whose phone is phone, when set.
func (m *SessionMiddleware) requireRole(phone string, roles []user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := GetUser(c)
		if !ok {
			response.Unauthorized(c, "please login")
			return
		}

		if phone != "" && u.Phone == phone {
			c.Next()
			return
		}
		if !slices.Contains(roles, u.Role) {
			response.Error(c, http.StatusForbidden, "insufficient permissions", xerrors.ErrForbidden, map[string]interface{}{
				"required_roles": roles,
				"user_role":      u.Role,
			})
			return
		}

		c.Next()
	}
}

// FleetManagers returns the middlewares for admin and manager routes.
func (m *SessionMiddleware) FleetManagers() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.RequireUser(),
		m.RequireRole(user.RoleAdmin, user.RoleManager),
	}
}

// UserAdmins returns the middlewares for user administration: admins,
// managers and the master account.
func (m *SessionMiddleware) UserAdmins() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.RequireUser(),
		m.requireRole(m.masterPhone, []user.Role{user.RoleAdmin, user.RoleManager}),
	}
}

// extractSessionID reads the cookie, then the header, then the query string
// (browsers cannot set headers on websocket upgrades).
func (m *SessionMiddleware) extractSessionID(c *gin.Context) string {
	if id, err := c.Cookie(m.cookie.Name); err == nil && id != "" {
		return id
	}
	if id := strings.TrimSpace(c.GetHeader(SessionHeader)); id != "" {
		return id
	}
	return c.Query("session")
}
