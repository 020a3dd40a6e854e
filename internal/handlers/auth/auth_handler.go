// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"fleetdash/internal/domain/auth"
	"fleetdash/internal/middleware"
	"fleetdash/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// ========== Login ==========

// Login signs the browser session in with phone and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	sess, ok := middleware.GetAuthSession(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "session middleware missing", nil)
		return
	}

	result := sess.Login(c.Request.Context(), &req)
	if !result.Success {
		status := http.StatusUnauthorized
		if result.Message == auth.MsgTooManyLoginAttempts {
			status = http.StatusTooManyRequests
		}
		response.Error(c, status, result.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, "login successful", auth.MeResponse{User: sess.User()})
}

// ========== Registration ==========

// Register creates an account and signs the session in with it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	sess, ok := middleware.GetAuthSession(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "session middleware missing", nil)
		return
	}

	result := sess.RegisterAndLogin(c.Request.Context(), &req)
	if !result.Success {
		status := http.StatusBadRequest
		if result.Message == auth.MsgAutoLoginFailed {
			// the account exists; only the automatic login failed
			status = http.StatusAccepted
		}
		response.Error(c, status, result.Message, nil)
		return
	}

	response.Success(c, http.StatusCreated, result.Message, auth.MeResponse{User: sess.User()})
}

// ========== Logout ==========

func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := middleware.GetAuthSession(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "session middleware missing", nil)
		return
	}

	if err := sess.Resume(c.Request.Context()); err != nil {
		h.logger.Warn("failed to load session on logout", zap.Error(err))
	}
	if err := sess.Logout(c.Request.Context()); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// ========== Current user ==========

// Me restores the session: an unexpired token is exchanged for a fresh user
// record, anything else is cleared.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := middleware.GetAuthSession(c)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "session middleware missing", nil)
		return
	}

	if err := sess.Init(c.Request.Context()); err != nil {
		response.FromError(c, "failed to restore session", err)
		return
	}
	if !sess.IsAuthenticated() {
		response.Unauthorized(c, "please login")
		return
	}

	response.Success(c, http.StatusOK, "authenticated", auth.MeResponse{User: sess.User()})
}
