// internal/handlers/user/user_handler.go
package user

import (
	"net/http"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/middleware"
	"fleetdash/internal/pkg/response"
	"fleetdash/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	dashboard *dashboard.DashboardService
	logger    *zap.Logger
}

func NewUserHandler(dashboardService *dashboard.DashboardService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		dashboard: dashboardService,
		logger:    logger,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	var q derive.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	view, err := h.dashboard.Users(c.Request.Context(), middleware.MustGetToken(c), q, nil)
	if err != nil {
		response.FromError(c, "failed to load users", err)
		return
	}

	response.Success(c, http.StatusOK, "users retrieved", view)
}

func (h *UserHandler) Export(c *gin.Context) {
	var q derive.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	view, err := h.dashboard.Users(c.Request.Context(), middleware.MustGetToken(c), q, nil)
	if err != nil {
		response.FromError(c, "failed to load users", err)
		return
	}

	table := dashboard.ExportTable(dashboard.DatasetUsers, user.ExportHeader(), &view.View, user.User.Key)
	response.Export(c, table, c.Query("format"), time.Now())
}

// UpdateRole changes another account's role. Changing your own role is refused.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req user.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	me := middleware.MustGetUser(c)
	phone := c.Param("phone")
	if phone == me.Phone {
		response.Forbidden(c, "you cannot change your own role")
		return
	}

	u, err := h.dashboard.UpdateUserRole(c.Request.Context(), middleware.MustGetToken(c), me.Phone, phone, req.Role)
	if err != nil {
		response.FromError(c, "failed to update role", err)
		return
	}

	response.Success(c, http.StatusOK, "role updated", u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	me := middleware.MustGetUser(c)
	phone := c.Param("phone")
	if phone == me.Phone {
		response.Forbidden(c, "you cannot delete your own account")
		return
	}

	if err := h.dashboard.DeleteUser(c.Request.Context(), middleware.MustGetToken(c), me.Phone, phone); err != nil {
		response.FromError(c, "failed to delete user", err)
		return
	}

	response.Success(c, http.StatusOK, "user deleted", nil)
}
