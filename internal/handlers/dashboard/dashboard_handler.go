// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"net/http"
	"time"

	"fleetdash/internal/middleware"
	"fleetdash/internal/pkg/response"
	"fleetdash/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard *dashboard.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboardService *dashboard.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboardService,
		logger:    logger,
	}
}

// Overview loads vehicles and drivers together and returns the summary cards
// and stat bars.
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context(), middleware.MustGetToken(c))
	if err != nil {
		response.FromError(c, "failed to load dashboard", err)
		return
	}
	response.Success(c, http.StatusOK, "dashboard loaded", overview)
}

func (h *DashboardHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, "ok", gin.H{"time": time.Now().UTC()})
}
