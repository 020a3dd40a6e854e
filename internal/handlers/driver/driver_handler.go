// internal/handlers/driver/driver_handler.go
package driver

import (
	"net/http"
	"time"

	"fleetdash/internal/derive"
	domain "fleetdash/internal/domain/dashboard"
	"fleetdash/internal/domain/driver"
	"fleetdash/internal/middleware"
	"fleetdash/internal/pkg/response"
	"fleetdash/internal/pkg/session"
	"fleetdash/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DriverHandler struct {
	dashboard *dashboard.DashboardService
	sessions  *session.Manager
	logger    *zap.Logger
}

func NewDriverHandler(dashboardService *dashboard.DashboardService, sessions *session.Manager, logger *zap.Logger) *DriverHandler {
	return &DriverHandler{
		dashboard: dashboardService,
		sessions:  sessions,
		logger:    logger,
	}
}

// List returns the derived driver table for the query string.
func (h *DriverHandler) List(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "drivers retrieved", view)
}

func (h *DriverHandler) Create(c *gin.Context) {
	var req driver.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	u := middleware.MustGetUser(c)
	d, err := h.dashboard.CreateDriver(c.Request.Context(), middleware.MustGetToken(c), u.Phone, &req)
	if err != nil {
		response.FromError(c, "failed to create driver", err)
		return
	}

	response.Success(c, http.StatusCreated, "driver created", d)
}

func (h *DriverHandler) Update(c *gin.Context) {
	var req driver.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	u := middleware.MustGetUser(c)
	d, err := h.dashboard.UpdateDriver(c.Request.Context(), middleware.MustGetToken(c), u.Phone, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to update driver", err)
		return
	}

	response.Success(c, http.StatusOK, "driver updated", d)
}

func (h *DriverHandler) Delete(c *gin.Context) {
	u := middleware.MustGetUser(c)
	if err := h.dashboard.DeleteDriver(c.Request.Context(), middleware.MustGetToken(c), u.Phone, c.Param("id")); err != nil {
		response.FromError(c, "failed to delete driver", err)
		return
	}

	response.Success(c, http.StatusOK, "driver deleted", nil)
}

// ToggleSelection selects or deselects one driver row for export.
func (h *DriverHandler) ToggleSelection(c *gin.Context) {
	selection, err := h.sessions.ToggleSelection(c.Request.Context(), middleware.MustGetSessionID(c), dashboard.DatasetDrivers, c.Param("key"))
	if err != nil {
		response.FromError(c, "failed to update selection", err)
		return
	}
	response.Success(c, http.StatusOK, "selection updated", gin.H{"selection": selection})
}

func (h *DriverHandler) ClearSelection(c *gin.Context) {
	if err := h.sessions.ClearSelection(c.Request.Context(), middleware.MustGetSessionID(c), dashboard.DatasetDrivers); err != nil {
		response.FromError(c, "failed to clear selection", err)
		return
	}
	response.Success(c, http.StatusOK, "selection cleared", gin.H{"selection": []string{}})
}

// Export downloads the selected rows of the current view, or the whole view.
func (h *DriverHandler) Export(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	table := dashboard.ExportTable(dashboard.DatasetDrivers, driver.ExportHeader(), view, driver.Driver.Key)
	response.Export(c, table, c.Query("format"), time.Now())
}

func (h *DriverHandler) view(c *gin.Context) (*domain.View[driver.Driver], bool) {
	var q derive.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return nil, false
	}

	var selection []string
	if data, ok := middleware.GetSessionData(c); ok {
		selection = data.Selection(dashboard.DatasetDrivers)
	}

	view, err := h.dashboard.Drivers(c.Request.Context(), middleware.MustGetToken(c), q, selection)
	if err != nil {
		response.FromError(c, "failed to load drivers", err)
		return nil, false
	}
	return view, true
}
