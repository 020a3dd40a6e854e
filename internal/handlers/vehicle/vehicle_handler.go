// internal/handlers/vehicle/vehicle_handler.go
package vehicle

import (
	"net/http"
	"time"

	"fleetdash/internal/derive"
	domain "fleetdash/internal/domain/dashboard"
	"fleetdash/internal/domain/vehicle"
	"fleetdash/internal/middleware"
	"fleetdash/internal/pkg/response"
	"fleetdash/internal/pkg/session"
	"fleetdash/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VehicleHandler struct {
	dashboard *dashboard.DashboardService
	sessions  *session.Manager
	logger    *zap.Logger
}

func NewVehicleHandler(dashboardService *dashboard.DashboardService, sessions *session.Manager, logger *zap.Logger) *VehicleHandler {
	return &VehicleHandler{
		dashboard: dashboardService,
		sessions:  sessions,
		logger:    logger,
	}
}

// List returns the derived vehicle table for the query string.
func (h *VehicleHandler) List(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "vehicles retrieved", view)
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req vehicle.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	u := middleware.MustGetUser(c)
	v, err := h.dashboard.CreateVehicle(c.Request.Context(), middleware.MustGetToken(c), u.Phone, &req)
	if err != nil {
		response.FromError(c, "failed to create vehicle", err)
		return
	}

	response.Success(c, http.StatusCreated, "vehicle created", v)
}

func (h *VehicleHandler) Update(c *gin.Context) {
	var req vehicle.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	u := middleware.MustGetUser(c)
	v, err := h.dashboard.UpdateVehicle(c.Request.Context(), middleware.MustGetToken(c), u.Phone, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to update vehicle", err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle updated", v)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	u := middleware.MustGetUser(c)
	if err := h.dashboard.DeleteVehicle(c.Request.Context(), middleware.MustGetToken(c), u.Phone, c.Param("id")); err != nil {
		response.FromError(c, "failed to delete vehicle", err)
		return
	}

	response.Success(c, http.StatusOK, "vehicle deleted", nil)
}

// ToggleSelection selects or deselects one vehicle row for export.
func (h *VehicleHandler) ToggleSelection(c *gin.Context) {
	selection, err := h.sessions.ToggleSelection(c.Request.Context(), middleware.MustGetSessionID(c), dashboard.DatasetVehicles, c.Param("key"))
	if err != nil {
		response.FromError(c, "failed to update selection", err)
		return
	}
	response.Success(c, http.StatusOK, "selection updated", gin.H{"selection": selection})
}

func (h *VehicleHandler) ClearSelection(c *gin.Context) {
	if err := h.sessions.ClearSelection(c.Request.Context(), middleware.MustGetSessionID(c), dashboard.DatasetVehicles); err != nil {
		response.FromError(c, "failed to clear selection", err)
		return
	}
	response.Success(c, http.StatusOK, "selection cleared", gin.H{"selection": []string{}})
}

// Export downloads the selected rows of the current view, or the whole view.
func (h *VehicleHandler) Export(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	table := dashboard.ExportTable(dashboard.DatasetVehicles, vehicle.ExportHeader(), view, vehicle.Vehicle.Key)
	response.Export(c, table, c.Query("format"), time.Now())
}

func (h *VehicleHandler) view(c *gin.Context) (*domain.View[vehicle.Vehicle], bool) {
	var q derive.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return nil, false
	}

	var selection []string
	if data, ok := middleware.GetSessionData(c); ok {
		selection = data.Selection(dashboard.DatasetVehicles)
	}

	view, err := h.dashboard.Vehicles(c.Request.Context(), middleware.MustGetToken(c), q, selection)
	if err != nil {
		response.FromError(c, "failed to load vehicles", err)
		return nil, false
	}
	return view, true
}
