// internal/handlers/record/record_handler.go
package record

import (
	"net/http"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/record"
	"fleetdash/internal/middleware"
	"fleetdash/internal/pkg/fuel"
	"fleetdash/internal/pkg/response"
	"fleetdash/internal/pkg/session"
	"fleetdash/internal/service/dashboard"
	"fleetdash/internal/service/records"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecordHandler serves the trips and maintenance logs each user keeps on this server.
type RecordHandler struct {
	records  *records.RecordsService
	sessions *session.Manager
	logger   *zap.Logger
}

func NewRecordHandler(recordsService *records.RecordsService, sessions *session.Manager, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{
		records:  recordsService,
		sessions: sessions,
		logger:   logger,
	}
}

// ========== Trips ==========

func (h *RecordHandler) ListTrips(c *gin.Context) {
	var q derive.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	items, err := h.records.ListTrips(c.Request.Context(), namespace(c), derive.Query{})
	if err != nil {
		response.FromError(c, "failed to load trips", err)
		return
	}

	response.Success(c, http.StatusOK, "trips retrieved", dashboard.TripView(items, q, selection(c, dashboard.DatasetTrips)))
}

func (h *RecordHandler) AddTrip(c *gin.Context) {
	var req record.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	trip, err := h.records.AddTrip(c.Request.Context(), namespace(c), &req)
	if err != nil {
		response.FromError(c, "failed to record trip", err)
		return
	}

	response.Success(c, http.StatusCreated, "trip recorded", trip)
}

func (h *RecordHandler) RemoveTrip(c *gin.Context) {
	if err := h.records.RemoveTrip(c.Request.Context(), namespace(c), c.Param("id")); err != nil {
		response.FromError(c, "trip not found", err)
		return
	}
	response.Success(c, http.StatusOK, "trip deleted", nil)
}

func (h *RecordHandler) ExportTrips(c *gin.Context) {
	var q derive.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	items, err := h.records.ListTrips(c.Request.Context(), namespace(c), derive.Query{})
	if err != nil {
		response.FromError(c, "failed to load trips", err)
		return
	}

	view := dashboard.TripView(items, q, selection(c, dashboard.DatasetTrips))
	table := dashboard.ExportTable(dashboard.DatasetTrips, record.TripExportHeader(), view, record.Trip.Key)
	response.Export(c, table, c.Query("format"), time.Now())
}

// ========== Maintenance ==========

func (h *RecordHandler) ListMaintenance(c *gin.Context) {
	var q derive.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	items, err := h.records.ListMaintenance(c.Request.Context(), namespace(c), derive.Query{})
	if err != nil {
		response.FromError(c, "failed to load maintenance log", err)
		return
	}

	response.Success(c, http.StatusOK, "maintenance retrieved", dashboard.MaintenanceView(items, q, selection(c, dashboard.DatasetMaintenance)))
}

func (h *RecordHandler) AddMaintenance(c *gin.Context) {
	var req record.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	m, err := h.records.AddMaintenance(c.Request.Context(), namespace(c), &req)
	if err != nil {
		response.FromError(c, "failed to record maintenance", err)
		return
	}

	response.Success(c, http.StatusCreated, "maintenance recorded", m)
}

func (h *RecordHandler) RemoveMaintenance(c *gin.Context) {
	if err := h.records.RemoveMaintenance(c.Request.Context(), namespace(c), c.Param("id")); err != nil {
		response.FromError(c, "maintenance entry not found", err)
		return
	}
	response.Success(c, http.StatusOK, "maintenance deleted", nil)
}

func (h *RecordHandler) ExportMaintenance(c *gin.Context) {
	var q derive.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}

	items, err := h.records.ListMaintenance(c.Request.Context(), namespace(c), derive.Query{})
	if err != nil {
		response.FromError(c, "failed to load maintenance log", err)
		return
	}

	view := dashboard.MaintenanceView(items, q, selection(c, dashboard.DatasetMaintenance))
	table := dashboard.ExportTable(dashboard.DatasetMaintenance, record.MaintenanceExportHeader(), view, record.Maintenance.Key)
	response.Export(c, table, c.Query("format"), time.Now())
}

// ToggleSelection selects a trip or maintenance row for export. The dataset
// comes from the route.
func (h *RecordHandler) ToggleSelection(dataset string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sel, err := h.sessions.ToggleSelection(c.Request.Context(), middleware.MustGetSessionID(c), dataset, c.Param("key"))
		if err != nil {
			response.FromError(c, "failed to update selection", err)
			return
		}
		response.Success(c, http.StatusOK, "selection updated", gin.H{"selection": sel})
	}
}

// Totals sums the caller's trips and maintenance costs.
func (h *RecordHandler) Totals(c *gin.Context) {
	totals, err := h.records.Totals(c.Request.Context(), namespace(c))
	if err != nil {
		response.FromError(c, "failed to compute totals", err)
		return
	}
	response.Success(c, http.StatusOK, "totals computed", totals)
}

// ========== Fuel ==========

// EstimateFuel prices a trip: GET /fuel/estimate?distance_km=120&fuel_type=diesel.
func (h *RecordHandler) EstimateFuel(c *gin.Context) {
	distance, err := fuel.ParseDistance(c.Query("distance_km"))
	if err != nil {
		response.ValidationError(c, "distance_km must be a finite number", err)
		return
	}

	t := fuel.Type(c.DefaultQuery("fuel_type", string(fuel.Petrol)))
	if !t.Valid() {
		response.ValidationError(c, "unknown fuel type", nil)
		return
	}

	response.Success(c, http.StatusOK, "estimate computed", gin.H{
		"distance_km": distance,
		"fuel_type":   t,
		"estimate":    fuel.Estimate(distance, t),
	})
}

// Rates lists the fuel table.
func (h *RecordHandler) Rates(c *gin.Context) {
	rates := make(map[fuel.Type]fuel.Rate, len(fuel.Types()))
	for _, t := range fuel.Types() {
		r, _ := fuel.RateFor(t)
		rates[t] = r
	}
	response.Success(c, http.StatusOK, "fuel rates", rates)
}

func namespace(c *gin.Context) string {
	return middleware.MustGetUser(c).Phone
}

func selection(c *gin.Context, dataset string) []string {
	if data, ok := middleware.GetSessionData(c); ok {
		return data.Selection(dataset)
	}
	return nil
}
