package record

import (
	"strconv"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/pkg/palette"
)

type MaintenanceType string

const (
	MaintenanceOilChange    MaintenanceType = "oil_change"
	MaintenanceTireRotation MaintenanceType = "tire_rotation"
	MaintenanceBrakeService MaintenanceType = "brake_service"
	MaintenanceEngineRepair MaintenanceType = "engine_repair"
	MaintenanceInspection   MaintenanceType = "inspection"
	MaintenanceOther        MaintenanceType = "other"
)

func MaintenanceTypes() []MaintenanceType {
	return []MaintenanceType{
		MaintenanceOilChange,
		MaintenanceTireRotation,
		MaintenanceBrakeService,
		MaintenanceEngineRepair,
		MaintenanceInspection,
		MaintenanceOther,
	}
}

// Maintenance is a locally kept service log entry for one vehicle.
type Maintenance struct {
	ID            string          `json:"id"`
	VehicleNumber string          `json:"vehicle_number"`
	Type          MaintenanceType `json:"type"`
	Description   string          `json:"description"`
	Date          string          `json:"date"`
	Cost          float64         `json:"cost"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (m Maintenance) Key() string { return m.ID }

func (m Maintenance) SearchFields() []string {
	return []string{m.VehicleNumber, string(m.Type), m.Description}
}

func (m Maintenance) StatusValue() string { return string(m.Type) }

func (m Maintenance) SortField(key string) string {
	switch key {
	case "vehicle_number":
		return m.VehicleNumber
	case "type":
		return string(m.Type)
	case "description":
		return m.Description
	case "date":
		return m.Date
	case "cost":
		return strconv.FormatFloat(m.Cost, 'f', -1, 64)
	}
	return ""
}

func MaintenanceBuckets() []derive.Bucket {
	types := MaintenanceTypes()
	buckets := make([]derive.Bucket, len(types))
	for i, mt := range types {
		buckets[i] = derive.Bucket{Label: string(mt), Match: string(mt), Color: palette.SegmentColor(i)}
	}
	return buckets
}

func MaintenanceExportHeader() []string {
	return []string{"Vehicle", "Type", "Description", "Date", "Cost"}
}

func (m Maintenance) ExportRow() []string {
	return []string{
		m.VehicleNumber,
		string(m.Type),
		m.Description,
		m.Date,
		strconv.FormatFloat(m.Cost, 'f', 2, 64),
	}
}

// CreateMaintenanceRequest is the service log form.
type CreateMaintenanceRequest struct {
	VehicleNumber string          `json:"vehicle_number" binding:"required" validate:"required"`
	Type          MaintenanceType `json:"type" binding:"required" validate:"required,oneof=oil_change tire_rotation brake_service engine_repair inspection other"`
	Description   string          `json:"description" validate:"max=500"`
	Date          string          `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	Cost          float64         `json:"cost" validate:"gte=0"`
}

// Totals summarises the local records.
type Totals struct {
	Trips           int     `json:"trips"`
	DistanceKm      float64 `json:"distance_km"`
	FuelCost        float64 `json:"fuel_cost"`
	MaintenanceJobs int     `json:"maintenance_jobs"`
	MaintenanceCost float64 `json:"maintenance_cost"`
}
