// internal/domain/vehicle/entity.go
package vehicle

import (
	"strconv"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/pkg/isotime"
	"fleetdash/internal/pkg/palette"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusInactive:
		return true
	}
	return false
}

// Vehicle is a fleet vehicle as served by the fleet API.
type Vehicle struct {
	ID            int64        `json:"id"`
	VehicleNumber string       `json:"vehicle_number"`
	Make          string       `json:"make"`
	Model         string       `json:"model"`
	Year          *int         `json:"year,omitempty"`
	VIN           *string      `json:"vin,omitempty"`
	LicensePlate  string       `json:"license_plate"`
	Status        Status       `json:"status"`
	Mileage       int          `json:"mileage"`
	FuelType      *string      `json:"fuel_type,omitempty"`
	DriverID      *int64       `json:"driver_id,omitempty"`
	CreatedAt     isotime.Time `json:"created_at"`
	UpdatedAt     isotime.Time `json:"updated_at"`
}

// Key is the vehicle number, unique within the fleet.
func (v Vehicle) Key() string { return v.VehicleNumber }

func (v Vehicle) SearchFields() []string {
	return []string{v.VehicleNumber, v.Make, v.Model, v.LicensePlate, string(v.Status)}
}

func (v Vehicle) StatusValue() string { return string(v.Status) }

func (v Vehicle) SortField(key string) string {
	switch key {
	case "vehicle_number", "name":
		return v.VehicleNumber
	case "make":
		return v.Make
	case "model":
		return v.Model
	case "license_plate", "plate":
		return v.LicensePlate
	case "status":
		return string(v.Status)
	case "mileage":
		return strconv.Itoa(v.Mileage)
	case "year":
		if v.Year != nil {
			return strconv.Itoa(*v.Year)
		}
	case "fuel_type":
		if v.FuelType != nil {
			return *v.FuelType
		}
	case "created_at":
		if !v.CreatedAt.IsZero() {
			return v.CreatedAt.Format(time.RFC3339)
		}
	}
	return ""
}

// Buckets are the stat bar segments for vehicles.
func Buckets() []derive.Bucket {
	return []derive.Bucket{
		{Label: "Active", Match: string(StatusActive), Color: palette.SegmentDark},
		{Label: "Maintenance", Match: string(StatusMaintenance), Color: palette.SegmentLight},
		{Label: "Inactive", Color: palette.SegmentMuted},
	}
}

var exportHeader = []string{"Vehicle Number", "Make", "Model", "Year", "License Plate", "Status", "Mileage", "Fuel Type", "Created At"}

func ExportHeader() []string { return exportHeader }

func (v Vehicle) ExportRow() []string {
	return []string{
		v.VehicleNumber,
		v.Make,
		v.Model,
		v.SortField("year"),
		v.LicensePlate,
		string(v.Status),
		strconv.Itoa(v.Mileage),
		v.SortField("fuel_type"),
		v.SortField("created_at"),
	}
}
