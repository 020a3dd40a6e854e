// internal/domain/record/trip.go
package record

import (
	"strconv"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/pkg/fuel"
	"fleetdash/internal/pkg/palette"
)

// Trip is a locally kept dispatch record. Costs are derived from the fuel table
// when the trip is created.
type Trip struct {
	ID            string    `json:"id"`
	VehicleNumber string    `json:"vehicle_number"`
	Driver        string    `json:"driver"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Date          string    `json:"date"`
	DistanceKm    float64   `json:"distance_km"`
	FuelType      fuel.Type `json:"fuel_type"`
	CostPerKm     float64   `json:"cost_per_km"`
	TotalCost     float64   `json:"total_cost"`
	CreatedAt     time.Time `json:"created_at"`
}

func (t Trip) Key() string { return t.ID }

func (t Trip) SearchFields() []string {
	return []string{t.VehicleNumber, t.Driver, t.Origin, t.Destination, string(t.FuelType)}
}

func (t Trip) StatusValue() string { return string(t.FuelType) }

func (t Trip) SortField(key string) string {
	switch key {
	case "vehicle_number":
		return t.VehicleNumber
	case "driver":
		return t.Driver
	case "origin":
		return t.Origin
	case "destination":
		return t.Destination
	case "date":
		return t.Date
	case "distance_km":
		return formatFloat(t.DistanceKm)
	case "fuel_type":
		return string(t.FuelType)
	case "total_cost":
		return formatFloat(t.TotalCost)
	}
	return ""
}

// TripBuckets splits trips by fuel type.
func TripBuckets() []derive.Bucket {
	types := fuel.Types()
	buckets := make([]derive.Bucket, len(types))
	for i, ft := range types {
		buckets[i] = derive.Bucket{Label: string(ft), Match: string(ft), Color: palette.SegmentColor(i)}
	}
	return buckets
}

func TripExportHeader() []string {
	return []string{"Vehicle", "Driver", "Origin", "Destination", "Date", "Distance (km)", "Fuel Type", "Cost/km", "Total Cost"}
}

func (t Trip) ExportRow() []string {
	return []string{
		t.VehicleNumber,
		t.Driver,
		t.Origin,
		t.Destination,
		t.Date,
		formatFloat(t.DistanceKm),
		string(t.FuelType),
		strconv.FormatFloat(t.CostPerKm, 'f', 2, 64),
		strconv.FormatFloat(t.TotalCost, 'f', 2, 64),
	}
}

// CreateTripRequest is the trip dispatch form.
type CreateTripRequest struct {
	VehicleNumber string    `json:"vehicle_number" binding:"required" validate:"required"`
	Driver        string    `json:"driver" binding:"required" validate:"required"`
	Origin        string    `json:"origin" binding:"required" validate:"required"`
	Destination   string    `json:"destination" binding:"required" validate:"required"`
	Date          string    `json:"date" binding:"required" validate:"required,datetime=2006-01-02"`
	DistanceKm    float64   `json:"distance_km" validate:"gte=0"`
	FuelType      fuel.Type `json:"fuel_type" binding:"required" validate:"required,oneof=petrol diesel cng"`
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
