// internal/domain/dashboard/entity.go
package dashboard

import (
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/driver"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/domain/vehicle"
	"fleetdash/internal/pkg/palette"
)

// Snapshot is one consistent load of the raw collections.
type Snapshot struct {
	Vehicles []vehicle.Vehicle `json:"vehicles"`
	Drivers  []driver.Driver   `json:"drivers"`
	LoadedAt time.Time         `json:"loaded_at"`
}

// Cards are the summary numbers shown above the tables.
type Cards struct {
	TotalVehicles       int `json:"total_vehicles"`
	ActiveVehicles      int `json:"active_vehicles"`
	MaintenanceVehicles int `json:"maintenance_vehicles"`
	InactiveVehicles    int `json:"inactive_vehicles"`
	TotalDrivers        int `json:"total_drivers"`
	AvailableDrivers    int `json:"available_drivers"`
	AssignedDrivers     int `json:"assigned_drivers"`
	InactiveDrivers     int `json:"inactive_drivers"`
	UtilizationPct      int `json:"utilization_pct"`
}

// Overview is the dashboard landing view.
type Overview struct {
	Cards           Cards            `json:"cards"`
	VehicleSegments []derive.Segment `json:"vehicle_segments"`
	DriverSegments  []derive.Segment `json:"driver_segments"`
	LoadedAt        time.Time        `json:"loaded_at"`
}

// Column describes one table column for renderers.
type Column struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Sortable bool   `json:"sortable"`
}

// Row decorates an item with the presentation data a table row needs.
type Row[T any] struct {
	Item     T                   `json:"item"`
	Key      string              `json:"key"`
	Avatar   string              `json:"avatar"`
	DotColor string              `json:"dot_color"`
	Badge    palette.BadgeColors `json:"badge"`
	Selected bool                `json:"selected"`
}

// View is a derived table: the rows to render plus their stat bar.
type View[T any] struct {
	Rows      []Row[T]         `json:"rows"`
	Total     int              `json:"total"`
	Filtered  int              `json:"filtered"`
	Segments  []derive.Segment `json:"segments"`
	Query     derive.Query     `json:"query"`
	Sort      derive.SortState `json:"sort"`
	Selection []string         `json:"selection"`
	Columns   []Column         `json:"columns,omitempty"`
}

// UsersView is the user table plus the account whose role cannot change.
type UsersView struct {
	View[user.User]
	MasterPhone string `json:"master_phone,omitempty"`
}
