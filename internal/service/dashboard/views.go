// internal/service/dashboard/views.go
package dashboard

import (
	"slices"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/dashboard"
	"fleetdash/internal/domain/driver"
	"fleetdash/internal/domain/record"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/domain/vehicle"
	"fleetdash/internal/pkg/export"
	"fleetdash/internal/pkg/palette"
)

// Dataset names, used for selections, export file names and change events.
const (
	DatasetVehicles    = "vehicles"
	DatasetDrivers     = "drivers"
	DatasetUsers       = "users"
	DatasetTrips       = "trips"
	DatasetMaintenance = "maintenance"
)

type presenter[T derive.Row] struct {
	key     func(T) string
	name    func(T) string
	seed    func(T) string
	buckets []derive.Bucket
	columns []dashboard.Column
}

func buildView[T derive.Row](items []T, q derive.Query, selection []string, p presenter[T]) *dashboard.View[T] {
	filtered := derive.Apply(items, q)
	if selection == nil {
		selection = []string{}
	}

	rows := make([]dashboard.Row[T], len(filtered))
	for i, item := range filtered {
		key := p.key(item)
		rows[i] = dashboard.Row[T]{
			Item:     item,
			Key:      key,
			Avatar:   palette.Initial(p.name(item), "?"),
			DotColor: palette.SiteColor(p.seed(item)),
			Badge:    palette.Badge(item.StatusValue()),
			Selected: slices.Contains(selection, key),
		}
	}

	return &dashboard.View[T]{
		Rows:      rows,
		Total:     len(items),
		Filtered:  len(filtered),
		Segments:  derive.Aggregate(items, p.buckets),
		Query:     q,
		Sort:      q.SortState(),
		Selection: selection,
		Columns:   p.columns,
	}
}

var vehiclePresenter = presenter[vehicle.Vehicle]{
	key:     vehicle.Vehicle.Key,
	name:    func(v vehicle.Vehicle) string { return v.Make },
	seed:    func(v vehicle.Vehicle) string { return v.LicensePlate },
	buckets: vehicle.Buckets(),
	columns: []dashboard.Column{
		{Key: "vehicle_number", Title: "Vehicle", Sortable: true},
		{Key: "make", Title: "Make", Sortable: true},
		{Key: "model", Title: "Model", Sortable: true},
		{Key: "license_plate", Title: "Plate", Sortable: true},
		{Key: "mileage", Title: "Mileage", Sortable: true},
		{Key: "status", Title: "Status", Sortable: true},
	},
}

var driverPresenter = presenter[driver.Driver]{
	key:     driver.Driver.Key,
	name:    func(d driver.Driver) string { return d.Name },
	seed:    func(d driver.Driver) string { return d.SortField("email") },
	buckets: driver.Buckets(),
	columns: []dashboard.Column{
		{Key: "name", Title: "Name", Sortable: true},
		{Key: "email", Title: "Email", Sortable: true},
		{Key: "license_number", Title: "License", Sortable: true},
		{Key: "license_expiry", Title: "Expires", Sortable: true},
		{Key: "status", Title: "Status", Sortable: true},
	},
}

var userPresenter = presenter[user.User]{
	key:     user.User.Key,
	name:    user.User.Name,
	seed:    func(u user.User) string { return u.Email },
	buckets: user.Buckets(),
	columns: []dashboard.Column{
		{Key: "username", Title: "Name", Sortable: true},
		{Key: "phone", Title: "Phone", Sortable: true},
		{Key: "email", Title: "Email", Sortable: true},
		{Key: "role", Title: "Role", Sortable: true},
	},
}

var tripPresenter = presenter[record.Trip]{
	key:     record.Trip.Key,
	name:    func(t record.Trip) string { return t.Driver },
	seed:    func(t record.Trip) string { return t.VehicleNumber },
	buckets: record.TripBuckets(),
	columns: []dashboard.Column{
		{Key: "date", Title: "Date", Sortable: true},
		{Key: "vehicle_number", Title: "Vehicle", Sortable: true},
		{Key: "driver", Title: "Driver", Sortable: true},
		{Key: "origin", Title: "From", Sortable: true},
		{Key: "destination", Title: "To", Sortable: true},
		{Key: "distance_km", Title: "Km", Sortable: true},
		{Key: "total_cost", Title: "Cost", Sortable: true},
	},
}

var maintenancePresenter = presenter[record.Maintenance]{
	key:     record.Maintenance.Key,
	name:    func(m record.Maintenance) string { return string(m.Type) },
	seed:    func(m record.Maintenance) string { return m.VehicleNumber },
	buckets: record.MaintenanceBuckets(),
	columns: []dashboard.Column{
		{Key: "date", Title: "Date", Sortable: true},
		{Key: "vehicle_number", Title: "Vehicle", Sortable: true},
		{Key: "type", Title: "Type", Sortable: true},
		{Key: "description", Title: "Description", Sortable: false},
		{Key: "cost", Title: "Cost", Sortable: true},
	},
}

func VehicleView(items []vehicle.Vehicle, q derive.Query, selection []string) *dashboard.View[vehicle.Vehicle] {
	return buildView(items, q, selection, vehiclePresenter)
}

func DriverView(items []driver.Driver, q derive.Query, selection []string) *dashboard.View[driver.Driver] {
	return buildView(items, q, selection, driverPresenter)
}

func UserView(list *user.ListResponse, q derive.Query, selection []string) *dashboard.UsersView {
	return &dashboard.UsersView{
		View:        *buildView(list.Users, q, selection, userPresenter),
		MasterPhone: list.MasterPhone,
	}
}

func TripView(items []record.Trip, q derive.Query, selection []string) *dashboard.View[record.Trip] {
	return buildView(items, q, selection, tripPresenter)
}

func MaintenanceView(items []record.Maintenance, q derive.Query, selection []string) *dashboard.View[record.Maintenance] {
	return buildView(items, q, selection, maintenancePresenter)
}

// Items unwraps the rows of a view.
func Items[T any](view *dashboard.View[T]) []T {
	out := make([]T, len(view.Rows))
	for i, row := range view.Rows {
		out[i] = row.Item
	}
	return out
}

// ExportTable renders the selected rows of the view, or every row when nothing
// is selected.
func ExportTable[T interface {
	derive.Row
	export.Exportable
}](dataset string, header []string, view *dashboard.View[T], key func(T) string) export.Table {
	items := derive.Pick(Items(view), view.Selection, key)
	return export.NewTable(dataset, header, items)
}
