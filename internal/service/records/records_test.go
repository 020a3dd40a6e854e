package records

import (
	"context"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/record"
	xerrors "fleetdash/internal/pkg/errors"
	"fleetdash/internal/pkg/fuel"
	"fleetdash/internal/repository/file"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newService(t *testing.T, dir string) *RecordsService {
	t.Helper()
	repo, err := file.NewRecordsRepository(dir)
	require.NoError(t, err)
	return NewRecordsService(repo, nil).WithClock(func() time.Time { return fixed })
}

func trip(vehicle string, km float64, ft fuel.Type) *record.CreateTripRequest {
	return &record.CreateTripRequest{
		VehicleNumber: vehicle,
		Driver:        "Amina",
		Origin:        "Nairobi",
		Destination:   "Nakuru",
		Date:          "2025-01-02",
		DistanceKm:    km,
		FuelType:      ft,
	}
}

func TestAddTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, t.TempDir())

	got, err := svc.AddTrip(ctx, "", trip("KBX 1", 160, fuel.Diesel))
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, 5.0, got.CostPerKm)
	assert.Equal(t, 800.0, got.TotalCost)
	assert.Equal(t, fixed, got.CreatedAt)

	t.Run("invalid forms", func(t *testing.T) {
		bad := trip("KBX 1", 10, fuel.Type("jet"))
		_, err := svc.AddTrip(ctx, "", bad)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

		bad = trip("", 10, fuel.Petrol)
		_, err = svc.AddTrip(ctx, "", bad)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

		bad = trip("KBX 1", -1, fuel.Petrol)
		_, err = svc.AddTrip(ctx, "", bad)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

		bad = trip("KBX 1", math.Inf(1), fuel.Petrol)
		_, err = svc.AddTrip(ctx, "", bad)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

		bad = trip("KBX 1", math.NaN(), fuel.Petrol)
		_, err = svc.AddTrip(ctx, "", bad)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

		bad = trip("KBX 1", 1, fuel.Petrol)
		bad.Date = "02/01/2025"
		_, err = svc.AddTrip(ctx, "", bad)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

		list, err := svc.ListTrips(ctx, "", derive.Query{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestRecordsPersistAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "records")

	first := newService(t, dir)
	a, err := first.AddTrip(ctx, "", trip("KBX 1", 10, fuel.Petrol))
	require.NoError(t, err)
	_, err = first.AddMaintenance(ctx, "", &record.CreateMaintenanceRequest{
		VehicleNumber: "KBX 1", Type: record.MaintenanceOilChange, Date: "2025-01-03", Cost: 4500,
	})
	require.NoError(t, err)

	second := newService(t, dir)
	trips, err := second.ListTrips(ctx, "", derive.Query{})
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, a.ID, trips[0].ID)

	jobs, err := second.ListMaintenance(ctx, "", derive.Query{})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, t.TempDir())

	a, err := svc.AddTrip(ctx, "", trip("A", 1, fuel.Petrol))
	require.NoError(t, err)
	b, err := svc.AddTrip(ctx, "", trip("B", 1, fuel.Petrol))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveTrip(ctx, "", a.ID))
	assert.ErrorIs(t, svc.RemoveTrip(ctx, "", a.ID), xerrors.ErrNotFound)

	list, err := svc.ListTrips(ctx, "", derive.Query{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	assert.ErrorIs(t, svc.RemoveMaintenance(ctx, "", "nope"), xerrors.ErrNotFound)
}

func TestListQuery(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, t.TempDir())

	for _, tc := range []struct {
		vehicle string
		ft      fuel.Type
	}{{"KCA 2", fuel.Petrol}, {"KBX 1", fuel.Diesel}, {"KDD 3", fuel.Diesel}} {
		_, err := svc.AddTrip(ctx, "", trip(tc.vehicle, 5, tc.ft))
		require.NoError(t, err)
	}

	list, err := svc.ListTrips(ctx, "", derive.Query{Status: string(fuel.Diesel), SortKey: "vehicle_number", SortDir: "desc"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "KDD 3", list[0].VehicleNumber)
	assert.Equal(t, "KBX 1", list[1].VehicleNumber)
}

func TestNamespacesAndPurge(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, t.TempDir())

	_, err := svc.AddTrip(ctx, "0711", trip("A", 10, fuel.Petrol))
	require.NoError(t, err)
	_, err = svc.AddTrip(ctx, "0722", trip("B", 10, fuel.Petrol))
	require.NoError(t, err)

	mine, err := svc.ListTrips(ctx, "0711", derive.Query{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].VehicleNumber)

	require.NoError(t, svc.Purge(ctx, "0711"))
	mine, err = svc.ListTrips(ctx, "0711", derive.Query{})
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := svc.ListTrips(ctx, "0722", derive.Query{})
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, t.TempDir())

	_, err := svc.AddTrip(ctx, "", trip("A", 10.5, fuel.CNG))
	require.NoError(t, err)
	_, err = svc.AddTrip(ctx, "", trip("A", 100, fuel.Petrol))
	require.NoError(t, err)
	for _, cost := range []float64{0.1, 0.2} {
		_, err = svc.AddMaintenance(ctx, "", &record.CreateMaintenanceRequest{
			VehicleNumber: "A", Type: record.MaintenanceInspection, Date: "2025-01-01", Cost: cost,
		})
		require.NoError(t, err)
	}

	totals, err := svc.Totals(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, record.Totals{
		Trips:           2,
		DistanceKm:      110.5,
		FuelCost:        631.92,
		MaintenanceJobs: 2,
		MaintenanceCost: 0.3,
	}, totals)
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddTrip(ctx, "", trip("A", 1, fuel.Petrol))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := svc.ListTrips(ctx, "", derive.Query{})
	require.NoError(t, err)
	assert.Len(t, list, 20)
}
