// internal/service/records/records.go
package records

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/record"
	xerrors "fleetdash/internal/pkg/errors"
	"fleetdash/internal/pkg/fuel"
	"fleetdash/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	TripsKey       = "fleet_trips"
	MaintenanceKey = "fleet_maintenance"
)

// RecordsService manages trips and maintenance logs that never leave this
// deployment. A namespace (the user's phone in the server, empty in the CLI)
// keeps each user's lists apart.
type RecordsService struct {
	kv       repository.KV
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time

	// serialises load-modify-save per key
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRecordsService(kv repository.KV, logger *zap.Logger) *RecordsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsService{
		kv:       kv,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// WithClock overrides the creation timestamp source.
func (s *RecordsService) WithClock(now func() time.Time) *RecordsService {
	s.now = now
	return s
}

func (s *RecordsService) trips(namespace string) *repository.JSONStore[record.Trip] {
	return repository.NewJSONStore[record.Trip](s.kv, scopedKey(TripsKey, namespace))
}

func (s *RecordsService) maintenance(namespace string) *repository.JSONStore[record.Maintenance] {
	return repository.NewJSONStore[record.Maintenance](s.kv, scopedKey(MaintenanceKey, namespace))
}

// AddTrip validates the form, prices it from the fuel table and appends it.
func (s *RecordsService) AddTrip(ctx context.Context, namespace string, req *record.CreateTripRequest) (*record.Trip, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}
	if !fuel.Finite(req.DistanceKm) {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, fuel.ErrBadDistance)
	}

	cost := fuel.Estimate(req.DistanceKm, req.FuelType)
	trip := record.Trip{
		ID:            ulid.Make().String(),
		VehicleNumber: req.VehicleNumber,
		Driver:        req.Driver,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Date:          req.Date,
		DistanceKm:    req.DistanceKm,
		FuelType:      req.FuelType,
		CostPerKm:     cost.CostPerKm,
		TotalCost:     cost.TotalCost,
		CreatedAt:     s.now().UTC(),
	}

	store := s.trips(namespace)
	unlock := s.lock(store.Key())
	defer unlock()

	items, err := store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.SaveAll(ctx, append(items, trip)); err != nil {
		return nil, err
	}

	s.logger.Info("trip recorded",
		zap.String("namespace", namespace),
		zap.String("trip_id", trip.ID),
		zap.String("vehicle", trip.VehicleNumber),
	)
	return &trip, nil
}

// RemoveTrip deletes a trip by id.
func (s *RecordsService) RemoveTrip(ctx context.Context, namespace, id string) error {
	return remove(ctx, s, s.trips(namespace), id, record.Trip.Key)
}

// ListTrips returns the trips with the query applied.
func (s *RecordsService) ListTrips(ctx context.Context, namespace string, q derive.Query) ([]record.Trip, error) {
	items, err := s.trips(namespace).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return derive.Apply(items, q), nil
}

// AddMaintenance validates and appends a service log entry.
func (s *RecordsService) AddMaintenance(ctx context.Context, namespace string, req *record.CreateMaintenanceRequest) (*record.Maintenance, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidInput, err)
	}
	if !fuel.Finite(req.Cost) {
		return nil, fmt.Errorf("%w: cost must be a finite number", xerrors.ErrInvalidInput)
	}

	m := record.Maintenance{
		ID:            ulid.Make().String(),
		VehicleNumber: req.VehicleNumber,
		Type:          req.Type,
		Description:   req.Description,
		Date:          req.Date,
		Cost:          req.Cost,
		CreatedAt:     s.now().UTC(),
	}

	store := s.maintenance(namespace)
	unlock := s.lock(store.Key())
	defer unlock()

	items, err := store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.SaveAll(ctx, append(items, m)); err != nil {
		return nil, err
	}

	s.logger.Info("maintenance recorded",
		zap.String("namespace", namespace),
		zap.String("maintenance_id", m.ID),
		zap.String("vehicle", m.VehicleNumber),
	)
	return &m, nil
}

func (s *RecordsService) RemoveMaintenance(ctx context.Context, namespace, id string) error {
	return remove(ctx, s, s.maintenance(namespace), id, record.Maintenance.Key)
}

func (s *RecordsService) ListMaintenance(ctx context.Context, namespace string, q derive.Query) ([]record.Maintenance, error) {
	items, err := s.maintenance(namespace).GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return derive.Apply(items, q), nil
}

// Totals sums both lists.
func (s *RecordsService) Totals(ctx context.Context, namespace string) (record.Totals, error) {
	trips, err := s.trips(namespace).GetAll(ctx)
	if err != nil {
		return record.Totals{}, err
	}
	jobs, err := s.maintenance(namespace).GetAll(ctx)
	if err != nil {
		return record.Totals{}, err
	}

	t := record.Totals{Trips: len(trips), MaintenanceJobs: len(jobs)}
	for _, trip := range trips {
		t.DistanceKm += trip.DistanceKm
		t.FuelCost += trip.TotalCost
	}
	for _, m := range jobs {
		t.MaintenanceCost += m.Cost
	}
	t.DistanceKm = round2(t.DistanceKm)
	t.FuelCost = round2(t.FuelCost)
	t.MaintenanceCost = round2(t.MaintenanceCost)
	return t, nil
}

// Purge drops both lists of a namespace, used when an account is deleted.
func (s *RecordsService) Purge(ctx context.Context, namespace string) error {
	for _, key := range []string{scopedKey(TripsKey, namespace), scopedKey(MaintenanceKey, namespace)} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to purge %s: %w", key, err)
		}
	}
	s.logger.Info("records purged", zap.String("namespace", namespace))
	return nil
}

func remove[T any](ctx context.Context, s *RecordsService, store *repository.JSONStore[T], id string, key func(T) string) error {
	unlock := s.lock(store.Key())
	defer unlock()

	items, err := store.GetAll(ctx)
	if err != nil {
		return err
	}

	idx := slices.IndexFunc(items, func(item T) bool { return key(item) == id })
	if idx < 0 {
		return fmt.Errorf("record %s: %w", id, xerrors.ErrNotFound)
	}
	return store.SaveAll(ctx, slices.Delete(items, idx, idx+1))
}

func (s *RecordsService) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func scopedKey(base, namespace string) string {
	if namespace == "" {
		return base
	}
	return base + ":" + namespace
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
