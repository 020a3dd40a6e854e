// internal/service/dashboard/dashboard.go
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/dashboard"
	"fleetdash/internal/domain/driver"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/domain/vehicle"
	wstypes "fleetdash/internal/domain/websocket"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FleetAPI is the fleet backend as seen by the dashboard.
type FleetAPI interface {
	ListVehicles(ctx context.Context, token string) ([]vehicle.Vehicle, error)
	CreateVehicle(ctx context.Context, token string, req *vehicle.CreateVehicleRequest) (*vehicle.Vehicle, error)
	UpdateVehicle(ctx context.Context, token, id string, req *vehicle.UpdateVehicleRequest) (*vehicle.Vehicle, error)
	DeleteVehicle(ctx context.Context, token, id string) error

	ListDrivers(ctx context.Context, token string) ([]driver.Driver, error)
	CreateDriver(ctx context.Context, token string, req *driver.CreateDriverRequest) (*driver.Driver, error)
	UpdateDriver(ctx context.Context, token, id string, req *driver.UpdateDriverRequest) (*driver.Driver, error)
	DeleteDriver(ctx context.Context, token, id string) error

	ListUsers(ctx context.Context, token string) (*user.ListResponse, error)
	UpdateUserRole(ctx context.Context, token, phone string, role user.Role) (*user.User, error)
	DeleteUser(ctx context.Context, token, phone string) error
}

// Notifier pushes fleet changes to connected dashboards.
type Notifier interface {
	BroadcastOverview(overview *dashboard.Overview)
	BroadcastChange(change wstypes.ChangeData)
	ForceLogout(phone, reason string)
}

// AccountCleaner removes what the server keeps for a deleted account.
type AccountCleaner interface {
	InvalidateAllUserSessions(ctx context.Context, phone string) (int, error)
}

// RecordsPurger drops an account's local records.
type RecordsPurger interface {
	Purge(ctx context.Context, namespace string) error
}

type DashboardService struct {
	api      FleetAPI
	notifier Notifier
	sessions AccountCleaner
	records  RecordsPurger
	logger   *zap.Logger
	now      func() time.Time

	// in-flight overview pushes
	pushes sync.WaitGroup
}

func NewDashboardService(api FleetAPI, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// WithNotifier enables websocket pushes after fleet mutations.
func (s *DashboardService) WithNotifier(n Notifier) *DashboardService {
	s.notifier = n
	return s
}

// WithAccountCleanup wires what happens to sessions and records when a user is deleted.
func (s *DashboardService) WithAccountCleanup(sessions AccountCleaner, records RecordsPurger) *DashboardService {
	s.sessions = sessions
	s.records = records
	return s
}

// Load fetches vehicles and drivers concurrently. Both must succeed; the first
// failure is returned and no snapshot is produced.
func (s *DashboardService) Load(ctx context.Context, token string) (*dashboard.Snapshot, error) {
	var (
		vehicles []vehicle.Vehicle
		drivers  []driver.Driver
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.api.ListVehicles(gctx, token)
		if err != nil {
			return fmt.Errorf("failed to load vehicles: %w", err)
		}
		vehicles = v
		return nil
	})
	g.Go(func() error {
		d, err := s.api.ListDrivers(gctx, token)
		if err != nil {
			return fmt.Errorf("failed to load drivers: %w", err)
		}
		drivers = d
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard load failed", zap.Error(err))
		return nil, err
	}

	return &dashboard.Snapshot{
		Vehicles: vehicles,
		Drivers:  drivers,
		LoadedAt: s.now().UTC(),
	}, nil
}

// Overview loads a snapshot and summarises it.
func (s *DashboardService) Overview(ctx context.Context, token string) (*dashboard.Overview, error) {
	snap, err := s.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	return BuildOverview(snap), nil
}

// BuildOverview computes the summary cards and stat bars of a snapshot.
func BuildOverview(snap *dashboard.Snapshot) *dashboard.Overview {
	cards := dashboard.Cards{
		TotalVehicles:       len(snap.Vehicles),
		ActiveVehicles:      derive.Count(snap.Vehicles, string(vehicle.StatusActive)),
		MaintenanceVehicles: derive.Count(snap.Vehicles, string(vehicle.StatusMaintenance)),
		InactiveVehicles:    derive.Count(snap.Vehicles, string(vehicle.StatusInactive)),
		TotalDrivers:        len(snap.Drivers),
		AvailableDrivers:    derive.Count(snap.Drivers, string(driver.StatusAvailable)),
		AssignedDrivers:     derive.Count(snap.Drivers, string(driver.StatusAssigned)),
		InactiveDrivers:     derive.Count(snap.Drivers, string(driver.StatusInactive)),
	}
	cards.UtilizationPct = derive.Percent(cards.ActiveVehicles, cards.TotalVehicles)

	return &dashboard.Overview{
		Cards:           cards,
		VehicleSegments: derive.Aggregate(snap.Vehicles, vehicle.Buckets()),
		DriverSegments:  derive.Aggregate(snap.Drivers, driver.Buckets()),
		LoadedAt:        snap.LoadedAt,
	}
}

func (s *DashboardService) Vehicles(ctx context.Context, token string, q derive.Query, selection []string) (*dashboard.View[vehicle.Vehicle], error) {
	items, err := s.api.ListVehicles(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	return VehicleView(items, q, selection), nil
}

func (s *DashboardService) Drivers(ctx context.Context, token string, q derive.Query, selection []string) (*dashboard.View[driver.Driver], error) {
	items, err := s.api.ListDrivers(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load drivers: %w", err)
	}
	return DriverView(items, q, selection), nil
}

func (s *DashboardService) Users(ctx context.Context, token string, q derive.Query, selection []string) (*dashboard.UsersView, error) {
	list, err := s.api.ListUsers(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return UserView(list, q, selection), nil
}

// Wait blocks until pending overview pushes have finished.
func (s *DashboardService) Wait() {
	s.pushes.Wait()
}

// publish announces a change and pushes a fresh overview in the background.
func (s *DashboardService) publish(ctx context.Context, token string, change wstypes.ChangeData) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastChange(change)

	s.pushes.Add(1)
	go func() {
		defer s.pushes.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()

		overview, err := s.Overview(ctx, token)
		if err != nil {
			s.logger.Warn("failed to refresh overview after change",
				zap.String("dataset", change.Dataset),
				zap.Error(err),
			)
			return
		}
		s.notifier.BroadcastOverview(overview)
	}()
}
