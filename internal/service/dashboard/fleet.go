// internal/service/dashboard/fleet.go
package dashboard

import (
	"context"

	"fleetdash/internal/domain/driver"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/domain/vehicle"
	wstypes "fleetdash/internal/domain/websocket"

	"go.uber.org/zap"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

func (s *DashboardService) CreateVehicle(ctx context.Context, token, by string, req *vehicle.CreateVehicleRequest) (*vehicle.Vehicle, error) {
	v, err := s.api.CreateVehicle(ctx, token, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("vehicle created", zap.String("vehicle_number", v.VehicleNumber), zap.String("by", by))
	s.publish(ctx, token, wstypes.ChangeData{Dataset: DatasetVehicles, Action: ActionCreated, Key: v.Key(), By: by})
	return v, nil
}

func (s *DashboardService) UpdateVehicle(ctx context.Context, token, by, id string, req *vehicle.UpdateVehicleRequest) (*vehicle.Vehicle, error) {
	v, err := s.api.UpdateVehicle(ctx, token, id, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("vehicle updated", zap.String("vehicle_number", v.VehicleNumber), zap.String("by", by))
	s.publish(ctx, token, wstypes.ChangeData{Dataset: DatasetVehicles, Action: ActionUpdated, Key: v.Key(), By: by})
	return v, nil
}

func (s *DashboardService) DeleteVehicle(ctx context.Context, token, by, id string) error {
	if err := s.api.DeleteVehicle(ctx, token, id); err != nil {
		return err
	}
	s.logger.Info("vehicle deleted", zap.String("vehicle_id", id), zap.String("by", by))
	s.publish(ctx, token, wstypes.ChangeData{Dataset: DatasetVehicles, Action: ActionDeleted, Key: id, By: by})
	return nil
}

func (s *DashboardService) CreateDriver(ctx context.Context, token, by string, req *driver.CreateDriverRequest) (*driver.Driver, error) {
	d, err := s.api.CreateDriver(ctx, token, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("driver created", zap.String("license_number", d.LicenseNumber), zap.String("by", by))
	s.publish(ctx, token, wstypes.ChangeData{Dataset: DatasetDrivers, Action: ActionCreated, Key: d.Key(), By: by})
	return d, nil
}

func (s *DashboardService) UpdateDriver(ctx context.Context, token, by, id string, req *driver.UpdateDriverRequest) (*driver.Driver, error) {
	d, err := s.api.UpdateDriver(ctx, token, id, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("driver updated", zap.String("license_number", d.LicenseNumber), zap.String("by", by))
	s.publish(ctx, token, wstypes.ChangeData{Dataset: DatasetDrivers, Action: ActionUpdated, Key: d.Key(), By: by})
	return d, nil
}

func (s *DashboardService) DeleteDriver(ctx context.Context, token, by, id string) error {
	if err := s.api.DeleteDriver(ctx, token, id); err != nil {
		return err
	}
	s.logger.Info("driver deleted", zap.String("driver_id", id), zap.String("by", by))
	s.publish(ctx, token, wstypes.ChangeData{Dataset: DatasetDrivers, Action: ActionDeleted, Key: id, By: by})
	return nil
}

// UpdateUserRole changes a role and logs the account out everywhere so the new
// role applies on its next login.
func (s *DashboardService) UpdateUserRole(ctx context.Context, token, by, phone string, role user.Role) (*user.User, error) {
	u, err := s.api.UpdateUserRole(ctx, token, phone, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user role updated",
		zap.String("phone", phone),
		zap.String("role", string(role)),
		zap.String("by", by),
	)
	s.endSessions(ctx, phone, "role_changed")
	if s.notifier != nil {
		s.notifier.BroadcastChange(wstypes.ChangeData{Dataset: DatasetUsers, Action: ActionUpdated, Key: phone, By: by})
	}
	return u, nil
}

// DeleteUser removes the account upstream, then its sessions and local records.
func (s *DashboardService) DeleteUser(ctx context.Context, token, by, phone string) error {
	if err := s.api.DeleteUser(ctx, token, phone); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.String("phone", phone), zap.String("by", by))

	s.endSessions(ctx, phone, "account_deleted")
	if s.records != nil {
		if err := s.records.Purge(ctx, phone); err != nil {
			s.logger.Warn("failed to purge records of deleted user", zap.String("phone", phone), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.BroadcastChange(wstypes.ChangeData{Dataset: DatasetUsers, Action: ActionDeleted, Key: phone, By: by})
	}
	return nil
}

func (s *DashboardService) endSessions(ctx context.Context, phone, reason string) {
	if s.sessions != nil {
		n, err := s.sessions.InvalidateAllUserSessions(ctx, phone)
		if err != nil {
			s.logger.Warn("failed to invalidate sessions", zap.String("phone", phone), zap.Error(err))
		} else {
			s.logger.Info("sessions invalidated", zap.String("phone", phone), zap.Int("count", n))
		}
	}
	if s.notifier != nil {
		s.notifier.ForceLogout(phone, reason)
	}
}
