// internal/domain/driver/entity.go
package driver

import (
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/pkg/isotime"
	"fleetdash/internal/pkg/palette"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusAssigned  Status = "assigned"
	StatusInactive  Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusInactive:
		return true
	}
	return false
}

// Driver is a licensed driver as served by the fleet API.
type Driver struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Email         *string      `json:"email,omitempty"`
	Phone         *string      `json:"phone,omitempty"`
	LicenseNumber string       `json:"license_number"`
	LicenseExpiry *string      `json:"license_expiry,omitempty"`
	Status        Status       `json:"status"`
	CreatedAt     isotime.Time `json:"created_at"`
	UpdatedAt     isotime.Time `json:"updated_at"`
}

// Key is the license number, unique among drivers.
func (d Driver) Key() string { return d.LicenseNumber }

func (d Driver) SearchFields() []string {
	return []string{d.Name, deref(d.Email), d.LicenseNumber, string(d.Status)}
}

func (d Driver) StatusValue() string { return string(d.Status) }

func (d Driver) SortField(key string) string {
	switch key {
	case "name":
		return d.Name
	case "email":
		return deref(d.Email)
	case "phone":
		return deref(d.Phone)
	case "license_number":
		return d.LicenseNumber
	case "license_expiry":
		return deref(d.LicenseExpiry)
	case "status":
		return string(d.Status)
	case "created_at":
		if !d.CreatedAt.IsZero() {
			return d.CreatedAt.Format(time.RFC3339)
		}
	}
	return ""
}

func Buckets() []derive.Bucket {
	return []derive.Bucket{
		{Label: "Available", Match: string(StatusAvailable), Color: palette.SegmentDark},
		{Label: "Assigned", Match: string(StatusAssigned), Color: palette.SegmentLight},
		{Label: "Inactive", Color: palette.SegmentMuted},
	}
}

func ExportHeader() []string {
	return []string{"Name", "Email", "Phone", "License Number", "License Expiry", "Status", "Created At"}
}

func (d Driver) ExportRow() []string {
	return []string{
		d.Name,
		deref(d.Email),
		deref(d.Phone),
		d.LicenseNumber,
		deref(d.LicenseExpiry),
		string(d.Status),
		d.SortField("created_at"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
