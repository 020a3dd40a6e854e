// internal/domain/user/entity.go
package user

import (
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/pkg/isotime"
	"fleetdash/internal/pkg/palette"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDriver  Role = "driver"
)

// Roles lists every assignable role.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleManager, RoleDriver}
}

func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// User is an account of the fleet API.
type User struct {
	ID          int64        `json:"id,omitempty"`
	Username    string       `json:"username"`
	Phone       string       `json:"phone"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	DisplayName *string      `json:"display_name,omitempty"`
	CreatedAt   isotime.Time `json:"created_at"`
}

func (u User) Key() string { return u.Phone }

// Name is what the dashboard shows for the user.
func (u User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

// CanManageFleet reports whether the user may create and edit vehicles and drivers.
func (u User) CanManageFleet() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

func (u User) SearchFields() []string {
	return []string{u.Username, u.Phone, u.Email, string(u.Role)}
}

func (u User) StatusValue() string { return string(u.Role) }

func (u User) SortField(key string) string {
	switch key {
	case "username", "name":
		return u.Username
	case "phone":
		return u.Phone
	case "email":
		return u.Email
	case "role":
		return string(u.Role)
	case "created_at":
		if !u.CreatedAt.IsZero() {
			return u.CreatedAt.Format(time.RFC3339)
		}
	}
	return ""
}

func Buckets() []derive.Bucket {
	roles := Roles()
	buckets := make([]derive.Bucket, len(roles))
	for i, r := range roles {
		buckets[i] = derive.Bucket{Label: string(r), Match: string(r), Color: palette.SegmentColor(i)}
	}
	return buckets
}

func ExportHeader() []string {
	return []string{"Username", "Phone", "Email", "Role", "Created At"}
}

func (u User) ExportRow() []string {
	return []string{u.Username, u.Phone, u.Email, string(u.Role), u.SortField("created_at")}
}
