// internal/domain/auth/dto.go
package auth

import "fleetdash/internal/domain/user"

// LoginRequest is the login form. The fleet API identifies accounts by phone.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is the sign-up form. Registering also creates the caller's driver record.
type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	LicenseNumber   string `json:"license_number" binding:"required"`
	LicenseExpiry   string `json:"license_expiry,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// LoginResponse is the fleet API's answer to POST /auth/login.
type LoginResponse struct {
	Message      string     `json:"message"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         *user.User `json:"user"`
}

type RegisterResponse struct {
	Message string     `json:"message"`
	User    *user.User `json:"user"`
}

type MeResponse struct {
	User *user.User `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}
