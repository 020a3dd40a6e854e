package upstream

import (
	"context"
	"net/http"

	"fleetdash/internal/domain/auth"
	"fleetdash/internal/domain/user"
)

type registerPayload struct {
	Name          string `json:"name"`
	Username      string `json:"username"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LicenseNumber string `json:"license_number"`
	LicenseExpiry string `json:"license_expiry,omitempty"`
	Password      string `json:"password"`
}

func (c *Client) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	var out auth.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account. The password confirmation never leaves this process.
func (c *Client) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.RegisterResponse, error) {
	payload := registerPayload{
		Name:          req.Name,
		Username:      req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: req.LicenseExpiry,
		Password:      req.Password,
	}

	var out auth.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*user.User, error) {
	var out auth.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, &APIError{Status: http.StatusNotFound, Message: "User not found"}
	}
	return out.User, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out auth.RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", refreshToken, nil, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}
