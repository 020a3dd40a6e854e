package auth

import "fleetdash/internal/domain/user"

// State is what a session persists between requests.
type State struct {
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	User         *user.User `json:"user,omitempty"`
}

// HasToken reports whether an access token is stored.
func (s State) HasToken() bool { return s.AccessToken != "" }

// Result is returned by login and register instead of an error so callers can
// show Message directly.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

const (
	MsgLoginFailed          = "Login failed"
	MsgRegistrationFailed   = "Registration failed"
	MsgRegistrationOK       = "Registration successful! Please login."
	MsgPasswordMismatch     = "Passwords do not match"
	MsgAutoLoginFailed      = "Registration successful but auto-login failed. Please login manually."
	MsgTooManyLoginAttempts = "Too many login attempts, please try again in 15 minutes"
)
