// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"

	"fleetdash/internal/domain/auth"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/pkg/jwt"
	"fleetdash/internal/upstream"

	"go.uber.org/zap"
)

// Store persists a session's tokens and user between runs or requests.
type Store interface {
	Load(ctx context.Context) (auth.State, error)
	Save(ctx context.Context, state auth.State) error
	Clear(ctx context.Context) error
}

// API is the part of the fleet API the session talks to.
type API interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error)
	Register(ctx context.Context, req *auth.RegisterRequest) (*auth.RegisterResponse, error)
	Me(ctx context.Context, token string) (*user.User, error)
}

// Limiter throttles login attempts per client and phone.
type Limiter interface {
	CheckLoginAttempt(ctx context.Context, ip, phone string) (bool, int64, error)
	ResetLoginAttempts(ctx context.Context, ip, phone string) error
}

// AuthService opens sessions over a shared fleet API client.
type AuthService struct {
	api       API
	inspector *jwt.Inspector
	limiter   Limiter
	logger    *zap.Logger
}

func NewAuthService(api API, inspector *jwt.Inspector, limiter Limiter, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		api:       api,
		inspector: inspector,
		limiter:   limiter,
		logger:    logger,
	}
}

// Open returns a session backed by store. clientIP keys the login limiter and may be empty.
func (s *AuthService) Open(store Store, clientIP string) *Session {
	return &Session{
		svc:      s,
		store:    store,
		clientIP: clientIP,
	}
}

// Session is the signed-in identity of one client: a browser session in the
// dashboard server or the local user of fleetctl.
type Session struct {
	svc      *AuthService
	store    Store
	clientIP string
	state    auth.State
}

// Init restores a persisted login. An unexpired access token is exchanged for the
// current user; an expired or unreadable one is cleared. Only store failures are
// returned.
func (s *Session) Init(ctx context.Context) error {
	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.state = state

	if !state.HasToken() {
		s.state.User = nil
		return nil
	}

	if !s.svc.inspector.Unexpired(state.AccessToken) {
		s.svc.logger.Info("stored access token expired, clearing session")
		return s.clear(ctx)
	}

	u, err := s.svc.api.Me(ctx, state.AccessToken)
	if err != nil {
		s.svc.logger.Warn("failed to fetch current user", zap.Error(err))
		return s.Logout(ctx)
	}

	s.state.User = u
	if err := s.store.Save(ctx, s.state); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Resume loads the persisted login without a network call, clearing it when the
// access token has expired.
func (s *Session) Resume(ctx context.Context) error {
	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.state = state

	if state.HasToken() && !s.svc.inspector.Unexpired(state.AccessToken) {
		return s.clear(ctx)
	}
	return nil
}

// Login signs in with phone and password. Failures are reported in the result.
func (s *Session) Login(ctx context.Context, req *auth.LoginRequest) auth.Result {
	if s.svc.limiter != nil {
		allowed, _, err := s.svc.limiter.CheckLoginAttempt(ctx, s.clientIP, req.Phone)
		if err != nil {
			s.svc.logger.Error("login rate limiter failed", zap.Error(err))
		} else if !allowed {
			return auth.Result{Success: false, Message: auth.MsgTooManyLoginAttempts}
		}
	}

	resp, err := s.svc.api.Login(ctx, req)
	if err != nil {
		s.svc.logger.Info("login failed", zap.String("phone", req.Phone), zap.Error(err))
		return auth.Result{Success: false, Message: upstream.MessageOf(err, auth.MsgLoginFailed)}
	}

	s.state = auth.State{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}
	if err := s.store.Save(ctx, s.state); err != nil {
		s.svc.logger.Error("failed to persist login", zap.Error(err))
		s.state = auth.State{}
		return auth.Result{Success: false, Message: auth.MsgLoginFailed}
	}

	if s.svc.limiter != nil {
		if err := s.svc.limiter.ResetLoginAttempts(ctx, s.clientIP, req.Phone); err != nil {
			s.svc.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}

	s.svc.logger.Info("user logged in", zap.String("phone", req.Phone))
	return auth.Result{Success: true}
}

// Register creates an account. The password confirmation is checked locally first.
func (s *Session) Register(ctx context.Context, req *auth.RegisterRequest) auth.Result {
	if req.Password != req.ConfirmPassword {
		return auth.Result{Success: false, Message: auth.MsgPasswordMismatch}
	}

	if _, err := s.svc.api.Register(ctx, req); err != nil {
		s.svc.logger.Info("registration failed", zap.String("phone", req.Phone), zap.Error(err))
		return auth.Result{Success: false, Message: upstream.MessageOf(err, auth.MsgRegistrationFailed)}
	}
	return auth.Result{Success: true, Message: auth.MsgRegistrationOK}
}

// RegisterAndLogin registers and then signs in with the same credentials.
func (s *Session) RegisterAndLogin(ctx context.Context, req *auth.RegisterRequest) auth.Result {
	result := s.Register(ctx, req)
	if !result.Success {
		return result
	}

	login := s.Login(ctx, &auth.LoginRequest{Phone: req.Phone, Password: req.Password})
	if !login.Success {
		return auth.Result{Success: false, Message: auth.MsgAutoLoginFailed}
	}
	return auth.Result{Success: true, Message: result.Message}
}

// Logout forgets the tokens and the user.
func (s *Session) Logout(ctx context.Context) error {
	if s.state.User != nil {
		s.svc.logger.Info("user logged out", zap.String("phone", s.state.User.Phone))
	}
	return s.clear(ctx)
}

func (s *Session) User() *user.User {
	return s.state.User
}

// Token returns the access token to send to the fleet API.
func (s *Session) Token() string {
	return s.state.AccessToken
}

func (s *Session) IsAuthenticated() bool {
	return s.state.User != nil && s.state.HasToken()
}

func (s *Session) clear(ctx context.Context) error {
	s.state = auth.State{}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
