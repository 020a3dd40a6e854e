package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetdash/internal/domain/auth"
	"fleetdash/internal/domain/user"
	"fleetdash/internal/pkg/jwt"
	"fleetdash/internal/upstream"
	"fleetdash/internal/upstream/upstreamtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	state   auth.State
	saves   int
	clears  int
	loadErr error
}

func (m *memStore) Load(context.Context) (auth.State, error) { return m.state, m.loadErr }
func (m *memStore) Save(_ context.Context, s auth.State) error {
	m.saves++
	m.state = s
	return nil
}
func (m *memStore) Clear(context.Context) error {
	m.clears++
	m.state = auth.State{}
	return nil
}

type countingLimiter struct {
	allow  bool
	resets int
}

func (l *countingLimiter) CheckLoginAttempt(context.Context, string, string) (bool, int64, error) {
	return l.allow, 0, nil
}
func (l *countingLimiter) ResetLoginAttempts(context.Context, string, string) error {
	l.resets++
	return nil
}

func setup(t *testing.T) (*upstreamtest.Server, *AuthService) {
	t.Helper()
	fake := upstreamtest.New(t)
	fake.AddUser("0711", "Amina", user.RoleAdmin)
	api := upstream.NewClient(fake.URL(), 5*time.Second, nil)
	return fake, NewAuthService(api, jwt.NewInspector(""), nil, nil)
}

func TestSessionInit(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		_, svc := setup(t)
		store := &memStore{}
		s := svc.Open(store, "")
		require.NoError(t, s.Init(ctx))
		assert.False(t, s.IsAuthenticated())
		assert.Nil(t, s.User())
	})

	t.Run("valid token refreshes the user", func(t *testing.T) {
		fake, svc := setup(t)
		stale := &user.User{Phone: "0711", Role: user.RoleUser}
		store := &memStore{state: auth.State{AccessToken: fake.Token("0711", time.Hour), User: stale}}

		s := svc.Open(store, "")
		require.NoError(t, s.Init(ctx))
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, user.RoleAdmin, s.User().Role)
		assert.Equal(t, user.RoleAdmin, store.state.User.Role)
		assert.Equal(t, 1, fake.Calls("GET /auth/me"))
	})

	t.Run("expired token is cleared without a network call", func(t *testing.T) {
		fake, svc := setup(t)
		store := &memStore{state: auth.State{
			AccessToken: fake.Token("0711", -time.Minute),
			User:        &user.User{Phone: "0711"},
		}}

		s := svc.Open(store, "")
		require.NoError(t, s.Init(ctx))
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, 1, store.clears)
		assert.False(t, store.state.HasToken())
		assert.Zero(t, fake.Calls("GET /auth/me"))
	})

	t.Run("rejected token logs out", func(t *testing.T) {
		fake, svc := setup(t)
		fake.FailNext("GET /auth/me", 1)
		store := &memStore{state: auth.State{AccessToken: fake.Token("0711", time.Hour)}}

		s := svc.Open(store, "")
		require.NoError(t, s.Init(ctx))
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, 1, store.clears)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		_, svc := setup(t)
		s := svc.Open(&memStore{loadErr: errors.New("disk gone")}, "")
		assert.Error(t, s.Init(ctx))
	})
}

func TestSessionResume(t *testing.T) {
	ctx := context.Background()
	fake, svc := setup(t)

	store := &memStore{state: auth.State{AccessToken: fake.Token("0711", time.Hour), User: &user.User{Phone: "0711"}}}
	s := svc.Open(store, "")
	require.NoError(t, s.Resume(ctx))
	assert.True(t, s.IsAuthenticated())
	assert.Zero(t, fake.Calls("GET /auth/me"))

	store.state.AccessToken = fake.Token("0711", -time.Second)
	require.NoError(t, s.Resume(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 1, store.clears)
}

func TestSessionLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists tokens", func(t *testing.T) {
		_, svc := setup(t)
		store := &memStore{}
		s := svc.Open(store, "")

		res := s.Login(ctx, &auth.LoginRequest{Phone: "0711", Password: upstreamtest.Password})
		assert.True(t, res.Success)
		assert.True(t, s.IsAuthenticated())
		assert.NotEmpty(t, s.Token())
		assert.Equal(t, s.Token(), store.state.AccessToken)
		assert.NotEmpty(t, store.state.RefreshToken)
	})

	t.Run("failure shows the api message", func(t *testing.T) {
		_, svc := setup(t)
		s := svc.Open(&memStore{}, "")

		res := s.Login(ctx, &auth.LoginRequest{Phone: "0711", Password: "nope"})
		assert.False(t, res.Success)
		assert.Equal(t, "Invalid credentials", res.Message)
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("limiter blocks and resets", func(t *testing.T) {
		fake, _ := setup(t)
		limiter := &countingLimiter{allow: false}
		svc := NewAuthService(upstream.NewClient(fake.URL(), time.Second, nil), jwt.NewInspector(""), limiter, nil)
		s := svc.Open(&memStore{}, "10.0.0.1")

		res := s.Login(ctx, &auth.LoginRequest{Phone: "0711", Password: upstreamtest.Password})
		assert.False(t, res.Success)
		assert.Equal(t, auth.MsgTooManyLoginAttempts, res.Message)
		assert.Zero(t, fake.Calls("POST /auth/login"))

		limiter.allow = true
		res = s.Login(ctx, &auth.LoginRequest{Phone: "0711", Password: upstreamtest.Password})
		assert.True(t, res.Success)
		assert.Equal(t, 1, limiter.resets)
	})

	t.Run("logout clears", func(t *testing.T) {
		_, svc := setup(t)
		store := &memStore{}
		s := svc.Open(store, "")
		require.True(t, s.Login(ctx, &auth.LoginRequest{Phone: "0711", Password: upstreamtest.Password}).Success)

		require.NoError(t, s.Logout(ctx))
		assert.False(t, s.IsAuthenticated())
		assert.Empty(t, s.Token())
		assert.False(t, store.state.HasToken())
	})
}

func TestSessionRegister(t *testing.T) {
	ctx := context.Background()
	form := func(phone string) *auth.RegisterRequest {
		return &auth.RegisterRequest{
			Name: "Baraka", Phone: phone, Email: "b@x.io", LicenseNumber: "DL-9",
			Password: upstreamtest.Password, ConfirmPassword: upstreamtest.Password,
		}
	}

	t.Run("password mismatch never reaches the api", func(t *testing.T) {
		fake, svc := setup(t)
		req := form("0722")
		req.ConfirmPassword = "different"

		res := svc.Open(&memStore{}, "").Register(ctx, req)
		assert.False(t, res.Success)
		assert.Equal(t, auth.MsgPasswordMismatch, res.Message)
		assert.Zero(t, fake.Calls("POST /auth/register"))
	})

	t.Run("register then login", func(t *testing.T) {
		_, svc := setup(t)
		s := svc.Open(&memStore{}, "")

		res := s.RegisterAndLogin(ctx, form("0722"))
		assert.True(t, res.Success)
		assert.Equal(t, auth.MsgRegistrationOK, res.Message)
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, "0722", s.User().Phone)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		_, svc := setup(t)
		res := svc.Open(&memStore{}, "").Register(ctx, form("0711"))
		assert.False(t, res.Success)
		assert.Equal(t, "Phone already registered", res.Message)
	})

	t.Run("auto-login failure", func(t *testing.T) {
		fake, svc := setup(t)
		fake.FailNext("POST /auth/login", 1)
		s := svc.Open(&memStore{}, "")

		res := s.RegisterAndLogin(ctx, form("0733"))
		assert.False(t, res.Success)
		assert.Equal(t, auth.MsgAutoLoginFailed, res.Message)
		assert.False(t, s.IsAuthenticated())
	})
}
