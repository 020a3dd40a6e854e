package session

import (
	"context"
	"testing"
	"time"

	"fleetdash/internal/domain/auth"
	"fleetdash/internal/domain/user"
	xerrors "fleetdash/internal/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewManager(client, time.Hour, nil), mr
}

func signedIn(phone string) auth.State {
	return auth.State{AccessToken: "token-" + phone, User: &user.User{Phone: phone, Role: user.RoleAdmin}}
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m, mr := newTestManager(t)

	s, err := m.Create(ctx, "10.0.0.1", "curl")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.True(t, mr.Exists("session:"+s.ID))

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", got.IPAddress)
	assert.False(t, got.State.HasToken())

	t.Run("unknown id is expired", func(t *testing.T) {
		_, err := m.Get(ctx, "nope")
		assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
		_, err = m.Get(ctx, "")
		assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
	})

	t.Run("ttl elapses", func(t *testing.T) {
		mr.FastForward(2 * time.Hour)
		_, err := m.Get(ctx, s.ID)
		assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
	})

	t.Run("saving an already expired session fails", func(t *testing.T) {
		old := &SessionData{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}
		assert.ErrorIs(t, m.Save(ctx, old), xerrors.ErrSessionExpired)
	})
}

func TestBoundStore(t *testing.T) {
	ctx := context.Background()
	m, mr := newTestManager(t)

	s, err := m.Create(ctx, "", "")
	require.NoError(t, err)
	store := m.Store(s.ID)

	require.NoError(t, store.Save(ctx, signedIn("0711")))

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-0711", state.AccessToken)

	members, err := mr.SMembers("user_sessions:0711")
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID}, members)

	_, err = m.ToggleSelection(ctx, s.ID, "vehicles", "KBX")
	require.NoError(t, err)

	require.NoError(t, store.Clear(ctx))

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err, "clearing keeps the session itself")
	assert.False(t, got.State.HasToken())
	assert.Empty(t, got.Selection("vehicles"))
	assert.False(t, mr.Exists("user_sessions:0711"))

	t.Run("clearing a missing session is a no-op", func(t *testing.T) {
		assert.NoError(t, m.Store("gone").Clear(ctx))
	})
}

func TestInvalidateAllUserSessions(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	var ids []string
	for i := 0; i < 3; i++ {
		s, err := m.Create(ctx, "", "")
		require.NoError(t, err)
		require.NoError(t, m.Store(s.ID).Save(ctx, signedIn("0722")))
		ids = append(ids, s.ID)
	}
	other, err := m.Create(ctx, "", "")
	require.NoError(t, err)
	require.NoError(t, m.Store(other.ID).Save(ctx, signedIn("0733")))

	n, err := m.InvalidateAllUserSessions(ctx, "0722")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, id := range ids {
		_, err := m.Get(ctx, id)
		assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
	}
	_, err = m.Get(ctx, other.ID)
	assert.NoError(t, err)

	n, err = m.InvalidateAllUserSessions(ctx, "0722")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSelections(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	s, err := m.Create(ctx, "", "")
	require.NoError(t, err)

	sel, err := m.ToggleSelection(ctx, s.ID, "vehicles", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, sel)

	sel, err = m.ToggleSelection(ctx, s.ID, "vehicles", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, sel)

	sel, err = m.ToggleSelection(ctx, s.ID, "drivers", "L1")
	require.NoError(t, err)
	assert.Equal(t, []string{"L1"}, sel)

	sel, err = m.ToggleSelection(ctx, s.ID, "vehicles", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, sel)

	require.NoError(t, m.ClearSelection(ctx, s.ID, "vehicles"))
	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Selection("vehicles"))
	assert.Equal(t, []string{"L1"}, got.Selection("drivers"))

	_, err = m.ToggleSelection(ctx, "missing", "vehicles", "A")
	assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
}
