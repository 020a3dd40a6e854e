// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fleetdash/internal/derive"
	"fleetdash/internal/domain/auth"
	xerrors "fleetdash/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Manager struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewManager(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Create starts an anonymous session.
func (m *Manager) Create(ctx context.Context, ipAddress, userAgent string) (*SessionData, error) {
	now := time.Now()
	session := &SessionData{
		ID:             ulid.Make().String(),
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(m.ttl),
	}

	if err := m.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads a session. Unknown or expired ids yield ErrSessionExpired.
func (m *Manager) Get(ctx context.Context, id string) (*SessionData, error) {
	if id == "" {
		return nil, xerrors.ErrSessionExpired
	}

	data, err := m.client.Get(ctx, m.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Save stores the session until its expiry and keeps the per-user index current.
func (m *Manager) Save(ctx context.Context, session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return xerrors.ErrSessionExpired
	}

	pipe := m.client.TxPipeline()
	pipe.Set(ctx, m.sessionKey(session.ID), data, ttl)
	if phone := session.Phone(); phone != "" {
		pipe.SAdd(ctx, m.userKey(phone), session.ID)
		pipe.Expire(ctx, m.userKey(phone), m.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

// Touch slides the session expiry forward.
func (m *Manager) Touch(ctx context.Context, session *SessionData) error {
	now := time.Now()
	session.LastActivityAt = now
	session.ExpiresAt = now.Add(m.ttl)
	return m.Save(ctx, session)
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	session, err := m.Get(ctx, id)
	if err != nil && !errors.Is(err, xerrors.ErrSessionExpired) {
		return err
	}

	pipe := m.client.TxPipeline()
	pipe.Del(ctx, m.sessionKey(id))
	if session != nil && session.Phone() != "" {
		pipe.SRem(ctx, m.userKey(session.Phone()), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// InvalidateAllUserSessions deletes every session signed in as phone and returns
// how many were removed.
func (m *Manager) InvalidateAllUserSessions(ctx context.Context, phone string) (int, error) {
	ids, err := m.client.SMembers(ctx, m.userKey(phone)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list user sessions: %w", err)
	}

	removed := 0
	for _, id := range ids {
		n, err := m.client.Del(ctx, m.sessionKey(id)).Result()
		if err != nil {
			m.logger.Warn("failed to delete session", zap.String("session_id", id), zap.Error(err))
			continue
		}
		removed += int(n)
	}

	if err := m.client.Del(ctx, m.userKey(phone)).Err(); err != nil {
		return removed, fmt.Errorf("failed to clear user session index: %w", err)
	}
	return removed, nil
}

// Store binds the manager to one session id so the auth service can persist
// tokens through it.
func (m *Manager) Store(id string) *BoundStore {
	return &BoundStore{manager: m, id: id}
}

// BoundStore persists auth state inside one session.
type BoundStore struct {
	manager *Manager
	id      string
}

func (b *BoundStore) Load(ctx context.Context) (auth.State, error) {
	session, err := b.manager.Get(ctx, b.id)
	if err != nil {
		return auth.State{}, err
	}
	return session.State, nil
}

func (b *BoundStore) Save(ctx context.Context, state auth.State) error {
	session, err := b.manager.Get(ctx, b.id)
	if err != nil {
		return err
	}
	session.State = state
	return b.manager.Save(ctx, session)
}

// Clear forgets the tokens, the user and any row selections but keeps the session.
func (b *BoundStore) Clear(ctx context.Context) error {
	session, err := b.manager.Get(ctx, b.id)
	if errors.Is(err, xerrors.ErrSessionExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	if phone := session.Phone(); phone != "" {
		if err := b.manager.client.SRem(ctx, b.manager.userKey(phone), b.id).Err(); err != nil {
			b.manager.logger.Warn("failed to unindex session", zap.String("session_id", b.id), zap.Error(err))
		}
	}
	session.State = auth.State{}
	session.Selections = nil
	return b.manager.Save(ctx, session)
}

func (m *Manager) sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (m *Manager) userKey(phone string) string {
	return fmt.Sprintf("user_sessions:%s", phone)
}

// ToggleSelection flips one row key in a dataset's selection and returns the new selection.
func (m *Manager) ToggleSelection(ctx context.Context, id, dataset, key string) ([]string, error) {
	session, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	selection := derive.ToggleSelection(session.Selection(dataset), key)
	session.SetSelection(dataset, selection)
	if err := m.Save(ctx, session); err != nil {
		return nil, err
	}
	return session.Selection(dataset), nil
}

// ClearSelection empties a dataset's selection.
func (m *Manager) ClearSelection(ctx context.Context, id, dataset string) error {
	session, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	session.SetSelection(dataset, nil)
	return m.Save(ctx, session)
}
