// internal/websocket/handler/fleet.go
package handler

import (
	"context"
	"fmt"

	"fleetdash/internal/domain/dashboard"
	wstypes "fleetdash/internal/domain/websocket"
	ws "fleetdash/internal/websocket"

	"go.uber.org/zap"
)

// OverviewSource builds the dashboard overview with a user's token.
type OverviewSource interface {
	Overview(ctx context.Context, token string) (*dashboard.Overview, error)
}

// TokenSource resolves the fleet API token behind a connection.
type TokenSource interface {
	Token(ctx context.Context, client *ws.Client) (string, error)
}

// FleetHandler answers fleet:refresh with a fresh overview for that client only.
type FleetHandler struct {
	overviews OverviewSource
	tokens    TokenSource
	logger    *zap.Logger
}

func NewFleetHandler(overviews OverviewSource, tokens TokenSource, logger *zap.Logger) *FleetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FleetHandler{
		overviews: overviews,
		tokens:    tokens,
		logger:    logger,
	}
}

func (h *FleetHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{wstypes.EventTypeRefresh}
}

func (h *FleetHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeRefresh:
		return h.handleRefresh(ctx, client)
	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}
}

func (h *FleetHandler) handleRefresh(ctx context.Context, client *ws.Client) error {
	token, err := h.tokens.Token(ctx, client)
	if err != nil {
		client.SendError("session_expired", "Please login again", err.Error())
		return nil
	}

	overview, err := h.overviews.Overview(ctx, token)
	if err != nil {
		h.logger.Warn("overview refresh failed", zap.String("phone", client.Phone()), zap.Error(err))
		client.SendError("refresh_failed", "Failed to load dashboard", err.Error())
		return nil
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeOverview, overview))
	return nil
}
