// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	"fleetdash/internal/domain/dashboard"
	wstypes "fleetdash/internal/domain/websocket"
	"fleetdash/internal/pkg/jwt"
	"fleetdash/internal/pkg/session"

	"go.uber.org/zap"
)

type Hub struct {
	// Registered clients by account phone
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	Register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Handler registry for modular message handling
	handlerRegistry *HandlerRegistry

	// Auth dependencies
	inspector      *jwt.Inspector
	sessionManager *session.Manager

	logger *zap.Logger
}

type BroadcastMessage struct {
	Phones  []string
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

func NewHub(inspector *jwt.Inspector, sessionManager *session.Manager, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:         make(map[string]map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		handlerRegistry: NewHandlerRegistry(),
		inspector:       inspector,
		sessionManager:  sessionManager,
		logger:          logger,
	}
}

// AuthenticateClient resolves a dashboard session into a signed-in client identity.
func (h *Hub) AuthenticateClient(ctx context.Context, sessionID string) (*ClientAuth, error) {
	if sessionID == "" {
		return nil, ErrUnauthorized
	}

	data, err := h.sessionManager.Get(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionExpired
	}
	if data.State.User == nil || !data.State.HasToken() {
		return nil, ErrUnauthorized
	}
	if !h.inspector.Unexpired(data.State.AccessToken) {
		return nil, ErrInvalidToken
	}

	return &ClientAuth{
		SessionID: data.ID,
		Phone:     data.State.User.Phone,
		Name:      data.State.User.Name(),
		Role:      string(data.State.User.Role),
	}, nil
}

// Token returns the current fleet API token of a client's session.
func (h *Hub) Token(ctx context.Context, client *Client) (string, error) {
	data, err := h.sessionManager.Get(ctx, client.sessionID)
	if err != nil {
		return "", err
	}
	if !data.State.HasToken() {
		return "", ErrUnauthorized
	}
	return data.State.AccessToken, nil
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage processes a message from a client using registered handlers
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return nil // Will be handled by client's default handler
	}

	return handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.phone] == nil {
		h.clients[client.phone] = make(map[*Client]bool)
	}
	h.clients[client.phone][client] = true

	// Every dashboard listens to the fleet channel from the start.
	client.Subscribe(wstypes.ChannelFleet)
	client.Subscribe(wstypes.ChannelSystem)

	h.logger.Info("websocket client connected",
		zap.String("phone", client.phone),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"phone":    client.phone,
		"name":     client.name,
		"role":     client.role,
		"channels": []wstypes.ChannelType{wstypes.ChannelFleet, wstypes.ChannelSystem},
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.phone]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.phone)
			}

			h.logger.Info("websocket client disconnected",
				zap.String("phone", client.phone),
				zap.String("session_id", client.sessionID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.Phones == nil {
		for _, clients := range h.clients {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
		return
	}

	for _, phone := range msg.Phones {
		if clients, ok := h.clients[phone]; ok {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
	}
}

func (h *Hub) GetConnectedClients(phone string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.clients[phone]; ok {
		return len(clients)
	}
	return 0
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// Public methods for broadcasting

// BroadcastOverview pushes a refreshed overview to every fleet subscriber.
func (h *Hub) BroadcastOverview(overview *dashboard.Overview) {
	h.broadcast <- &BroadcastMessage{
		Channel: wstypes.ChannelFleet,
		Message: wstypes.NewMessage(wstypes.EventTypeOverview, overview),
	}
}

// BroadcastChange tells every fleet subscriber that a collection changed.
func (h *Hub) BroadcastChange(change wstypes.ChangeData) {
	h.broadcast <- &BroadcastMessage{
		Channel: wstypes.ChannelFleet,
		Message: wstypes.NewMessage(wstypes.EventTypeChanged, change),
	}
}

func (h *Hub) ForceLogout(phone, reason string) {
	msg := wstypes.NewMessage(wstypes.EventTypeForceLogout, wstypes.SessionEventData{
		Reason:  reason,
		Message: "You have been logged out",
	})
	h.broadcast <- &BroadcastMessage{
		Phones:  []string{phone},
		Channel: wstypes.ChannelSystem,
		Message: msg,
	}
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(phone string) bool {
	return h.GetConnectedClients(phone) > 0
}

// DisconnectUser forcefully disconnects all sessions for a user
func (h *Hub) DisconnectUser(phone string, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[phone]; ok {
		disconnectMsg := wstypes.NewMessage(wstypes.EventTypeDisconnected, map[string]interface{}{
			"reason": reason,
		})

		for client := range clients {
			client.SendMessage(disconnectMsg)
			client.Close()
		}

		delete(h.clients, phone)
		h.logger.Info("disconnected all clients", zap.String("phone", phone), zap.String("reason", reason))
	}
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}
