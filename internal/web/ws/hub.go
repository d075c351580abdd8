package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/services/session"
)

// Hub holds the WebSocket clients of one session
type Hub struct {
	sessionID model.SessionID
	clients   map[model.PlayerID]*Client
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewHub creates an empty Hub for a session
func NewHub(sessionID model.SessionID, logger *slog.Logger) *Hub {
	return &Hub{
		sessionID: sessionID,
		clients:   make(map[model.PlayerID]*Client),
		logger:    logger.With(slog.String("session_id", string(sessionID))),
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client.playerID] = client
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client registered",
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", clientCount))
}

// unregister removes client and closes its send channel. Messages already
// queued are still written before the close frame.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.playerID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.playerID)
	close(client.send)
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client unregistered",
		slog.String("player_id", string(client.playerID)),
		slog.Duration("connection_duration", time.Since(client.connectedAt)),
		slog.Int("total_clients", clientCount))
}

func (h *Hub) broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for _, client := range h.clients {
		if !client.enqueue(message) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("ws broadcast partial failure",
			slog.Int("sent", len(h.clients)-dropped),
			slog.Int("dropped", dropped))
	}
}

func (h *Hub) send(playerID model.PlayerID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, ok := h.clients[playerID]; ok {
		client.enqueue(message)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages the hubs of all sessions and delivers session events
// to their WebSocket clients
type HubManager struct {
	hubs   map[model.SessionID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

var _ session.Broadcaster = (*HubManager)(nil)

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.SessionID]*Hub),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// Register adds client to its session's hub, creating the hub if needed
func (m *HubManager) Register(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[client.sessionID]
	if !ok {
		hub = NewHub(client.sessionID, m.logger)
		m.hubs[client.sessionID] = hub
	}
	hub.register(client)
}

// Unregister removes client from its hub, dropping the hub once empty
func (m *HubManager) Unregister(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[client.sessionID]
	if !ok {
		return
	}
	hub.unregister(client)
	if hub.ClientCount() == 0 {
		delete(m.hubs, client.sessionID)
		m.logger.Debug("ws hub removed", slog.String("session_id", string(client.sessionID)))
	}
}

// GetHub returns the hub for a session, or nil if it doesn't exist
func (m *HubManager) GetHub(sessionID model.SessionID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[sessionID]
}

// Broadcast delivers event to every client of the session
func (m *HubManager) Broadcast(sessionID model.SessionID, event model.Event) {
	hub := m.GetHub(sessionID)
	if hub == nil {
		return
	}
	message, ok := m.encode(event)
	if !ok {
		return
	}
	hub.broadcast(message)
}

// Send delivers event to one client of the session
func (m *HubManager) Send(sessionID model.SessionID, playerID model.PlayerID, event model.Event) {
	hub := m.GetHub(sessionID)
	if hub == nil {
		return
	}
	message, ok := m.encode(event)
	if !ok {
		return
	}
	hub.send(playerID, message)
}

// Closed is a no-op: a session is only removed once its last player has
// left, and a client registered for the same id belongs to its successor.
func (m *HubManager) Closed(model.SessionID) {}

func (m *HubManager) encode(event model.Event) ([]byte, bool) {
	message, err := EncodeEvent(event)
	if err != nil {
		m.logger.Error("ws failed to encode event",
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
		return nil, false
	}
	return message, true
}
