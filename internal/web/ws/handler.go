package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/typerace/internal/dependencies/clock"
	"github.com/mcoot/typerace/internal/dependencies/random"
	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/services/session"
)

const (
	// PlayerIDPrefix is prepended to every generated connection id
	PlayerIDPrefix = "p_"

	playerIDLength   = 12
	playerIDAlphabet = random.LowerAlphaNumeric
)

// Config holds WebSocket transport settings
type Config struct {
	// AllowedOrigins lists browser origins allowed to connect ("*" allows all)
	AllowedOrigins []string
	// MaxMessageSize is the largest inbound message accepted, in bytes
	MaxMessageSize int64
	// RateLimitBurst messages are allowed per RateLimitInterval
	RateLimitBurst    int
	RateLimitInterval time.Duration
}

// DefaultConfig returns the default transport settings
func DefaultConfig() Config {
	return Config{
		AllowedOrigins:    []string{"*"},
		MaxMessageSize:    4096,
		RateLimitBurst:    20,
		RateLimitInterval: time.Second,
	}
}

// Handler upgrades HTTP requests to player connections
type Handler struct {
	registry *session.Registry
	hubs     *HubManager
	clock    clock.Clock
	random   random.Random
	cfg      Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new Handler
func NewHandler(
	registry *session.Registry,
	hubs *HubManager,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Handler {
	logger = logger.With(slog.String("component", "ws-handler"))
	origins := newOriginPolicy(cfg.AllowedOrigins, logger)

	return &Handler{
		registry: registry,
		hubs:     hubs,
		clock:    clock,
		random:   random,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.check,
		},
		logger: logger,
	}
}

// ServeWS joins a new player named name to the session and runs the
// connection until the player leaves or disconnects
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, sessionID model.SessionID, name string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}

	playerID := model.PlayerID(PlayerIDPrefix + h.random.String(playerIDLength, playerIDAlphabet))
	client := newClient(conn, sessionID, playerID, r.RemoteAddr, h.cfg, h.clock, h.logger)

	// Register before joining so the join events reach this client
	h.hubs.Register(client)
	go client.writePump()

	// Round starts must outlive the request that triggered them
	ctx := context.WithoutCancel(r.Context())

	sess, err := h.registry.Join(ctx, sessionID, model.Player{ID: playerID, Name: name})
	if err != nil {
		client.logger.Debug("join rejected", slog.Any("error", err))
		h.hubs.Unregister(client)
		return
	}

	left := false
	client.readPump(func(event model.Event) bool {
		switch event.Type {
		case model.EventLeave:
			left = true
			return false
		case model.EventStartGame:
			// Starting waits on the paragraph provider; keep reading meanwhile
			go h.handle(ctx, sess, client, event)
		default:
			h.handle(ctx, sess, client, event)
		}
		return true
	})

	h.hubs.Unregister(client)
	if left {
		sess.Leave(playerID)
	} else {
		sess.Disconnect(playerID)
	}
}

func (h *Handler) handle(ctx context.Context, sess *session.Session, client *Client, event model.Event) {
	if err := sess.Handle(ctx, client.playerID, event); err != nil {
		client.logger.Debug("event rejected",
			slog.String("event", string(event.Type)),
			slog.Any("error", err))
	}
}
