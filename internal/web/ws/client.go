package ws

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/typerace/internal/dependencies/clock"
	"github.com/mcoot/typerace/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one player's WebSocket connection
type Client struct {
	conn        *websocket.Conn
	send        chan []byte
	sessionID   model.SessionID
	playerID    model.PlayerID
	addr        string
	connectedAt time.Time
	rateLimiter *rateLimiter
	logger      *slog.Logger
}

func newClient(
	conn *websocket.Conn,
	sessionID model.SessionID,
	playerID model.PlayerID,
	addr string,
	cfg Config,
	clk clock.Clock,
	logger *slog.Logger,
) *Client {
	if conn != nil && cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	return &Client{
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		sessionID:   sessionID,
		playerID:    playerID,
		addr:        addr,
		connectedAt: clk.Now(),
		rateLimiter: newRateLimiter(cfg.RateLimitBurst, cfg.RateLimitInterval, clk),
		logger: logger.With(
			slog.String("session_id", string(sessionID)),
			slog.String("player_id", string(playerID))),
	}
}

// PlayerID returns the id assigned to this connection
func (c *Client) PlayerID() model.PlayerID {
	return c.playerID
}

// enqueue queues a message without blocking. The hub holds its lock while
// calling this so the channel cannot be closed concurrently.
func (c *Client) enqueue(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		c.logger.Warn("ws message dropped - client buffer full")
		return false
	}
}

// readPump reads inbound messages and passes them to handle until the
// connection fails or handle returns false
func (c *Client) readPump(handle func(model.Event) bool) {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		if !c.rateLimiter.allow() {
			c.logger.Warn("ws rate limit exceeded, discarding message")
			continue
		}

		event, err := DecodeInbound(raw)
		if err != nil {
			c.logger.Debug("ws message ignored", slog.Any("error", err))
			continue
		}

		if !handle(event) {
			return
		}
	}
}

func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.logger.Warn("ws message exceeded maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived),
		errors.Is(err, io.EOF),
		errors.Is(err, net.ErrClosed):
		c.logger.Debug("ws client disconnected", slog.Any("error", err))
	default:
		c.logger.Info("ws read error", slog.Any("error", err))
	}
}

// writePump writes queued messages until the send channel is closed, then
// sends a close frame and closes the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("ws write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("ws ping failed", slog.Any("error", err))
				return
			}
		}
	}
}
