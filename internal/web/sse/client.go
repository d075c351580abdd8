package sse

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/typerace/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents a connected SSE spectator
type Client struct {
	hub         *Hub
	id          string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient(hub *Hub, id string) *Client {
	return &Client{
		hub:         hub,
		id:          id,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams a session's events to a spectator until it disconnects.
// The initial events (usually a snapshot of the session) are written right
// after the connected event, before anything broadcast later.
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, id string, initial ...model.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := NewClient(hub, id)
	if !hub.Register(client) {
		http.Error(w, "Session stream closed", http.StatusGone)
		return
	}
	defer hub.Unregister(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	connected := formatSSEMessage("connected", fmt.Sprintf(`{"session":%q,"spectator":%q}`, hub.sessionID, id))
	if _, err := w.Write(connected); err != nil {
		return
	}
	for _, event := range initial {
		message, err := encodeEvent(event)
		if err != nil {
			hub.logger.Error("sse failed to encode event",
				slog.String("event", string(event.Type)),
				slog.Any("error", err))
			continue
		}
		if _, err := w.Write(message); err != nil {
			return
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
