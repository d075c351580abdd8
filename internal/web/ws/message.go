package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/typerace/internal/model"
)

// ErrUnknownEvent is returned for inbound events clients may not send
var ErrUnknownEvent = errors.New("unknown event")

// Message is the JSON envelope used in both directions
type Message struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeEvent serialises an outbound event into its wire envelope
func EncodeEvent(event model.Event) ([]byte, error) {
	msg := Message{Event: event.Type}
	if event.Payload != nil {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", event.Type, err)
		}
		msg.Data = data
	}
	return json.Marshal(msg)
}

// DecodeInbound parses a client message into a session event
func DecodeInbound(raw []byte) (model.Event, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return model.Event{}, fmt.Errorf("invalid message: %w", err)
	}

	switch msg.Event {
	case model.EventStartGame, model.EventLeave:
		return model.Event{Type: msg.Event}, nil
	case model.EventPlayerTyped:
		var typed string
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &typed); err != nil {
				return model.Event{}, fmt.Errorf("invalid %s data: %w", msg.Event, err)
			}
		}
		return model.Event{Type: msg.Event, Payload: typed}, nil
	default:
		return model.Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Event)
	}
}

// NewMessage builds an outbound client message (used by the CLI)
func NewMessage(event model.EventType, data any) ([]byte, error) {
	return EncodeEvent(model.Event{Type: event, Payload: data})
}
