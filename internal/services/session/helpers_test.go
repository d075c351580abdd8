package session

import (
	"sync"

	"github.com/mcoot/typerace/internal/model"
)

// delivery is one event seen by the recorder. To is empty for broadcasts.
type delivery struct {
	Session model.SessionID
	To      model.PlayerID
	Event   model.Event
}

// recorder is a Broadcaster that keeps every delivery in order
type recorder struct {
	mu         sync.Mutex
	deliveries []delivery
	closed     []model.SessionID
}

func (r *recorder) Broadcast(id model.SessionID, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, delivery{Session: id, Event: event})
}

func (r *recorder) Send(id model.SessionID, playerID model.PlayerID, event model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, delivery{Session: id, To: playerID, Event: event})
}

func (r *recorder) Closed(id model.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, id)
}

func (r *recorder) closedSessions() []model.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SessionID(nil), r.closed...)
}

func (r *recorder) all() []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
	r.closed = nil
}

// broadcasts returns broadcast events of the given type
func (r *recorder) broadcasts(eventType model.EventType) []model.Event {
	var out []model.Event
	for _, d := range r.all() {
		if d.To == "" && d.Event.Type == eventType {
			out = append(out, d.Event)
		}
	}
	return out
}

// sentTo returns events sent directly to playerID
func (r *recorder) sentTo(playerID model.PlayerID) []model.Event {
	var out []model.Event
	for _, d := range r.all() {
		if d.To == playerID {
			out = append(out, d.Event)
		}
	}
	return out
}

// types returns the event types of all deliveries in order
func (r *recorder) types() []model.EventType {
	var out []model.EventType
	for _, d := range r.all() {
		out = append(out, d.Event.Type)
	}
	return out
}
