package session

import "github.com/mcoot/typerace/internal/model"

// Broadcaster delivers session events to connected participants.
// Implementations must not block: they are called with the session lock held.
type Broadcaster interface {
	// Broadcast delivers event to every member of the session
	Broadcast(id model.SessionID, event model.Event)

	// Send delivers event to a single member of the session
	Send(id model.SessionID, playerID model.PlayerID, event model.Event)

	// Closed reports that the session was removed from the registry.
	// It is called with the registry lock held, before the id can be reused.
	Closed(id model.SessionID)
}

// Fanout forwards every event to each of its broadcasters in order
type Fanout []Broadcaster

// Broadcast forwards to every broadcaster
func (f Fanout) Broadcast(id model.SessionID, event model.Event) {
	for _, b := range f {
		b.Broadcast(id, event)
	}
}

// Send forwards to every broadcaster
func (f Fanout) Send(id model.SessionID, playerID model.PlayerID, event model.Event) {
	for _, b := range f {
		b.Send(id, playerID, event)
	}
}

// Closed forwards to every broadcaster
func (f Fanout) Closed(id model.SessionID) {
	for _, b := range f {
		b.Closed(id)
	}
}
