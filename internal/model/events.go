package model

// EventType identifies the type of event exchanged with clients
type EventType string

const (
	// Inbound events (client to session)
	EventStartGame   EventType = "start-game"
	EventPlayerTyped EventType = "player-typed"
	EventLeave       EventType = "leave"
	EventDisconnect  EventType = "disconnect" // Raised by the transport, never sent by clients

	// Outbound events (session to one or all members)
	EventError        EventType = "error"
	EventPlayers      EventType = "players"
	EventPlayerJoined EventType = "player-joined"
	EventNewHost      EventType = "new-host"
	EventGameStarted  EventType = "game-started"
	EventPlayerScore  EventType = "player-score"
	EventPlayerLeft   EventType = "player-left"
	EventGameFinished EventType = "game-finished"
)

// Event is a single message delivered to session members
type Event struct {
	Type    EventType
	Payload any // Type-specific data, nil for events without a payload
}

// PlayerJoinedPayload contains data for player joined events
type PlayerJoinedPayload struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Score int      `json:"score"`
}

// NewHostPayload tells a joining player who currently hosts the session
type NewHostPayload struct {
	HostID PlayerID `json:"hostId"`
}

// GameStartedPayload carries the paragraph for the round
type GameStartedPayload struct {
	Paragraph string `json:"paragraph"`
}

// PlayerScorePayload contains a player's live score
type PlayerScorePayload struct {
	ID    PlayerID `json:"id"`
	Score int      `json:"score"`
}

// PlayerLeftPayload identifies a departed player
type PlayerLeftPayload struct {
	ID PlayerID `json:"id"`
}

// NewErrorEvent builds the error event reported to a single requester
func NewErrorEvent(err error) Event {
	return Event{Type: EventError, Payload: ClientMessage(err)}
}

// NewPlayersEvent builds a roster snapshot event
func NewPlayersEvent(players []Player) Event {
	roster := make([]Player, len(players))
	copy(roster, players)
	return Event{Type: EventPlayers, Payload: roster}
}
