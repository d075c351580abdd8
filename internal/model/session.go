package model

// SessionID is the externally assigned identifier of a game room
type SessionID string

// Status represents the current state of a session's round
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished" // Round over, host may start another
)

// SessionSnapshot is a point-in-time copy of a session's state
type SessionSnapshot struct {
	ID        SessionID
	Status    Status
	HostID    PlayerID // Empty when the roster is empty
	Paragraph string
	Players   []Player
	Round     int
}

// SessionSummary is a short description of a live session
type SessionSummary struct {
	ID          SessionID
	Status      Status
	PlayerCount int
}
