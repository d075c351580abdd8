package model

// PlayerID identifies a connected participant within a session.
// The transport assigns a fresh one per connection.
type PlayerID string

// Player is a participant in a session roster
type Player struct {
	ID    PlayerID `json:"id"`
	Score int      `json:"score"`
	Name  string   `json:"name"`
}
