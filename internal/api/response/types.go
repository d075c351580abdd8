package response

import (
	"github.com/mcoot/typerace/internal/model"
)

// Health is the response of the health endpoint
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Player represents a player in API responses
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:    string(p.ID),
		Name:  p.Name,
		Score: p.Score,
	}
}

// Session represents a session's full state
type Session struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	HostID    string   `json:"host_id,omitempty"`
	Paragraph string   `json:"paragraph,omitempty"`
	Round     int      `json:"round"`
	Players   []Player `json:"players"`
}

// SessionFromSnapshot converts a session snapshot
func SessionFromSnapshot(s model.SessionSnapshot) Session {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = PlayerFromModel(p)
	}
	return Session{
		ID:        string(s.ID),
		Status:    string(s.Status),
		HostID:    string(s.HostID),
		Paragraph: s.Paragraph,
		Round:     s.Round,
		Players:   players,
	}
}

// SessionSummary is one entry of the session list
type SessionSummary struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count"`
}

// SessionList is the response of the session list endpoint
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionListFromModel converts session summaries
func SessionListFromModel(summaries []model.SessionSummary) SessionList {
	sessions := make([]SessionSummary, len(summaries))
	for i, s := range summaries {
		sessions[i] = SessionSummary{
			ID:          string(s.ID),
			Status:      string(s.Status),
			PlayerCount: s.PlayerCount,
		}
	}
	return SessionList{Sessions: sessions}
}

// NewSession is returned when a fresh session id is allocated
type NewSession struct {
	ID string `json:"id"`
}
