package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/web/ws"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// PrintEvent outputs a session event received over WebSocket.
// JSON output is one envelope per line.
func (o *Output) PrintEvent(msg ws.Message) {
	if o.format == OutputJSON {
		data, _ := json.Marshal(msg)
		fmt.Fprintln(o.w, string(data))
		return
	}

	switch msg.Event {
	case model.EventPlayers:
		var players []Player
		if json.Unmarshal(msg.Data, &players) == nil {
			o.printRoster(players)
			return
		}
	case model.EventGameStarted:
		var started model.GameStartedPayload
		if json.Unmarshal(msg.Data, &started) == nil {
			fmt.Fprintf(o.w, "Round started! Type:\n  %s\n", started.Paragraph)
			return
		}
	case model.EventGameFinished:
		fmt.Fprintln(o.w, "Round finished!")
		return
	case model.EventError:
		var message string
		if json.Unmarshal(msg.Data, &message) == nil {
			fmt.Fprintf(o.w, "Error: %s\n", message)
			return
		}
	}

	if len(msg.Data) == 0 {
		fmt.Fprintf(o.w, "%s\n", msg.Event)
		return
	}
	fmt.Fprintf(o.w, "%s: %s\n", msg.Event, msg.Data)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case SessionList:
		o.printSessionList(v)
	case NewSession:
		fmt.Fprintf(o.w, "Session: %s\n", v.ID)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Session response type
type Session struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	HostID    string   `json:"host_id,omitempty"`
	Paragraph string   `json:"paragraph,omitempty"`
	Round     int      `json:"round"`
	Players   []Player `json:"players"`
}

// SessionSummary response type
type SessionSummary struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count"`
}

// SessionList response type
type SessionList struct {
	Sessions []SessionSummary `json:"sessions"`
}

// NewSession response type
type NewSession struct {
	ID string `json:"id"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (o *Output) printSession(s Session) {
	fmt.Fprintf(o.w, "Session: %s\n", s.ID)
	fmt.Fprintf(o.w, "Status: %s\n", s.Status)
	if s.Round > 0 {
		fmt.Fprintf(o.w, "Round: %d\n", s.Round)
	}
	if s.Paragraph != "" {
		fmt.Fprintf(o.w, "Paragraph: %s\n", s.Paragraph)
	}
	fmt.Fprintf(o.w, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		hostStr := ""
		if p.ID == s.HostID {
			hostStr = " [host]"
		}
		fmt.Fprintf(o.w, "  - %s (%s) - %d%s\n", p.Name, p.ID, p.Score, hostStr)
	}
}

func (o *Output) printSessionList(l SessionList) {
	if len(l.Sessions) == 0 {
		fmt.Fprintln(o.w, "No active sessions")
		return
	}
	for _, s := range l.Sessions {
		fmt.Fprintf(o.w, "%s  %-12s %d player(s)\n", s.ID, s.Status, s.PlayerCount)
	}
}

func (o *Output) printRoster(players []Player) {
	entries := make([]string, len(players))
	for i, p := range players {
		entries[i] = fmt.Sprintf("%s %d", p.Name, p.Score)
	}
	fmt.Fprintf(o.w, "Players: %s\n", strings.Join(entries, ", "))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Message != "" {
		fmt.Fprintf(o.w, "%s\n", h.Message)
	}
}
