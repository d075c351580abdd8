package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/typerace/internal/model"
)

// Session is one game room. All transitions run under mu, and events are
// broadcast before mu is released so every member sees them in order.
type Session struct {
	id       model.SessionID
	registry *Registry
	logger   *slog.Logger

	mu        sync.Mutex
	status    model.Status
	hostID    model.PlayerID
	players   []model.Player
	paragraph string
	round     int
	starting  bool // Paragraph fetch in flight
	closed    bool // Removed from the registry, never reused
	timer     *roundTimer
}

func newSession(id model.SessionID, registry *Registry) *Session {
	return &Session{
		id:       id,
		registry: registry,
		logger:   registry.logger.With(slog.String("session_id", string(id))),
		status:   model.StatusNotStarted,
		players:  []model.Player{},
	}
}

// ID returns the session id
func (s *Session) ID() model.SessionID {
	return s.id
}

// Join adds a player to the roster. The first player to join is the host.
func (s *Session) Join(player model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.ErrSessionClosed
	}
	if s.status == model.StatusInProgress {
		return s.reject(player.ID, model.ErrJoinAfterStart)
	}
	if s.indexOf(player.ID) >= 0 {
		return s.reject(player.ID, model.ErrAlreadyJoined)
	}

	player.Score = 0
	s.players = append(s.players, player)
	if s.hostID == "" {
		s.hostID = player.ID
	}

	s.logger.Info("player joined",
		slog.String("player_id", string(player.ID)),
		slog.String("name", player.Name))

	s.broadcast(model.Event{
		Type:    model.EventPlayerJoined,
		Payload: model.PlayerJoinedPayload{ID: player.ID, Name: player.Name, Score: 0},
	})
	s.send(player.ID, model.NewPlayersEvent(s.players))
	s.send(player.ID, model.Event{
		Type:    model.EventNewHost,
		Payload: model.NewHostPayload{HostID: s.hostID},
	})
	return nil
}

// Start begins a round on behalf of playerID, who must be the host.
// The paragraph is fetched without holding the session lock; concurrent
// starts are rejected while the fetch is outstanding.
func (s *Session) Start(ctx context.Context, playerID model.PlayerID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.ErrSessionClosed
	}
	if s.status == model.StatusInProgress || s.starting {
		defer s.mu.Unlock()
		return s.reject(playerID, model.ErrGameAlreadyStarted)
	}
	if s.hostID == "" || playerID != s.hostID {
		defer s.mu.Unlock()
		return s.reject(playerID, model.ErrNotHost)
	}

	for i := range s.players {
		s.players[i].Score = 0
	}
	s.broadcast(model.NewPlayersEvent(s.players))
	s.starting = true
	s.mu.Unlock()

	text, err := s.fetchParagraph(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.starting = false
	if s.closed {
		return model.ErrSessionClosed
	}
	if err == nil && text == "" {
		err = errors.New("provider returned an empty paragraph")
	}
	if err != nil {
		s.logger.Warn("paragraph fetch failed", slog.Any("error", err))
		s.send(playerID, model.NewErrorEvent(model.ErrParagraphUnavailable))
		return fmt.Errorf("%w: %w", model.ErrParagraphUnavailable, err)
	}

	s.paragraph = text
	s.status = model.StatusInProgress
	s.round++
	round := s.round

	s.logger.Info("round started", slog.Int("round", round), slog.Int("players", len(s.players)))

	s.broadcast(model.Event{
		Type:    model.EventGameStarted,
		Payload: model.GameStartedPayload{Paragraph: text},
	})
	s.timer = startRoundTimer(s.registry.clock, s.registry.cfg.RoundDuration, func() {
		s.finishRound(round)
	})
	return nil
}

func (s *Session) fetchParagraph(ctx context.Context) (string, error) {
	if timeout := s.registry.cfg.ParagraphTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := s.registry.provider.Paragraph(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// finishRound ends the given round. Stale or cancelled rounds are ignored.
func (s *Session) finishRound(round int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.status != model.StatusInProgress || s.round != round {
		return
	}

	s.status = model.StatusFinished
	s.timer = nil

	s.logger.Info("round finished", slog.Int("round", round))

	s.broadcast(model.Event{Type: model.EventGameFinished})
	s.broadcast(model.NewPlayersEvent(s.players))
}

// SubmitTyped scores the text typed so far by playerID
func (s *Session) SubmitTyped(playerID model.PlayerID, typed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != model.StatusInProgress {
		return s.reject(playerID, model.ErrGameNotStarted)
	}

	i := s.indexOf(playerID)
	if i < 0 {
		return nil
	}

	score := s.registry.scoring.Score(s.paragraph, typed)
	s.players[i].Score = score

	s.broadcast(model.Event{
		Type:    model.EventPlayerScore,
		Payload: model.PlayerScorePayload{ID: playerID, Score: score},
	})
	return nil
}

// Leave removes playerID from the session
func (s *Session) Leave(playerID model.PlayerID) {
	s.remove(playerID, "left")
}

// Disconnect removes playerID after its connection dropped
func (s *Session) Disconnect(playerID model.PlayerID) {
	s.remove(playerID, "disconnected")
}

func (s *Session) remove(playerID model.PlayerID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(playerID)
	if i < 0 {
		return
	}
	s.players = append(s.players[:i], s.players[i+1:]...)

	s.logger.Info("player "+reason, slog.String("player_id", string(playerID)))

	if len(s.players) == 0 {
		s.hostID = ""
		s.closeLocked()
		s.registry.removeIfSame(s.id, s)
		return
	}

	if s.hostID == playerID {
		s.hostID = s.players[0].ID
		s.logger.Info("host migrated", slog.String("host_id", string(s.hostID)))
	}

	s.broadcast(model.Event{
		Type:    model.EventPlayerLeft,
		Payload: model.PlayerLeftPayload{ID: playerID},
	})
}

// Handle dispatches an inbound event from playerID
func (s *Session) Handle(ctx context.Context, playerID model.PlayerID, event model.Event) error {
	switch event.Type {
	case model.EventStartGame:
		return s.Start(ctx, playerID)
	case model.EventPlayerTyped:
		typed, _ := event.Payload.(string)
		return s.SubmitTyped(playerID, typed)
	case model.EventLeave:
		s.Leave(playerID)
		return nil
	case model.EventDisconnect:
		s.Disconnect(playerID)
		return nil
	default:
		return fmt.Errorf("unsupported event %q", event.Type)
	}
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]model.Player, len(s.players))
	copy(players, s.players)

	return model.SessionSnapshot{
		ID:        s.id,
		Status:    s.status,
		HostID:    s.hostID,
		Paragraph: s.paragraph,
		Players:   players,
		Round:     s.round,
	}
}

// Closed reports whether the session has been removed from its registry
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) indexOf(playerID model.PlayerID) int {
	for i, p := range s.players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// reject reports err to the requester only and returns it
func (s *Session) reject(playerID model.PlayerID, err error) error {
	s.send(playerID, model.NewErrorEvent(err))
	return err
}

func (s *Session) broadcast(event model.Event) {
	s.registry.broadcaster.Broadcast(s.id, event)
}

func (s *Session) send(playerID model.PlayerID, event model.Event) {
	s.registry.broadcaster.Send(s.id, playerID, event)
}
