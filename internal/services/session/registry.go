package session

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/typerace/internal/dependencies/clock"
	"github.com/mcoot/typerace/internal/dependencies/random"
	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/services/paragraph"
	"github.com/mcoot/typerace/internal/services/scoring"
)

const (
	// SessionIDLength is the length of generated session ids
	SessionIDLength = 6
	// SessionIDAlphabet is the characters used in session ids (avoid confusing chars)
	SessionIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Config holds the timing settings shared by every session
type Config struct {
	// RoundDuration is how long a round runs before it finishes
	RoundDuration time.Duration
	// ParagraphTimeout bounds the paragraph fetch at round start (0 = unbounded)
	ParagraphTimeout time.Duration
}

// DefaultConfig returns the default session settings
func DefaultConfig() Config {
	return Config{
		RoundDuration:    60 * time.Second,
		ParagraphTimeout: 20 * time.Second,
	}
}

// Registry owns every live session of the process
type Registry struct {
	cfg         Config
	provider    paragraph.Provider
	scoring     *scoring.Service
	broadcaster Broadcaster
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[model.SessionID]*Session
}

// NewRegistry creates an empty Registry
func NewRegistry(
	cfg Config,
	provider paragraph.Provider,
	scoringService *scoring.Service,
	broadcaster Broadcaster,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Registry {
	return &Registry{
		cfg:         cfg,
		provider:    provider,
		scoring:     scoringService,
		broadcaster: broadcaster,
		clock:       clock,
		random:      random,
		logger:      logger.With(slog.String("component", "session-registry")),
		sessions:    make(map[model.SessionID]*Session),
	}
}

// GetOrCreate returns the live session for id, creating it if needed
func (r *Registry) GetOrCreate(id model.SessionID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s
	}

	s := newSession(id, r)
	r.sessions[id] = s
	r.logger.Info("session created", slog.String("session_id", string(id)))
	return s
}

// Get returns the live session for id
func (r *Registry) Get(id model.SessionID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	return s, ok
}

// Remove deletes the session for id. Removing an unknown id is a no-op.
func (r *Registry) Remove(id model.SessionID) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		r.broadcaster.Closed(id)
	}
	r.mu.Unlock()

	if ok {
		s.close()
		r.logger.Info("session removed", slog.String("session_id", string(id)))
	}
}

// removeIfSame deletes the entry for id only if it still maps to s.
// Called by a session with its own lock held.
func (r *Registry) removeIfSame(id model.SessionID, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[id] == s {
		delete(r.sessions, id)
		r.broadcaster.Closed(id)
		r.logger.Info("session removed", slog.String("session_id", string(id)))
	}
}

// Join admits player into the session for id, creating the session if
// needed. A session closed between lookup and join is replaced by a new one.
func (r *Registry) Join(ctx context.Context, id model.SessionID, player model.Player) (*Session, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s := r.GetOrCreate(id)
		err := s.Join(player)
		if errors.Is(err, model.ErrSessionClosed) {
			continue
		}
		return s, err
	}
}

// List returns summaries of all live sessions ordered by id
func (r *Registry) List() []model.SessionSummary {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	summaries := make([]model.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		snap := s.Snapshot()
		summaries = append(summaries, model.SessionSummary{
			ID:          snap.ID,
			Status:      snap.Status,
			PlayerCount: len(snap.Players),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// Count returns the number of live sessions
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// NewID generates a session id not currently in use
func (r *Registry) NewID() model.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		id := model.SessionID(r.random.String(SessionIDLength, SessionIDAlphabet))
		if _, exists := r.sessions[id]; !exists && id != "" {
			return id
		}
	}
}
