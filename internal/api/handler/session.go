package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/typerace/internal/api/apierr"
	"github.com/mcoot/typerace/internal/api/request"
	"github.com/mcoot/typerace/internal/api/response"
	"github.com/mcoot/typerace/internal/dependencies/random"
	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/services/session"
	"github.com/mcoot/typerace/internal/web/sse"
	"github.com/mcoot/typerace/internal/web/ws"
)

const (
	spectatorIDLength   = 8
	spectatorIDAlphabet = random.LowerAlphaNumeric
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	registry   *session.Registry
	wsHandler  *ws.Handler
	hubManager *sse.HubManager
	random     random.Random
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	registry *session.Registry,
	wsHandler *ws.Handler,
	hubManager *sse.HubManager,
	random random.Random,
) *SessionHandler {
	return &SessionHandler{
		registry:   registry,
		wsHandler:  wsHandler,
		hubManager: hubManager,
		random:     random,
	}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SessionListFromModel(h.registry.List()))
}

// Create handles POST /api/v1/sessions.
// It only allocates an unused id; the session exists once a player connects.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusCreated, response.NewSession{ID: string(h.registry.NewID())})
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.registry.Get(sessionID(r))
	if !ok {
		apierr.WriteError(w, model.ErrSessionNotFound)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromSnapshot(sess.Snapshot()))
}

// Connect handles GET /api/v1/sessions/{id}/ws?name=
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	params, err := request.ParseJoinParams(r)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	h.wsHandler.ServeWS(w, r, sessionID(r), params.Name)
}

// Events handles GET /api/v1/sessions/{id}/events.
// Spectators first receive the roster and, mid-round, the paragraph.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	sess, ok := h.registry.Get(id)
	if !ok {
		apierr.WriteError(w, model.ErrSessionNotFound)
		return
	}

	snap := sess.Snapshot()
	initial := []model.Event{model.NewPlayersEvent(snap.Players)}
	if snap.Status == model.StatusInProgress {
		initial = append(initial, model.Event{
			Type:    model.EventGameStarted,
			Payload: model.GameStartedPayload{Paragraph: snap.Paragraph},
		})
	}

	hub := h.hubManager.GetOrCreateHub(id)
	if sess.Closed() {
		// Removed while subscribing: the hub was created after its close
		if _, live := h.registry.Get(id); !live {
			h.hubManager.RemoveHub(id)
		}
		apierr.WriteError(w, model.ErrSessionNotFound)
		return
	}
	spectatorID := "s_" + h.random.String(spectatorIDLength, spectatorIDAlphabet)
	sse.ServeSSE(w, r, hub, spectatorID, initial...)
}

func sessionID(r *http.Request) model.SessionID {
	return model.SessionID(mux.Vars(r)["id"])
}
