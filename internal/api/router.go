package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/typerace/internal/api/handler"
	"github.com/mcoot/typerace/internal/api/middleware"
	"github.com/mcoot/typerace/internal/dependencies/random"
	"github.com/mcoot/typerace/internal/services/session"
	"github.com/mcoot/typerace/internal/web/sse"
	"github.com/mcoot/typerace/internal/web/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Addr       string
	Registry   *session.Registry
	WSHandler  *ws.Handler
	HubManager *sse.HubManager
	Random     random.Random
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	healthHandler := handler.NewHealthHandler(cfg.Addr)
	sessionHandler := handler.NewSessionHandler(cfg.Registry, cfg.WSHandler, cfg.HubManager, cfg.Random)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	api.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/ws", sessionHandler.Connect).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/events", sessionHandler.Events).Methods(http.MethodGet)

	return r
}
