package handler

import (
	"net/http"

	"github.com/mcoot/typerace/internal/api/response"
)

// HealthHandler reports that the server is up
type HealthHandler struct {
	addr string
}

// NewHealthHandler creates a health handler for a server listening on addr
func NewHealthHandler(addr string) *HealthHandler {
	return &HealthHandler{addr: addr}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:  "ok",
		Message: "Server is running on " + h.addr,
	})
}
