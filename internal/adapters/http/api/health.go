package api

import (
	"net/http"

	"github.com/okian/pulse/internal/domain/types"
)

// HealthHandler handles liveness probes.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HandleHealth handles GET /health. It reports process liveness only and
// never consults dependencies.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Timestamp: types.Timestamp(h.deps.Now()),
	})
}
