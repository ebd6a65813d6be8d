package api

import (
	"net/http"

	"github.com/okian/pulse/internal/domain/types"
)

// HomeMessage is the greeting returned by GET /.
const HomeMessage = "Hello from pulse!"

// HomeHandler serves the greeting.
type HomeHandler struct {
	deps Dependencies
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(deps Dependencies) *HomeHandler {
	return &HomeHandler{deps: deps}
}

// HandleHome handles GET /.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) error {
	host, err := h.deps.Hostname(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, types.HomeResponse{
		Message:   HomeMessage,
		Status:    "running",
		Timestamp: types.Timestamp(h.deps.Now()),
		Hostname:  host,
	})
}
