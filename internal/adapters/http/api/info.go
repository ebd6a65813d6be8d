package api

import (
	"net/http"

	"github.com/okian/pulse/internal/domain/types"
)

// InfoHandler reports build and runtime metadata.
type InfoHandler struct {
	deps Dependencies
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(deps Dependencies) *InfoHandler {
	return &InfoHandler{deps: deps}
}

// HandleInfo handles GET /info.
func (h *InfoHandler) HandleInfo(w http.ResponseWriter, r *http.Request) error {
	host, err := h.deps.Hostname(r.Context())
	if err != nil {
		return err
	}
	info := h.deps.AppInfo()
	return writeJSON(w, http.StatusOK, types.InfoResponse{
		AppName:        info.Name,
		Version:        info.Version,
		RuntimeVersion: info.RuntimeVersion,
		Hostname:       host,
		Environment:    h.deps.Environment(),
	})
}
