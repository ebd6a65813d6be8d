package api

import (
	"errors"
	"net/http"

	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
)

// Sentinel kinds for API errors.
var (
	ErrPanic       = errors.New("handler panicked")
	ErrHostname    = errors.New("resolve hostname failed")
	ErrInvalidJSON = errors.New("invalid json body")
	ErrEmptyBody   = errors.New("empty request body")
	ErrTrailing    = errors.New("trailing data after json value")
	ErrInvalidUTF8 = errors.New("body is not valid utf-8")
)

// Fixed error envelopes.
var (
	invalidJSONResponse = types.ErrorResponse{
		Error: "Invalid JSON data",
	}
	notFoundResponse = types.ErrorResponse{
		Error:   "Not found",
		Message: "The requested resource was not found on this server",
	}
	internalErrorResponse = types.ErrorResponse{
		Error:   "Internal server error",
		Message: "An unexpected error occurred",
	}
)

// NotFoundHandler answers every request no route matched.
func NotFoundHandler(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, http.StatusNotFound, notFoundResponse)
}

// internalError logs the fault and, if nothing was written yet, sends the
// generic 500 envelope. The fault text never reaches the client.
func internalError(log logger.Logger, w *responseWriter, r *http.Request, fault error, extra ...logger.Field) {
	ctx := r.Context()
	fields := append([]logger.Field{
		logger.Error(fault),
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.String("request_id", RequestIDFromContext(ctx)),
	}, extra...)
	log.Error(ctx, "internal server error", fields...)

	if w.wroteHeader {
		return
	}
	if err := writeJSON(w, http.StatusInternalServerError, internalErrorResponse); err != nil {
		log.Error(ctx, "failed to write error response", logger.Error(err))
	}
}
