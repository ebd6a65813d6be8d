package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
)

// Echo outcomes, used as metric labels.
const (
	echoOutcomeEchoed      = "echoed"
	echoOutcomeInvalidJSON = "invalid_json"

	// logPreviewBytes bounds how much of a posted body reaches the log.
	logPreviewBytes = 256
)

// parseResult is either a decoded JSON document or the reason decoding failed.
type parseResult struct {
	value  any
	reason error
}

func (p parseResult) ok() bool { return p.reason == nil }

// parseJSON decodes exactly one JSON value of any kind. Numbers are kept as
// json.Number so they re-encode to the same literal.
func parseJSON(body []byte) parseResult {
	if len(bytes.TrimSpace(body)) == 0 {
		return parseResult{reason: ErrEmptyBody}
	}
	// encoding/json would silently replace invalid bytes with U+FFFD.
	if !utf8.Valid(body) {
		return parseResult{reason: ErrInvalidUTF8}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return parseResult{reason: fmt.Errorf("%w: %w", ErrInvalidJSON, err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return parseResult{reason: ErrTrailing}
	}
	return parseResult{value: v}
}

// EchoHandler reflects a posted JSON document.
type EchoHandler struct {
	deps         Dependencies
	logger       logger.Logger
	maxBodyBytes int64
}

// NewEchoHandler creates a new echo handler.
func NewEchoHandler(deps Dependencies, log logger.Logger, maxBodyBytes int64) *EchoHandler {
	return &EchoHandler{deps: deps, logger: log, maxBodyBytes: maxBodyBytes}
}

// HandleEcho handles POST /api/echo. Client input errors are answered here
// with 400 and never reach the fault boundary.
func (h *EchoHandler) HandleEcho(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	requestID := logger.String("request_id", RequestIDFromContext(ctx))

	var (
		body    []byte
		readErr error
	)
	if r.Body != nil {
		body, readErr = io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	}

	h.logger.Info(ctx, "received echo request",
		logger.Int64("content_length", r.ContentLength),
		logger.Int("bytes", len(body)),
		logger.String("payload", preview(body)),
		requestID,
	)

	res := parseResult{reason: readErr}
	if readErr == nil {
		res = parseJSON(body)
	}

	if !res.ok() {
		h.logger.Error(ctx, "error processing echo request", logger.Error(res.reason), requestID)
		metrics.RecordEchoRequest(echoOutcomeInvalidJSON)
		return writeJSON(w, http.StatusBadRequest, invalidJSONResponse)
	}

	metrics.RecordEchoRequest(echoOutcomeEchoed)
	return writeJSON(w, http.StatusOK, types.EchoResponse{
		Echo:      res.value,
		Timestamp: types.Timestamp(h.deps.Now()),
	})
}

func preview(body []byte) string {
	if len(body) <= logPreviewBytes {
		return string(body)
	}
	return string(body[:logPreviewBytes]) + "..."
}
