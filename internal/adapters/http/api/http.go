// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
	"github.com/okian/pulse/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Now reads the clock used for response timestamps.
	Now() time.Time

	// Hostname returns the resolved local host name; stable for the process lifetime.
	Hostname(ctx context.Context) (string, error)

	// Environment is the deployment environment reported by /info.
	Environment() string

	// AppInfo describes the running build.
	AppInfo() types.AppInfo
}

// HandlerFunc is a route handler. A non-nil error is a fault and is turned
// into the 500 envelope by Recover.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Endpoint names used for metric labels.
const (
	endpointHome     = "home"
	endpointHealth   = "health"
	endpointInfo     = "info"
	endpointEcho     = "echo"
	endpointMetrics  = "metrics"
	endpointNotFound = "not_found"
)

// Server wires HTTP routes for the business API.
type Server struct {
	logger         logger.Logger
	maxBodyBytes   int64
	metricsEnabled bool
	tracingEnabled bool

	homeHandler   *HomeHandler
	healthHandler *HealthHandler
	infoHandler   *InfoHandler
	echoHandler   *EchoHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps the echo request body.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMetricsEndpoint exposes GET /metrics.
func WithMetricsEndpoint(enabled bool) Option {
	return func(s *Server) {
		s.metricsEnabled = enabled
	}
}

// WithTracing wraps the handler chain in TracingMiddleware.
func WithTracing(enabled bool) Option {
	return func(s *Server) {
		s.tracingEnabled = enabled
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.homeHandler = NewHomeHandler(deps)
	s.healthHandler = NewHealthHandler(deps)
	s.infoHandler = NewInfoHandler(deps)
	s.echoHandler = NewEchoHandler(deps, s.logger, s.maxBodyBytes)
	return s
}

// Register attaches all HTTP routes to mux. Anything no pattern matches,
// including a known path with another method, falls through to "/" and is
// answered with 404.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /{$}", s.route(endpointHome, s.homeHandler.HandleHome))
	mux.HandleFunc("GET /health", s.route(endpointHealth, s.healthHandler.HandleHealth))
	mux.HandleFunc("GET /info", s.route(endpointInfo, s.infoHandler.HandleInfo))
	mux.HandleFunc("POST /api/echo", s.route(endpointEcho, s.echoHandler.HandleEcho))

	if s.metricsEnabled {
		mux.Handle("GET /metrics", MetricsMiddleware(
			promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP,
			endpointMetrics,
		))
	}

	mux.HandleFunc("/", s.route(endpointNotFound, NotFoundHandler))
}

// Handler returns mux wrapped in the request-scoped middleware chain.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	var h http.Handler = mux
	h = CleanPathMiddleware(s.route(endpointNotFound, NotFoundHandler))(h)
	h = RequestLogMiddleware(s.logger)(h)
	if s.tracingEnabled {
		h = TracingMiddleware(h)
	}
	return RequestIDMiddleware(h)
}

func (s *Server) route(endpoint string, fn HandlerFunc) http.HandlerFunc {
	return MetricsMiddleware(Recover(s.logger, endpoint, fn), endpoint)
}
