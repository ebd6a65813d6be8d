// Package service provides the application context: it implements the
// dependencies required by the HTTP API and owns the HTTP server lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/okian/pulse/internal/adapters/http/api"
	"github.com/okian/pulse/internal/adapters/http/swagger"
	"github.com/okian/pulse/internal/config"
	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
)

// AppName is reported by GET /info.
const AppName = "Pulse Demo Application"

// Version is reported by GET /info; overridable with -ldflags "-X".
var Version = "1.0.0" //nolint:gochecknoglobals // set at link time

// Sentinel errors.
var (
	ErrAlreadyStarted = errors.New("service already started")
	ErrNotStarted     = errors.New("service not started")
)

// RuntimeVersion describes the toolchain and platform, e.g. "go1.24.6 linux/amd64".
func RuntimeVersion() string {
	return runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH
}

// Service implements api.Dependencies and serves HTTP.
type Service struct {
	mu sync.Mutex

	cfg        *config.Config
	logger     logger.Logger
	now        func() time.Time
	hostnameFn func() (string, error)

	hostOnce sync.Once
	host     string
	hostErr  error

	// State
	started  bool
	server   *http.Server
	listener net.Listener
	errCh    chan error
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the process configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the wall clock used for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHostnameFunc replaces os.Hostname.
func WithHostnameFunc(fn func() (string, error)) Option {
	return func(s *Service) {
		if fn != nil {
			s.hostnameFn = fn
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:        config.New(),
		now:        time.Now,
		hostnameFn: os.Hostname,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Now implements api.Dependencies.
func (s *Service) Now() time.Time { return s.now() }

// Hostname resolves the host name on first use and returns the same answer
// for the rest of the process lifetime.
func (s *Service) Hostname(_ context.Context) (string, error) {
	s.hostOnce.Do(func() {
		s.host, s.hostErr = s.hostnameFn()
		if s.hostErr != nil {
			s.hostErr = fmt.Errorf("%w: %w", api.ErrHostname, s.hostErr)
		}
	})
	return s.host, s.hostErr
}

// Environment implements api.Dependencies.
func (s *Service) Environment() string { return s.cfg.Environment }

// AppInfo implements api.Dependencies.
func (s *Service) AppInfo() types.AppInfo {
	return types.AppInfo{
		Name:           AppName,
		Version:        Version,
		RuntimeVersion: RuntimeVersion(),
	}
}

// Handler builds the complete HTTP handler: routes, docs and middleware.
func (s *Service) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	if s.cfg.DocsEnabled {
		swagger.Register(ctx, mux)
	}

	apiServer := api.NewServer(s,
		api.WithLogger(s.logger),
		api.WithMaxBodyBytes(s.cfg.MaxBodyBytes),
		api.WithMetricsEndpoint(s.cfg.MetricsEnabled),
		api.WithTracing(s.cfg.TracingEnabled),
	)
	apiServer.Register(ctx, mux)

	return apiServer.Handler(mux)
}

// Start binds the configured address and serves in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}

	s.listener = ln
	s.errCh = make(chan error, 1)
	s.server = &http.Server{
		Handler:           s.Handler(ctx),
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	s.logger.Info(ctx, "starting HTTP server",
		logger.String("addr", ln.Addr().String()),
		logger.String("environment", s.cfg.Environment),
		logger.String("version", Version),
	)

	srv, errCh := s.server, s.errCh
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.started = true
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Err delivers a serve failure; it is closed when the server stops.
func (s *Service) Err() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errCh
}

// Stop gracefully shuts the server down, bounded by the shutdown timeout.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	s.logger.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.started = false
	s.listener = nil
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info(ctx, "server stopped")
	return nil
}
