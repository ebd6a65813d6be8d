// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// Host is the bind address, e.g. "127.0.0.1".
	Host string `koanf:"host" validate:"required"`

	// Port is the TCP port to bind.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// Environment is reported by GET /info verbatim, including an explicitly empty value.
	Environment string `koanf:"environment"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// HTTP server timeouts.
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// MaxBodyBytes caps the request body accepted by POST /api/echo.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"gt=0"`

	// MetricsEnabled exposes GET /metrics and records Prometheus metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// Metric naming and shape. Namespace and subsystem prefix every metric name.
	MetricsNamespace       string            `koanf:"metrics_namespace" validate:"required,excludesall=-. "`
	MetricsSubsystem       string            `koanf:"metrics_subsystem" validate:"excludesall=-. "`
	MetricsRefreshInterval time.Duration     `koanf:"metrics_refresh_interval" validate:"gt=0"`
	MetricsBuckets         []float64         `koanf:"metrics_buckets" validate:"omitempty,dive,gt=0"`
	MetricsLabels          map[string]string `koanf:"metrics_labels"`

	// DocsEnabled exposes the embedded OpenAPI document and ReDoc page.
	DocsEnabled bool `koanf:"docs_enabled"`

	// TracingEnabled installs an OpenTelemetry tracer with a stdout exporter.
	TracingEnabled bool `koanf:"tracing_enabled"`
}

// Defaults.
const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 5000
	DefaultEnvironment  = "production"
	DefaultMaxBodyBytes = 1 << 20

	DefaultMetricsNamespace       = "pulse"
	DefaultMetricsRefreshInterval = 10 * time.Second
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		Host:              DefaultHost,
		Port:              DefaultPort,
		Environment:       DefaultEnvironment,
		LogLevel:          "info",
		LogFormat:         "text",
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		MaxBodyBytes:      DefaultMaxBodyBytes,
		MetricsEnabled:    true,
		DocsEnabled:       true,

		MetricsNamespace:       DefaultMetricsNamespace,
		MetricsRefreshInterval: DefaultMetricsRefreshInterval,
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// Validate checks field constraints declared in the struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
