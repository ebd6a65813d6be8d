package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables consulted by Load.
const (
	EnvPrefix     = "PULSE_"
	EnvConfigFile = "PULSE_CONFIG"
	EnvDotEnvFile = "PULSE_DOTENV"
	defaultDotEnv = ".env"
)

// conventionalEnv maps unprefixed variables onto config keys.
var conventionalEnv = map[string]string{ //nolint:gochecknoglobals // static lookup table
	"HOST":      "host",
	"PORT":      "port",
	"APP_ENV":   "environment",
	"LOG_LEVEL": "log_level",
}

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (PULSE_DOTENV, default ".env"); never overrides the real environment
//  3. file (YAML) if PULSE_CONFIG is set
//  4. HOST, PORT, APP_ENV, LOG_LEVEL
//  5. env (prefix PULSE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	conventional := env.Provider("", ".", func(s string) string {
		return conventionalEnv[s]
	})
	if err := k.Load(conventional, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// PULSE_SHUTDOWN_TIMEOUT -> shutdown_timeout (flat keys, underscores kept).
	prefixed := env.Provider(EnvPrefix, ".", func(s string) string {
		if s == EnvConfigFile || s == EnvDotEnvFile {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv(EnvDotEnvFile)
	if path == "" {
		path = defaultDotEnv
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}
