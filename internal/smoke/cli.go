package smoke

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/pulse/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger, writing to stdout and, when
// logFile is set, to that file as well.
func SetupLogging(logFile string) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Pulse Smoke Tool
================

Concurrent contract checker for a running pulse service.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://127.0.0.1:5000")
  -requests int
        Number of echo round-trips to perform (default 1000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Also write output to this file
  -verbose
        Log every failed check
  -help
        Show this help message

Examples:
  # Check a local instance
  go run ./cmd/smoke

  # Heavier run against another host
  go run ./cmd/smoke -requests 50000 -workers 32 -url http://10.0.0.5:8080
`)
}
