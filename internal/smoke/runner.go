// Package smoke drives a running pulse service through its HTTP contract:
// every fixed route once, then many concurrent echo round trips.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/pulse/pkg/logger"
)

// ErrSmokeFailed is returned when any check or echo failed.
var ErrSmokeFailed = errors.New("smoke run failed")

// Run executes the complete smoke run.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting pulse smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Any("verbose", config.Verbose))

	if config.Workers < 1 {
		config.Workers = 1
	}
	client := newHTTPClient(config.Timeout)

	// Step 1: fixed routes
	runChecks(ctx, config, client, stats)

	// Step 2: concurrent echo round trips
	if config.Requests > 0 {
		submitEchoes(ctx, config, client, generatePayloads(config.Requests), stats)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("smoke run interrupted: %w", err)
	}
	if !stats.OK() {
		return stats, fmt.Errorf("%w: %d checks and %d echoes failed", ErrSmokeFailed, stats.ChecksFailed, stats.EchoesFailed)
	}

	logger.Get().Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.EchoesSent > 0 {
		successRate = float64(stats.EchoesMatched) / float64(stats.EchoesSent) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.EchoesSent) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.Int("echoesSent", stats.EchoesSent),
		logger.Int("echoesMatched", stats.EchoesMatched),
		logger.Int("echoesFailed", stats.EchoesFailed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))

	for _, s := range stats.FailureSamples {
		logger.Get().Warn(ctx, "failure sample", logger.String("detail", s))
	}
}
