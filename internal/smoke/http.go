package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pulse/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do sends a request and returns the status code and the whole body.
func (c *HTTPClient) Do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, data, nil
}

// submitEchoes posts payloads concurrently and verifies every reply.
func submitEchoes(ctx context.Context, config *Config, client *HTTPClient, payloads []Payload, stats *Stats) {
	logger.Get().Info(ctx, "submitting echo requests",
		logger.Int("requests", len(payloads)),
		logger.Int("workers", config.Workers))

	url := config.BaseURL + "/api/echo"

	var (
		sent    int64
		matched int64
		failed  int64

		samplesMu sync.Mutex
		lastMu    sync.Mutex
	)
	lastReport := time.Now()

	payloadChan := make(chan Payload, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for p := range payloadChan {
				err := echoOnce(ctx, client, url, p)
				atomic.AddInt64(&sent, 1)
				if err == nil {
					atomic.AddInt64(&matched, 1)
				} else {
					atomic.AddInt64(&failed, 1)
					samplesMu.Lock()
					if len(stats.FailureSamples) < maxFailureSamples {
						stats.FailureSamples = append(stats.FailureSamples, err.Error())
					}
					samplesMu.Unlock()
					if config.Verbose {
						logger.Get().Warn(ctx, "echo mismatch", logger.String("id", p.ID), logger.Error(err))
					}
				}

				lastMu.Lock()
				if time.Since(lastReport) >= progressInterval {
					lastReport = time.Now()
					logger.Get().Info(ctx, "progress",
						logger.Int64("sent", atomic.LoadInt64(&sent)),
						logger.Int("total", len(payloads)),
						logger.Int64("failed", atomic.LoadInt64(&failed)))
				}
				lastMu.Unlock()
			}
		}()
	}

	go func() {
		defer close(payloadChan)
		for _, p := range payloads {
			select {
			case <-ctx.Done():
				return
			case payloadChan <- p:
			}
		}
	}()

	wg.Wait()

	stats.EchoesSent = int(atomic.LoadInt64(&sent))
	stats.EchoesMatched = int(atomic.LoadInt64(&matched))
	stats.EchoesFailed = int(atomic.LoadInt64(&failed))
}

// echoOnce posts one payload and checks that it came back unchanged.
func echoOnce(ctx context.Context, client *HTTPClient, url string, p Payload) error {
	sent, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	status, body, err := client.Do(ctx, http.MethodPost, url, sent)
	if err != nil {
		return err
	}
	return verifyEcho(sent, status, body)
}
