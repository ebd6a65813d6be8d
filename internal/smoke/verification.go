package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/okian/pulse/internal/domain/types"
	"github.com/okian/pulse/pkg/logger"
)

// Contract violations.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrUnexpectedBody   = errors.New("unexpected body")
	ErrEchoMismatch     = errors.New("echo does not match request")
)

const invalidJSONBody = `{"error":"Invalid JSON data"}`

// check is one request against a fixed route with an expected reply.
type check struct {
	name   string
	method string
	path   string
	body   []byte
	status int
	verify func(body []byte) error
}

func contractChecks() []check {
	return []check{
		{name: "home", method: http.MethodGet, path: "/", status: http.StatusOK, verify: expectFields(map[string]string{"status": "running"}, "message", "timestamp", "hostname")},
		{name: "health", method: http.MethodGet, path: "/health", status: http.StatusOK, verify: expectFields(map[string]string{"status": "healthy"}, "timestamp")},
		{name: "info", method: http.MethodGet, path: "/info", status: http.StatusOK, verify: expectFields(nil, "app_name", "version", "runtime_version", "hostname", "environment")},
		{name: "not found", method: http.MethodGet, path: "/smoke/missing", status: http.StatusNotFound, verify: expectFields(map[string]string{"error": "Not found"}, "message")},
		{name: "wrong method", method: http.MethodDelete, path: "/health", status: http.StatusNotFound, verify: expectFields(map[string]string{"error": "Not found"})},
		{name: "invalid echo", method: http.MethodPost, path: "/api/echo", body: []byte("not json"), status: http.StatusBadRequest, verify: expectExact(invalidJSONBody)},
	}
}

// runChecks exercises every fixed route once.
func runChecks(ctx context.Context, config *Config, client *HTTPClient, stats *Stats) {
	for _, c := range contractChecks() {
		status, body, err := client.Do(ctx, c.method, config.BaseURL+c.path, c.body)
		if err == nil && status != c.status {
			err = fmt.Errorf("%w: got %d, want %d", ErrUnexpectedStatus, status, c.status)
		}
		if err == nil {
			err = c.verify(body)
		}

		if err != nil {
			stats.ChecksFailed++
			if len(stats.FailureSamples) < maxFailureSamples {
				stats.FailureSamples = append(stats.FailureSamples, c.name+": "+err.Error())
			}
			logger.Get().Error(ctx, "contract check failed", logger.String("check", c.name), logger.Error(err))
			continue
		}
		stats.ChecksPassed++
		logger.Get().Debug(ctx, "contract check passed", logger.String("check", c.name))
	}
}

// expectFields requires the listed keys to be present and the given keys to
// carry the given string values. A "timestamp" key must parse.
func expectFields(values map[string]string, keys ...string) func([]byte) error {
	return func(body []byte) error {
		var obj map[string]any
		if err := json.Unmarshal(body, &obj); err != nil {
			return fmt.Errorf("%w: %w", ErrUnexpectedBody, err)
		}
		for k, want := range values {
			if got, _ := obj[k].(string); got != want {
				return fmt.Errorf("%w: %s=%q, want %q", ErrUnexpectedBody, k, got, want)
			}
		}
		for _, k := range keys {
			if _, ok := obj[k]; !ok {
				return fmt.Errorf("%w: missing %s", ErrUnexpectedBody, k)
			}
		}
		if ts, ok := obj["timestamp"].(string); ok {
			if _, err := types.ParseTimestamp(ts); err != nil {
				return fmt.Errorf("%w: timestamp %q: %w", ErrUnexpectedBody, ts, err)
			}
		}
		return nil
	}
}

func expectExact(want string) func([]byte) error {
	return func(body []byte) error {
		if got := string(bytes.TrimSpace(body)); got != want {
			return fmt.Errorf("%w: %q", ErrUnexpectedBody, got)
		}
		return nil
	}
}

// verifyEcho checks an echo reply against the bytes that were posted.
func verifyEcho(sent []byte, status int, body []byte) error {
	if status != http.StatusOK {
		return fmt.Errorf("%w: got %d, want %d", ErrUnexpectedStatus, status, http.StatusOK)
	}

	var reply struct {
		Echo      json.RawMessage `json:"echo"`
		Timestamp string          `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedBody, err)
	}
	if _, err := types.ParseTimestamp(reply.Timestamp); err != nil {
		return fmt.Errorf("%w: timestamp %q: %w", ErrUnexpectedBody, reply.Timestamp, err)
	}

	want, err := decodeNumbers(sent)
	if err != nil {
		return err
	}
	got, err := decodeNumbers(reply.Echo)
	if err != nil {
		return err
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Errorf("%w: sent %s, got %s", ErrEchoMismatch, sent, reply.Echo)
	}
	return nil
}

func decodeNumbers(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedBody, err)
	}
	return v, nil
}
