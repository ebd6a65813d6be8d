// Package types contains the response envelopes shared across the application.
package types

import "time"

// TimestampLayout renders UTC wall-clock time as ISO-8601 with microseconds
// and no zone suffix, e.g. 2024-05-01T12:30:45.123456.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Timestamp formats t in UTC using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a value produced by Timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.UTC)
}

// HomeResponse is returned by GET /.
type HomeResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Hostname  string `json:"hostname"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// InfoResponse is returned by GET /info.
type InfoResponse struct {
	AppName        string `json:"app_name"`
	Version        string `json:"version"`
	RuntimeVersion string `json:"runtime_version"`
	Hostname       string `json:"hostname"`
	Environment    string `json:"environment"`
}

// EchoResponse is returned by POST /api/echo. Echo is always emitted, even
// when the posted document was a JSON null.
type EchoResponse struct {
	Echo      any    `json:"echo"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body of every error reply. Message is omitted for
// client input errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AppInfo describes the running build.
type AppInfo struct {
	Name           string
	Version        string
	RuntimeVersion string
}
