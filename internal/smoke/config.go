package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Requests int           // Number of echo requests to send
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every failed check
}

// Payload is a document posted to /api/echo. ID makes every payload unique
// so a mixed-up response is detectable.
type Payload struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Value  int64          `json:"value"`
	Ratio  float64        `json:"ratio"`
	Tags   []string       `json:"tags"`
	Nested map[string]any `json:"nested"`
	Note   *string        `json:"note"`
}

// Stats holds run statistics.
type Stats struct {
	ChecksPassed   int
	ChecksFailed   int
	EchoesSent     int
	EchoesMatched  int
	EchoesFailed   int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	FailureSamples []string
}

// OK reports whether every check and echo succeeded.
func (s *Stats) OK() bool {
	return s.ChecksFailed == 0 && s.EchoesFailed == 0
}
