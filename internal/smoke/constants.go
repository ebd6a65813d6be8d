package smoke

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	maxFailureSamples    = 10
	progressInterval     = time.Second
)
