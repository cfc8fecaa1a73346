package loadtest

import "time"

// HTTP status code constants.
const (
	StatusOK         = 200
	StatusBadRequest = 400
	statusServerMin  = 500
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	progressInterval     = time.Second
	distributionEpsilon  = 1e-3
	confidenceEpsilon    = 1e-6
)
