package loadtest

import "time"

// Config holds configuration for the load test.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumRequests int           // Number of inputs to generate and submit
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Recheck     int           // Successful inputs re-submitted to check idempotence
	OutputFile  string        // Output file for generated inputs
	Verbose     bool          // Enable verbose logging
}

// Kind labels how an input was generated.
type Kind string

// Input kinds.
const (
	KindComplete  Kind = "complete"  // every field, numeric JSON values
	KindPartial   Kind = "partial"   // random subset, some as text or aliases
	KindEmpty     Kind = "empty"     // no fields at all
	KindMalformed Kind = "malformed" // one field that is not a number
)

// Sample is one generated request body.
type Sample struct {
	ID    string         `json:"id"`
	Kind  Kind           `json:"kind"`
	Input map[string]any `json:"input"`
}

// ExpectedStatus is the HTTP status a healthy service returns for the sample.
func (s Sample) ExpectedStatus() int {
	if s.Kind == KindMalformed {
		return StatusBadRequest
	}
	return StatusOK
}

// Prediction mirrors the fields of a prediction response the tool checks.
type Prediction struct {
	Position     string    `json:"position"`
	Confidence   float64   `json:"confidence"`
	Distribution []float64 `json:"distribution"`
}

// ErrorResponse mirrors the API error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of submitting one sample.
type Result struct {
	Status     int
	Prediction Prediction
	Error      ErrorResponse
	Err        error
}

// Stats holds test statistics.
type Stats struct {
	Generated       int
	Submitted       int
	Succeeded       int
	InputErrors     int
	ServerErrors    int
	TransportErrors int
	Unexpected      int // status differs from the sample's expected status
	Invalid         int // 200 responses whose distribution or confidence is inconsistent
	Rechecked       int
	Mismatched      int // re-submissions that did not reproduce the first answer
	ByPosition      map[string]int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
