// Package loadtest drives a running prediction service with generated inputs
// and checks that its answers are consistent and repeatable.
package loadtest

import (
	"context"
	"fmt"
	"time"

	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// SetupLogging configures logging to both console and a rotated file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "predict_load_" + time.Now().Format("20060102_150405") + ".log"
	}

	if err := logger.Init(logger.WithFile(logFile)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}

	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	fmt.Print(`Prediction Load Test Tool
=========================

Submits generated player inputs to /predict concurrently and checks the
answers: malformed inputs must be rejected with 400, everything else must
succeed with a consistent distribution, and re-submitting an input must
return the same prediction.

Usage:
  go run ./cmd/predict-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -requests int
        Number of inputs to generate and submit (default 2000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -recheck int
        Successful inputs to re-submit for the idempotence check (default 200)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for generated inputs (default: generated_inputs_TIMESTAMP.json)
  -log string
        Log file for test output (default: predict_load_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run ./cmd/predict-load

  # Heavier run against another address
  go run ./cmd/predict-load -requests 20000 -workers 32 -url http://localhost:8080
`)
}
