package loadtest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrUnexpectedOutcome reports responses that did not match their input kind.
var ErrUnexpectedOutcome = errors.New("unexpected responses")

// Run executes the complete load and consistency test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting prediction load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.NumRequests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("recheck", config.Recheck),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate inputs
	samples, err := generateSamples(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("input generation failed: %w", err)
	}

	// Step 3: Submit inputs concurrently
	results := submitSamples(ctx, config, samples, stats)

	// Step 4: Re-submit a sample and compare
	verifyErr := verifyIdempotence(ctx, config, samples, results, stats)

	// Step 5: Save inputs to file
	if err := saveSamplesToFile(ctx, config, samples); err != nil {
		logger.Get().Warn(ctx, "failed to save inputs to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return fmt.Errorf("result verification failed: %w", verifyErr)
	}
	if n := stats.Unexpected + stats.Invalid + stats.TransportErrors; n > 0 {
		return fmt.Errorf("%w: %d unexpected status, %d inconsistent, %d transport",
			ErrUnexpectedOutcome, stats.Unexpected, stats.Invalid, stats.TransportErrors)
	}

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is ready.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveSamplesToFile saves the generated inputs to a JSON file.
func saveSamplesToFile(ctx context.Context, config *Config, samples []Sample) error {
	if len(samples) == 0 {
		return errors.New("no inputs to save")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "generated_inputs_" + time.Now().Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal inputs: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "inputs saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Succeeded) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("inputErrors", stats.InputErrors),
		logger.Int("serverErrors", stats.ServerErrors),
		logger.Int("transportErrors", stats.TransportErrors),
		logger.Int("unexpected", stats.Unexpected),
		logger.Int("inconsistent", stats.Invalid),
		logger.Int("rechecked", stats.Rechecked),
		logger.Int("mismatched", stats.Mismatched),
		logger.Any("byPosition", stats.ByPosition),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
