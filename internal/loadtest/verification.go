package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// Verification errors.
var (
	ErrInconsistent  = errors.New("prediction is internally inconsistent")
	ErrNotIdempotent = errors.New("prediction changed on re-submission")
)

// checkPrediction verifies the distribution sums to 1 and confidence is the
// top probability in percent.
func checkPrediction(p Prediction) error {
	if len(p.Distribution) == 0 {
		return fmt.Errorf("%w: empty distribution", ErrInconsistent)
	}
	var sum float64
	for _, v := range p.Distribution {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: probability %v out of range", ErrInconsistent, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > distributionEpsilon {
		return fmt.Errorf("%w: distribution sums to %v", ErrInconsistent, sum)
	}
	if top := slices.Max(p.Distribution) * PercentageMultiplier; math.Abs(top-p.Confidence) > confidenceEpsilon {
		return fmt.Errorf("%w: confidence %v, top probability %v%%", ErrInconsistent, p.Confidence, top)
	}
	return nil
}

// samePrediction reports whether two answers for the same input agree exactly.
func samePrediction(a, b Prediction) bool {
	return a.Position == b.Position && a.Confidence == b.Confidence && slices.Equal(a.Distribution, b.Distribution)
}

// verifyIdempotence re-submits up to config.Recheck successful samples and
// compares the answers with the first round.
func verifyIdempotence(ctx context.Context, config *Config, samples []Sample, results []Result, stats *Stats) error {
	logger.Get().Info(ctx, "verifying idempotence", logger.Int("recheck", config.Recheck))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/predict"

	for i, first := range results {
		if stats.Rechecked >= config.Recheck {
			break
		}
		if first.Status != StatusOK || first.Err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled during verification: %w", err)
		}

		again := submitSingleSample(ctx, client, url, samples[i])
		stats.Rechecked++
		if again.Status != StatusOK || !samePrediction(first.Prediction, again.Prediction) {
			stats.Mismatched++
			if config.Verbose {
				logger.Get().Warn(ctx, "prediction changed on re-submission",
					logger.String("sampleId", samples[i].ID),
					logger.String("first", first.Prediction.Position),
					logger.String("again", again.Prediction.Position),
					logger.Int("status", again.Status))
			}
		}
	}

	if stats.Mismatched > 0 {
		return fmt.Errorf("%w: %d of %d", ErrNotIdempotent, stats.Mismatched, stats.Rechecked)
	}
	logger.Get().Info(ctx, "idempotence verified", logger.Int("rechecked", stats.Rechecked))
	return nil
}
