package loadtest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/aneeb02/footyPredatorr/internal/domain/features"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	kindDivisor        = 10
)

// fieldRange bounds generated values per field; unlisted fields use the
// attribute range.
var fieldRange = map[string][2]float64{
	"age":    {16, 40},
	"height": {160, 205},
	"weight": {55, 100},
}

var attributeRange = [2]float64{20, 99}

var malformedValues = []any{"not-a-number", "abc", true, "12kg", []any{1, 2}}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, n).
func getRandomInt(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateSamples creates the configured number of inputs across all kinds.
func generateSamples(ctx context.Context, config *Config, stats *Stats) ([]Sample, error) {
	logger.Get().Info(ctx, "generating inputs", logger.Int("numRequests", config.NumRequests))

	samples := make([]Sample, config.NumRequests)
	for i := range samples {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during input generation: %w", err)
		}
		samples[i] = generateSingleSample(pickKind())
	}

	stats.Generated = len(samples)
	logger.Get().Info(ctx, "generated inputs successfully", logger.Int("count", len(samples)))
	return samples, nil
}

// pickKind favours valid inputs: 5/10 complete, 3/10 partial, 1/10 empty,
// 1/10 malformed.
func pickKind() Kind {
	switch n := getRandomInt(kindDivisor); {
	case n < 5:
		return KindComplete
	case n < 8:
		return KindPartial
	case n < 9:
		return KindEmpty
	default:
		return KindMalformed
	}
}

// generateSingleSample creates one input of the given kind.
func generateSingleSample(kind Kind) Sample {
	s := Sample{ID: uuid.NewString(), Kind: kind, Input: map[string]any{}}
	fields := features.Fields()

	switch kind {
	case KindComplete:
		for _, f := range fields {
			s.Input[f.Name] = randomValue(f)
		}
	case KindPartial:
		for _, f := range fields {
			if getRandomInt(2) == 0 {
				continue
			}
			name := f.Name
			if len(f.Aliases) > 0 && getRandomInt(2) == 0 {
				name = f.Aliases[0]
			}
			var v any = randomValue(f)
			switch getRandomInt(4) {
			case 0:
				v = strconv.FormatFloat(v.(float64), 'f', -1, 64)
			case 1:
				v = ""
			}
			s.Input[name] = v
		}
	case KindMalformed:
		for _, f := range fields {
			s.Input[f.Name] = randomValue(f)
		}
		f := fields[getRandomInt(len(fields))]
		s.Input[f.Name] = malformedValues[getRandomInt(len(malformedValues))]
	case KindEmpty:
	}
	return s
}

// randomValue draws a value for f; integer fields sometimes carry a fraction
// so truncation is exercised.
func randomValue(f features.Field) float64 {
	r, ok := fieldRange[f.Name]
	if !ok {
		r = attributeRange
	}
	v := r[0] + getRandomFloat()*(r[1]-r[0])
	if f.Kind == features.Integer && getRandomInt(3) != 0 {
		return math.Trunc(v)
	}
	return math.Round(v*10) / 10
}
