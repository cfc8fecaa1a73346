package inference

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/aneeb02/footyPredatorr/internal/adapters/artifact"
	"github.com/aneeb02/footyPredatorr/internal/domain/features"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
)

const linearVersion = 1

// LinearArtifact is the JSON form of a multinomial logistic regression with
// an optional standard scaler in front of it.
type LinearArtifact struct {
	Format       string      `json:"format"`
	Version      int         `json:"version"`
	Features     []string    `json:"features"`
	Mean         []float64   `json:"mean,omitempty"`
	Scale        []float64   `json:"scale,omitempty"`
	Coefficients [][]float64 `json:"coefficients"` // [class][feature]
	Intercepts   []float64   `json:"intercepts"`
}

// Linear evaluates a LinearArtifact. It holds no mutable state.
type Linear struct {
	mean  []float64
	scale []float64
	coef  [][]float64
	bias  []float64
}

// LoadLinear reads and validates a (possibly gzipped) linear artifact.
func LoadLinear(path string) (*Linear, error) {
	var a LinearArtifact
	if err := artifact.DecodeJSON(path, &a); err != nil {
		return nil, err
	}
	return NewLinear(a)
}

// NewLinear validates a against the feature layout the builder produces.
func NewLinear(a LinearArtifact) (*Linear, error) {
	if a.Format != "" && a.Format != FormatLinear {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, a.Format)
	}
	if a.Version != linearVersion {
		return nil, fmt.Errorf("%w: %d", artifact.ErrBadVersion, a.Version)
	}
	if !slices.Equal(a.Features, features.Names()) {
		return nil, fmt.Errorf("%w: artifact %v, builder %v", ErrFeatureMismatch, a.Features, features.Names())
	}
	if len(a.Coefficients) == 0 || len(a.Coefficients) != len(a.Intercepts) {
		return nil, fmt.Errorf("%w: %d coefficient rows, %d intercepts", ErrShape, len(a.Coefficients), len(a.Intercepts))
	}
	for i, row := range a.Coefficients {
		if len(row) != model.FeatureCount {
			return nil, fmt.Errorf("%w: coefficient row %d has %d values", ErrShape, i, len(row))
		}
	}
	if (a.Mean == nil) != (a.Scale == nil) {
		return nil, fmt.Errorf("%w: mean and scale must be given together", ErrShape)
	}
	if a.Mean != nil && (len(a.Mean) != model.FeatureCount || len(a.Scale) != model.FeatureCount) {
		return nil, fmt.Errorf("%w: scaler width %d/%d", ErrShape, len(a.Mean), len(a.Scale))
	}
	for i, s := range a.Scale {
		if s == 0 {
			return nil, fmt.Errorf("%w: zero scale for %s", ErrShape, a.Features[i])
		}
	}

	l := &Linear{
		mean:  slices.Clone(a.Mean),
		scale: slices.Clone(a.Scale),
		coef:  make([][]float64, len(a.Coefficients)),
		bias:  slices.Clone(a.Intercepts),
	}
	for i, row := range a.Coefficients {
		l.coef[i] = slices.Clone(row)
	}
	return l, nil
}

// Classify returns the most probable class.
func (l *Linear) Classify(ctx context.Context, v model.FeatureVector) (model.RawLabel, error) {
	dist, err := l.ClassifyWithDistribution(ctx, v)
	if err != nil {
		return 0, err
	}
	return model.RawLabel(argmax(dist)), nil
}

// ClassifyWithDistribution returns the softmax of the class scores.
func (l *Linear) ClassifyWithDistribution(ctx context.Context, v model.FeatureVector) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("linear: %w: %w", err, model.ErrInference)
	}
	x := v
	if l.mean != nil {
		for i := range x {
			x[i] = (x[i] - l.mean[i]) / l.scale[i]
		}
	}

	logits := make([]float64, len(l.coef))
	for c, row := range l.coef {
		z := l.bias[c]
		for i, w := range row {
			z += w * x[i]
		}
		logits[c] = z
	}

	dist := softmax(logits)
	if err := checkDistribution(dist, len(l.coef)); err != nil {
		return nil, err
	}
	return dist, nil
}

// NumClasses is the number of coefficient rows.
func (l *Linear) NumClasses() int { return len(l.coef) }

// Close is a no-op.
func (l *Linear) Close() error { return nil }

func softmax(logits []float64) []float64 {
	peak := math.Inf(-1)
	for _, z := range logits {
		peak = math.Max(peak, z)
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, z := range logits {
		out[i] = math.Exp(z - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
