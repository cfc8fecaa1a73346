// Package inference adapts serialized classifiers to the prediction pipeline.
// Two backends are supported: ONNX graphs run through onnxruntime and a
// pure-Go multinomial logistic model stored as JSON.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/aneeb02/footyPredatorr/internal/domain/model"
)

// Supported artifact formats.
const (
	FormatAuto   = "auto"
	FormatONNX   = "onnx"
	FormatLinear = "linear"
)

// distributionTolerance bounds how far a distribution may drift from 1.
const distributionTolerance = 1e-3

// Errors raised while validating artifacts or their outputs.
var (
	ErrUnknownFormat   = errors.New("unknown model format")
	ErrShape           = errors.New("unexpected tensor shape")
	ErrFeatureMismatch = errors.New("feature names do not match")
	ErrBadDistribution = errors.New("invalid probability distribution")
	ErrClosed          = errors.New("classifier is closed")
)

// Classifier is a loaded, immutable model.
type Classifier interface {
	// Classify returns the encoded label for v.
	Classify(ctx context.Context, v model.FeatureVector) (model.RawLabel, error)
	// ClassifyWithDistribution returns one probability per class, in label
	// order.
	ClassifyWithDistribution(ctx context.Context, v model.FeatureVector) ([]float64, error)
	// NumClasses is the width of the distribution.
	NumClasses() int
	Close() error
}

// Config selects and locates the artifact to load.
type Config struct {
	Format       string // auto, onnx or linear
	ModelPath    string
	MetadataPath string // ONNX sidecar; defaults to <model>.json
	LibraryPath  string // onnxruntime shared library
	Sessions     int    // ONNX sessions in the pool
}

// Load opens the classifier described by cfg. Every failure wraps
// model.ErrArtifactLoad.
func Load(ctx context.Context, cfg Config) (Classifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load classifier: %w: %w", model.ErrArtifactLoad, err)
	}
	format, err := resolveFormat(cfg.Format, cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w: %w", model.ErrArtifactLoad, err)
	}

	var c Classifier
	switch format {
	case FormatONNX:
		c, err = LoadONNX(cfg)
	case FormatLinear:
		c, err = LoadLinear(cfg.ModelPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s classifier %s: %w: %w", format, cfg.ModelPath, model.ErrArtifactLoad, err)
	}
	return c, nil
}

func resolveFormat(format, path string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatONNX:
		return FormatONNX, nil
	case FormatLinear:
		return FormatLinear, nil
	case "", FormatAuto:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, ".gz")
	switch filepath.Ext(name) {
	case ".onnx":
		return FormatONNX, nil
	case ".json":
		return FormatLinear, nil
	default:
		return "", fmt.Errorf("%w: cannot infer from %q", ErrUnknownFormat, path)
	}
}

// checkDistribution verifies dist is a probability vector over n classes.
func checkDistribution(dist []float64, n int) error {
	if len(dist) != n {
		return fmt.Errorf("%w: %d probabilities for %d classes: %w", ErrBadDistribution, len(dist), n, model.ErrInference)
	}
	var sum float64
	for i, p := range dist {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: p[%d]=%v: %w", ErrBadDistribution, i, p, model.ErrInference)
		}
		sum += p
	}
	if math.Abs(sum-1) > distributionTolerance {
		return fmt.Errorf("%w: sums to %v: %w", ErrBadDistribution, sum, model.ErrInference)
	}
	return nil
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
