// Package pipeline orchestrates one prediction: feature assembly, inference,
// label resolution and confidence extraction.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aneeb02/footyPredatorr/internal/domain/confidence"
	"github.com/aneeb02/footyPredatorr/internal/domain/features"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
	"github.com/aneeb02/footyPredatorr/pkg/metrics"
)

// Classifier is the inference port the pipeline drives.
type Classifier interface {
	Classify(ctx context.Context, v model.FeatureVector) (model.RawLabel, error)
	ClassifyWithDistribution(ctx context.Context, v model.FeatureVector) ([]float64, error)
}

// LabelResolver maps raw labels to position names.
type LabelResolver interface {
	Resolve(raw model.RawLabel) (string, error)
	Classes() []string
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for failure reports.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCacheSize enables an LRU memo cache of size entries keyed by feature
// vector. Zero or negative disables caching.
func WithCacheSize(size int) Option {
	return func(p *Pipeline) {
		p.cacheSize = size
	}
}

// Pipeline is safe for concurrent use once constructed.
type Pipeline struct {
	classifier Classifier
	resolver   LabelResolver
	classes    []string
	logger     logger.Logger
	cacheSize  int
	cache      *lru.Cache[model.FeatureVector, model.PredictionResult]
}

// New builds a pipeline over a loaded classifier and label resolver.
func New(classifier Classifier, resolver LabelResolver, opts ...Option) (*Pipeline, error) {
	if classifier == nil || resolver == nil {
		return nil, errors.New("pipeline: classifier and resolver are required")
	}
	p := &Pipeline{
		classifier: classifier,
		resolver:   resolver,
		classes:    resolver.Classes(),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cacheSize > 0 {
		c, err := lru.New[model.FeatureVector, model.PredictionResult](p.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("pipeline: create cache: %w", err)
		}
		p.cache = c
	}
	return p, nil
}

// Predict runs the full sequence for raw. On failure it returns a *Failure and
// no partial result. Identical inputs always produce identical results.
func (p *Pipeline) Predict(ctx context.Context, raw model.RawInput) (res model.PredictionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = model.PredictionResult{}
			err = &Failure{
				Kind:    KindInference,
				Message: fmt.Sprintf("classifier panicked: %v", r),
				Err:     fmt.Errorf("panic: %v: %w", r, model.ErrInference),
			}
		}
		if err != nil {
			p.report(ctx, err)
		}
	}()

	vec, err := features.Build(raw)
	if err != nil {
		return model.PredictionResult{}, newFailure(err)
	}

	if p.cache != nil {
		if cached, ok := p.cache.Get(vec); ok {
			metrics.RecordCacheHit()
			return withInput(cached, raw), nil
		}
		metrics.RecordCacheMiss()
	}

	start := time.Now()
	label, err := p.classifier.Classify(ctx, vec)
	if err != nil {
		return model.PredictionResult{}, newFailure(err)
	}
	dist, err := p.classifier.ClassifyWithDistribution(ctx, vec)
	if err != nil {
		return model.PredictionResult{}, newFailure(err)
	}
	metrics.RecordInferenceLatency(float64(time.Since(start).Microseconds()) / 1000)

	position, err := p.resolver.Resolve(label)
	if err != nil {
		return model.PredictionResult{}, newFailure(err)
	}

	summary := confidence.Summarize(dist)
	res = model.PredictionResult{
		Features:     vec,
		Position:     position,
		Confidence:   summary.Confidence,
		Distribution: summary.Distribution,
		Classes:      confidence.Breakdown(p.classes, summary.Distribution),
	}
	metrics.RecordPrediction(position, res.Confidence)

	if p.cache != nil {
		p.cache.Add(vec, res)
	}
	return withInput(res, raw), nil
}

// CacheLen reports the number of memoized vectors.
func (p *Pipeline) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

func (p *Pipeline) report(ctx context.Context, err error) {
	kind := KindOf(err)
	metrics.RecordPredictionFailure(string(kind))
	if kind == KindInput {
		p.logger.Warn(ctx, "prediction rejected", logger.String("kind", string(kind)), logger.Error(err))
		return
	}
	p.logger.Error(ctx, "prediction failed", logger.String("kind", string(kind)), logger.Error(err))
}

// withInput returns a copy of res carrying raw, with slices detached from the
// cached value.
func withInput(res model.PredictionResult, raw model.RawInput) model.PredictionResult {
	res.Input = raw
	res.Distribution = slices.Clone(res.Distribution)
	res.Classes = slices.Clone(res.Classes)
	return res
}
