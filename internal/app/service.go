// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aneeb02/footyPredatorr/internal/adapters/artifact"
	"github.com/aneeb02/footyPredatorr/internal/adapters/inference"
	"github.com/aneeb02/footyPredatorr/internal/domain/labels"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	"github.com/aneeb02/footyPredatorr/internal/domain/pipeline"
	"github.com/aneeb02/footyPredatorr/internal/domain/types"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
	"github.com/aneeb02/footyPredatorr/pkg/metrics"
)

// Sentinel kinds for service state.
var (
	ErrNotStarted   = fmt.Errorf("service not started: %w", model.ErrNotReady)
	ErrNotAvailable = fmt.Errorf("lookup not configured: %w", model.ErrNotReady)
	// ErrStopped is returned by Start after Stop; artifacts are never reloaded.
	ErrStopped = fmt.Errorf("service stopped: %w", model.ErrArtifactLoad)
)

// WikiLookup fetches encyclopedia summaries.
type WikiLookup interface {
	Summary(ctx context.Context, player string) (types.WikiSummary, error)
}

// MatchLookup fetches match feeds.
type MatchLookup interface {
	Live(ctx context.Context) (types.MatchFeed, error)
	Window(ctx context.Context, from, to string) (types.MatchFeed, error)
}

// Service owns the loaded artifacts and the prediction pipeline.
type Service struct {
	mu sync.RWMutex

	// Artifact configuration
	model            inference.Config
	labelEncoderPath string
	cacheSize        int

	// Loaded state; immutable once started
	classifier inference.Classifier
	encoder    *labels.Encoder
	pipeline   *pipeline.Pipeline

	// Upstream lookups
	wiki    WikiLookup
	matches MatchLookup

	// State
	started   bool
	stopped   bool
	startedAt time.Time
	degraded  atomic.Pointer[string]

	predictions atomic.Int64
	failures    sync.Map // pipeline.Kind -> *atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModel sets where and how the classifier artifact is loaded.
func WithModel(cfg inference.Config) Option {
	return func(s *Service) {
		s.model = cfg
	}
}

// WithLabelEncoderPath sets the class list artifact path.
func WithLabelEncoderPath(path string) Option {
	return func(s *Service) {
		s.labelEncoderPath = path
	}
}

// WithClassifier injects an already loaded classifier; the model config is
// then ignored.
func WithClassifier(c inference.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithLabelEncoder injects an already loaded encoder.
func WithLabelEncoder(enc *labels.Encoder) Option {
	return func(s *Service) {
		if enc != nil {
			s.encoder = enc
		}
	}
}

// WithCacheSize sets the prediction memo cache size; 0 disables it.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithWiki sets the encyclopedia lookup.
func WithWiki(w WikiLookup) Option {
	return func(s *Service) {
		s.wiki = w
	}
}

// WithMatches sets the match-data lookup.
func WithMatches(m MatchLookup) Option {
	return func(s *Service) {
		s.matches = m
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		model:     inference.Config{Format: inference.FormatAuto, Sessions: 1},
		cacheSize: 1024,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the artifacts, checks they agree with each other and runs a
// self-check prediction. Any failure wraps model.ErrArtifactLoad and leaves
// the service stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.stopped {
		return ErrStopped
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prediction service...")

	if err := s.loadArtifacts(ctx); err != nil {
		return err
	}

	if got, want := s.classifier.NumClasses(), s.encoder.Len(); got != want {
		return s.abort(ctx, fmt.Errorf("classifier has %d classes, label encoder %d: %w", got, want, model.ErrArtifactLoad))
	}

	p, err := pipeline.New(s.classifier, s.encoder,
		pipeline.WithLogger(s.logger.Named("pipeline")),
		pipeline.WithCacheSize(s.cacheSize),
	)
	if err != nil {
		return s.abort(ctx, fmt.Errorf("%w: %w", model.ErrArtifactLoad, err))
	}

	res, err := p.Predict(ctx, model.RawInput{})
	if err != nil {
		return s.abort(ctx, fmt.Errorf("self-check prediction: %w: %w", model.ErrArtifactLoad, err))
	}

	s.pipeline = p
	s.started = true
	s.startedAt = time.Now()
	s.degraded.Store(nil)
	metrics.SetReady(true)

	s.logger.Info(ctx, "prediction service started",
		logger.Int("classes", s.encoder.Len()),
		logger.Int("cacheSize", s.cacheSize),
		logger.String("selfCheckPosition", res.Position),
		logger.Float64("selfCheckConfidence", res.Confidence),
	)

	return nil
}

func (s *Service) loadArtifacts(ctx context.Context) error {
	if s.classifier == nil {
		c, err := inference.Load(ctx, s.model)
		if err != nil {
			s.logger.Error(ctx, "failed to load classifier", logger.String("path", s.model.ModelPath), logger.Error(err))
			return err
		}
		s.classifier = c
	}
	if s.encoder == nil {
		enc, err := artifact.LoadLabelEncoder(s.labelEncoderPath)
		if err != nil {
			return s.abort(ctx, err)
		}
		s.encoder = enc
	}
	return nil
}

// abort releases what was loaded and returns err.
func (s *Service) abort(ctx context.Context, err error) error {
	s.logger.Error(ctx, "artifact check failed", logger.Error(err))
	if s.classifier != nil {
		_ = s.classifier.Close()
		s.classifier = nil
	}
	s.encoder = nil
	metrics.SetReady(false)
	return err
}

// Stop releases the artifacts. The service cannot be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping prediction service...")

	if err := s.classifier.Close(); err != nil {
		s.logger.Warn(context.Background(), "failed to close classifier", logger.Error(err))
	}

	s.classifier = nil
	s.encoder = nil
	s.pipeline = nil
	s.started = false
	s.stopped = true
	metrics.SetReady(false)
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Predict runs the pipeline for raw. Inference and unknown-label failures not
// caused by the caller's context mark the service degraded.
func (s *Service) Predict(ctx context.Context, raw model.RawInput) (model.PredictionResult, error) {
	s.mu.RLock()
	p, started := s.pipeline, s.started
	s.mu.RUnlock()
	if !started {
		return model.PredictionResult{}, ErrNotStarted
	}

	res, err := p.Predict(ctx, raw)
	if err != nil {
		kind := pipeline.KindOf(err)
		s.countFailure(kind)
		if ctx.Err() == nil && (kind == pipeline.KindInference || kind == pipeline.KindUnknownLabel) {
			s.markDegraded(ctx, fmt.Sprintf("%s: %v", kind, err))
		}
		return model.PredictionResult{}, err
	}
	s.predictions.Add(1)
	return res, nil
}

func (s *Service) countFailure(kind pipeline.Kind) {
	n, _ := s.failures.LoadOrStore(kind, new(atomic.Int64))
	n.(*atomic.Int64).Add(1)
}

func (s *Service) markDegraded(ctx context.Context, reason string) {
	if s.degraded.CompareAndSwap(nil, &reason) {
		s.logger.Error(ctx, "service degraded", logger.String("reason", reason))
		metrics.SetReady(false)
	}
}

// Ready reports whether predictions can be served, and why not.
func (s *Service) Ready() (bool, string) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return false, "artifacts not loaded"
	}
	if r := s.degraded.Load(); r != nil {
		return false, *r
	}
	return true, ""
}

// Classes returns the position names the model can predict.
func (s *Service) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.encoder == nil {
		return nil
	}
	return s.encoder.Classes()
}

// Wiki looks up the encyclopedia summary for player.
func (s *Service) Wiki(ctx context.Context, player string) (types.WikiSummary, error) {
	if s.wiki == nil {
		return types.WikiSummary{}, ErrNotAvailable
	}
	return s.wiki.Summary(ctx, player)
}

// Matches returns the live feed, or the dated window when from and to are set.
func (s *Service) Matches(ctx context.Context, from, to string) (types.MatchFeed, error) {
	if s.matches == nil {
		return types.MatchFeed{}, ErrNotAvailable
	}
	if from == "" && to == "" {
		return s.matches.Live(ctx)
	}
	return s.matches.Window(ctx, from, to)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ready, reason := true, ""
	if r := s.degraded.Load(); r != nil {
		ready, reason = false, *r
	}
	stats := map[string]interface{}{
		"started":     s.started,
		"ready":       s.started && ready,
		"predictions": s.predictions.Load(),
		"cacheSize":   s.cacheSize,
	}
	if reason != "" {
		stats["degradedReason"] = reason
	}

	failures := map[string]int64{}
	s.failures.Range(func(k, v any) bool {
		failures[string(k.(pipeline.Kind))] = v.(*atomic.Int64).Load()
		return true
	})
	stats["failures"] = failures

	if s.started {
		stats["classes"] = s.encoder.Classes()
		stats["numClasses"] = s.encoder.Len()
		stats["cacheEntries"] = s.pipeline.CacheLen()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}

	return stats
}
