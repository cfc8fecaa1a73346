// Package config defines service configuration structures and loading hooks.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`
	// LogFile, when set, also writes logs to a size-rotated file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// MaxBodyBytes caps POST /predict bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// ModelPath locates the classifier artifact.
	ModelPath string `koanf:"model_path"`
	// ModelFormat is auto, onnx or linear. Auto picks by file extension.
	ModelFormat string `koanf:"model_format"`
	// ModelMetadataPath is the ONNX tensor sidecar; defaults to <model>.json.
	ModelMetadataPath string `koanf:"model_metadata_path"`
	// LabelEncoderPath locates the class list artifact.
	LabelEncoderPath string `koanf:"label_encoder_path"`
	// ONNXLibraryPath points at the onnxruntime shared library.
	ONNXLibraryPath string `koanf:"onnx_library_path"`
	// InferenceSessions sizes the ONNX session pool.
	InferenceSessions int `koanf:"inference_sessions"`
	// PredictionCacheSize bounds the memo cache; 0 disables it.
	PredictionCacheSize int `koanf:"prediction_cache_size"`

	// WikiBaseURL is the encyclopedia REST root.
	WikiBaseURL string `koanf:"wiki_base_url"`
	// FootballBaseURL is the match-data API root.
	FootballBaseURL string `koanf:"football_base_url"`
	// FootballAPIKey is sent as X-Auth-Token when set.
	FootballAPIKey string `koanf:"football_api_key"`
	// UpstreamTimeoutMS bounds each upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`
	// LiveFallbackDays is the past window used when no live matches exist.
	LiveFallbackDays int `koanf:"live_fallback_days"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	// MetricsLatencyBuckets overrides the latency histogram buckets (ms).
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`
	// MetricsLabels are attached to every metric, e.g. env or region.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		MaxBodyBytes:        64 << 10,
		ModelPath:           "artifacts/position_model.onnx",
		ModelFormat:         "auto",
		LabelEncoderPath:    "artifacts/label_encoder.json",
		InferenceSessions:   1,
		PredictionCacheSize: 1024,
		WikiBaseURL:         "https://en.wikipedia.org/api/rest_v1",
		FootballBaseURL:     "http://api.football-data.org/v4",
		UpstreamTimeoutMS:   5000,
		LiveFallbackDays:    7,
		MetricsNamespace:    "footy",
		MetricsSubsystem:    "predictor",
	}
}

// UpstreamTimeout is UpstreamTimeoutMS as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}
