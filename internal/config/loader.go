package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FOOTY_"

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FOOTY_CONFIG is set
//  3. env (prefix FOOTY_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FOOTY_MODEL_PATH -> model_path; underscores are kept to match the tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.ModelPath == "":
		return invalid("model_path must not be empty")
	case c.LabelEncoderPath == "":
		return invalid("label_encoder_path must not be empty")
	case c.InferenceSessions < 1:
		return invalid("inference_sessions must be at least 1")
	case c.PredictionCacheSize < 0:
		return invalid("prediction_cache_size must not be negative")
	case c.MaxBodyBytes <= 0:
		return invalid("max_body_bytes must be positive")
	case c.UpstreamTimeoutMS <= 0:
		return invalid("upstream_timeout_ms must be positive")
	case c.LiveFallbackDays <= 0:
		return invalid("live_fallback_days must be positive")
	}

	if err := c.validateMetrics(); err != nil {
		return err
	}

	switch strings.ToLower(c.ModelFormat) {
	case "auto", "onnx", "linear":
	default:
		return invalid(fmt.Sprintf("model_format %q must be auto, onnx or linear", c.ModelFormat))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return invalid(fmt.Sprintf("log_format %q must be text or json", c.LogFormat))
	}
	return nil
}

var metricNameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateMetrics rejects settings the Prometheus client would panic on.
func (c *Config) validateMetrics() error {
	for key, v := range map[string]string{"metrics_namespace": c.MetricsNamespace, "metrics_subsystem": c.MetricsSubsystem} {
		if v != "" && !metricNameRE.MatchString(v) {
			return invalid(fmt.Sprintf("%s %q is not a valid metric name part", key, v))
		}
	}
	for name := range c.MetricsLabels {
		if !metricNameRE.MatchString(name) || strings.HasPrefix(name, "__") {
			return invalid(fmt.Sprintf("metrics_labels key %q is not a valid label name", name))
		}
	}
	for i := 1; i < len(c.MetricsLatencyBuckets); i++ {
		if c.MetricsLatencyBuckets[i] <= c.MetricsLatencyBuckets[i-1] {
			return invalid("metrics_latency_buckets must be strictly increasing")
		}
	}
	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
