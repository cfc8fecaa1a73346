package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/aneeb02/footyPredatorr/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "artifacts/position_model.onnx")
				convey.So(cfg.LabelEncoderPath, convey.ShouldEqual, "artifacts/label_encoder.json")
				convey.So(cfg.PredictionCacheSize, convey.ShouldEqual, 1024)
				convey.So(cfg.WikiBaseURL, convey.ShouldEqual, "https://en.wikipedia.org/api/rest_v1")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FOOTY_ADDR", ":8080")
			_ = os.Setenv("FOOTY_MODEL_PATH", "/models/pos.json.gz")
			_ = os.Setenv("FOOTY_MODEL_FORMAT", "linear")
			_ = os.Setenv("FOOTY_INFERENCE_SESSIONS", "4")
			_ = os.Setenv("FOOTY_FOOTBALL_API_KEY", "token")
			_ = os.Setenv("FOOTY_MAX_BODY_BYTES", "1024")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/models/pos.json.gz")
				convey.So(cfg.ModelFormat, convey.ShouldEqual, "linear")
				convey.So(cfg.InferenceSessions, convey.ShouldEqual, 4)
				convey.So(cfg.FootballAPIKey, convey.ShouldEqual, "token")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(1024))
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
log_format: json
prediction_cache_size: 0
live_fallback_days: 3
wiki_base_url: "http://wiki.local"
metrics_namespace: scouting
metrics_latency_buckets: [1, 10, 100]
metrics_labels:
  env: staging
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FOOTY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.PredictionCacheSize, convey.ShouldEqual, 0)
				convey.So(cfg.LiveFallbackDays, convey.ShouldEqual, 3)
				convey.So(cfg.WikiBaseURL, convey.ShouldEqual, "http://wiki.local")
				convey.So(cfg.InferenceSessions, convey.ShouldEqual, 1)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "scouting")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "predictor")
				convey.So(cfg.MetricsLatencyBuckets, convey.ShouldResemble, []float64{1, 10, 100})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "staging"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
upstream_timeout_ms: 1500
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FOOTY_CONFIG", tmpFile)
			_ = os.Setenv("FOOTY_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.UpstreamTimeoutMS, convey.ShouldEqual, 1500)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FOOTY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FOOTY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("FOOTY_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FOOTY_INFERENCE_SESSIONS", "many")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown model format", func() {
			_ = os.Setenv("FOOTY_MODEL_FORMAT", "pickle")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FOOTY_CONFIG",
		"FOOTY_ADDR",
		"FOOTY_MODEL_PATH",
		"FOOTY_MODEL_FORMAT",
		"FOOTY_INFERENCE_SESSIONS",
		"FOOTY_FOOTBALL_API_KEY",
		"FOOTY_MAX_BODY_BYTES",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "footy-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
