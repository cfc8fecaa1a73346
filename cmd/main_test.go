package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/aneeb02/footyPredatorr/internal/config"
	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
	"github.com/aneeb02/footyPredatorr/pkg/metrics"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.ModelPath = "../internal/app/testdata/position_model.json"
	cfg.LabelEncoderPath = "../internal/app/testdata/label_encoder.json"
	return cfg
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("FOOTY_ADDR", ":8080")
			_ = os.Setenv("FOOTY_PREDICTION_CACHE_SIZE", "16")
			defer func() {
				_ = os.Unsetenv("FOOTY_ADDR")
				_ = os.Unsetenv("FOOTY_PREDICTION_CACHE_SIZE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PredictionCacheSize, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			cfg := testConfig()
			srv := newHTTPServer(cfg, http.NotFoundHandler())

			convey.Convey("Then timeouts are set", func() {
				convey.So(srv.Addr, convey.ShouldEqual, cfg.Addr)
				convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
				convey.So(srv.WriteTimeout, convey.ShouldEqual, writeTimeout)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then a metrics manager should be creatable on its own registry", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})

			convey.Convey("Then the metrics settings shape the collector names and labels", func() {
				cfg := config.New()
				cfg.MetricsNamespace = "scouting"
				cfg.MetricsLatencyBuckets = []float64{1, 10, 100}
				cfg.MetricsLabels = map[string]string{"env": "staging"}

				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(append(metricsOptions(cfg), metrics.WithPrometheusRegistry(registry))...)
				manager.RecordInferenceLatency(5)

				families, err := registry.Gather()
				convey.So(err, convey.ShouldBeNil)
				idx := -1
				for i, f := range families {
					if f.GetName() == "scouting_predictor_inference_latency_milliseconds" {
						idx = i
					}
				}
				convey.So(idx, convey.ShouldBeGreaterThanOrEqualTo, 0)
				m := families[idx].GetMetric()[0]
				convey.So(m.GetLabel()[0].GetName(), convey.ShouldEqual, "env")
				convey.So(m.GetLabel()[0].GetValue(), convey.ShouldEqual, "staging")
				convey.So(m.GetHistogram().GetBucket(), convey.ShouldHaveLength, 3)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given the wired application over the linear test artifacts", t, func() {
		ctx := context.Background()
		cfg := testConfig()
		wiki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"extract":"Spanish midfielder."}`))
		}))
		defer wiki.Close()
		cfg.WikiBaseURL = wiki.URL

		svc := newService(cfg, logger.Nop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newHandler(ctx, cfg, svc, logger.Nop()))
		defer srv.Close()

		convey.Convey("When posting a prediction", func() {
			resp, err := http.Post(srv.URL+"/predict", "application/json", strings.NewReader(`{"strength": 99, "sprint_speed": 10, "dribbling": 10, "short_passing": 50}`))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then all components work together", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(resp.Header.Get("X-Request-ID"), convey.ShouldNotBeEmpty)
				var res model.PredictionResult
				convey.So(json.NewDecoder(resp.Body).Decode(&res), convey.ShouldBeNil)
				convey.So(res.Position, convey.ShouldEqual, "CB")
			})
		})

		convey.Convey("When posting an invalid value", func() {
			resp, err := http.Post(srv.URL+"/predict", "application/x-www-form-urlencoded", strings.NewReader("age=not-a-number"))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When probing the other routes", func() {
			for path, want := range map[string]int{
				"/healthz":           http.StatusOK,
				"/stats":             http.StatusOK,
				"/metrics":           http.StatusOK,
				"/openapi.yaml":      http.StatusOK,
				"/api-docs":          http.StatusOK,
				"/":                  http.StatusOK,
				"/wiki?player=Pedri": http.StatusOK,
				"/nope":              http.StatusNotFound,
			} {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, want)
			}
		})
	})

	convey.Convey("Given a missing model artifact", t, func() {
		cfg := testConfig()
		cfg.ModelPath = "../internal/app/testdata/absent.json"
		svc := newService(cfg, logger.Nop())

		convey.Convey("Then the service refuses to start", func() {
			convey.So(svc.Start(context.Background()), convey.ShouldNotBeNil)
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("FOOTY_INFERENCE_SESSIONS", "0")
			defer func() { _ = os.Unsetenv("FOOTY_INFERENCE_SESSIONS") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
