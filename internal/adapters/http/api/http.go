// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	"github.com/aneeb02/footyPredatorr/internal/domain/types"
	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// defaultMaxBodyBytes caps POST /predict bodies when no limit is configured.
const defaultMaxBodyBytes = 64 << 10

// Predictor runs the prediction pipeline.
type Predictor interface {
	Predict(ctx context.Context, raw model.RawInput) (model.PredictionResult, error)
	// Classes lists the positions the loaded model can return.
	Classes() []string
}

// Lookups are the read-only upstream queries.
type Lookups interface {
	Wiki(ctx context.Context, player string) (types.WikiSummary, error)
	// Matches returns the live feed when from and to are empty.
	Matches(ctx context.Context, from, to string) (types.MatchFeed, error)
}

// Readiness reports whether predictions can be served, and why not.
type Readiness interface {
	Ready() (bool, string)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predictor
	Lookups
	Readiness
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	wikiHandler    *WikiHandler
	liveHandler    *LiveHandler

	allowedOrigins []string
	logger         logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps POST /predict bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.predictHandler.maxBody = n
		}
	}
}

// WithAllowedOrigins sets the CORS origins; the default allows any.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(deps),
		predictHandler: NewPredictHandler(deps),
		wikiHandler:    NewWikiHandler(deps),
		liveHandler:    NewLiveHandler(deps),
		allowedOrigins: []string{"*"},
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.predictHandler.logger = s.logger
	s.wikiHandler.logger = s.logger
	s.liveHandler.logger = s.logger
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/wiki", MetricsMiddleware(s.wikiHandler.HandleWiki, "wiki"))
	mux.HandleFunc("/live", MetricsMiddleware(s.liveHandler.HandleLive, "live"))
}

// Wrap applies the cross-cutting middleware: request IDs outermost, then CORS.
func (s *Server) Wrap(next http.Handler) http.Handler {
	c := cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
	return RequestID(c(next))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// logFailure records a server-side failure with the request's ID.
func logFailure(r *http.Request, l logger.Logger, msg string, err error) {
	l.Error(r.Context(), msg,
		logger.String("requestId", RequestIDFromContext(r.Context())),
		logger.String("path", r.URL.Path),
		logger.Error(err))
}
