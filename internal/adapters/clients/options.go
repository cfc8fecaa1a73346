package clients

import (
	"net/http"
	"time"

	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// Default client configuration constants.
const (
	defaultTimeout      = 5 * time.Second
	defaultTripAfter    = 5
	defaultOpenTimeout  = 30 * time.Second
	defaultFallbackDays = 7
	maxBodyBytes        = 2 << 20
)

type common struct {
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	logger      logger.Logger
	tripAfter   uint32
	openTimeout time.Duration

	// football only
	apiKey       string
	fallbackDays int
	now          func() time.Time
}

// Option applies a configuration option to a client.
type Option func(*common)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *common) {
		if c != nil {
			o.http = c
		}
	}
}

// WithTimeout bounds each upstream request.
func WithTimeout(d time.Duration) Option {
	return func(o *common) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for breaker transitions and failures.
func WithLogger(l logger.Logger) Option {
	return func(o *common) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBreaker opens the circuit after tripAfter consecutive failures and
// keeps it open for openTimeout.
func WithBreaker(tripAfter uint32, openTimeout time.Duration) Option {
	return func(o *common) {
		if tripAfter > 0 {
			o.tripAfter = tripAfter
		}
		if openTimeout > 0 {
			o.openTimeout = openTimeout
		}
	}
}

// WithAPIKey sets the match-data token sent as X-Auth-Token.
func WithAPIKey(key string) Option {
	return func(o *common) {
		o.apiKey = key
	}
}

// WithFallbackDays sets how many past days the live feed falls back to.
func WithFallbackDays(days int) Option {
	return func(o *common) {
		if days > 0 {
			o.fallbackDays = days
		}
	}
}

// WithClock overrides time.Now for the live feed window.
func WithClock(now func() time.Time) Option {
	return func(o *common) {
		if now != nil {
			o.now = now
		}
	}
}

func newCommon(baseURL string, opts []Option) common {
	o := common{
		baseURL:      baseURL,
		timeout:      defaultTimeout,
		logger:       logger.Nop(),
		tripAfter:    defaultTripAfter,
		openTimeout:  defaultOpenTimeout,
		fallbackDays: defaultFallbackDays,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.http == nil {
		o.http = &http.Client{Timeout: o.timeout}
	}
	return o
}
