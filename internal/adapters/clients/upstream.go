// Package clients talks to the read-only upstream services: the encyclopedia
// summary API and the football match-data API. Each client sits behind its
// own circuit breaker so a dead upstream fails fast.
package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/aneeb02/footyPredatorr/pkg/logger"
	"github.com/aneeb02/footyPredatorr/pkg/metrics"
)

// upstream performs GET requests for one named service.
type upstream struct {
	name string
	common
	cb *gobreaker.CircuitBreaker[[]byte]
}

func newUpstream(name string, c common) *upstream {
	u := &upstream{name: name, common: c}
	metrics.SetBreakerState(name, metrics.BreakerClosed)

	u.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.tripAfter
		},
		// A missing page is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			u.logger.Warn(context.Background(), "circuit breaker state change",
				logger.String("client", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
			metrics.SetBreakerState(name, breakerGauge(to))
		},
	})
	return u
}

func breakerGauge(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	default:
		return metrics.BreakerClosed
	}
}

// get fetches url through the breaker and returns the body of a 2xx reply.
func (u *upstream) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	start := time.Now()
	body, err := u.cb.Execute(func() ([]byte, error) {
		return u.do(ctx, url, header)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%s: %w: %w", u.name, ErrCircuitOpen, ErrUpstream)
	}
	metrics.RecordUpstream(u.name, outcome(err), float64(time.Since(start).Milliseconds()))
	return body, err
}

func (u *upstream) do(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", u.name, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", u.name, ctx.Err())
		}
		return nil, fmt.Errorf("%s: %w: %w", u.name, ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%s: status %d: %w", u.name, resp.StatusCode, ErrUpstream)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("%s: status %d: %w", u.name, resp.StatusCode, ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("%s: read body: %w: %w", u.name, ErrUpstream, err)
	}
	return body, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCircuitOpen):
		return "rejected"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
