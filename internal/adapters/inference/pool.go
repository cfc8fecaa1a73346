package inference

import (
	"context"
	"fmt"
	"sync"

	"github.com/aneeb02/footyPredatorr/internal/domain/model"
)

// sessionPool hands out a fixed set of sessions, each to one caller at a
// time.
type sessionPool[S any] struct {
	ch   chan S
	size int

	closeOnce sync.Once
	closed    chan struct{}
}

func newSessionPool[S any](sessions []S) *sessionPool[S] {
	p := &sessionPool[S]{
		ch:     make(chan S, len(sessions)),
		size:   len(sessions),
		closed: make(chan struct{}),
	}
	for _, s := range sessions {
		p.ch <- s
	}
	return p
}

// acquire waits for a free session. Every error wraps model.ErrInference.
func (p *sessionPool[S]) acquire(ctx context.Context) (S, error) {
	var zero S
	select {
	case <-p.closed:
		return zero, fmt.Errorf("%w: %w", ErrClosed, model.ErrInference)
	case <-ctx.Done():
		return zero, fmt.Errorf("wait for session: %w: %w", ctx.Err(), model.ErrInference)
	case s := <-p.ch:
		select {
		case <-p.closed:
			p.release(s)
			return zero, fmt.Errorf("%w: %w", ErrClosed, model.ErrInference)
		default:
			return s, nil
		}
	}
}

func (p *sessionPool[S]) release(s S) {
	p.ch <- s
}

// close rejects new acquires, waits until every session is back and passes
// each to destroy. It reports false when the pool was already closed.
func (p *sessionPool[S]) close(destroy func(S)) bool {
	first := false
	p.closeOnce.Do(func() {
		first = true
		close(p.closed)
		for range p.size {
			destroy(<-p.ch)
		}
	})
	return first
}
