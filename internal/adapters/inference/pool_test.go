package inference

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aneeb02/footyPredatorr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSession struct {
	inUse     atomic.Bool
	destroyed atomic.Bool
}

func TestSessionPool(t *testing.T) {
	Convey("Given a pool with a single session", t, func() {
		sess := &fakeSession{}
		pool := newSessionPool([]*fakeSession{sess})

		Convey("When many goroutines run at once", func() {
			var overlaps, runs atomic.Int64
			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range 50 {
						s, err := pool.acquire(context.Background())
						if err != nil {
							continue
						}
						if !s.inUse.CompareAndSwap(false, true) {
							overlaps.Add(1)
						}
						runs.Add(1)
						time.Sleep(10 * time.Microsecond)
						s.inUse.Store(false)
						pool.release(s)
					}
				}()
			}
			wg.Wait()

			Convey("Then the session is never shared", func() {
				So(overlaps.Load(), ShouldEqual, 0)
				So(runs.Load(), ShouldEqual, 400)
			})
		})

		Convey("When the session is busy and the caller gives up", func() {
			held, err := pool.acquire(context.Background())
			So(err, ShouldBeNil)
			defer pool.release(held)

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err = pool.acquire(ctx)

			Convey("Then the wait fails as an inference error", func() {
				So(errors.Is(err, model.ErrInference), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})

		Convey("When it is closed during a run", func() {
			held, err := pool.acquire(context.Background())
			So(err, ShouldBeNil)

			done := make(chan bool)
			go func() {
				done <- pool.close(func(s *fakeSession) { s.destroyed.Store(true) })
			}()

			_, err = pool.acquire(context.Background())
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
			So(errors.Is(err, model.ErrInference), ShouldBeTrue)

			Convey("Then close waits for the run to finish", func() {
				returnedEarly := false
				select {
				case <-done:
					returnedEarly = true
				case <-time.After(50 * time.Millisecond):
				}
				So(returnedEarly, ShouldBeFalse)
				So(sess.destroyed.Load(), ShouldBeFalse)

				pool.release(held)
				So(<-done, ShouldBeTrue)
				So(sess.destroyed.Load(), ShouldBeTrue)

				Convey("And later closes are no-ops", func() {
					So(pool.close(func(*fakeSession) {}), ShouldBeFalse)
					_, err := pool.acquire(context.Background())
					So(errors.Is(err, ErrClosed), ShouldBeTrue)
				})
			})
		})
	})

	Convey("Given a pool of two sessions", t, func() {
		a, b := &fakeSession{}, &fakeSession{}
		pool := newSessionPool([]*fakeSession{a, b})

		first, err := pool.acquire(context.Background())
		So(err, ShouldBeNil)
		second, err := pool.acquire(context.Background())
		So(err, ShouldBeNil)

		Convey("Then both can be held at once", func() {
			So(first, ShouldNotEqual, second)
			pool.release(first)
			pool.release(second)
			So(pool.close(func(s *fakeSession) { s.destroyed.Store(true) }), ShouldBeTrue)
			So(a.destroyed.Load() && b.destroyed.Load(), ShouldBeTrue)
		})
	})
}
