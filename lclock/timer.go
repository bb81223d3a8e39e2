package lclock

import (
	"time"

	"github.com/Miners/lamina/result"
)

// Timer is the process-wide scheduler for delayed results and periodic
// callbacks -- a thin, named wrapper over time.AfterFunc/time.Ticker,
// which already give a minimum-heap driven by a single worker without
// a hand-rolled heap of our own.
type Timer struct{}

// NewTimer returns a ready-to-use Timer.
func NewTimer() *Timer { return &Timer{} }

// Schedule returns a result.Chan[T] that becomes success(v) after d
// elapses, on tm's underlying scheduler.
func Schedule[T any](tm *Timer, d time.Duration, v T) *result.Chan[T] {
	c := result.New[T]()
	time.AfterFunc(d, func() { c.Success(v) })
	return c
}

// TimedResult returns a result.Chan[T] that becomes success(v) after d,
// scheduled on ctx's shared timer (Background()'s if ctx is nil).
func TimedResult[T any](ctx *Context, d time.Duration, v T) *result.Chan[T] {
	return Schedule(ctx.TimerOf(), d, v)
}

// Every calls fn once per period, starting after the first period
// elapses, until the returned stop func is called. It is the scheduling
// primitive behind ops.Periodically, ops.SampleEvery and
// ops.PartitionEvery.
func (tm *Timer) Every(period time.Duration, fn func()) (stop func()) {
	ticker := time.NewTicker(period)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(done)
	}
}
