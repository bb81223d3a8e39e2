package ops

import (
	"sync"

	"github.com/spf13/cast"

	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/graph"
	"github.com/Miners/lamina/lclock"
)

// Periodically returns a new channel that enqueues f() every period,
// until stop is called.
func Periodically[T any](ctx *lclock.Context, period any, f func() T) (ch *channel.Channel[T], stop func()) {
	out := channel.New[T](ctx)
	d := cast.ToDuration(period)

	stopTimer := ctx.TimerOf().Every(d, func() {
		channel.Enqueue(out, f())
	})

	return out, func() {
		stopTimer()
		channel.Close(out)
	}
}

// SampleEvery returns a new channel emitting, once per period, the most
// recent message ch has produced so far. A period during which ch
// never produced a message (including the very first, before ch's
// first message arrives) is skipped rather than re-emitting a stale or
// zero value.
func SampleEvery[T any](ctx *lclock.Context, period any, ch *channel.Channel[T]) *channel.Channel[T] {
	out := channel.New[T](ctx)
	d := cast.ToDuration(period)

	var mu sync.Mutex
	var latest T
	var have bool

	unsubscribe := channel.ReceiveAll(ch, func(v T) {
		mu.Lock()
		latest, have = v, true
		mu.Unlock()
	})

	finish := func() {
		unsubscribe()
		_, err, _, _ := ch.Emitter.Snapshot()
		if err != nil {
			channel.Error(out, err)
		} else {
			channel.Close(out)
		}
	}

	var stop func()
	stop = ctx.TimerOf().Every(d, func() {
		if channel.Closed(ch) {
			stop()
			finish()
			return
		}
		mu.Lock()
		v, ok := latest, have
		mu.Unlock()
		if !ok {
			return
		}
		channel.Enqueue(out, v)
	})

	graph.RegisterOnClosed(ch.Emitter, func() {
		stop()
		finish()
	})

	return out
}
