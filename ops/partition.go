package ops

import (
	"sync"

	"github.com/spf13/cast"

	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/graph"
	"github.com/Miners/lamina/lclock"
)

// Partition returns a new channel emitting ch's messages grouped into
// fixed-size slices of n; a final incomplete group (fewer than n
// messages left when ch drains) is dropped.
func Partition[T any](ctx *lclock.Context, n int, ch *channel.Channel[T]) *channel.Channel[[]T] {
	return partition(ctx, n, ch, false)
}

// PartitionAll is Partition but emits the final incomplete group
// instead of dropping it.
func PartitionAll[T any](ctx *lclock.Context, n int, ch *channel.Channel[T]) *channel.Channel[[]T] {
	return partition(ctx, n, ch, true)
}

func partition[T any](ctx *lclock.Context, n int, ch *channel.Channel[T], keepPartial bool) *channel.Channel[[]T] {
	out := channel.New[[]T](ctx)
	if n <= 0 {
		channel.Close(out)
		return out
	}

	var batch []T
	d := &driver[T]{src: ch}
	d.step = func(v T) (bool, error) {
		batch = append(batch, v)
		if len(batch) == n {
			channel.Enqueue(out, batch)
			batch = nil
		}
		return true, nil
	}
	d.onDrained = func() {
		if keepPartial && len(batch) > 0 {
			channel.Enqueue(out, batch)
		}
		channel.Close(out)
	}
	d.onError = func(err error) { channel.Error(out, err) }
	d.run()
	return out
}

// PartitionEvery returns a new channel emitting, once per period, the
// slice of every message ch produced during that period -- one message
// per tick, always, even when nothing arrived. A period with no
// messages emits a nil slice: the sentinel value distinguishing "this
// tick happened and saw nothing" from the tick never having been
// reported at all, rather than silently skipping the tick.
func PartitionEvery[T any](ctx *lclock.Context, period any, ch *channel.Channel[T]) *channel.Channel[[]T] {
	out := channel.New[[]T](ctx)
	d := cast.ToDuration(period)

	var mu sync.Mutex
	var batch []T

	unsubscribe := channel.ReceiveAll(ch, func(v T) {
		mu.Lock()
		batch = append(batch, v)
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
		pending := batch
		batch = nil
		mu.Unlock()
		channel.Enqueue(out, pending)
	})

	graph.RegisterOnClosed(ch.Emitter, func() {
		stop()
		finish()
	})

	return out
}
