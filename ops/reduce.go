package ops

import (
	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/result"
)

// Reductions returns a new channel emitting every intermediate
// accumulator value: init, then f(init, msg1), f(f(init,msg1), msg2),
// ... closing once ch drains. reductions* + last* == reduce*, by
// construction: the accumulator Reductions stops on is exactly what
// Reduce resolves with.
func Reductions[T, U any](ctx *lclock.Context, f func(acc U, v T) (U, error), init U, ch *channel.Channel[T]) *channel.Channel[U] {
	out := channel.New[U](ctx)
	channel.Enqueue(out, init)

	acc := init
	d := &driver[T]{src: ch}
	d.step = func(v T) (bool, error) {
		next, err := f(acc, v)
		if err != nil {
			return false, err
		}
		acc = next
		channel.Enqueue(out, acc)
		return true, nil
	}
	d.onDrained = func() { channel.Close(out) }
	d.onError = func(err error) { channel.Error(out, err) }
	d.run()
	return out
}

// Reduce folds every message from ch through f, starting at init,
// resolving the returned result.Chan with the final accumulator value
// once ch drains (or failing it if f or ch errors).
func Reduce[T, U any](f func(acc U, v T) (U, error), init U, ch *channel.Channel[T]) *result.Chan[U] {
	out := result.New[U]()

	acc := init
	d := &driver[T]{src: ch}
	d.step = func(v T) (bool, error) {
		next, err := f(acc, v)
		if err != nil {
			return false, err
		}
		acc = next
		return true, nil
	}
	d.onDrained = func() { out.Success(acc) }
	d.onError = func(err error) { out.Error(err) }
	d.run()
	return out
}

// Last resolves with the final message ch produces before draining, or
// fails with errNoMessages if ch drains having produced nothing.
func Last[T any](ch *channel.Channel[T]) *result.Chan[T] {
	out := result.New[T]()

	var last T
	var seen bool
	d := &driver[T]{src: ch}
	d.step = func(v T) (bool, error) {
		last, seen = v, true
		return true, nil
	}
	d.onDrained = func() {
		if seen {
			out.Success(last)
		} else {
			out.Error(errNoMessages)
		}
	}
	d.onError = func(err error) { out.Error(err) }
	d.run()
	return out
}
