package ops

import (
	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/lclock"
)

// Take returns a new channel carrying exactly min(n, stream-length)
// messages from ch, then closes.
func Take[T any](ctx *lclock.Context, n int, ch *channel.Channel[T]) *channel.Channel[T] {
	out := channel.New[T](ctx)
	if n <= 0 {
		channel.Close(out)
		return out
	}

	count := 0
	d := &driver[T]{src: ch}
	d.step = func(v T) (bool, error) {
		channel.Enqueue(out, v)
		count++
		return count < n, nil
	}
	d.onDrained = func() { channel.Close(out) }
	d.onError = func(err error) { channel.Error(out, err) }
	d.run()
	return out
}

// TakeWhile returns a new channel carrying every message from ch up to
// (not including) the first one for which p returns false, then closes.
func TakeWhile[T any](ctx *lclock.Context, p func(T) bool, ch *channel.Channel[T]) *channel.Channel[T] {
	out := channel.New[T](ctx)

	d := &driver[T]{src: ch}
	d.step = func(v T) (bool, error) {
		if !p(v) {
			return false, nil
		}
		channel.Enqueue(out, v)
		return true, nil
	}
	d.onDrained = func() { channel.Close(out) }
	d.onError = func(err error) { channel.Error(out, err) }
	d.run()
	return out
}
