package ops

import (
	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/lclock"
)

// Mapcat applies f to every message from ch and enqueues every element
// of the returned slice onto the output channel, in order -- a Map
// that flattens one-to-many instead of one-to-one.
func Mapcat[T, U any](ctx *lclock.Context, f func(T) ([]U, error), ch *channel.Channel[T]) *channel.Channel[U] {
	out := channel.New[U](ctx)

	d := &driver[T]{src: ch}
	d.step = func(v T) (bool, error) {
		us, err := f(v)
		if err != nil {
			return false, err
		}
		for _, u := range us {
			channel.Enqueue(out, u)
		}
		return true, nil
	}
	d.onDrained = func() { channel.Close(out) }
	d.onError = func(err error) { channel.Error(out, err) }
	d.run()
	return out
}
