package ops

import (
	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/lclock"
)

// Concat drains chs one at a time, in order, into a single output
// channel, closing once the last one drains. A source erroring fails
// the whole concatenation immediately without draining the rest.
func Concat[T any](ctx *lclock.Context, chs ...*channel.Channel[T]) *channel.Channel[T] {
	out := channel.New[T](ctx)
	if len(chs) == 0 {
		channel.Close(out)
		return out
	}

	var advance func(i int)
	advance = func(i int) {
		if i >= len(chs) {
			channel.Close(out)
			return
		}
		d := &driver[T]{src: chs[i]}
		d.step = func(v T) (bool, error) {
			channel.Enqueue(out, v)
			return true, nil
		}
		d.onDrained = func() { advance(i + 1) }
		d.onError = func(err error) { channel.Error(out, err) }
		d.run()
	}
	advance(0)
	return out
}
