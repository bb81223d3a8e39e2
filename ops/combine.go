package ops

import (
	"sync"

	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/lclock"
)

// CombineLatest emits f(latest_1, ..., latest_n) whenever every input
// channel has produced at least one message and any one of them
// updates thereafter. It emits nothing until all inputs have produced.
// Any input erroring errors the output; the output closes once every
// input has closed.
func CombineLatest[T, U any](ctx *lclock.Context, f func([]T) U, chs ...*channel.Channel[T]) *channel.Channel[U] {
	out := channel.New[U](ctx)
	n := len(chs)
	if n == 0 {
		channel.Close(out)
		return out
	}

	var mu sync.Mutex
	latest := make([]T, n)
	have := make([]bool, n)
	haveCount := 0
	closed := 0
	errored := false

	emit := func() {
		if errored || haveCount < n {
			return
		}
		snapshot := make([]T, n)
		copy(snapshot, latest)
		channel.Enqueue(out, f(snapshot))
	}

	for i, ch := range chs {
		idx := i
		d := &driver[T]{src: ch}
		d.step = func(v T) (bool, error) {
			mu.Lock()
			if !have[idx] {
				have[idx] = true
				haveCount++
			}
			latest[idx] = v
			emit()
			mu.Unlock()
			return true, nil
		}
		d.onDrained = func() {
			mu.Lock()
			closed++
			done := closed == n && !errored
			mu.Unlock()
			if done {
				channel.Close(out)
			}
		}
		d.onError = func(err error) {
			mu.Lock()
			if !errored {
				errored = true
				mu.Unlock()
				channel.Error(out, err)
				return
			}
			mu.Unlock()
		}
		d.run()
	}

	return out
}
