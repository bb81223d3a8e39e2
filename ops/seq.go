package ops

import (
	"errors"

	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/queue"
)

// ChannelToSeq blocks the calling goroutine until ch drains, then
// returns every message it produced, in order. It fails with ch's
// eventual error if ch errors instead of draining cleanly.
func ChannelToSeq[T any](ch *channel.Channel[T]) ([]T, error) {
	var out []T
	var err error
	done := make(chan struct{})

	d := &driver[T]{src: ch}
	d.step = func(v T) (bool, error) {
		out = append(out, v)
		return true, nil
	}
	d.onDrained = func() { close(done) }
	d.onError = func(e error) { err = e; close(done) }
	d.run()

	<-done
	return out, err
}

// LazySeq is a pull-based, blocking iterator over a channel's
// messages: each call to Next blocks the caller until the next message
// arrives, the source drains, or it errors.
type LazySeq[T any] struct {
	ch *channel.Channel[T]
}

// ChannelToLazySeq returns a LazySeq pulling from ch one message at a
// time, instead of ChannelToSeq's eager full drain.
func ChannelToLazySeq[T any](ch *channel.Channel[T]) *LazySeq[T] {
	return &LazySeq[T]{ch: ch}
}

// Next blocks until the next message is available, returning ok=false
// once ch has drained (err is nil in that case) or err != nil if ch
// errored.
func (s *LazySeq[T]) Next() (v T, ok bool, err error) {
	rc := channel.ReadChannel(s.ch)
	done := make(chan struct{})

	rc.AddListener(func(msg T) {
		v, ok = msg, true
		close(done)
	})
	rc.AddErrorListener(func(e error) {
		if !errors.Is(e, queue.ErrDrained) {
			err = e
		}
		close(done)
	})

	<-done
	return v, ok, err
}
