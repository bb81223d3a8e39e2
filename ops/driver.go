// Package ops implements the higher-level streaming operators built
// solely on channel/graph/result: Take, TakeWhile, Reductions, Reduce,
// Partition, PartitionAll, Last, Concat, Mapcat, ChannelToSeq,
// ChannelToLazySeq, PartitionEvery, CombineLatest, Periodically,
// SampleEvery. The channel-consuming operators share one driver: read
// the next message, invoke a callback, defer the next read until the
// callback returns. No two invocations of a given driver's callback ever
// overlap. Periodically, SampleEvery, PartitionEvery and ChannelToLazySeq
// do not use the driver.
package ops

import (
	"errors"

	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/queue"
)

// driver is the read-call-restart loop: it pulls one message at a time
// from src and hands it to step, never issuing the next read until
// step returns. step returns
// keepGoing=false to stop early (e.g. Take's count reached, or
// TakeWhile's predicate failing) without that counting as an error.
type driver[T any] struct {
	src  *channel.Channel[T]
	step func(T) (keepGoing bool, err error)

	// onDrained runs once, when src drains with no error -- the normal
	// termination path for an unbounded consumer (Reductions, Concat,
	// ChannelToSeq's feeder, ...) as well as for step returning
	// keepGoing=false.
	onDrained func()

	// onError runs once, on any error other than ordinary drained
	// termination (a failing step, or src itself erroring).
	onError func(error)
}

// run starts the loop. It returns immediately; completion is reported
// via onDrained/onError, plus whatever step itself does as a side
// effect (e.g. writing to an output channel).
func (d *driver[T]) run() {
	d.next()
}

func (d *driver[T]) next() {
	rc := channel.ReadChannel(d.src)
	rc.AddListener(func(v T) {
		keepGoing, err := d.step(v)
		if err != nil {
			if d.onError != nil {
				d.onError(err)
			}
			return
		}
		if !keepGoing {
			if d.onDrained != nil {
				d.onDrained()
			}
			return
		}
		d.next()
	})
	rc.AddErrorListener(func(err error) {
		if errors.Is(err, queue.ErrDrained) {
			if d.onDrained != nil {
				d.onDrained()
			}
			return
		}
		if d.onError != nil {
			d.onError(err)
		}
	})
}
