package queue

import (
	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/lock"
	"github.com/Miners/lamina/result"
	"github.com/Miners/lamina/sentinel"
)

// LockQueue is the lock-based Queue implementation, guarded by a single
// lock.RWLock taken exclusively for every mutation. Buffered messages and
// waiting consumers coexist only when a predicated receive has rejected
// every buffered message.
type LockQueue[T any] struct {
	lk     *lock.RWLock
	ctx    *lclock.Context
	msgs   []*Message[T]
	cons   []Consumer[T]
	closed bool
	err    error
}

// NewLockQueue returns an empty, open LockQueue.
func NewLockQueue[T any](ctx *lclock.Context) *LockQueue[T] {
	return &LockQueue[T]{lk: lock.New(), ctx: ctx}
}

// Lock exposes the queue's lock. No other package in this module calls
// it: graph.Node hands its own lock over through Enqueue's release
// callback, and diag.Snapshot samples node locks only.
func (q *LockQueue[T]) Lock() *lock.RWLock { return q.lk }

func (q *LockQueue[T]) Enqueue(msg *Message[T], persist bool, release func()) sentinel.Outcome {
	// Consumer results are resolved only after q's lock is released
	// (deferred calls run last-in first-out), since their listeners may
	// call back into this queue.
	var resolve []func()
	defer func() {
		for _, f := range resolve {
			f()
		}
	}()
	q.lk.AcquireExclusive()
	defer q.lk.ReleaseExclusive()
	if release != nil {
		release()
	}

	if q.err != nil {
		return sentinel.TagOutcome(sentinel.Errored)
	}
	if q.closed {
		return sentinel.TagOutcome(sentinel.AlreadyClosed)
	}

	for len(q.cons) > 0 {
		c := q.cons[0]
		q.cons = q.cons[1:]

		if c.predicated() {
			ok, perr := c.Predicate(msg.Payload)
			if perr != nil {
				resolve = append(resolve, func() { c.Result.Error(perr) })
				continue // failed consumption: try the next consumer
			}
			if !ok {
				// rejected: resolves false, does not consume -- the
				// message stays in the queue for the next consumer.
				resolve = append(resolve, func() { c.Result.Success(c.FalseValue) })
				continue
			}
		}

		if !c.Result.Claim() {
			continue // already cancelled concurrently; try the next one
		}
		resolve = append(resolve, func() { c.Result.Success(msg.Payload) })
		return sentinel.DoneOutcome(sentinel.Delivered)
	}

	if !persist {
		return sentinel.TagOutcome(sentinel.Discarded)
	}

	listener := result.New[sentinel.Tag]()
	msg.Listener = listener
	q.msgs = append(q.msgs, msg)
	return sentinel.WaitOutcome(listener)
}

func (q *LockQueue[T]) Receive(predicate func(T) (bool, error), falseValue T, rc *result.Chan[T]) *result.Chan[T] {
	// rc is resolved only after q's lock is released, since its
	// listeners may call back into this queue.
	q.lk.AcquireExclusive()

	if rc == nil {
		rc = result.New[T]()
	}

	if q.err != nil {
		err := q.err
		q.lk.ReleaseExclusive()
		rc.Error(err)
		return rc
	}

	for i, m := range q.msgs {
		if predicate != nil {
			ok, perr := predicate(m.Payload)
			if perr != nil {
				// a throwing predicate errors this receive only; the
				// message is left in place for the next receive.
				q.lk.ReleaseExclusive()
				rc.Error(perr)
				return rc
			}
			if !ok {
				continue // try the next buffered message
			}
		}

		q.msgs = append(q.msgs[:i:i], q.msgs[i+1:]...)
		q.lk.ReleaseExclusive()
		rc.Success(m.Payload)
		if m.Listener != nil {
			m.Listener.Success(sentinel.Delivered)
		}
		return rc
	}

	if q.closed {
		q.lk.ReleaseExclusive()
		rc.Error(ErrDrained)
		return rc
	}

	q.cons = append(q.cons, Consumer[T]{Predicate: predicate, FalseValue: falseValue, Result: rc})
	q.lk.ReleaseExclusive()
	return rc
}

func (q *LockQueue[T]) CancelReceive(rc *result.Chan[T]) bool {
	q.lk.AcquireExclusive()
	defer q.lk.ReleaseExclusive()

	for i, c := range q.cons {
		if c.Result == rc {
			q.cons = append(q.cons[:i:i], q.cons[i+1:]...)
			rc.Claim()
			rc.Error(ErrCancelled)
			return true
		}
	}
	return false
}

func (q *LockQueue[T]) Error(err error) {
	q.lk.AcquireExclusive()
	defer q.lk.ReleaseExclusive()
	if q.err != nil {
		return
	}
	if err == nil {
		err = ErrDrained
	}
	q.err = err
	q.drainLocked(err)
}

// Close stops future enqueues and fails every pending consumer with
// ErrDrained, since no message will ever arrive to satisfy one -- but
// leaves already-buffered messages in place. Enqueue then channel->seq
// after close must still return exactly the enqueued sequence, so a
// buffered message survives until an actual Receive claims it; only
// then does the queue become Drained.
func (q *LockQueue[T]) Close() {
	q.lk.AcquireExclusive()
	if q.closed || q.err != nil {
		q.lk.ReleaseExclusive()
		return
	}
	q.closed = true
	pending := q.cons
	q.cons = nil
	q.lk.ReleaseExclusive()

	// pending consumers are failed after the lock is released, since
	// their listeners may call back into this queue.
	for _, c := range pending {
		if c.Result.Claim() {
			c.Result.Error(ErrDrained)
		}
	}
	q.ctx.Log().Debug().Err(ErrDrained).Msg("queue consumers drained")
}

func (q *LockQueue[T]) drainConsumersLocked(err error) {
	for _, c := range q.cons {
		if c.Result.Claim() {
			c.Result.Error(err)
		}
	}
	q.cons = nil
	q.ctx.Log().Debug().Err(err).Msg("queue consumers drained")
}

// drainLocked is Error's harder stop: unlike Close, an errored queue's
// buffered messages are no longer trustworthy (the node itself has
// failed), so their enqueue-side listeners are failed too rather than
// left to resolve on eventual delivery that will now never happen.
func (q *LockQueue[T]) drainLocked(err error) {
	q.drainConsumersLocked(err)
	for _, m := range q.msgs {
		if m.Listener != nil {
			m.Listener.Error(err)
		}
	}
	q.msgs = nil
}

func (q *LockQueue[T]) Closed() bool {
	q.lk.Acquire()
	defer q.lk.Release()
	return q.closed || q.err != nil
}

func (q *LockQueue[T]) Drained() bool {
	q.lk.Acquire()
	defer q.lk.Release()
	return (q.closed || q.err != nil) && len(q.msgs) == 0
}

func (q *LockQueue[T]) Len() int {
	q.lk.Acquire()
	defer q.lk.Release()
	return len(q.msgs)
}

var _ Queue[int] = (*LockQueue[int])(nil)
