package queue

import (
	"sync/atomic"
	"time"

	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/lock"
	"github.com/Miners/lamina/result"
	"github.com/Miners/lamina/sentinel"
)

// retryBackoff is the pause between a detected version conflict and the
// next retry attempt.
const retryBackoff = time.Millisecond

// TxQueue is the transactional Queue variant. Go has no native software
// transactional memory, so this is a lock-based queue guarded by a
// compare-and-swap logical version tag: each operation reads the
// version, performs its mutation, and retries with a 1ms back-off if
// the version changed concurrently.
//
// This gives single-queue atomicity and retry-on-conflict, but NOT
// multi-queue atomic transactions spanning several TxQueues at once --
// that would require real STM, which this runtime does not provide.
type TxQueue[T any] struct {
	lk      *lock.RWLock
	ctx     *lclock.Context
	version atomic.Uint64
	msgs    []*Message[T]
	cons    []Consumer[T]
	closed  bool
	err     error
}

// NewTxQueue returns an empty, open TxQueue.
func NewTxQueue[T any](ctx *lclock.Context) *TxQueue[T] {
	return &TxQueue[T]{lk: lock.New(), ctx: ctx}
}

// TransactionalCopy snapshots a LockQueue into a fresh TxQueue, preserving
// buffered messages, the consumer list, and closed state.
func TransactionalCopy[T any](q *LockQueue[T]) *TxQueue[T] {
	q.lk.Acquire()
	defer q.lk.Release()

	tx := NewTxQueue[T](q.ctx)
	tx.msgs = append([]*Message[T]{}, q.msgs...)
	tx.cons = append([]Consumer[T]{}, q.cons...)
	tx.closed = q.closed
	tx.err = q.err
	return tx
}

func (q *TxQueue[T]) Enqueue(msg *Message[T], persist bool, release func()) sentinel.Outcome {
	for {
		q.lk.AcquireExclusive()
		v := q.version.Load()
		if release != nil {
			release()
			release = nil // hand-over-hand release happens once, even across retries
		}

		if q.err != nil {
			q.lk.ReleaseExclusive()
			return sentinel.TagOutcome(sentinel.Errored)
		}
		if q.closed {
			q.lk.ReleaseExclusive()
			return sentinel.TagOutcome(sentinel.AlreadyClosed)
		}

		outcome, committed := q.tryEnqueue(msg, persist, v)
		q.lk.ReleaseExclusive()
		if committed {
			return outcome
		}
		time.Sleep(retryBackoff)
	}
}

func (q *TxQueue[T]) tryEnqueue(msg *Message[T], persist bool, readVersion uint64) (sentinel.Outcome, bool) {
	for len(q.cons) > 0 {
		c := q.cons[0]
		rest := q.cons[1:]

		if c.predicated() {
			ok, perr := c.Predicate(msg.Payload)
			if perr != nil {
				if !q.version.CompareAndSwap(readVersion, readVersion+1) {
					return sentinel.Outcome{}, false
				}
				q.cons = rest
				c.Result.Error(perr)
				readVersion++
				continue // failed consumption: try the next consumer
			}
			if !ok {
				if !q.version.CompareAndSwap(readVersion, readVersion+1) {
					return sentinel.Outcome{}, false
				}
				q.cons = rest
				c.Result.Success(c.FalseValue)
				readVersion++
				continue // rejected: the message goes on to the next consumer
			}
		}

		if !c.Result.Claim() {
			if !q.version.CompareAndSwap(readVersion, readVersion+1) {
				return sentinel.Outcome{}, false
			}
			q.cons = rest
			continue
		}

		if !q.version.CompareAndSwap(readVersion, readVersion+1) {
			return sentinel.Outcome{}, false
		}
		q.cons = rest
		c.Result.Success(msg.Payload)
		return sentinel.DoneOutcome(sentinel.Delivered), true
	}

	if !persist {
		if !q.version.CompareAndSwap(readVersion, readVersion+1) {
			return sentinel.Outcome{}, false
		}
		return sentinel.TagOutcome(sentinel.Discarded), true
	}

	listener := result.New[sentinel.Tag]()
	if !q.version.CompareAndSwap(readVersion, readVersion+1) {
		return sentinel.Outcome{}, false
	}
	msg.Listener = listener
	q.msgs = append(q.msgs, msg)
	return sentinel.WaitOutcome(listener), true
}

func (q *TxQueue[T]) Receive(predicate func(T) (bool, error), falseValue T, rc *result.Chan[T]) *result.Chan[T] {
	if rc == nil {
		rc = result.New[T]()
	}

	for {
		q.lk.AcquireExclusive()
		v := q.version.Load()

		if q.err != nil {
			q.lk.ReleaseExclusive()
			rc.Error(q.err)
			return rc
		}

		done, committed := q.tryReceive(predicate, falseValue, rc, v)
		q.lk.ReleaseExclusive()
		if committed {
			return done
		}
		time.Sleep(retryBackoff)
	}
}

func (q *TxQueue[T]) tryReceive(predicate func(T) (bool, error), falseValue T, rc *result.Chan[T], readVersion uint64) (*result.Chan[T], bool) {
	for i, m := range q.msgs {
		if predicate != nil {
			ok, perr := predicate(m.Payload)
			if perr != nil {
				if !q.version.CompareAndSwap(readVersion, readVersion+1) {
					return nil, false
				}
				rc.Error(perr)
				return rc, true
			}
			if !ok {
				continue
			}
		}

		if !q.version.CompareAndSwap(readVersion, readVersion+1) {
			return nil, false
		}
		q.msgs = append(q.msgs[:i:i], q.msgs[i+1:]...)
		rc.Success(m.Payload)
		if m.Listener != nil {
			m.Listener.Success(sentinel.Delivered)
		}
		return rc, true
	}

	if q.closed {
		if !q.version.CompareAndSwap(readVersion, readVersion+1) {
			return nil, false
		}
		rc.Error(ErrDrained)
		return rc, true
	}

	if !q.version.CompareAndSwap(readVersion, readVersion+1) {
		return nil, false
	}
	q.cons = append(q.cons, Consumer[T]{Predicate: predicate, FalseValue: falseValue, Result: rc})
	return rc, true
}

func (q *TxQueue[T]) CancelReceive(rc *result.Chan[T]) bool {
	for {
		q.lk.AcquireExclusive()
		v := q.version.Load()
		for i, c := range q.cons {
			if c.Result == rc {
				if !q.version.CompareAndSwap(v, v+1) {
					q.lk.ReleaseExclusive()
					time.Sleep(retryBackoff)
					goto retry
				}
				q.cons = append(q.cons[:i:i], q.cons[i+1:]...)
				q.lk.ReleaseExclusive()
				rc.Claim()
				rc.Error(ErrCancelled)
				return true
			}
		}
		q.lk.ReleaseExclusive()
		return false
	retry:
	}
}

func (q *TxQueue[T]) Error(err error) {
	q.lk.AcquireExclusive()
	defer q.lk.ReleaseExclusive()
	if q.err != nil {
		return
	}
	if err == nil {
		err = ErrDrained
	}
	q.err = err
	q.version.Add(1)
	q.drainLocked(err)
}

// Close stops future enqueues and fails every pending consumer (no
// message will ever arrive to satisfy one), but leaves already-buffered
// messages in place for a subsequent Receive -- see LockQueue.Close.
func (q *TxQueue[T]) Close() {
	q.lk.AcquireExclusive()
	defer q.lk.ReleaseExclusive()
	if q.closed || q.err != nil {
		return
	}
	q.closed = true
	q.version.Add(1)
	q.drainConsumersLocked(ErrDrained)
}

func (q *TxQueue[T]) drainConsumersLocked(err error) {
	for _, c := range q.cons {
		if c.Result.Claim() {
			c.Result.Error(err)
		}
	}
	q.cons = nil
	q.ctx.Log().Debug().Err(err).Msg("transactional queue consumers drained")
}

// drainLocked is Error's harder stop: buffered messages are no longer
// trustworthy once the queue has errored, so their listeners fail too.
func (q *TxQueue[T]) drainLocked(err error) {
	q.drainConsumersLocked(err)
	for _, m := range q.msgs {
		if m.Listener != nil {
			m.Listener.Error(err)
		}
	}
	q.msgs = nil
}

func (q *TxQueue[T]) Closed() bool {
	q.lk.Acquire()
	defer q.lk.Release()
	return q.closed || q.err != nil
}

func (q *TxQueue[T]) Drained() bool {
	q.lk.Acquire()
	defer q.lk.Release()
	return (q.closed || q.err != nil) && len(q.msgs) == 0
}

func (q *TxQueue[T]) Len() int {
	q.lk.Acquire()
	defer q.lk.Release()
	return len(q.msgs)
}

var _ Queue[int] = (*TxQueue[int])(nil)
