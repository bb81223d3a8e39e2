// Package queue implements the event queue underpinning a graph node:
// buffering messages while no consumer is ready, dispatching to waiting
// consumers when present, with predicate-gated one-shot receives,
// cancellation, and lock-based and transactional variants sharing one
// contract.
package queue

import (
	"github.com/Miners/lamina/result"
	"github.com/Miners/lamina/sentinel"
)

// Message is one payload moving through a queue, with optional metadata
// tags (never interpreted by the queue itself) and a back-pressure
// Listener assigned when the message is persisted.
type Message[T any] struct {
	Payload  T
	Tags     map[string]string
	Listener *result.Chan[sentinel.Tag]
}

// Consumer is a one-shot receive registration. It is Simple if Predicate
// is nil, Predicated otherwise. Two consumers are considered equal (for
// CancelReceive purposes) iff their Result channels are identical, which
// is exactly Go pointer identity here.
type Consumer[T any] struct {
	Predicate  func(T) (bool, error)
	FalseValue T
	Result     *result.Chan[T]
}

func (c Consumer[T]) predicated() bool { return c.Predicate != nil }

// Queue is the contract shared by LockQueue, TxQueue, ErrorQueue and
// DrainedQueue (a tagged variant rather than ad hoc subtyping).
type Queue[T any] interface {
	// Enqueue attempts to deliver msg to a waiting consumer, or persists
	// it if persist is true and no consumer accepts it, or discards it
	// otherwise. release, if non-nil, is invoked while still holding q's
	// exclusive lock, before any downstream work recurses -- this is the
	// hand-over-hand discipline that lets a caller release its own
	// upstream lock before this call can block further.
	Enqueue(msg *Message[T], persist bool, release func()) sentinel.Outcome

	// Receive registers (or immediately satisfies) a one-shot consumer.
	// If rc is nil, a fresh result.Chan[T] is allocated; passing one in
	// lets a caller pre-register a channel it already handed out
	// elsewhere (used to stitch queues into pipelines).
	Receive(predicate func(T) (bool, error), falseValue T, rc *result.Chan[T]) *result.Chan[T]

	// CancelReceive removes the consumer identified by rc, if still
	// pending, and errors it with Cancelled. Returns true iff a consumer
	// was actually removed. Idempotent.
	CancelReceive(rc *result.Chan[T]) bool

	// Error transitions q into the error state: all pending consumers
	// and any buffered messages' listeners are resolved as errors, and
	// all future operations fail the same way.
	Error(err error)

	// Close transitions q into the closed state: pending consumers are
	// resolved with Drained, enqueue starts returning AlreadyClosed.
	Close()

	// Closed reports whether Close (or Error) has been called.
	Closed() bool

	// Drained reports whether q is closed and has no buffered messages.
	Drained() bool

	// Len reports the number of currently buffered messages. Diagnostic
	// only -- nothing in the enqueue/receive path consults it.
	Len() int
}
