package queue

import (
	"github.com/Miners/lamina/result"
	"github.com/Miners/lamina/sentinel"
)

// ErrorQueue is a degenerate Queue permanently in the errored state: every
// Enqueue resolves errored!, every Receive fails with the held error. It
// gives a node whose queue failed irrecoverably something to keep
// pointing at instead of a nil Queue.
type ErrorQueue[T any] struct {
	err error
}

// NewErrorQueue returns a Queue that reports err (or a generic drained
// error, if err is nil) for every operation.
func NewErrorQueue[T any](err error) *ErrorQueue[T] {
	if err == nil {
		err = ErrDrained
	}
	return &ErrorQueue[T]{err: err}
}

func (q *ErrorQueue[T]) Enqueue(_ *Message[T], _ bool, release func()) sentinel.Outcome {
	if release != nil {
		release()
	}
	return sentinel.TagOutcome(sentinel.Errored)
}

func (q *ErrorQueue[T]) Receive(_ func(T) (bool, error), _ T, rc *result.Chan[T]) *result.Chan[T] {
	if rc == nil {
		rc = result.New[T]()
	}
	rc.Error(q.err)
	return rc
}

func (q *ErrorQueue[T]) CancelReceive(_ *result.Chan[T]) bool { return false }

func (q *ErrorQueue[T]) Error(err error) {
	if err != nil {
		q.err = err
	}
}

func (q *ErrorQueue[T]) Close()        {}
func (q *ErrorQueue[T]) Closed() bool  { return true }
func (q *ErrorQueue[T]) Drained() bool { return true }
func (q *ErrorQueue[T]) Len() int      { return 0 }

var _ Queue[int] = (*ErrorQueue[int])(nil)

// DrainedQueue is a degenerate Queue permanently in the closed-and-empty
// state: every Enqueue resolves already-closed!, every Receive fails
// drained!. Unlike ErrorQueue this is the ordinary terminal state a
// LockQueue or TxQueue reaches after Close, represented as its own
// zero-allocation value rather than a queue still carrying dead slices.
type DrainedQueue[T any] struct{}

// NewDrainedQueue returns a Queue permanently closed and empty.
func NewDrainedQueue[T any]() *DrainedQueue[T] { return &DrainedQueue[T]{} }

func (q *DrainedQueue[T]) Enqueue(_ *Message[T], _ bool, release func()) sentinel.Outcome {
	if release != nil {
		release()
	}
	return sentinel.TagOutcome(sentinel.AlreadyClosed)
}

func (q *DrainedQueue[T]) Receive(_ func(T) (bool, error), _ T, rc *result.Chan[T]) *result.Chan[T] {
	if rc == nil {
		rc = result.New[T]()
	}
	rc.Error(ErrDrained)
	return rc
}

func (q *DrainedQueue[T]) CancelReceive(_ *result.Chan[T]) bool { return false }
func (q *DrainedQueue[T]) Error(_ error)                        {}
func (q *DrainedQueue[T]) Close()                               {}
func (q *DrainedQueue[T]) Closed() bool                         { return true }
func (q *DrainedQueue[T]) Drained() bool                        { return true }
func (q *DrainedQueue[T]) Len() int                             { return 0 }

var _ Queue[int] = (*DrainedQueue[int])(nil)
