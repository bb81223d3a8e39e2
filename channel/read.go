package channel

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Miners/lamina/graph"
	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/queue"
	"github.com/Miners/lamina/result"
)

// ErrTimeout is the error a ReadChannel result terminates with when its
// Timeout elapses with no OnTimeout callback configured.
var ErrTimeout = errors.New("lamina/channel: read timed out")

// ReadOption configures a single ReadChannel call.
type ReadOption[T any] func(*readConfig[T])

type readConfig[T any] struct {
	predicate func(T) (bool, error)
	falseVal  T
	onFalse   func(T) T
	timeout   time.Duration
	onTimeout func() T
	onDrained func() T
}

// WithPredicate restricts the receive to the first buffered (or
// subsequently arriving) message for which p returns true; a rejected
// message is skipped rather than consumed. falseValue is the value
// (see WithOnFalse) substituted when the immediate candidate delivered
// to a pending receive by Enqueue's consumer-matching path is rejected.
func WithPredicate[T any](p func(T) (bool, error), falseValue T) ReadOption[T] {
	return func(c *readConfig[T]) {
		c.predicate = p
		c.falseVal = falseValue
	}
}

// WithOnFalse overrides the value produced when a predicate rejects the
// message handed to it by Enqueue's synchronous consumer-matching path
// (rather than the default of resolving with the bare falseValue).
func WithOnFalse[T any](f func(rejected T) T) ReadOption[T] {
	return func(c *readConfig[T]) { c.onFalse = f }
}

// WithTimeout bounds the wait: if no message satisfies the receive
// within d, the read is cancelled and resolves via onTimeout (or
// ErrTimeout if onTimeout is nil).
func WithTimeout[T any](d time.Duration, onTimeout func() T) ReadOption[T] {
	return func(c *readConfig[T]) { c.timeout = d; c.onTimeout = onTimeout }
}

// WithOnDrained substitutes a value for the ordinary queue.ErrDrained
// error a read fails with when the channel closes empty before a
// message arrives.
func WithOnDrained[T any](f func() T) ReadOption[T] {
	return func(c *readConfig[T]) { c.onDrained = f }
}

type falseMarker[T any] struct{ value T }

// ReadChannel reads a single message from ch's emitter as a deferred
// result, honoring the given options. With no options, it is a plain
// one-shot receive: the returned *result.Chan[T] resolves to the next
// message, or fails with queue.ErrDrained if ch closes first.
func ReadChannel[T any](ch *Channel[T], opts ...ReadOption[T]) *result.Chan[T] {
	out, _ := readChannel(ch, opts...)
	return out
}

// readChannel is ReadChannel's implementation, additionally returning a
// cancel func that cancels the underlying queue receive directly --
// needed by ReceiveAll, since the *result.Chan[T] ReadChannel returns is
// a distinct, adapted channel from the one the queue itself holds.
func readChannel[T any](ch *Channel[T], opts ...ReadOption[T]) (out *result.Chan[T], cancel func() bool) {
	cfg := &readConfig[T]{}
	for _, o := range opts {
		o(cfg)
	}

	q := ch.Emitter.Queue()
	out = result.New[T]()

	var pred func(any) (bool, error)
	var falseAny any
	if cfg.predicate != nil {
		pred = func(v any) (bool, error) { return cfg.predicate(v.(T)) }
		falseAny = falseMarker[T]{value: cfg.falseVal}
	}

	raw := q.Receive(pred, falseAny, nil)
	var timedOut atomic.Bool // set just before the timeout path cancels raw itself

	// A direct receive that empties a closed node's own buffer doesn't
	// otherwise get a chance to promote Closed -> Drained (only Close
	// checks this, and propagate never does), so nudge it here.
	raw.AddListener(func(any) { graph.Drain(ch.Emitter) })
	raw.AddErrorListener(func(error) { graph.Drain(ch.Emitter) })

	raw.AddListener(func(v any) {
		if fm, ok := v.(falseMarker[T]); ok {
			if cfg.onFalse != nil {
				out.Success(cfg.onFalse(fm.value))
			} else {
				out.Success(fm.value)
			}
			return
		}
		out.Success(v.(T))
	})
	raw.AddErrorListener(func(err error) {
		if timedOut.Load() && errors.Is(err, queue.ErrCancelled) {
			return // the timeout path below resolves out itself
		}
		if errors.Is(err, queue.ErrDrained) && cfg.onDrained != nil {
			out.Success(cfg.onDrained())
			return
		}
		out.Error(err)
	})

	if cfg.timeout > 0 {
		timer := ch.ctx.TimerOf()
		deadline := lclock.Schedule(timer, cfg.timeout, struct{}{})
		deadline.AddListener(func(struct{}) {
			timedOut.Store(true)
			if !q.CancelReceive(raw) {
				return // already resolved before the deadline fired
			}
			if cfg.onTimeout != nil {
				out.Success(cfg.onTimeout())
			} else {
				out.Error(ErrTimeout)
			}
		})
	}

	return out, func() bool { return q.CancelReceive(raw) }
}

// ReceiveAll subscribes f as a persistent consumer of ch's emitter: f is
// invoked, strictly serialized, for every message that arrives, until
// ch closes (queue.ErrDrained) or errors. unsubscribe cancels whichever
// receive is currently pending; one already-in-flight delivery may
// still reach f before cancellation takes effect.
func ReceiveAll[T any](ch *Channel[T], f func(T)) (unsubscribe func()) {
	var mu sync.Mutex
	stopped := false
	var cancelCurrent func() bool

	var loop func()
	loop = func() {
		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		rc, cancel := readChannel(ch)
		cancelCurrent = cancel
		mu.Unlock()

		rc.AddListener(func(v T) {
			f(v)
			loop()
		})
		rc.AddErrorListener(func(error) {})
	}
	loop()

	return func() {
		mu.Lock()
		stopped = true
		cancel := cancelCurrent
		mu.Unlock()
		if cancel != nil {
			cancel()
		}
	}
}
