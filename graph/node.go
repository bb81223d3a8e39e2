package graph

import (
	"fmt"

	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/lock"
	"github.com/Miners/lamina/queue"
	"github.com/Miners/lamina/sentinel"
)

// Node is one vertex of a propagation graph: a queue of pending direct
// receives, an optional transform applied to every message that passes
// through, and a set of downstream edges.
type Node struct {
	id       NodeID
	registry *Registry
	lk       *lock.RWLock
	ctx      *lclock.Context

	state State
	err   error

	queue    queue.Queue[any]
	operator func(any) (any, error)

	edges         []*Edge
	owner         *Edge
	cancellations map[any]func()

	permanent     bool
	predicate     bool
	description   string
	grounded      bool
	transactional bool

	onClosed  []func()
	onDrained []func()
}

// NodeOption configures a Node at construction time.
type NodeOption func(*Node)

// WithOperator sets the transform applied to every message propagated
// through the node (unless transform=false is passed to Propagate).
func WithOperator(op func(any) (any, error)) NodeOption {
	return func(n *Node) { n.operator = op }
}

// WithDescription attaches a human-readable label, surfaced by
// diag.Snapshot.
func WithDescription(desc string) NodeOption {
	return func(n *Node) { n.description = desc }
}

// Permanent pins the node in the open state: Close is refused, both as
// an explicit call and as a cascade from an upstream close. CloseForce
// overrides this for an explicit, non-cascaded call.
func Permanent() NodeOption {
	return func(n *Node) { n.permanent = true }
}

// Grounded pins the node in the open state regardless of edge count --
// Link never promotes it to Split or Consumed.
func Grounded() NodeOption {
	return func(n *Node) { n.grounded = true }
}

// Predicated marks the node as accepting only predicate-gated
// consumption. The flag is descriptive only: neither propagate nor the
// ops/channel layers read it.
func Predicated() NodeOption {
	return func(n *Node) { n.predicate = true }
}

// Transactional backs the node's queue with a TxQueue instead of a
// LockQueue.
func Transactional() NodeOption {
	return func(n *Node) { n.transactional = true }
}

// OnClosed registers a callback invoked once, when the node transitions
// to Closed.
func OnClosed(f func()) NodeOption {
	return func(n *Node) { n.onClosed = append(n.onClosed, f) }
}

// OnDrained registers a callback invoked once, when the node's queue
// has emptied after closing.
func OnDrained(f func()) NodeOption {
	return func(n *Node) { n.onDrained = append(n.onDrained, f) }
}

// NewNode constructs a node registered in reg, open, with no edges.
func NewNode(reg *Registry, ctx *lclock.Context, opts ...NodeOption) *Node {
	if ctx == nil {
		ctx = lclock.Background()
	}
	n := &Node{
		lk:            lock.New(),
		ctx:           ctx,
		registry:      reg,
		cancellations: make(map[any]func()),
	}
	for _, o := range opts {
		o(n)
	}
	if n.transactional {
		n.queue = queue.NewTxQueue[any](ctx)
	} else {
		n.queue = queue.NewLockQueue[any](ctx)
	}
	if reg != nil {
		n.id = reg.register(n)
	}
	return n
}

// ID returns the node's stable registry identifier.
func (n *Node) ID() NodeID { return n.id }

// Description returns the node's human-readable label.
func (n *Node) Description() string { return n.description }

// Lock exposes the node's lock for lock.AcquireAll-based diagnostic
// sampling.
func (n *Node) Lock() *lock.RWLock { return n.lk }

// Queue exposes the node's queue. Only the concrete *LockQueue type
// exposes a Lock method; *TxQueue has none.
func (n *Node) Queue() queue.Queue[any] { return n.queue }

// Snapshot reports state, error, queue-drained and the current edge set
// under the node's shared lock -- the read side used by diag.Snapshot.
func (n *Node) Snapshot() (state State, err error, drained bool, edges []*Edge) {
	n.lk.Acquire()
	defer n.lk.Release()
	return n.state, n.err, n.queue.Drained(), append([]*Edge{}, n.edges...)
}

// Transactional reports whether n's queue is a TxQueue rather than a
// LockQueue -- immutable after construction, so no lock is needed.
func (n *Node) Transactional() bool { return n.transactional }

func (n *Node) String() string {
	if n.description != "" {
		return fmt.Sprintf("Node(%d, %q)", n.id, n.description)
	}
	return fmt.Sprintf("Node(%d)", n.id)
}

// Link adds e to n's edge set. If owner is true, e becomes n's sole
// owning edge and n transitions to Consumed (no further edges may be
// added afterwards). Otherwise n transitions to Open (one edge) or
// Split (two or more), unless n is Grounded, which pins it Open
// regardless of edge count. Link on an already-Consumed node is a
// no-op: the lifecycle forbids adding edges past that point.
func Link(n *Node, e *Edge, owner bool) {
	n.lk.AcquireExclusive()
	defer n.lk.ReleaseExclusive()

	if n.state == Consumed || n.state == Error {
		return
	}

	n.edges = append(n.edges, e)

	switch {
	case n.grounded:
		// pinned open; edge accounting still happens for propagate's
		// fan-out, just no state transition.
	case owner:
		n.state = Consumed
		n.owner = e
	case len(n.edges) > 1:
		n.state = Split
	default:
		n.state = Open
	}
}

// Consume atomically transitions n from Open/Split to Consumed with e
// as the owning edge, provided no other owner already exists. It
// returns a thunk that restores the prior state, and Delivered on
// success, or AlreadyConsumed if n already has an owner, AlreadyClosed
// once n is closed or drained, or n's error once n has errored.
func Consume(n *Node, e *Edge) (unconsume func(), outcome sentinel.Outcome) {
	n.lk.AcquireExclusive()
	defer n.lk.ReleaseExclusive()

	switch n.state {
	case Consumed:
		return nil, sentinel.TagOutcome(sentinel.AlreadyConsumed)
	case Closed, Drained:
		return nil, sentinel.TagOutcome(sentinel.AlreadyClosed)
	case Error:
		return nil, sentinel.ErrorOutcome(n.err)
	}

	prev := n.state
	n.owner = e
	n.state = Consumed
	return func() {
		n.lk.AcquireExclusive()
		defer n.lk.ReleaseExclusive()
		if n.state == Consumed {
			n.state = prev
			n.owner = nil
		}
	}, sentinel.TagOutcome(sentinel.Delivered)
}

// RegisterCancellation associates a cancellation function with key, for
// later invocation via Cancel.
func RegisterCancellation(n *Node, key any, fn func()) {
	n.lk.AcquireExclusive()
	defer n.lk.ReleaseExclusive()
	n.cancellations[key] = fn
}

// Cancel invokes and forgets the cancellation function registered at
// key, if any; used to unsubscribe.
func Cancel(n *Node, key any) {
	n.lk.AcquireExclusive()
	fn, ok := n.cancellations[key]
	if ok {
		delete(n.cancellations, key)
	}
	n.lk.ReleaseExclusive()
	if ok && fn != nil {
		fn()
	}
}

// RegisterOnClosed appends a callback invoked when n transitions to
// Closed, after construction time -- used by channel.Join to wire its
// bidirectional close cascade onto an already-built destination node.
func RegisterOnClosed(n *Node, f func()) {
	n.lk.AcquireExclusive()
	n.onClosed = append(n.onClosed, f)
	n.lk.ReleaseExclusive()
}

// Close transitions n to Closed (refused if n is Permanent), closes its
// queue, cascades to every downstream edge (including taps -- closing a
// source closes its tap, though never the reverse), and invokes
// OnClosed/OnDrained callbacks. Idempotent. A cascaded close (one
// Close triggers on its downstream edges) is always this ordinary,
// refusable form -- a Permanent node downstream of a closing upstream
// is never torn down by that cascade.
func Close(n *Node) {
	closeNode(n, false)
}

// CloseForce closes n even if it is Permanent -- the explicit,
// non-cascaded override. It still cascades to n's own downstream
// edges via the ordinary (non-forcing) Close, so a Permanent node
// reachable only through the cascade remains protected; only the node
// named directly is forced.
func CloseForce(n *Node) {
	closeNode(n, true)
}

func closeNode(n *Node, force bool) {
	n.lk.AcquireExclusive()
	if n.permanent && !force {
		n.lk.ReleaseExclusive()
		return
	}
	if n.state == Closed || n.state == Drained || n.state == Error {
		n.lk.ReleaseExclusive()
		return
	}
	n.state = Closed
	edges := append([]*Edge{}, n.edges...)
	q := n.queue
	onClosed := append([]func(){}, n.onClosed...)
	n.lk.ReleaseExclusive()

	q.Close()

	n.lk.AcquireExclusive()
	drained := q.Drained()
	var onDrained []func()
	if drained && n.state == Closed {
		n.state = Drained
		onDrained = append([]func(){}, n.onDrained...)
	}
	n.lk.ReleaseExclusive()

	for _, f := range onClosed {
		f()
	}
	for _, f := range onDrained {
		f()
	}

	for _, e := range edges {
		if e.Destination == nil {
			continue
		}
		Close(e.Destination)
	}
}

// Drain re-checks whether a Closed node's queue has emptied, promoting
// it to Drained and firing OnDrained callbacks if so. Close already does
// this as part of its own sequencing (propagate never does); Drain exists
// for callers (e.g. after an external queue.Receive drains the last
// buffered message) that need to force the check.
func Drain(n *Node) {
	n.lk.Acquire()
	closed := n.state == Closed
	q := n.queue
	n.lk.Release()
	if !closed || !q.Drained() {
		return
	}

	n.lk.AcquireExclusive()
	var onDrained []func()
	if n.state == Closed && q.Drained() {
		n.state = Drained
		onDrained = append([]func(){}, n.onDrained...)
	}
	n.lk.ReleaseExclusive()

	for _, f := range onDrained {
		f()
	}
}

// ErrorNode transitions n to Error and cascades the same error to every
// downstream edge, including taps -- same forward-only cascade Close
// uses. Idempotent -- a node already in Error keeps its original error.
func ErrorNode(n *Node, err error) {
	n.lk.AcquireExclusive()
	if n.state == Error {
		n.lk.ReleaseExclusive()
		return
	}
	n.state = Error
	n.err = err
	edges := append([]*Edge{}, n.edges...)
	q := n.queue
	n.lk.ReleaseExclusive()

	n.ctx.Log().Debug().Err(err).Str("node", n.description).Msg("node errored")
	q.Error(err)
	cascadeError(edges, err)
}

func cascadeError(edges []*Edge, err error) {
	for _, e := range edges {
		if e.Destination == nil {
			continue
		}
		ErrorNode(e.Destination, err)
	}
}
