// Package channel is the user-facing façade over graph: a pair of nodes
// (receiver, emitter) plus the combinators (Map, Filter, Fork, Tap,
// Siphon, Join, BridgeJoin) that build new channels out of old ones.
package channel

import (
	"github.com/Miners/lamina/graph"
	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/sentinel"
)

// Channel is a pair (Receiver, Emitter). For a plain channel both are
// the same node. Splicing (map*/filter*/Splice) gives the receiver a
// sole owning edge into a separate emitter, so head-of-pipeline
// transforms are distinct from consumer-side ones.
type Channel[T any] struct {
	Receiver *graph.Node
	Emitter  *graph.Node

	registry *graph.Registry
	ctx      *lclock.Context
}

// New returns a fresh single-node channel.
func New[T any](ctx *lclock.Context, opts ...graph.NodeOption) *Channel[T] {
	if ctx == nil {
		ctx = lclock.Background()
	}
	reg := graph.NewRegistry()
	n := graph.NewNode(reg, ctx, opts...)
	return &Channel[T]{Receiver: n, Emitter: n, registry: reg, ctx: ctx}
}

// ClosedChannel returns a channel pre-loaded with msgs and immediately
// closed -- a finite, already-complete source.
func ClosedChannel[T any](ctx *lclock.Context, msgs ...T) *Channel[T] {
	ch := New[T](ctx)
	for _, m := range msgs {
		Enqueue(ch, m)
	}
	graph.Close(ch.Emitter)
	return ch
}

// Splice links receiver to emitter through a single owning edge, so
// receiver becomes Consumed with emitter as its only downstream, and
// returns the resulting channel pair. Map, Filter and Remove link their
// nodes directly rather than through Splice.
func Splice[T any](ctx *lclock.Context, receiver, emitter *graph.Node) *Channel[T] {
	graph.Link(receiver, graph.NewEdge("splice", emitter), true)
	return &Channel[T]{Receiver: receiver, Emitter: emitter, ctx: ctx}
}

// Mimic returns a new, empty channel with the same transactional-ness
// and description as ch.
func Mimic[T any](ch *Channel[T]) *Channel[T] {
	var opts []graph.NodeOption
	if desc := ch.Emitter.Description(); desc != "" {
		opts = append(opts, graph.WithDescription(desc))
	}
	if ch.Emitter.Transactional() {
		opts = append(opts, graph.Transactional())
	}
	return New[T](ch.ctx, opts...)
}

// Enqueue sends msg into ch's receiver node, returning the aggregate
// send-result.
func Enqueue[T any](ch *Channel[T], msg T) sentinel.Outcome {
	return graph.Propagate(ch.Receiver, msg, true)
}

// Closed reports whether ch's emitter has closed (or errored).
func Closed[T any](ch *Channel[T]) bool {
	state, _, _, _ := ch.Emitter.Snapshot()
	return state == graph.Closed || state == graph.Drained || state == graph.Error
}

// Drained reports whether ch's emitter is closed and empty.
func Drained[T any](ch *Channel[T]) bool {
	state, _, _, _ := ch.Emitter.Snapshot()
	return state == graph.Drained
}

// Close closes ch's emitter node. A Permanent emitter refuses.
func Close[T any](ch *Channel[T]) {
	graph.Close(ch.Emitter)
}

// CloseForce closes ch's emitter node even if it is Permanent.
func CloseForce[T any](ch *Channel[T]) {
	graph.CloseForce(ch.Emitter)
}

// Error errors ch's emitter node.
func Error[T any](ch *Channel[T], err error) {
	graph.ErrorNode(ch.Emitter, err)
}
