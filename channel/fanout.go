package channel

import "github.com/Miners/lamina/graph"

// Fork returns a new channel fed from ch's emitter via a Style Fork
// edge: ch's emitter gains one more downstream edge (Split once it has
// two or more), each fork seeing every message ch's emitter propagates.
// opts may attach a rate limit to this particular fork; only this
// branch's messages are dropped or delayed, but a blocking limit waits
// inside ch's own synchronous propagation.
func Fork[T any](ch *Channel[T], opts ...EdgeOption) *Channel[T] {
	cfg := newEdgeConfig(opts)
	next := graph.NewNode(ch.registry, ch.ctx,
		graph.WithOperator(applyRateLimit(cfg, nil)),
	)
	graph.Link(ch.Emitter, &graph.Edge{Description: "fork", Destination: next, Style: graph.StyleFork}, false)
	return &Channel[T]{Receiver: ch.Receiver, Emitter: next, registry: ch.registry, ctx: ch.ctx}
}

// Tap returns a new channel fed from ch's emitter via a Style Tap edge:
// messages are delivered to the tap without back-pressure -- a tap that
// is slow to receive never blocks ch's own propagation, and the tap's
// send result is discarded rather than folded into the aggregate
// outcome. A blocking rate limit on the tap does wait inside ch's own
// synchronous propagation.
// Closing ch's emitter closes the tap; closing the tap never closes ch.
func Tap[T any](ch *Channel[T], opts ...EdgeOption) *Channel[T] {
	cfg := newEdgeConfig(opts)
	next := graph.NewNode(ch.registry, ch.ctx,
		graph.WithOperator(applyRateLimit(cfg, nil)),
	)
	graph.Link(ch.Emitter, &graph.Edge{Description: "tap", Destination: next, Style: graph.StyleTap}, false)
	return &Channel[T]{Receiver: ch.Receiver, Emitter: next, registry: ch.registry, ctx: ch.ctx}
}
