package channel

import "github.com/Miners/lamina/graph"

// Map returns a new channel whose emitter applies f to every message
// from ch's emitter. ch's emitter becomes Consumed: no further edges
// may be added to it and its own queue is bypassed.
func Map[T, U any](ch *Channel[T], f func(T) (U, error)) *Channel[U] {
	next := graph.NewNode(ch.registry, ch.ctx,
		graph.WithOperator(func(v any) (any, error) {
			out, err := f(v.(T))
			if err != nil {
				return nil, err
			}
			return out, nil
		}),
	)
	graph.Link(ch.Emitter, graph.NewEdge("map", next), true)
	return &Channel[U]{Receiver: ch.Receiver, Emitter: next, registry: ch.registry, ctx: ch.ctx}
}

// Filter returns a new channel carrying only messages for which p
// returns true; rejected messages are dropped entirely (never enqueued
// or forwarded).
func Filter[T any](ch *Channel[T], p func(T) bool) *Channel[T] {
	next := graph.NewNode(ch.registry, ch.ctx,
		graph.WithOperator(func(v any) (any, error) {
			if !p(v.(T)) {
				return graph.Drop, nil
			}
			return v, nil
		}),
	)
	graph.Link(ch.Emitter, graph.NewEdge("filter", next), true)
	return &Channel[T]{Receiver: ch.Receiver, Emitter: next, registry: ch.registry, ctx: ch.ctx}
}

// Remove is Filter with the predicate negated.
func Remove[T any](ch *Channel[T], p func(T) bool) *Channel[T] {
	return Filter(ch, func(v T) bool { return !p(v) })
}
