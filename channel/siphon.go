package channel

import "github.com/Miners/lamina/graph"

// Siphon links src's emitter to dst's receiver: every message src
// propagates is forwarded into dst. Closing src closes dst, unless dst
// was built with graph.Permanent(). The reverse never happens: closing
// dst has no effect on src.
func Siphon[T any](src, dst *Channel[T]) {
	graph.Link(src.Emitter, graph.NewEdge("siphon", dst.Receiver), false)
}

// Join is Siphon plus a reverse close cascade: closing either side
// closes the other, like a bidirectionally spliced pair where a KILL
// on either end tears down both.
func Join[T any](src, dst *Channel[T]) {
	Siphon(src, dst)
	graph.RegisterOnClosed(dst.Emitter, func() { graph.Close(src.Emitter) })
}

// BridgeJoin attaches a propagator edge to src whose destination runs
// callback over every message and forwards callback's return value into
// dst's receiver, with dst's own send-result folded back into src's
// back-pressure (a slow or erroring dst stalls or fails the edge
// src.Emitter is propagating through, exactly like any other edge).
func BridgeJoin[T any](src, dst *Channel[T], desc string, callback func(T) (T, error)) {
	bridge := graph.NewNode(src.registry, src.ctx,
		graph.WithDescription(desc),
		graph.WithOperator(func(v any) (any, error) {
			out, err := callback(v.(T))
			if err != nil {
				return nil, err
			}
			return out, nil
		}),
	)
	graph.Link(bridge, graph.NewEdge(desc+"-dst", dst.Receiver), false)
	graph.Link(src.Emitter, &graph.Edge{Description: desc, Destination: bridge, Style: graph.StyleJoin}, false)
}
