package graph

// Edge connects a Node to a destination Node, or to nothing (a
// Terminal, when Destination is nil) -- a sink that consumes and
// discards, used to ground a chain that has no further observer.
type Edge struct {
	Description string
	Destination *Node
	Style       Style
}

// NewEdge returns a standard edge to dst.
func NewEdge(description string, dst *Node) *Edge {
	return &Edge{Description: description, Destination: dst, Style: StyleStandard}
}

// TerminalPropagator returns an edge with no destination: messages sent
// to it are accepted and discarded, resolving Delivered.
func TerminalPropagator(description string) *Edge {
	return &Edge{Description: description}
}

// IsTerminal reports whether e has no destination node.
func (e *Edge) IsTerminal() bool { return e.Destination == nil }
