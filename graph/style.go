package graph

//go:generate go run github.com/dmarkham/enumer -type Style

// Style classifies an Edge's back-pressure and cascade behavior.
type Style int

const (
	// StyleStandard is an ordinary edge: contributes back-pressure,
	// cascades close and error.
	StyleStandard Style = iota

	// StyleTap ignores back-pressure (its send-result is never
	// awaited). Closing the source closes the tap, like any other
	// edge; closing the tap never closes the source, since Close only
	// ever walks a node's own outgoing edges. Errors still propagate
	// through it.
	StyleTap

	// StyleJoin is the edge channel.BridgeJoin attaches from its source
	// to the bridge node; propagation treats it like StyleStandard.
	// channel.Join links with a standard edge and adds its reverse close
	// cascade through RegisterOnClosed.
	StyleJoin

	// StyleFork attaches a new emitter; closing the source closes the
	// fork, like any other edge, but closing the fork does not close
	// the source.
	StyleFork

	// StyleSplit is one of several parallel edges on a Split node.
	StyleSplit
)
