package graph

//go:generate go run github.com/dmarkham/enumer -type State

// State is a Node's lifecycle stage. Transitions are irrevocable except
// as noted on the individual operations (Link, Consume, Close, ErrorNode).
type State int

const (
	// Open accepts further edges. With no edges its messages are
	// buffered in the node's own queue; with one edge they are passed
	// down that edge and not buffered.
	Open State = iota

	// Consumed has exactly one owning edge; the node's queue is
	// bypassed and messages stream straight to the owner.
	Consumed

	// Split has two or more edges; each message is passed down every
	// edge in turn, one edge after another, and is not buffered in the
	// node's own queue.
	Split

	// Closed no longer accepts new messages; pending receives resolve
	// drained! once the queue empties.
	Closed

	// Drained is Closed with an empty queue.
	Drained

	// Error is terminal: every future operation sees the same error.
	Error
)
