// Package sentinel defines the opaque, non-exception outcome tags returned
// by queue and graph operations, per the External Interfaces contract.
package sentinel

//go:generate go run github.com/dmarkham/enumer -type Tag

// Tag is a non-error outcome signalled by a queue/graph/channel operation.
// Callers compare Tag values rather than matching on strings.
type Tag int

const (
	// Discarded: enqueue found no consumer and was not asked to persist.
	Discarded Tag = iota
	// Closed: the target is closed.
	Closed
	// Errored: the target is in the error state.
	Errored
	// AlreadyConsumed: a node already has an owning edge.
	AlreadyConsumed
	// AlreadyClosed: an enqueue or consume found the target already closed.
	AlreadyClosed
	// Drained: closed and empty.
	Drained
	// Cancelled: a pending receive was cancelled before it completed.
	Cancelled
	// Incomplete: a result channel has not yet reached a terminal state.
	Incomplete
	// QueueSplit: propagation fanned the message out to more than one edge.
	QueueSplit
	// QueueBranch: a single edge consumed from a split node.
	QueueBranch
	// Delivered: a message was handed to a consumer or edge and that
	// hand-off is already fully resolved; carries no meaning beyond
	// "successfully resolved, nothing more to wait for".
	Delivered
)
