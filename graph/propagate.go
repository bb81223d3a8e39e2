package graph

import (
	"sync"

	"github.com/Miners/lamina/queue"
	"github.com/Miners/lamina/result"
	"github.com/Miners/lamina/sentinel"
)

// dropped is a unique sentinel an operator can return to signal "this
// message produces no output" -- a predicate edge, for instance, yields
// it instead of a transformed value when its predicate rejects the
// message. Propagate recognizes it and resolves Discarded without
// enqueueing or fanning out, rather than forwarding the sentinel itself.
type droppedType struct{}

// Drop is the value an operator returns to suppress a message entirely
// (used by channel.Filter/Remove).
var Drop any = &droppedType{}

// Propagate is the central graph algorithm. It snapshots n's state,
// applies the node's operator (unless transform is false), enqueues the
// transformed message into n's own queue under hand-over-hand
// discipline, fans it out to every downstream edge, and combines all
// the non-tap send-results into one aggregate Outcome.
func Propagate(n *Node, msg any, transform bool) sentinel.Outcome {
	n.lk.AcquireExclusive()

	switch n.state {
	case Error:
		err := n.err
		n.lk.ReleaseExclusive()
		return sentinel.ErrorOutcome(err)

	case Closed, Drained:
		n.lk.ReleaseExclusive()
		return sentinel.TagOutcome(sentinel.Closed)

	case Consumed:
		owner := n.owner
		op := n.operator
		n.lk.ReleaseExclusive()

		payload, operErr := applyOperator(op, msg, transform)
		if operErr != nil {
			ErrorNode(n, operErr)
			return sentinel.ErrorOutcome(operErr)
		}
		if payload == Drop {
			return sentinel.TagOutcome(sentinel.Discarded)
		}
		return propagateEdge(owner, payload)
	}

	// Open / Split.
	payload, operErr := applyOperator(n.operator, msg, transform)
	if operErr != nil {
		n.state = Error
		n.err = operErr
		edges := append([]*Edge{}, n.edges...)
		q := n.queue
		n.lk.ReleaseExclusive()

		n.ctx.Log().Debug().Err(operErr).Str("node", n.description).Msg("node errored")
		q.Error(operErr)
		cascadeError(edges, operErr)
		return sentinel.ErrorOutcome(operErr)
	}
	if payload == Drop {
		n.lk.ReleaseExclusive()
		return sentinel.TagOutcome(sentinel.Discarded)
	}

	// The node's own queue only needs to buffer for hypothetical future
	// direct receivers (Channel.ReadChannel/ReceiveAll) when it has no
	// outgoing edges at all -- a node that forwards via edges already
	// has somewhere for the message to go, so persisting it here too
	// would both leak memory and hang the aggregate on a mailbox nobody
	// is ever going to drain.
	persist := len(n.edges) == 0

	var edges []*Edge
	qmsg := &queue.Message[any]{Payload: payload}
	selfOutcome := n.queue.Enqueue(qmsg, persist, func() {
		edges = append([]*Edge{}, n.edges...)
		n.lk.ReleaseExclusive()
	})

	outs := make([]sentinel.Outcome, 0, len(edges)+1)
	for _, e := range edges {
		if e.Style == StyleTap {
			propagateEdge(e, payload) // fire and forget, no back-pressure
			continue
		}
		outs = append(outs, propagateEdge(e, payload))
	}
	if len(outs) == 0 {
		// no non-tap edges (none at all, or only taps): the node's own
		// enqueue result is the whole story.
		outs = append(outs, selfOutcome)
	}
	return combine(n, outs)
}

func applyOperator(op func(any) (any, error), msg any, transform bool) (payload any, err error) {
	if !transform || op == nil {
		return msg, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return op(msg)
}

func propagateEdge(e *Edge, payload any) sentinel.Outcome {
	if e == nil || e.Destination == nil {
		return sentinel.DoneOutcome(sentinel.Delivered)
	}
	return Propagate(e.Destination, payload, true)
}

// combine aggregates per-edge send-results into one Outcome: success iff
// every one succeeds (QueueSplit, since the aggregate is only built for
// more than one edge's outcome -- the message really was fanned out; a
// single outcome is returned unchanged), error iff any one does (first error wins; later
// ones are orphaned -- Chan.Error is a no-op once terminal, so a second
// or later error can no longer affect the aggregate, but it is still
// logged against n rather than silently dropped, since it represents a
// real downstream failure nobody is left watching for).
func combine(n *Node, outs []sentinel.Outcome) sentinel.Outcome {
	switch len(outs) {
	case 0:
		return sentinel.TagOutcome(sentinel.Discarded)
	case 1:
		return outs[0]
	}

	agg := result.New[sentinel.Tag]()
	var mu sync.Mutex
	remaining := len(outs)
	failed := false

	for _, o := range outs {
		c := o.Chan()
		c.AddListener(func(sentinel.Tag) {
			mu.Lock()
			remaining--
			done := remaining == 0 && !failed
			mu.Unlock()
			if done {
				agg.Success(sentinel.QueueSplit)
			}
		})
		c.AddErrorListener(func(err error) {
			mu.Lock()
			already := failed
			failed = true
			mu.Unlock()
			if !already {
				agg.Error(err)
				return
			}
			n.ctx.Log().Debug().Err(err).Str("node", n.description).Msg("orphaned edge error after aggregate already resolved")
		})
	}

	return sentinel.WaitOutcome(agg)
}
