package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miners/lamina/sentinel"
)

func TestPropagateToOpenNodeDeliversToDirectConsumer(t *testing.T) {
	n := newTestNode()
	rc := n.queue.Receive(nil, 0, nil)

	out := Propagate(n, 42, true)
	c := out.Chan()
	require.True(t, c.IsTerminal())

	require.True(t, rc.IsTerminal())
	assert.Equal(t, 42, rc.SuccessValue(-1))
}

func TestPropagateAppliesOperator(t *testing.T) {
	n := newTestNode(WithOperator(func(v any) (any, error) {
		return v.(int) * 2, nil
	}))
	rc := n.queue.Receive(nil, 0, nil)

	Propagate(n, 21, true)
	require.True(t, rc.IsTerminal())
	assert.Equal(t, 42, rc.SuccessValue(-1))
}

func TestPropagateSkipsOperatorWhenTransformFalse(t *testing.T) {
	n := newTestNode(WithOperator(func(v any) (any, error) {
		return v.(int) * 2, nil
	}))
	rc := n.queue.Receive(nil, 0, nil)

	Propagate(n, 21, false)
	require.True(t, rc.IsTerminal())
	assert.Equal(t, 21, rc.SuccessValue(-1))
}

func TestPropagateOperatorErrorErrorsNode(t *testing.T) {
	boom := errors.New("boom")
	n := newTestNode(WithOperator(func(v any) (any, error) {
		return nil, boom
	}))

	out := Propagate(n, 1, true)
	c := out.Chan()
	require.True(t, c.IsTerminal())
	assert.Equal(t, boom, c.ErrorValue())

	state, err, _, _ := n.Snapshot()
	assert.Equal(t, Error, state)
	assert.Equal(t, boom, err)
}

func TestPropagateOnClosedNodeReturnsClosedTag(t *testing.T) {
	n := newTestNode()
	Close(n)

	out := Propagate(n, 1, true)
	tag, isTag := out.Tag()
	require.True(t, isTag)
	assert.Equal(t, sentinel.Closed, tag)
}

func TestPropagateOnErroredNodeReturnsError(t *testing.T) {
	n := newTestNode()
	boom := errors.New("boom")
	ErrorNode(n, boom)

	out := Propagate(n, 1, true)
	c := out.Chan()
	require.True(t, c.IsTerminal())
	assert.Equal(t, boom, c.ErrorValue())
}

func TestPropagateConsumedBypassesQueue(t *testing.T) {
	n := newTestNode()
	sink := newTestNode()
	sinkRC := sink.queue.Receive(nil, 0, nil)

	_, out := Consume(n, NewEdge("owner", sink))
	_, isTag := out.Tag()
	require.True(t, isTag)

	Propagate(n, 7, true)
	require.True(t, sinkRC.IsTerminal())
	assert.Equal(t, 7, sinkRC.SuccessValue(-1))
}

func TestPropagateFansOutToEachNonTapEdgeExactlyOnce(t *testing.T) {
	n := newTestNode()
	a := newTestNode()
	b := newTestNode()
	Link(n, NewEdge("a", a), false)
	Link(n, NewEdge("b", b), false)

	rcA := a.queue.Receive(nil, 0, nil)
	rcB := b.queue.Receive(nil, 0, nil)

	out := Propagate(n, "msg", true)
	c := out.Chan()
	require.True(t, c.IsTerminal())
	assert.True(t, c.IsSuccess())

	require.True(t, rcA.IsTerminal())
	require.True(t, rcB.IsTerminal())
	assert.Equal(t, "msg", rcA.SuccessValue(""))
	assert.Equal(t, "msg", rcB.SuccessValue(""))
}

func TestPropagateFanOutSucceedsWithQueueSplitTag(t *testing.T) {
	n := newTestNode()
	a := newTestNode()
	b := newTestNode()
	Link(n, NewEdge("a", a), false)
	Link(n, NewEdge("b", b), false)
	a.queue.Receive(nil, 0, nil)
	b.queue.Receive(nil, 0, nil)

	out := Propagate(n, "msg", true)
	c := out.Chan()
	require.True(t, c.IsTerminal())
	assert.Equal(t, sentinel.QueueSplit, c.SuccessValue(sentinel.Tag(-1)))
}

func TestPropagateTapDoesNotContributeBackPressure(t *testing.T) {
	n := newTestNode()
	tapDst := newTestNode()
	// tap destination is closed -- a send to it would error/never complete.
	Close(tapDst)
	Link(n, &Edge{Description: "tap", Destination: tapDst, Style: StyleTap}, false)

	out := Propagate(n, "msg", true)
	c := out.Chan()
	require.True(t, c.IsTerminal())
	assert.True(t, c.IsSuccess(), "tap's closed! send-result must not be part of the aggregate")
}

func TestPropagateAggregateErrorsIfAnyEdgeErrors(t *testing.T) {
	n := newTestNode()
	ok := newTestNode()
	failing := newTestNode(WithOperator(func(v any) (any, error) {
		return nil, errors.New("downstream boom")
	}))
	Link(n, NewEdge("ok", ok), false)
	Link(n, NewEdge("failing", failing), false)
	ok.queue.Receive(nil, 0, nil)

	out := Propagate(n, 1, true)
	c := out.Chan()
	require.True(t, c.IsTerminal())
	assert.True(t, c.IsError())
}

func TestPropagateToTerminalEdgeResolvesDelivered(t *testing.T) {
	n := newTestNode()
	Link(n, TerminalPropagator("sink"), false)

	out := Propagate(n, 1, true)
	c := out.Chan()
	require.True(t, c.IsTerminal())
	assert.True(t, c.IsSuccess())
}

func TestPropagatePersistsWhenNoConsumerPresent(t *testing.T) {
	n := newTestNode()
	out := Propagate(n, 1, true)
	_, isTag := out.Tag()
	assert.False(t, isTag, "no consumer and default queue persists rather than discarding")

	rc := n.queue.Receive(nil, 0, nil)
	require.True(t, rc.IsTerminal())
	assert.Equal(t, 1, rc.SuccessValue(-1))
}

func TestDrainPromotesClosedEmptyQueueToDrained(t *testing.T) {
	n := newTestNode()
	Close(n)
	Drain(n)
	state, _, _, _ := n.Snapshot()
	assert.Equal(t, Drained, state)
}
