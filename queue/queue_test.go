package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/sentinel"
)

func newCtx() *lclock.Context { return lclock.Background() }

func TestLockQueueEnqueueWithoutConsumerPersists(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	out := q.Enqueue(&Message[int]{Payload: 7}, true, nil)
	_, isTag := out.Tag()
	assert.False(t, isTag)
	assert.False(t, q.Drained())
}

func TestLockQueueEnqueueWithoutConsumerDiscards(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	out := q.Enqueue(&Message[int]{Payload: 7}, false, nil)
	tag, isTag := out.Tag()
	require.True(t, isTag)
	assert.Equal(t, sentinel.Discarded, tag)
}

func TestLockQueueDeliversToWaitingConsumer(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	rc := q.Receive(nil, 0, nil)

	out := q.Enqueue(&Message[int]{Payload: 42}, true, nil)
	oc := out.Chan()
	require.True(t, oc.IsTerminal())
	assert.Equal(t, sentinel.Delivered, oc.SuccessValue(sentinel.Tag(-1)))

	require.True(t, rc.IsTerminal())
	assert.True(t, rc.IsSuccess())
	assert.Equal(t, 42, rc.SuccessValue(-1))
}

func TestLockQueuePredicateRejectsWithFalseValue(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	rc := q.Receive(func(v int) (bool, error) { return v > 100, nil }, -1, nil)

	q.Enqueue(&Message[int]{Payload: 5}, true, nil)
	// rejected -- falls through to persistence since no other consumer.

	require.True(t, rc.IsTerminal())
	assert.Equal(t, -1, rc.SuccessValue(-99))
}

func TestLockQueuePredicateErrorFailsOnlyThatReceive(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	boom := errors.New("boom")
	rc := q.Receive(func(v int) (bool, error) { return false, boom }, 0, nil)

	q.Enqueue(&Message[int]{Payload: 5}, true, nil)
	require.True(t, rc.IsTerminal())
	assert.True(t, rc.IsError())
	assert.Equal(t, boom, rc.ErrorValue())
}

func TestLockQueueReceiveMatchesBufferedMessage(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	q.Enqueue(&Message[int]{Payload: 1}, true, nil)
	q.Enqueue(&Message[int]{Payload: 2}, true, nil)

	rc := q.Receive(func(v int) (bool, error) { return v == 2, nil }, -1, nil)
	require.True(t, rc.IsTerminal())
	assert.Equal(t, 2, rc.SuccessValue(-1))
}

func TestLockQueueCancelReceive(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	rc := q.Receive(nil, 0, nil)

	ok := q.CancelReceive(rc)
	assert.True(t, ok)
	require.True(t, rc.IsTerminal())
	assert.True(t, rc.IsError())

	assert.False(t, q.CancelReceive(rc)) // idempotent
}

func TestLockQueueCloseResolvesPendingConsumersDrained(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	rc := q.Receive(nil, 0, nil)
	q.Close()

	require.True(t, rc.IsTerminal())
	assert.True(t, rc.IsError())
	assert.True(t, q.Closed())
	assert.True(t, q.Drained())
}

func TestLockQueueCloseLeavesBufferedMessagesForLaterReceive(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	q.Enqueue(&Message[int]{Payload: 1}, true, nil)
	q.Enqueue(&Message[int]{Payload: 2}, true, nil)
	q.Close()

	assert.True(t, q.Closed())
	assert.False(t, q.Drained(), "closed but not yet empty")

	rc1 := q.Receive(nil, 0, nil)
	require.True(t, rc1.IsTerminal())
	assert.Equal(t, 1, rc1.SuccessValue(-1))

	rc2 := q.Receive(nil, 0, nil)
	require.True(t, rc2.IsTerminal())
	assert.Equal(t, 2, rc2.SuccessValue(-1))

	assert.True(t, q.Drained(), "drained once buffered messages are consumed")

	rc3 := q.Receive(nil, 0, nil)
	require.True(t, rc3.IsTerminal())
	assert.ErrorIs(t, rc3.ErrorValue(), ErrDrained)
}

func TestLockQueueEnqueueAfterCloseIsAlreadyClosed(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	q.Close()
	out := q.Enqueue(&Message[int]{Payload: 1}, true, nil)
	tag, isTag := out.Tag()
	require.True(t, isTag)
	assert.Equal(t, sentinel.AlreadyClosed, tag)
}

func TestLockQueueErrorFailsFutureReceives(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	boom := errors.New("boom")
	q.Error(boom)

	rc := q.Receive(nil, 0, nil)
	require.True(t, rc.IsTerminal())
	assert.Equal(t, boom, rc.ErrorValue())

	out := q.Enqueue(&Message[int]{Payload: 1}, true, nil)
	tag, _ := out.Tag()
	assert.Equal(t, sentinel.Errored, tag)
}

func TestLockQueueMessagesAndConsumersNeverBothNonEmpty(t *testing.T) {
	q := NewLockQueue[int](newCtx())
	q.Enqueue(&Message[int]{Payload: 1}, true, nil)
	q.lk.Acquire()
	haveMsgs := len(q.msgs) > 0
	haveCons := len(q.cons) > 0
	q.lk.Release()
	assert.True(t, haveMsgs)
	assert.False(t, haveCons)

	q2 := NewLockQueue[int](newCtx())
	q2.Receive(nil, 0, nil)
	q2.lk.Acquire()
	haveMsgs2 := len(q2.msgs) > 0
	haveCons2 := len(q2.cons) > 0
	q2.lk.Release()
	assert.False(t, haveMsgs2)
	assert.True(t, haveCons2)
}

func TestTxQueueDeliversToConcurrentReceiver(t *testing.T) {
	q := NewTxQueue[int](newCtx())
	done := make(chan struct{})

	go func() {
		r := q.Receive(nil, 0, nil)
		r.AddListener(func(int) { close(done) })
	}()

	time.Sleep(5 * time.Millisecond)
	out := q.Enqueue(&Message[int]{Payload: 99}, true, nil)
	_, isTag := out.Tag()
	assert.False(t, isTag)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receive never completed")
	}
}

func TestTransactionalCopyPreservesState(t *testing.T) {
	lq := NewLockQueue[int](newCtx())
	lq.Enqueue(&Message[int]{Payload: 1}, true, nil)
	lq.Enqueue(&Message[int]{Payload: 2}, true, nil)

	txq := TransactionalCopy(lq)
	rc := txq.Receive(func(v int) (bool, error) { return v == 1, nil }, -1, nil)
	require.True(t, rc.IsTerminal())
	assert.Equal(t, 1, rc.SuccessValue(-1))
}

func TestErrorQueueAlwaysErrors(t *testing.T) {
	boom := errors.New("boom")
	q := NewErrorQueue[int](boom)

	out := q.Enqueue(&Message[int]{Payload: 1}, true, nil)
	tag, _ := out.Tag()
	assert.Equal(t, sentinel.Errored, tag)

	rc := q.Receive(nil, 0, nil)
	require.True(t, rc.IsTerminal())
	assert.Equal(t, boom, rc.ErrorValue())

	assert.True(t, q.Closed())
	assert.True(t, q.Drained())
}

func TestDrainedQueueAlwaysDrained(t *testing.T) {
	q := NewDrainedQueue[int]()

	out := q.Enqueue(&Message[int]{Payload: 1}, true, nil)
	tag, _ := out.Tag()
	assert.Equal(t, sentinel.AlreadyClosed, tag)

	rc := q.Receive(nil, 0, nil)
	require.True(t, rc.IsTerminal())
	assert.True(t, rc.IsError())

	assert.True(t, q.Closed())
	assert.True(t, q.Drained())
}
