package ops

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miners/lamina/channel"
	"github.com/Miners/lamina/graph"
	"github.com/Miners/lamina/lclock"
)

func closedInts(vals ...int) *channel.Channel[int] {
	return channel.ClosedChannel[int](lclock.Background(), vals...)
}

func TestTakeStopsAfterN(t *testing.T) {
	ch := closedInts(1, 2, 3, 4, 5)
	out := Take(lclock.Background(), 3, ch)

	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestTakeMoreThanAvailableReturnsWhatThereIs(t *testing.T) {
	ch := closedInts(1, 2)
	out := Take(lclock.Background(), 10, ch)

	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestTakeWhileStopsAtFirstFailure(t *testing.T) {
	ch := closedInts(2, 4, 6, 7, 8)
	out := TakeWhile(lclock.Background(), func(v int) bool { return v%2 == 0 }, ch)

	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, got)
}

func sum(acc int, v int) (int, error) { return acc + v, nil }

func TestReduceFoldsToFinalValue(t *testing.T) {
	ch := closedInts(1, 2, 3, 4)
	rc := Reduce(sum, 0, ch)

	require.Eventually(t, rc.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 10, rc.SuccessValue(-1))
}

func TestReductionsEmitsEveryIntermediateValue(t *testing.T) {
	ch := closedInts(1, 2, 3)
	out := Reductions(lclock.Background(), sum, 0, ch)

	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3, 6}, got)
}

// reductions* + last* == reduce*: the final value Reductions emits
// before its output channel drains is exactly what Reduce resolves
// with, for the same fold.
func TestReductionsAndLastMatchReduce(t *testing.T) {
	reduced := Reduce(sum, 0, closedInts(5, 6, 7))

	reductions := Reductions(lclock.Background(), sum, 0, closedInts(5, 6, 7))
	lastOfReductions := Last(reductions)

	require.Eventually(t, reduced.IsTerminal, time.Second, time.Millisecond)
	require.Eventually(t, lastOfReductions.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, reduced.SuccessValue(-1), lastOfReductions.SuccessValue(-2))
}

func TestLastOnEmptyChannelErrors(t *testing.T) {
	ch := closedInts()
	rc := Last(ch)

	require.Eventually(t, rc.IsTerminal, time.Second, time.Millisecond)
	assert.True(t, rc.IsError())
	assert.ErrorIs(t, rc.ErrorValue(), errNoMessages)
}

func TestPartitionDropsIncompleteTrailingGroup(t *testing.T) {
	ch := closedInts(1, 2, 3, 4, 5)
	out := Partition(lclock.Background(), 2, ch)

	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, got)
}

func TestPartitionAllKeepsIncompleteTrailingGroup(t *testing.T) {
	ch := closedInts(1, 2, 3, 4, 5)
	out := PartitionAll(lclock.Background(), 2, ch)

	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, got)
}

func TestConcatDrainsSourcesInOrder(t *testing.T) {
	a := closedInts(1, 2)
	b := closedInts(3, 4)
	out := Concat(lclock.Background(), a, b)

	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestConcatWithNoSourcesClosesImmediately(t *testing.T) {
	out := Concat[int](lclock.Background())
	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMapcatFlattensEachResult(t *testing.T) {
	ch := closedInts(1, 2, 3)
	out := Mapcat(lclock.Background(), func(v int) ([]int, error) {
		return []int{v, v * 10}, nil
	}, ch)

	got, err := ChannelToSeq(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10, 2, 20, 3, 30}, got)
}

func TestMapcatPropagatesCallbackError(t *testing.T) {
	boom := errors.New("boom")
	ch := closedInts(1, 2)
	out := Mapcat(lclock.Background(), func(v int) ([]int, error) {
		if v == 2 {
			return nil, boom
		}
		return []int{v}, nil
	}, ch)

	_, err := ChannelToSeq(out)
	assert.ErrorIs(t, err, boom)
}

func TestChannelToLazySeqPullsOneAtATime(t *testing.T) {
	ch := closedInts(7, 8)
	seq := ChannelToLazySeq(ch)

	v, ok, err := seq.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, v)

	v, ok, err = seq.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8, v)

	_, ok, err = seq.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCombineLatestWaitsForAllInputs(t *testing.T) {
	a := channel.New[int](lclock.Background())
	b := channel.New[int](lclock.Background())

	out := CombineLatest(lclock.Background(), func(vs []int) int {
		return vs[0] + vs[1]
	}, a, b)
	rc := channel.ReadChannel(out)

	channel.Enqueue(a, 1)
	time.Sleep(10 * time.Millisecond)
	assert.False(t, rc.IsTerminal(), "must not emit until b has produced too")

	channel.Enqueue(b, 2)
	require.Eventually(t, rc.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 3, rc.SuccessValue(-1))
}

func TestCombineLatestReemitsOnEveryUpdateOnceReady(t *testing.T) {
	a := channel.New[int](lclock.Background())
	b := channel.New[int](lclock.Background())

	out := CombineLatest(lclock.Background(), func(vs []int) int {
		return vs[0] + vs[1]
	}, a, b)

	channel.Enqueue(a, 1)
	channel.Enqueue(b, 2)
	rc1 := channel.ReadChannel(out)
	require.Eventually(t, rc1.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 3, rc1.SuccessValue(-1))

	rc2 := channel.ReadChannel(out)
	channel.Enqueue(a, 10)
	require.Eventually(t, rc2.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 12, rc2.SuccessValue(-1))
}

func TestPartitionEveryEmitsNilForAnEmptyPeriod(t *testing.T) {
	ch := channel.New[int](lclock.Background())
	out := PartitionEvery(lclock.Background(), 10*time.Millisecond, ch)
	rc := channel.ReadChannel(out)

	require.Eventually(t, rc.IsTerminal, time.Second, time.Millisecond)
	assert.Nil(t, rc.SuccessValue(nil), "a period with no messages must still emit, as a nil batch")

	graph.Close(ch.Emitter)
}

func TestPartitionEveryBatchesMessagesWithinAPeriod(t *testing.T) {
	ch := channel.New[int](lclock.Background())
	out := PartitionEvery(lclock.Background(), 20*time.Millisecond, ch)

	channel.Enqueue(ch, 1)
	channel.Enqueue(ch, 2)

	rc := channel.ReadChannel(out)
	require.Eventually(t, rc.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, []int{1, 2}, rc.SuccessValue(nil))

	graph.Close(ch.Emitter)
}

func TestPartitionEveryClosesOutputWhenSourceCloses(t *testing.T) {
	ch := channel.New[int](lclock.Background())
	out := PartitionEvery(lclock.Background(), 10*time.Millisecond, ch)

	graph.Close(ch.Emitter)
	require.Eventually(t, func() bool { return channel.Closed(out) }, time.Second, time.Millisecond)
}
