package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/result"
)

func TestRunSynchronousChain(t *testing.T) {
	out := Run(lclock.Background(), 1,
		Options[int]{},
		func(v int) (any, error) { return v + 1, nil },
		func(v int) (any, error) { return v * 10, nil },
	)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 20, out.SuccessValue(-1))
}

func TestRunWithDeferredStage(t *testing.T) {
	out := Run(lclock.Background(), 1,
		Options[int]{},
		func(v int) (any, error) {
			rc := result.New[int]()
			go rc.Success(v + 100)
			return rc, nil
		},
		func(v int) (any, error) { return v * 2, nil },
	)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 202, out.SuccessValue(-1))
}

func TestRestartReentersAtStageZero(t *testing.T) {
	var attempts int
	out := Run(lclock.Background(), 0,
		Options[int]{},
		func(v int) (any, error) {
			attempts++
			if attempts < 3 {
				return Restart[int](v + 1), nil
			}
			return v, nil
		},
		func(v int) (any, error) { return v * 100, nil },
	)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 200, out.SuccessValue(-1))
	assert.Equal(t, 3, attempts)
}

func TestCompleteShortCircuits(t *testing.T) {
	ranSecond := false
	out := Run(lclock.Background(), 5,
		Options[int]{},
		func(v int) (any, error) { return Complete[int](v), nil },
		func(v int) (any, error) { ranSecond = true; return v, nil },
	)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 5, out.SuccessValue(-1))
	assert.False(t, ranSecond)
}

func TestRedirectTransfersControl(t *testing.T) {
	target := New(Options[int]{}, func(v int) (any, error) { return v + 1000, nil })
	out := Run(lclock.Background(), 1,
		Options[int]{},
		func(v int) (any, error) { return Redirect(target, v), nil },
	)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 1001, out.SuccessValue(-1))
}

func TestErrorHandlerDowngradesToValue(t *testing.T) {
	boom := errors.New("boom")
	out := Run(lclock.Background(), 1,
		Options[int]{
			ErrorHandler: func(err error) (any, error) {
				assert.Equal(t, boom, err)
				return 42, nil
			},
		},
		func(v int) (any, error) { return nil, boom },
		func(v int) (any, error) { return v + 1, nil },
	)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 43, out.SuccessValue(-1))
}

func TestNoErrorHandlerFailsResult(t *testing.T) {
	boom := errors.New("boom")
	out := Run(lclock.Background(), 1,
		Options[int]{},
		func(v int) (any, error) { return nil, boom },
	)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.True(t, out.IsError())
	assert.Equal(t, boom, out.ErrorValue())
}

func TestFinallyRunsOnEveryTerminalPath(t *testing.T) {
	var finallyCalls int
	out := Run(lclock.Background(), 1,
		Options[int]{Finally: func() { finallyCalls++ }},
		func(v int) (any, error) { return v, nil },
	)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 1, finallyCalls)
}

func TestExternalResultBinding(t *testing.T) {
	bound := result.New[int]()
	out := Run(lclock.Background(), 1,
		Options[int]{Result: bound},
		func(v int) (any, error) { return v + 1, nil },
	)
	assert.Same(t, bound, out)
	require.Eventually(t, out.IsTerminal, time.Second, time.Millisecond)
	assert.Equal(t, 2, out.SuccessValue(-1))
}
