// Package pipeline implements sequential composition of stages, any of
// which may return a deferred result, without growing the call stack for
// long synchronous chains.
package pipeline

import (
	"github.com/Miners/lamina/lclock"
	"github.com/Miners/lamina/result"
)

// Stage transforms a value and either returns a plain T' directly, or a
// *result.Chan[T'] to be awaited before the next stage runs, or one of
// the control signals returned by Restart/Complete/Redirect. A non-nil
// error short-circuits to the pipeline's ErrorHandler.
type Stage[T any] func(T) (any, error)

type restartSignal[T any] struct{ value T }
type completeSignal[T any] struct{ value T }
type redirectSignal[T any] struct {
	pipeline *Pipeline[T]
	value    T
}

// Restart re-enters the pipeline at stage 0 with v.
func Restart[T any](v T) any { return restartSignal[T]{value: v} }

// Complete terminates the pipeline immediately with v.
func Complete[T any](v T) any { return completeSignal[T]{value: v} }

// Redirect transfers control to another pipeline, starting it at stage 0
// with v; the result of that pipeline becomes the result of this run.
func Redirect[T any](p *Pipeline[T], v T) any {
	return redirectSignal[T]{pipeline: p, value: v}
}

// Options configures a Pipeline.
type Options[T any] struct {
	// ErrorHandler is invoked when a stage returns an error, or a stage's
	// deferred result completes with an error. It may return a plain
	// value (downgrading the error, feeding into the next stage), a
	// control signal, or propagate an error of its own (which fails the
	// whole pipeline).
	ErrorHandler func(err error) (any, error)

	// Finally runs exactly once, on every terminal path of this
	// pipeline, before Run's result channel is observed by listeners
	// added after Run returns. On a Redirect the run continues in the
	// target pipeline, and it is the target's Finally that runs, not
	// this one.
	Finally func()

	// Result, if set, binds this pipeline run to an externally-provided
	// result channel instead of allocating a fresh one -- used to merge
	// pipelines together.
	Result *result.Chan[T]
}

// Pipeline is an ordered list of stages.
type Pipeline[T any] struct {
	stages []Stage[T]
	opts   Options[T]
}

// New returns a Pipeline over the given stages.
func New[T any](opts Options[T], stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages, opts: opts}
}

// Run feeds initial through the pipeline's stages, in order, starting at
// stage 0. Stage i+1 never runs before stage i has produced a value:
// synchronous returns trampoline on the calling goroutine; deferred
// returns resume on whichever goroutine completes them.
func Run[T any](ctx *lclock.Context, initial T, opts Options[T], stages ...Stage[T]) *result.Chan[T] {
	return New(opts, stages...).Run(ctx, initial)
}

// Run executes p starting at stage 0 with initial.
func (p *Pipeline[T]) Run(ctx *lclock.Context, initial T) *result.Chan[T] {
	out := p.opts.Result
	if out == nil {
		out = result.New[T]()
	}
	p.resume(ctx, initial, 0, out)
	return out
}

// resume is the trampoline: it loops over synchronous stage outputs on
// the current goroutine, and returns (handing off to a listener callback)
// as soon as a stage yields a deferred result.
func (p *Pipeline[T]) resume(ctx *lclock.Context, value T, stageIdx int, out *result.Chan[T]) {
	for {
		if stageIdx >= len(p.stages) {
			p.finish(out, value, nil)
			return
		}

		next, err := p.invoke(ctx, p.stages[stageIdx], value)
		nv, nidx, done := p.step(ctx, next, err, stageIdx, out)
		if done {
			return
		}
		value, stageIdx = nv, nidx
	}
}

// invoke runs stage, recovering a panic into an error the same way the
// graph propagator converts operator exceptions into Err at the foreign
// code boundary.
func (p *Pipeline[T]) invoke(ctx *lclock.Context, stage Stage[T], value T) (next any, err error) {
	defer func() {
		if r := recover(); r != nil {
			next = nil
			err = panicError(r)
			ctx.Log().Error().Interface("panic", r).Msg("pipeline stage panicked")
		}
	}()
	return stage(value)
}

// step interprets one stage's (next, err) pair. It returns the value and
// stage index to resume at, and done=true if resume should return (either
// because the pipeline terminated, or because it handed off to a
// deferred listener).
func (p *Pipeline[T]) step(ctx *lclock.Context, next any, err error, stageIdx int, out *result.Chan[T]) (value T, nextIdx int, done bool) {
	if err != nil {
		return p.handleError(ctx, err, stageIdx, out)
	}

	switch v := next.(type) {
	case restartSignal[T]:
		return v.value, 0, false
	case completeSignal[T]:
		p.finish(out, v.value, nil)
		return value, 0, true
	case redirectSignal[T]:
		v.pipeline.resume(ctx, v.value, 0, out)
		return value, 0, true
	case *result.Chan[T]:
		idx := stageIdx + 1
		v.AddListener(func(rv T) { p.resume(ctx, rv, idx, out) })
		v.AddErrorListener(func(rerr error) {
			rv, ridx, rdone := p.handleError(ctx, rerr, stageIdx, out)
			if !rdone {
				p.resume(ctx, rv, ridx, out)
			}
		})
		return value, 0, true
	case T:
		return v, stageIdx + 1, false
	default:
		// A stage returned something that is neither T, a control
		// signal, nor *result.Chan[T]. Treat it as a misuse error
		// rather than a silent type assertion panic.
		return p.handleError(ctx, errUnexpectedStageValue, stageIdx, out)
	}
}

func (p *Pipeline[T]) handleError(ctx *lclock.Context, err error, stageIdx int, out *result.Chan[T]) (value T, nextIdx int, done bool) {
	if p.opts.ErrorHandler == nil {
		p.finish(out, value, err)
		return value, 0, true
	}

	next, herr := func() (next any, herr error) {
		defer func() {
			if r := recover(); r != nil {
				next = nil
				herr = panicError(r)
			}
		}()
		return p.opts.ErrorHandler(err)
	}()

	if herr != nil {
		p.finish(out, value, herr)
		return value, 0, true
	}
	return p.step(ctx, next, nil, stageIdx, out)
}

func (p *Pipeline[T]) finish(out *result.Chan[T], value T, err error) {
	if p.opts.Finally != nil {
		p.opts.Finally()
	}
	if err != nil {
		out.Error(err)
	} else {
		out.Success(value)
	}
}
