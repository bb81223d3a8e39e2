// Package lclock supplies the ambient services (logger, shared timer)
// a constructor needs, as an explicit value threaded through
// constructors, with a process-wide default for callers that don't
// need anything scoped.
package lclock

import "github.com/rs/zerolog"

// Context carries the services a constructor in this module needs: a
// logger (falls back to a no-op logger) and a shared Timer.
type Context struct {
	Logger *zerolog.Logger
	Timer  *Timer
}

var background = &Context{Logger: nopLogger(), Timer: NewTimer()}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// Background returns the process-wide default Context. Constructors that
// receive a nil *Context fall back to this.
func Background() *Context {
	return background
}

// With returns a copy of ctx (or of Background(), if ctx is nil) with its
// Logger overridden to logger.
func (ctx *Context) With(logger *zerolog.Logger) *Context {
	base := ctx
	if base == nil {
		base = Background()
	}
	cp := *base
	if logger != nil {
		cp.Logger = logger
	}
	return &cp
}

// Log returns ctx's logger, falling back to a no-op logger if ctx or its
// Logger field is nil.
func (ctx *Context) Log() *zerolog.Logger {
	if ctx == nil || ctx.Logger == nil {
		return nopLogger()
	}
	return ctx.Logger
}

// TimerOf returns ctx's shared Timer, falling back to Background()'s.
func (ctx *Context) TimerOf() *Timer {
	if ctx == nil || ctx.Timer == nil {
		return Background().Timer
	}
	return ctx.Timer
}
