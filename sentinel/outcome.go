package sentinel

import "github.com/Miners/lamina/result"

// Outcome is a send-result: the aggregate completion signal returned by
// Enqueue/propagate. It is either a terminal Tag (no waiting needed, e.g.
// Discarded or AlreadyClosed) or a *result.Chan[Tag] that resolves to
// success(tag) once downstream work completes, or to an error if any
// downstream consumer or edge failed.
type Outcome struct {
	tag   Tag
	isTag bool
	wait  *result.Chan[Tag]
}

// TagOutcome wraps a terminal sentinel tag needing no further waiting.
func TagOutcome(t Tag) Outcome {
	return Outcome{tag: t, isTag: true}
}

// WaitOutcome wraps a result channel the caller should await.
func WaitOutcome(w *result.Chan[Tag]) Outcome {
	return Outcome{wait: w}
}

// DoneOutcome wraps a tag that is already fully resolved (synchronous
// consumption), as a result channel for callers that always want one.
func DoneOutcome(t Tag) Outcome {
	return WaitOutcome(result.SuccessResult(t))
}

// ErrorOutcome wraps an error that is already fully resolved.
func ErrorOutcome(err error) Outcome {
	return WaitOutcome(result.ErrorResult[Tag](err))
}

// Tag returns the wrapped terminal tag and true, or the zero Tag and
// false if o instead wraps a result channel.
func (o Outcome) Tag() (Tag, bool) {
	return o.tag, o.isTag
}

// Wait returns the wrapped result channel and true, or nil and false if
// o instead wraps a terminal tag.
func (o Outcome) Wait() (*result.Chan[Tag], bool) {
	return o.wait, !o.isTag
}

// Chan returns o as a *result.Chan[Tag] uniformly: a terminal tag becomes
// an already-success channel.
func (o Outcome) Chan() *result.Chan[Tag] {
	if o.isTag {
		return result.SuccessResult(o.tag)
	}
	return o.wait
}
