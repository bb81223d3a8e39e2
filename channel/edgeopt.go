package channel

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/Miners/lamina/graph"
)

// EdgeOption configures an edge created by Fork or Tap.
type EdgeOption func(*edgeConfig)

type edgeConfig struct {
	limiter *rate.Limiter
	skip    bool
}

// WithRateLimit throttles the edge's propagation rate to lim. When skip
// is false (the default), an over-budget message blocks the edge until
// a token is available -- ordinary back-pressure. When skip is true,
// over-budget messages are dropped instead of blocking.
func WithRateLimit(lim *rate.Limiter, skip bool) EdgeOption {
	return func(c *edgeConfig) { c.limiter = lim; c.skip = skip }
}

func newEdgeConfig(opts []EdgeOption) *edgeConfig {
	c := &edgeConfig{}
	for _, o := range opts {
		o(c)
	}
	return c
}

// applyRateLimit wraps base with a rate.Limiter gate. It does not change
// the operator's observable type: the wrapped operator still returns
// either the original payload, or graph.Drop when skip=true and the
// budget is exhausted.
func applyRateLimit(cfg *edgeConfig, base func(any) (any, error)) func(any) (any, error) {
	if cfg.limiter == nil {
		return base
	}
	return func(v any) (any, error) {
		if cfg.skip {
			if !cfg.limiter.Allow() {
				return graph.Drop, nil
			}
		} else if err := cfg.limiter.Wait(context.Background()); err != nil {
			return nil, err
		}
		if base != nil {
			return base(v)
		}
		return v, nil
	}
}
