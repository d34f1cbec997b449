package application

import (
	"context"

	"pricetruth-service/internal/consensus"
	"pricetruth-service/internal/domain"
	"pricetruth-service/internal/metrics"
)

// Engine is the VerdictComputer used in production: collect observations,
// resolve them into a verdict.
type Engine struct {
	collector *Collector
	resolver  *consensus.Resolver
	clock     Clock
}

type EngineOption func(*Engine)

func WithEngineClock(c Clock) EngineOption { return func(e *Engine) { e.clock = c } }

func NewEngine(collector *Collector, resolver *consensus.Resolver, opts ...EngineOption) *Engine {
	e := &Engine{collector: collector, resolver: resolver}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = realClock{}
	}
	return e
}

func (e *Engine) Compute(ctx context.Context, key string) (domain.Verdict, error) {
	started := e.clock.Now()
	obs, err := e.collector.Collect(ctx, key)
	if err != nil {
		return domain.Verdict{}, err
	}
	v := e.resolver.Resolve(key, obs, e.clock.Now())
	metrics.RecordVerdict(string(v.Status), e.clock.Now().Sub(started))
	return v, nil
}
