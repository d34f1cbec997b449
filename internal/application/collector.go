package application

import (
	"context"
	"fmt"
	"time"

	"pricetruth-service/internal/domain"
	"pricetruth-service/internal/metrics"
)

// Collector fans one query out to every registered source adapter and
// gathers the observations.
//
// The output slice is ordered by adapter registration, never by completion
// order. Adapters that do not settle within the budget are recorded as
// failed observations with the timeout reason; their goroutines finish into
// a buffered channel and are abandoned without blocking anyone.
type Collector struct {
	adapters []SourceAdapter
	budget   time.Duration
	clock    Clock
}

func NewCollector(adapters []SourceAdapter, budget time.Duration) *Collector {
	return &Collector{adapters: adapters, budget: budget, clock: realClock{}}
}

type indexedObservation struct {
	idx int
	obs domain.Observation
}

// Collect runs the fan-out for query. It returns ErrNoSources when no
// adapters are registered; every other failure mode is an observation.
func (c *Collector) Collect(ctx context.Context, query string) ([]domain.Observation, error) {
	if len(c.adapters) == 0 {
		return nil, ErrNoSources
	}

	ctx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	results := make(chan indexedObservation, len(c.adapters))
	for i, a := range c.adapters {
		go c.fetchOne(ctx, i, a, query, results)
	}

	out := make([]domain.Observation, len(c.adapters))
	arrived := make([]bool, len(c.adapters))
	for pending := len(c.adapters); pending > 0; {
		select {
		case r := <-results:
			out[r.idx] = r.obs
			arrived[r.idx] = true
			pending--
		case <-ctx.Done():
			now := c.clock.Now()
			for i, a := range c.adapters {
				if !arrived[i] {
					out[i] = domain.FailedObservation(a.Name(), domain.ReasonTimeout, now)
				}
			}
			return out, nil
		}
	}
	return out, nil
}

func (c *Collector) fetchOne(ctx context.Context, idx int, a SourceAdapter, query string, results chan<- indexedObservation) {
	started := c.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			obs := domain.FailedObservation(a.Name(), fmt.Sprintf("panic: %v", r), c.clock.Now())
			metrics.RecordObservation(a.Name(), "error", c.clock.Now().Sub(started))
			results <- indexedObservation{idx, obs}
		}
	}()

	obs := a.Fetch(ctx, query)
	metrics.RecordObservation(a.Name(), observationOutcome(obs), c.clock.Now().Sub(started))
	results <- indexedObservation{idx, obs}
}

func observationOutcome(o domain.Observation) string {
	switch {
	case o.Success:
		return "ok"
	case o.Error == domain.ReasonTimeout:
		return "timeout"
	default:
		return "error"
	}
}
