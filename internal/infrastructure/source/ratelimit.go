package source

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/domain"
)

var _ application.SourceAdapter = (*RateLimited)(nil)

// RateLimited wraps an adapter with a token bucket. A fetch that cannot get
// a token before its context expires settles as a failed observation
// instead of hammering the source.
type RateLimited struct {
	inner   application.SourceAdapter
	limiter *rate.Limiter
}

func NewRateLimited(inner application.SourceAdapter, rps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{inner: inner, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimited) Name() string { return r.inner.Name() }

func (r *RateLimited) Fetch(ctx context.Context, query string) domain.Observation {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.FailedObservation(r.inner.Name(), "rate limited", time.Now().UTC())
	}
	return r.inner.Fetch(ctx, query)
}
