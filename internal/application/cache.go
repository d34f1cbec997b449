package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pricetruth-service/internal/domain"
	"pricetruth-service/internal/metrics"
)

// VerdictCache serves verdicts from a store and recomputes them on demand.
//
// Freshness is derived at read time: an entry is fresh while its age is
// strictly below the window. Stale entries are never served silently; a
// stale entry either triggers a recompute or, when the recompute itself
// fails, comes back explicitly marked stale_data. Recomputes for one key
// are coalesced so concurrent callers share a single fan-out.
type VerdictCache struct {
	store    VerdictStore
	computer VerdictComputer
	window   time.Duration
	currency string
	clock    Clock
	log      *zap.Logger
	group    singleflight.Group
}

type CacheOption func(*VerdictCache)

func WithCacheClock(c Clock) CacheOption { return func(vc *VerdictCache) { vc.clock = c } }

func WithCacheLogger(l *zap.Logger) CacheOption { return func(vc *VerdictCache) { vc.log = l } }

func NewVerdictCache(store VerdictStore, computer VerdictComputer, window time.Duration, currency string, opts ...CacheOption) *VerdictCache {
	vc := &VerdictCache{
		store:    store,
		computer: computer,
		window:   window,
		currency: currency,
	}
	for _, opt := range opts {
		opt(vc)
	}
	if vc.clock == nil {
		vc.clock = realClock{}
	}
	if vc.log == nil {
		vc.log = zap.NewNop()
	}
	return vc
}

// Get returns the verdict for key, recomputing when the entry is missing,
// stale, or force is set. Store read failures surface as
// ErrEngineUnavailable; everything else degrades into a verdict status.
func (c *VerdictCache) Get(ctx context.Context, key string, force bool) (domain.Verdict, error) {
	if force {
		metrics.RecordCacheEvent("forced")
		return c.refresh(ctx, key)
	}

	v, ok, err := c.lookup(ctx, key)
	if err != nil {
		return domain.Verdict{}, err
	}
	if ok && c.isFresh(v) {
		metrics.RecordCacheEvent("hit_fresh")
		v.IsFresh = true
		return v, nil
	}
	if ok {
		metrics.RecordCacheEvent("hit_stale")
	} else {
		metrics.RecordCacheEvent("miss")
	}
	return c.refresh(ctx, key)
}

// refresh recomputes the verdict for key under singleflight. The winner's
// work is detached from its caller context so a dropped request cannot
// cancel a fan-out other callers are waiting on.
func (c *VerdictCache) refresh(ctx context.Context, key string) (domain.Verdict, error) {
	out, err, shared := c.group.Do(key, func() (any, error) {
		dctx := context.WithoutCancel(ctx)
		v, cerr := c.computer.Compute(dctx, key)
		if cerr != nil {
			return nil, cerr
		}
		if perr := c.store.Put(dctx, key, v); perr != nil {
			c.log.Warn("verdict_cache.put_failed", zap.String("key", key), zap.Error(perr))
		}
		return v, nil
	})
	if shared {
		metrics.RecordCacheEvent("coalesced")
	}
	if err != nil {
		return c.fallback(ctx, key, err)
	}

	v := out.(domain.Verdict)
	v.IsFresh = c.isFresh(v)
	return v, nil
}

// fallback handles a failed recompute: a previously cached entry is
// served, explicitly downgraded to stale_data when its window has passed;
// with nothing cached the caller gets a synthetic insufficient_evidence
// verdict that is never stored.
func (c *VerdictCache) fallback(ctx context.Context, key string, cause error) (domain.Verdict, error) {
	c.log.Warn("verdict_cache.recompute_failed", zap.String("key", key), zap.Error(cause))

	v, ok, err := c.lookup(ctx, key)
	if err != nil {
		return domain.Verdict{}, err
	}
	if ok {
		if c.isFresh(v) {
			v.IsFresh = true
			return v, nil
		}
		v.Status = domain.VerdictStatusStaleData
		v.IsFresh = false
		return v, nil
	}

	return domain.Verdict{
		QueryKey:  key,
		Status:    domain.VerdictStatusInsufficientEvidence,
		Currency:  c.currency,
		UpdatedAt: c.clock.Now(),
		IsFresh:   true,
	}, nil
}

func (c *VerdictCache) lookup(ctx context.Context, key string) (domain.Verdict, bool, error) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Error("verdict_cache.get_failed", zap.String("key", key), zap.Error(err))
		return domain.Verdict{}, false, fmt.Errorf("verdict store get: %w", ErrEngineUnavailable)
	}
	return v, ok, nil
}

func (c *VerdictCache) isFresh(v domain.Verdict) bool {
	return c.clock.Now().Sub(v.UpdatedAt) < c.window
}
