package application

import (
	"context"

	"pricetruth-service/internal/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// PriceService is the query-side entry point: normalize the product query,
// then answer it through the verdict cache.
type PriceService struct {
	cache   *VerdictCache
	history HistoryStore
}

// NewPriceService wires the service. history may be nil when the active
// cache backend keeps no verdict history.
func NewPriceService(cache *VerdictCache, history HistoryStore) *PriceService {
	return &PriceService{cache: cache, history: history}
}

type ResolveOptions struct {
	// Force bypasses the freshness check and recomputes the verdict.
	Force bool
}

// ResolvePrice returns the consensus verdict for product. Invalid queries
// fail with domain.ErrInvalidQuery before any source is contacted.
func (s *PriceService) ResolvePrice(ctx context.Context, product string, opts ResolveOptions) (domain.Verdict, error) {
	key, err := domain.NormalizeQuery(product)
	if err != nil {
		return domain.Verdict{}, err
	}
	return s.cache.Get(ctx, key, opts.Force)
}

// PriceHistory returns the most recent verdicts recorded for product,
// newest first. It fails with ErrHistoryDisabled when the active backend
// keeps no history.
func (s *PriceService) PriceHistory(ctx context.Context, product string, limit int) ([]domain.HistoryEntry, error) {
	key, err := domain.NormalizeQuery(product)
	if err != nil {
		return nil, err
	}
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.history.History(ctx, key, limit)
}
