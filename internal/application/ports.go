package application

import (
	"context"

	"pricetruth-service/internal/domain"
)

// SourceAdapter observes one external price source. Fetch never returns a
// Go error: every failure mode (network, timeout, bad payload, rate limit)
// is encoded as a failed Observation so the collector can treat all
// adapters uniformly.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, query string) domain.Observation
}

// VerdictStore is a cache backend for resolved verdicts. Entries are
// replaced wholesale; backends may evict on their own policy but never
// expire entries by freshness (freshness is derived at read time).
type VerdictStore interface {
	Get(ctx context.Context, key string) (domain.Verdict, bool, error)
	Put(ctx context.Context, key string, v domain.Verdict) error
	Ping(ctx context.Context) error
	Close()
}

// HistoryStore is implemented by backends that retain an append-only
// record of past verdicts.
type HistoryStore interface {
	History(ctx context.Context, key string, limit int) ([]domain.HistoryEntry, error)
}

// VerdictComputer produces a brand-new verdict for a normalized query key.
type VerdictComputer interface {
	Compute(ctx context.Context, key string) (domain.Verdict, error)
}
