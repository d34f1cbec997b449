// Package memstore is the in-process verdict store: a bounded LRU keyed by
// normalized query, the default cache backend.
package memstore

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/domain"
)

var _ application.VerdictStore = (*Store)(nil)

type Store struct {
	entries *lru.Cache[string, domain.Verdict]
}

// New builds a store holding at most maxEntries verdicts; the least
// recently used entry is evicted beyond that.
func New(maxEntries int) (*Store, error) {
	c, err := lru.New[string, domain.Verdict](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Store{entries: c}, nil
}

func (s *Store) Get(_ context.Context, key string) (domain.Verdict, bool, error) {
	v, ok := s.entries.Get(key)
	return v, ok, nil
}

func (s *Store) Put(_ context.Context, key string, v domain.Verdict) error {
	s.entries.Add(key, v)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

// Len reports the number of cached verdicts.
func (s *Store) Len() int { return s.entries.Len() }
