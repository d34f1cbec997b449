// Package redisstore is the Redis-backed verdict store. Verdicts are kept
// as JSON under a key prefix; the optional TTL is a retention bound far
// beyond the freshness window, not a freshness mechanism.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/domain"
)

const keyPrefix = "verdict:"

var _ application.VerdictStore = (*Store)(nil)

type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func (s *Store) Get(ctx context.Context, key string) (domain.Verdict, bool, error) {
	raw, err := s.Client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Verdict{}, false, nil
	}
	if err != nil {
		return domain.Verdict{}, false, fmt.Errorf("redis get: %w", err)
	}
	var v domain.Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.Verdict{}, false, fmt.Errorf("decode verdict: %w", err)
	}
	return v, true, nil
}

func (s *Store) Put(ctx context.Context, key string, v domain.Verdict) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := s.Client.Set(ctx, keyPrefix+key, raw, s.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

func (s *Store) Close() { _ = s.Client.Close() }
