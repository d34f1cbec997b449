package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/config"
	"pricetruth-service/internal/consensus"
	infraconfig "pricetruth-service/internal/infrastructure/config"
	"pricetruth-service/internal/infrastructure/httpx"
	"pricetruth-service/internal/infrastructure/logx"
	"pricetruth-service/internal/infrastructure/memstore"
	"pricetruth-service/internal/infrastructure/pg"
	redisstore "pricetruth-service/internal/infrastructure/redis"
	"pricetruth-service/internal/infrastructure/source"
)

type Stores struct {
	Verdicts application.VerdictStore
	// History is nil when the backend keeps no verdict history.
	History application.HistoryStore
}

// BuildStores selects the verdict store from CACHE_BACKEND. Only the pg
// backend records history.
func BuildStores(ctx context.Context, cfg config.Config) (Stores, func(), error) {
	log := logx.L()
	switch cfg.CacheBackend {
	case "pg":
		if cfg.DatabaseURL == "" {
			return Stores{}, func() {}, errors.New("DATABASE_URL is required for CACHE_BACKEND=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return Stores{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			return Stores{}, func() {}, err
		}
		store := pg.NewStore(db, cfg.MaxEntries)
		cleanup := func() {
			log.Info("closing pg")
			store.Close()
		}
		return Stores{Verdicts: store, History: store}, cleanup, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisstore.New(client, cfg.RedisTTL)
		cleanup := func() {
			log.Info("closing redis")
			store.Close()
		}
		return Stores{Verdicts: store}, cleanup, nil

	case "", "memory":
		maxEntries := cfg.MaxEntries
		if maxEntries <= 0 {
			maxEntries = infraconfig.DefaultCacheMaxEntries
		}
		store, err := memstore.New(maxEntries)
		if err != nil {
			return Stores{}, func() {}, err
		}
		return Stores{Verdicts: store}, func() {}, nil

	default:
		return Stores{}, func() {}, fmt.Errorf("unsupported CACHE_BACKEND=%q", cfg.CacheBackend)
	}
}

// BuildSources parses the SOURCES env into adapters. Each entry is
// "name=URL" for an HTTP gateway or "name=static:PRICE" for a fixed
// price; entries are separated by semicolons and keep their order.
func BuildSources(cfg config.Config) ([]application.SourceAdapter, error) {
	spec := cfg.Sources
	if spec == "" {
		spec = infraconfig.DefaultSources
	}
	var out []application.SourceAdapter
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, target, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("malformed source entry %q", entry)
		}
		name, target = strings.TrimSpace(name), strings.TrimSpace(target)
		if name == "" || target == "" {
			return nil, fmt.Errorf("malformed source entry %q", entry)
		}

		var adapter application.SourceAdapter
		if fixed, isStatic := strings.CutPrefix(target, "static:"); isStatic {
			price, err := decimal.NewFromString(fixed)
			if err != nil {
				return nil, fmt.Errorf("source %s: bad static price: %w", name, err)
			}
			adapter = source.NewStatic(name, price, cfg.Currency)
		} else {
			adapter = &source.HTTP{
				SourceName: name,
				BaseURL:    target,
				Currency:   cfg.Currency,
				Timeout:    cfg.SourceTimeout,
				Client:     &httpx.Client{HTTP: &http.Client{Timeout: cfg.SourceTimeout}},
			}
		}
		if cfg.SourceRPS > 0 {
			adapter = source.NewRateLimited(adapter, cfg.SourceRPS, cfg.SourceBurst)
		}
		out = append(out, adapter)
	}
	if len(out) == 0 {
		return nil, errors.New("no sources configured")
	}
	return out, nil
}

// BuildService assembles the price service: fan-out collector, consensus
// resolver, and the verdict cache over the selected store.
func BuildService(cfg config.Config, stores Stores, adapters []application.SourceAdapter) (*application.PriceService, error) {
	tolerance, err := decimal.NewFromString(cfg.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("parse VARIANCE_TOLERANCE: %w", err)
	}
	resolver := consensus.NewResolver(cfg.MinAgreement, tolerance, cfg.Currency, consensus.AggregatePolicy(cfg.Aggregate))
	engine := application.NewEngine(
		application.NewCollector(adapters, cfg.FanoutBudget),
		resolver,
	)
	cache := application.NewVerdictCache(
		stores.Verdicts, engine,
		cfg.FreshnessWindow, cfg.Currency,
		application.WithCacheLogger(logx.L()),
	)
	return application.NewPriceService(cache, stores.History), nil
}
