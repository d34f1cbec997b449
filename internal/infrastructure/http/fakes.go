package httpserver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/consensus"
	"pricetruth-service/internal/domain"
)

var _ application.SourceAdapter = (*staticAdapter)(nil)
var _ application.VerdictStore = (*mapStore)(nil)
var _ application.HistoryStore = (*stubHistory)(nil)

type staticAdapter struct {
	name  string
	price string
	fail  bool
	calls atomic.Int32
}

func (a *staticAdapter) Name() string { return a.name }

func (a *staticAdapter) Fetch(_ context.Context, _ string) domain.Observation {
	a.calls.Add(1)
	now := time.Now().UTC()
	if a.fail {
		return domain.FailedObservation(a.name, "connection refused", now)
	}
	return domain.ObservedPrice(a.name, decimal.RequireFromString(a.price), "EUR", now)
}

func (a *staticAdapter) Calls() int { return int(a.calls.Load()) }

type mapStore struct {
	mu      sync.Mutex
	entries map[string]domain.Verdict
	getErr  error
	pingErr error
}

func newMapStore() *mapStore { return &mapStore{entries: map[string]domain.Verdict{}} }

func (m *mapStore) Get(_ context.Context, key string) (domain.Verdict, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.Verdict{}, false, m.getErr
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *mapStore) Put(_ context.Context, key string, v domain.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = v
	return nil
}

func (m *mapStore) Ping(_ context.Context) error { return m.pingErr }
func (m *mapStore) Close()                       {}

type stubHistory struct {
	entries []domain.HistoryEntry
	gotKey  string
	gotLim  int
}

func (h *stubHistory) History(_ context.Context, key string, limit int) ([]domain.HistoryEntry, error) {
	h.gotKey, h.gotLim = key, limit
	if limit < len(h.entries) {
		return h.entries[:limit], nil
	}
	return h.entries, nil
}

func newInMemoryCache() (*application.VerdictCache, *mapStore, []*staticAdapter) {
	adapters := []*staticAdapter{
		{name: "amazon", price: "19.99"},
		{name: "google-shopping", price: "20.05"},
		{name: "cdiscount", fail: true},
		{name: "fnac", price: "19.95"},
	}
	ports := make([]application.SourceAdapter, len(adapters))
	for i, a := range adapters {
		ports[i] = a
	}
	store := newMapStore()
	engine := application.NewEngine(
		application.NewCollector(ports, time.Second),
		consensus.NewResolver(2, decimal.RequireFromString("0.05"), "EUR", consensus.AggregateMedian),
	)
	cache := application.NewVerdictCache(store, engine, time.Minute, "EUR")
	return cache, store, adapters
}

// NewInMemoryService wires a PriceService over fixed in-process sources
// and a map-backed store. Three of the four sources agree within the 5%
// tolerance; one always fails.
func NewInMemoryService() (*application.PriceService, *mapStore, []*staticAdapter) {
	cache, store, adapters := newInMemoryCache()
	return application.NewPriceService(cache, nil), store, adapters
}

// NewInMemoryServiceWithHistory is NewInMemoryService plus a canned
// history backend.
func NewInMemoryServiceWithHistory(entries []domain.HistoryEntry) (*application.PriceService, *stubHistory) {
	cache, _, _ := newInMemoryCache()
	h := &stubHistory{entries: entries}
	return application.NewPriceService(cache, h), h
}
