package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"pricetruth-service/internal/domain"
)

var (
	ErrStoreDown   = errors.New("store down")
	ErrComputeBoom = errors.New("compute failed")
)

// fakeAdapter settles with a fixed price or failure after an optional
// delay. With ignoreCtx set it sleeps through cancellation, which is how
// the straggler-abandonment path gets exercised.
type fakeAdapter struct {
	name      string
	price     string
	currency  string
	fail      string
	delay     time.Duration
	ignoreCtx bool
	panics    bool
	calls     int32
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context, _ string) domain.Observation {
	atomic.AddInt32(&f.calls, 1)
	if f.panics {
		panic("adapter exploded")
	}
	if f.delay > 0 {
		if f.ignoreCtx {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return domain.FailedObservation(f.name, domain.ReasonTimeout, time.Now())
			}
		}
	}
	if f.fail != "" {
		return domain.FailedObservation(f.name, f.fail, time.Now())
	}
	cur := f.currency
	if cur == "" {
		cur = "EUR"
	}
	return domain.ObservedPrice(f.name, decimal.RequireFromString(f.price), cur, time.Now())
}

func (f *fakeAdapter) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]domain.Verdict
	getErr  error
	putErr  error
	gets    int
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]domain.Verdict{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (domain.Verdict, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return domain.Verdict{}, false, f.getErr
	}
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fakeStore) Put(_ context.Context, key string, v domain.Verdict) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.entries[key] = v
	return nil
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) Close() {}

func (f *fakeStore) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

// fakeComputer returns a canned verdict (or error) and counts invocations
// so coalescing can be asserted.
type fakeComputer struct {
	mu    sync.Mutex
	out   domain.Verdict
	err   error
	delay time.Duration
	calls int
	keys  []string
}

func (f *fakeComputer) Compute(_ context.Context, key string) (domain.Verdict, error) {
	f.mu.Lock()
	f.calls++
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return domain.Verdict{}, f.err
	}
	out := f.out
	out.QueryKey = key
	return out, nil
}

func (f *fakeComputer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeHistory struct {
	entries []domain.HistoryEntry
	err     error
	gotKey  string
	gotLim  int
}

func (f *fakeHistory) History(_ context.Context, key string, limit int) ([]domain.HistoryEntry, error) {
	f.gotKey, f.gotLim = key, limit
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validVerdict(key string, price string, at time.Time) domain.Verdict {
	return domain.Verdict{
		QueryKey:        key,
		Status:          domain.VerdictStatusValid,
		Price:           decPtr(price),
		Currency:        "EUR",
		SourcesCount:    3,
		AgreeingSources: 3,
		UpdatedAt:       at,
		IsFresh:         true,
	}
}
