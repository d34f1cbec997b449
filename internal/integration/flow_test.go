package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pricetruth-service/internal/bootstrap"
	"pricetruth-service/internal/config"
	httpserver "pricetruth-service/internal/infrastructure/http"
)

type priceResponse struct {
	Query           string    `json:"query"`
	Status          string    `json:"status"`
	Price           *float64  `json:"price"`
	Currency        string    `json:"currency"`
	SourcesCount    int       `json:"sources_count"`
	AgreeingSources int       `json:"agreeing_sources"`
	UpdatedAt       time.Time `json:"updated_at"`
	IsFresh         bool      `json:"is_fresh"`
	Sources         []struct {
		Source string   `json:"source"`
		Price  *float64 `json:"price"`
		Error  string   `json:"error"`
	} `json:"sources"`
}

// startAPI wires the full stack the way cmd/api does: default static
// sources, in-memory cache backend, real router.
func startAPI(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		Currency:        "EUR",
		MinAgreement:    2,
		Tolerance:       "0.05",
		Aggregate:       "median",
		FanoutBudget:    2 * time.Second,
		FreshnessWindow: time.Minute,
		CacheBackend:    "memory",
	}

	stores, closeStores, err := bootstrap.BuildStores(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(closeStores)

	adapters, err := bootstrap.BuildSources(cfg)
	require.NoError(t, err)
	svc, err := bootstrap.BuildService(cfg, stores, adapters)
	require.NoError(t, err)

	srv := httpserver.NewServer(svc)
	srv.SetReadyCheck(stores.Verdicts.Ping)
	ts := httptest.NewServer(httpserver.NewRouter(srv))
	t.Cleanup(ts.Close)
	return ts
}

func fetchPrice(t *testing.T, base, query string) (int, priceResponse) {
	t.Helper()
	res, err := http.Get(base + "/price" + query)
	require.NoError(t, err)
	defer res.Body.Close()
	var body priceResponse
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	}
	return res.StatusCode, body
}

func TestResolveFlow(t *testing.T) {
	ts := startAPI(t)

	// Default profile: amazon 19.99, google-shopping 20.05, fnac 19.95
	// agree within 5%; cdiscount 21.40 is an outlier.
	code, first := fetchPrice(t, ts.URL, "?q=Lego+Star+Wars&include_details=true")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "lego star wars", first.Query)
	require.Equal(t, "valid", first.Status)
	require.NotNil(t, first.Price)
	require.InDelta(t, 19.99, *first.Price, 0.0001)
	require.Equal(t, "EUR", first.Currency)
	require.Equal(t, 4, first.SourcesCount)
	require.Equal(t, 3, first.AgreeingSources)
	require.True(t, first.IsFresh)
	require.Len(t, first.Sources, 4)

	// Equivalent query is served from the cache: same verdict timestamp.
	code, second := fetchPrice(t, ts.URL, "?q=lego++star+wars")
	require.Equal(t, http.StatusOK, code)
	require.True(t, second.UpdatedAt.Equal(first.UpdatedAt))
	require.True(t, second.IsFresh)

	// Forcing bypasses the freshness window and produces a newer verdict.
	code, forced := fetchPrice(t, ts.URL, "?q=lego+star+wars&force=true")
	require.Equal(t, http.StatusOK, code)
	require.True(t, forced.UpdatedAt.After(first.UpdatedAt))
	require.Equal(t, "valid", forced.Status)
}

func TestProbes(t *testing.T) {
	ts := startAPI(t)

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHistoryUnavailableOnMemoryBackend(t *testing.T) {
	ts := startAPI(t)

	res, err := http.Get(ts.URL + "/price/history?q=lego")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}
