package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pricetruth-service/internal/domain"
)

func getPrice(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, pricePayload) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body pricePayload
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestGetPrice(t *testing.T) {
	h := setup()
	rec, body := getPrice(t, h, "/price?q=Lego+Star+Wars")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "lego star wars", body.Query)
	require.Equal(t, "valid", body.Status)
	require.NotNil(t, body.Price)
	require.InDelta(t, 19.99, *body.Price, 0.0001)
	require.Equal(t, "EUR", body.Currency)
	require.Equal(t, 4, body.SourcesCount)
	require.Equal(t, 3, body.AgreeingSources)
	require.True(t, body.IsFresh)
	require.Nil(t, body.Sources)
}

func TestGetPrice_IncludeDetails(t *testing.T) {
	h := setup()
	rec, body := getPrice(t, h, "/price?q=lego&include_details=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body.Sources, 4)

	byName := map[string]sourcePayload{}
	for _, src := range body.Sources {
		byName[src.Source] = src
	}
	require.InDelta(t, 20.05, *byName["google-shopping"].Price, 0.0001)
	require.Nil(t, byName["cdiscount"].Price)
	require.Equal(t, "connection refused", byName["cdiscount"].Error)
}

func TestGetPrice_MissingQuery(t *testing.T) {
	h := setup()
	rec, _ := getPrice(t, h, "/price")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetPrice_BlankQuery(t *testing.T) {
	h := setup()
	rec, _ := getPrice(t, h, "/price?q=%20%20")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"code":400,"message":"invalid query"}`, rec.Body.String())
}

func TestGetPrice_BadBooleanParam(t *testing.T) {
	h := setup()
	rec, _ := getPrice(t, h, "/price?q=lego&force=banana")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPrice_SecondCallServedFromCache(t *testing.T) {
	svc, _, adapters := NewInMemoryService()
	h := NewRouter(NewServer(svc))

	rec, _ := getPrice(t, h, "/price?q=lego")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = getPrice(t, h, "/price?q=LEGO")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, adapters[0].Calls())
}

func TestGetPrice_ForceRecomputes(t *testing.T) {
	svc, _, adapters := NewInMemoryService()
	h := NewRouter(NewServer(svc))

	rec, _ := getPrice(t, h, "/price?q=lego")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = getPrice(t, h, "/price?q=lego&force=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 2, adapters[0].Calls())
}

func TestGetPrice_StoreDown(t *testing.T) {
	svc, store, _ := NewInMemoryService()
	store.getErr = errors.New("store down")
	h := NewRouter(NewServer(svc))

	rec, _ := getPrice(t, h, "/price?q=lego")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"code":503,"message":"verdict store get: engine unavailable"}`, rec.Body.String())
}

func TestPriceHistory_DisabledBackend(t *testing.T) {
	h := setup()
	req := httptest.NewRequest(http.MethodGet, "/price/history?q=lego", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPriceHistory_ReturnsEntries(t *testing.T) {
	p1 := decimal.RequireFromString("19.99")
	p2 := decimal.RequireFromString("20.49")
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.HistoryEntry{
		{QueryKey: "lego star wars", Status: domain.VerdictStatusValid, Price: &p2, Currency: "EUR", SourcesCount: 4, AgreeingSources: 3, CreatedAt: at.Add(time.Minute)},
		{QueryKey: "lego star wars", Status: domain.VerdictStatusValid, Price: &p1, Currency: "EUR", SourcesCount: 4, AgreeingSources: 4, CreatedAt: at},
	}
	svc, hist := NewInMemoryServiceWithHistory(entries)
	h := NewRouter(NewServer(svc))

	req := httptest.NewRequest(http.MethodGet, "/price/history?q=Lego++Star+Wars&limit=500", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body historyPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	require.InDelta(t, 20.49, *body.Entries[0].Price, 0.0001)
	require.Equal(t, "lego star wars", hist.gotKey)
	require.Equal(t, 100, hist.gotLim)
}

func TestPriceHistory_BadLimit(t *testing.T) {
	h := setup()
	req := httptest.NewRequest(http.MethodGet, "/price/history?q=lego&limit=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
