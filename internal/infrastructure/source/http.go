// Package source implements the price source adapters. Site-specific
// scraping stays behind per-source gateway endpoints; adapters only speak
// the gateway's JSON contract and normalize every outcome into an
// observation.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/domain"
	"pricetruth-service/internal/infrastructure/httpx"
)

// HTTP asks one price gateway for the current price of a product. The
// gateway answers `{"price": <number>, "currency": "EUR"}` on
// `GET <base-url>?q=<query>`.
type HTTP struct {
	SourceName string
	BaseURL    string
	Currency   string
	Timeout    time.Duration
	Client     *httpx.Client
}

var _ application.SourceAdapter = (*HTTP)(nil)

type gatewayResp struct {
	Price    json.Number `json:"price"`
	Currency string      `json:"currency"`
}

func (h *HTTP) Name() string { return h.SourceName }

func (h *HTTP) Fetch(ctx context.Context, query string) domain.Observation {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	u, err := url.Parse(h.BaseURL)
	if err != nil {
		return h.failed("invalid base url")
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return h.failed("create request: " + err.Error())
	}

	client := h.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body gatewayResp
	if err := client.DoJSON(ctx, req, &body); err != nil {
		return h.failed(classify(err))
	}

	if body.Price == "" {
		return h.failed("bad payload: missing price")
	}
	price, err := decimal.NewFromString(body.Price.String())
	if err != nil {
		return h.failed("bad payload: unparseable price")
	}

	currency := body.Currency
	if currency == "" {
		currency = h.Currency
	}
	return domain.ObservedPrice(h.SourceName, price, currency, time.Now().UTC())
}

func (h *HTTP) failed(reason string) domain.Observation {
	return domain.FailedObservation(h.SourceName, reason, time.Now().UTC())
}

// classify maps a fetch error to the observation reason; deadline expiry in
// any form becomes the timeout reason the collector also uses.
func classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.ReasonTimeout
	}
	return err.Error()
}
