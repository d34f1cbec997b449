package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pricetruth-service/internal/application"
	"pricetruth-service/internal/domain"
)

var _ application.SourceAdapter = (*Static)(nil)

// Static always observes the same price; used by the demo profile and in
// tests where source behavior must be fully predictable.
type Static struct {
	name     string
	price    decimal.Decimal
	currency string
}

func NewStatic(name string, price decimal.Decimal, currency string) *Static {
	return &Static{name: name, price: price, currency: currency}
}

func (s *Static) Name() string { return s.name }

func (s *Static) Fetch(_ context.Context, _ string) domain.Observation {
	return domain.ObservedPrice(s.name, s.price, s.currency, time.Now().UTC())
}
