package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntry is one recorded recomputation for a query key, kept by
// stores that retain an audit trail of verdicts over time.
type HistoryEntry struct {
	QueryKey        string           `json:"query_key"`
	Status          VerdictStatus    `json:"status"`
	Price           *decimal.Decimal `json:"price"`
	Currency        string           `json:"currency"`
	SourcesCount    int              `json:"sources_count"`
	AgreeingSources int              `json:"agreeing_sources"`
	CreatedAt       time.Time        `json:"created_at"`
}
