package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type VerdictStatus string

const (
	VerdictStatusValid                VerdictStatus = "valid"
	VerdictStatusInsufficientEvidence VerdictStatus = "insufficient_evidence"
	VerdictStatusOutlierDetected      VerdictStatus = "outlier_detected"
	VerdictStatusStaleData            VerdictStatus = "stale_data"
)

// Verdict is the engine's answer for one query key. It is produced
// wholesale by the consensus resolver (stale_data verdicts only by the
// cache fallback path) and replaced as a unit; readers never see a
// partially updated verdict.
type Verdict struct {
	QueryKey        string           `json:"query_key"`
	Status          VerdictStatus    `json:"status"`
	Price           *decimal.Decimal `json:"price"`
	Currency        string           `json:"currency"`
	Sources         []Observation    `json:"sources"`
	SourcesCount    int              `json:"sources_count"`
	AgreeingSources int              `json:"agreeing_sources"`
	UpdatedAt       time.Time        `json:"updated_at"`
	IsFresh         bool             `json:"is_fresh"`
}

// Age reports how old the verdict is at the given instant.
func (v Verdict) Age(now time.Time) time.Duration {
	return now.Sub(v.UpdatedAt)
}
