package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReasonTimeout marks an observation that did not settle within the
// fan-out budget or whose fetch deadline expired.
const ReasonTimeout = "timeout"

// Observation is the normalized outcome of asking one source for one
// product price. It is created once per adapter invocation and never
// mutated afterwards; a failed fetch is an Observation with Success=false
// and Error set, not a Go error.
type Observation struct {
	Source     string           `json:"source"`
	Success    bool             `json:"success"`
	Price      *decimal.Decimal `json:"price"`
	Currency   string           `json:"currency,omitempty"`
	ObservedAt time.Time        `json:"observed_at"`
	Error      string           `json:"error,omitempty"`
}

// ObservedPrice builds a successful observation.
func ObservedPrice(source string, price decimal.Decimal, currency string, at time.Time) Observation {
	return Observation{
		Source:     source,
		Success:    true,
		Price:      &price,
		Currency:   currency,
		ObservedAt: at,
	}
}

// FailedObservation builds a failed observation carrying the failure reason.
func FailedObservation(source, reason string, at time.Time) Observation {
	return Observation{
		Source:     source,
		Success:    false,
		ObservedAt: at,
		Error:      reason,
	}
}
