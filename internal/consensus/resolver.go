// Package consensus turns independent source observations into a single
// price verdict by clustering mutually agreeing prices.
package consensus

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pricetruth-service/internal/domain"
)

type AggregatePolicy string

const (
	// AggregateMedian prices the winning cluster by its median.
	AggregateMedian AggregatePolicy = "median"
	// AggregateMean prices the winning cluster by its arithmetic mean.
	AggregateMean AggregatePolicy = "mean"
)

// Resolver derives a verdict from an observation sequence.
//
// A successful observation is a consensus candidate when it carries a
// positive price in the resolver currency; observations in any other
// currency never agree with each other. The verdict is valid when the
// largest cluster of candidates within the relative tolerance of one
// anchor price reaches the agreement threshold.
type Resolver struct {
	minAgreement int
	tolerance    decimal.Decimal
	currency     string
	policy       AggregatePolicy
}

func NewResolver(minAgreement int, tolerance decimal.Decimal, currency string, policy AggregatePolicy) *Resolver {
	if minAgreement < 1 {
		minAgreement = 1
	}
	if tolerance.IsNegative() {
		tolerance = decimal.Zero
	}
	if policy != AggregateMean {
		policy = AggregateMedian
	}
	return &Resolver{
		minAgreement: minAgreement,
		tolerance:    tolerance,
		currency:     currency,
		policy:       policy,
	}
}

// Resolve builds the verdict for key from the full observation sequence.
// The sequence order is fixed by adapter registration, which makes both
// the cluster tie-break and the resulting verdict deterministic.
func (r *Resolver) Resolve(key string, obs []domain.Observation, now time.Time) domain.Verdict {
	v := domain.Verdict{
		QueryKey:     key,
		Currency:     r.currency,
		Sources:      obs,
		SourcesCount: len(obs),
		UpdatedAt:    now,
		IsFresh:      true,
	}

	cands := r.candidates(obs)
	if len(cands) < r.minAgreement {
		v.Status = domain.VerdictStatusInsufficientEvidence
		v.AgreeingSources = len(cands)
		return v
	}

	best := r.bestCluster(cands)
	if len(best) >= r.minAgreement {
		price := r.aggregate(best)
		v.Status = domain.VerdictStatusValid
		v.Price = &price
		v.AgreeingSources = len(best)
		return v
	}

	v.Status = domain.VerdictStatusOutlierDetected
	v.AgreeingSources = len(best)
	return v
}

func (r *Resolver) candidates(obs []domain.Observation) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(obs))
	for _, o := range obs {
		if !o.Success || o.Price == nil || !o.Price.IsPositive() {
			continue
		}
		if o.Currency != r.currency {
			continue
		}
		out = append(out, *o.Price)
	}
	return out
}

// bestCluster returns the largest subset of candidates within the relative
// tolerance of a single anchor. Ties keep the earliest anchor in the
// sequence (first-anchor-wins).
func (r *Resolver) bestCluster(cands []decimal.Decimal) []decimal.Decimal {
	var best []decimal.Decimal
	for _, anchor := range cands {
		cluster := make([]decimal.Decimal, 0, len(cands))
		for _, p := range cands {
			if r.withinTolerance(anchor, p) {
				cluster = append(cluster, p)
			}
		}
		if len(cluster) > len(best) {
			best = cluster
		}
	}
	return best
}

// withinTolerance reports |p-anchor|/anchor <= tolerance. Anchors are
// always positive, so the division is safe.
func (r *Resolver) withinTolerance(anchor, p decimal.Decimal) bool {
	return p.Sub(anchor).Abs().Div(anchor).LessThanOrEqual(r.tolerance)
}

func (r *Resolver) aggregate(cluster []decimal.Decimal) decimal.Decimal {
	if r.policy == AggregateMean {
		return mean(cluster)
	}
	return median(cluster)
}

func mean(prices []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum.Div(decimal.NewFromInt(int64(len(prices))))
}

func median(prices []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}
