package scoring

import (
	"github.com/shopspring/decimal"

	"github.com/selivandex/catalog-ranker/pkg/models"
)

// Source tells where a score came from
type Source string

const (
	SourceCache    Source = "cache"
	SourceComputed Source = "computed"
	// SourceStale is a record past the freshness window, served because
	// another process was recomputing the item.
	SourceStale Source = "stale"
)

// DegradeReason names the failure behind a fallback value
type DegradeReason string

const (
	DegradedNone            DegradeReason = ""
	DegradedStats           DegradeReason = "stats_unavailable"
	DegradedEngagement      DegradeReason = "engagement_unavailable"
	DegradedCacheRead       DegradeReason = "cache_read_failed"
	DegradedCacheWrite      DegradeReason = "cache_write_failed"
	DegradedInvalidArgument DegradeReason = "invalid_argument"
)

// Result is the outcome of a score lookup. Value is always usable; a
// non-empty Degraded says it is a fallback or was not persisted, and Err
// carries the cause.
type Result struct {
	Value    float64
	Source   Source
	Degraded DegradeReason
	Err      error
}

// IsDegraded reports whether a failure affected the result
func (r Result) IsDegraded() bool {
	return r.Degraded != DegradedNone
}

// Rounded returns the score at reporting precision (2 decimals)
func (r Result) Rounded() decimal.Decimal {
	return decimal.NewFromFloat(r.Value).Round(2)
}

// Float returns the score at reporting precision as a float64
func (r Result) Float() float64 {
	return models.RoundScore(r.Value)
}
