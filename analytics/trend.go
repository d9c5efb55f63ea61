package analytics

import "math"

const (
	// stableBandPct is the absolute change, in percent, below which two
	// periods are considered equal.
	stableBandPct = 3.0
	trendEpsilon  = 1e-9
)

// CompareTrend classifies the relative change from previous to recent.
func CompareTrend(recent, previous *float64) TrendResult {
	if recent == nil || previous == nil {
		return TrendResult{Label: TrendStable, DeltaPct: 0}
	}

	delta := (*recent - *previous) / math.Max(trendEpsilon, *previous) * 100

	switch {
	case math.Abs(delta) < stableBandPct:
		return TrendResult{Label: TrendStable, DeltaPct: delta}
	case delta > 0:
		return TrendResult{Label: TrendImproving, DeltaPct: delta}
	default:
		return TrendResult{Label: TrendDeclining, DeltaPct: delta}
	}
}
