package analytics

import (
	"context"
	"math"
	"sort"
)

const (
	// DefaultAdaptivePercentile is the nearest-rank percentile used when no
	// explicit cutoff is configured.
	DefaultAdaptivePercentile = 0.60
	// fallbackCutoff applies when the adaptive cutoff has no scores to work
	// from. It is above the score ceiling, so no day can count as good.
	fallbackCutoff = 7
)

// weekdayTally holds per-weekday counts, indexed by Weekday.
type weekdayTally struct {
	totals [Sunday + 1]int
	goods  [Sunday + 1]int
}

// tallyWeekdays folds records into per-weekday totals and good-day counts.
func tallyWeekdays(rows []Record, cutoff int) weekdayTally {
	var acc weekdayTally
	for _, r := range rows {
		acc = acc.add(r.CheckedAt.ISOWeekday(), r.Score >= cutoff)
	}
	return acc
}

func (t weekdayTally) add(w Weekday, good bool) weekdayTally {
	if !w.Valid() {
		return t
	}
	t.totals[w]++
	if good {
		t.goods[w]++
	}
	return t
}

// Percentile returns the nearest-rank p-th percentile of values. ok is false
// for an empty input. p is clamped to [0, 1].
func Percentile(values []int, p float64) (v int, ok bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}
	p = math.Min(1, math.Max(0, p))

	sorted := make([]int, n)
	copy(sorted, values)
	sort.Ints(sorted)

	rank := int(math.Ceil(p * float64(n)))
	rank = max(1, min(rank, n))
	return sorted[rank-1], true
}

// RoundPercent turns good/total into an integer percentage, rounding half
// away from zero.
func RoundPercent(good, total int) int {
	return int(math.Round(float64(good) / float64(total) * 100))
}

// WeekdayDistribution computes the good-day rate per weekday over [from, to].
// A nil cutoff selects the adaptive strategy at the given percentile.
func (e *Engine) WeekdayDistribution(ctx context.Context, userID uint, from, to Date, cutoff *int, percentile float64) (WeekdayDistribution, error) {
	rows, err := e.records(ctx, userID, from, to)
	if err != nil {
		return WeekdayDistribution{}, err
	}
	return Distribute(rows, cutoff, percentile), nil
}

// Distribute is the pure core of WeekdayDistribution.
func Distribute(rows []Record, cutoff *int, percentile float64) WeekdayDistribution {
	strategy := CutoffFixed
	value := fallbackCutoff
	if cutoff != nil {
		value = *cutoff
	} else {
		strategy = CutoffAdaptive
		scores := make([]int, 0, len(rows))
		for _, r := range rows {
			scores = append(scores, r.Score)
		}
		if p, ok := Percentile(scores, percentile); ok {
			value = p
		}
	}

	tally := tallyWeekdays(rows, value)

	out := WeekdayDistribution{
		Percentages:    make(map[Weekday]*int, len(Weekdays)),
		Totals:         make(map[Weekday]int, len(Weekdays)),
		Cutoff:         value,
		CutoffStrategy: strategy,
	}
	sum := 0
	for _, w := range Weekdays {
		total := tally.totals[w]
		out.Totals[w] = total
		sum += total
		if total <= 0 {
			out.Percentages[w] = nil
			continue
		}
		pct := RoundPercent(tally.goods[w], total)
		out.Percentages[w] = &pct
	}
	out.HasData = sum > 0
	return out
}
