package analytics

import (
	"context"
	"fmt"
)

// Engine computes read-only analytics over a Store. It holds no mutable state
// and may be shared between goroutines.
type Engine struct {
	store Store
	clock Clock
}

// NewEngine wires an engine to its store and reference clock.
func NewEngine(store Store, clock Clock) *Engine {
	return &Engine{store: store, clock: clock}
}

// Today returns the engine's current reference day.
func (e *Engine) Today() Date {
	return e.clock.Today()
}

func (e *Engine) records(ctx context.Context, userID uint, from, to Date) ([]Record, error) {
	if from.After(to.Time) {
		return nil, ErrInvalidRange
	}
	rows, err := e.store.FindInRange(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("find check-ins %s..%s: %w", from, to, err)
	}
	return rows, nil
}

// Summary aggregates the user's check-ins in [from, to].
func (e *Engine) Summary(ctx context.Context, userID uint, from, to Date) (PeriodSummary, error) {
	rows, err := e.records(ctx, userID, from, to)
	if err != nil {
		return PeriodSummary{}, err
	}
	return Summarize(rows), nil
}

// SummaryLastDays covers the last n days including today.
func (e *Engine) SummaryLastDays(ctx context.Context, userID uint, today Date, n int) (PeriodSummary, error) {
	return e.Summary(ctx, userID, today.AddDays(-max(0, n-1)), today)
}

// SummaryThisMonth covers today's whole calendar month.
func (e *Engine) SummaryThisMonth(ctx context.Context, userID uint, today Date) (PeriodSummary, error) {
	return e.Summary(ctx, userID, today.StartOfMonth(), today.EndOfMonth())
}

// Summarize reduces records to a PeriodSummary. Records outside any range
// filter are the caller's concern.
func Summarize(rows []Record) PeriodSummary {
	if len(rows) == 0 {
		return PeriodSummary{}
	}

	first := rows[0]
	sum := 0
	minScore, maxScore := first.Score, first.Score
	firstDate, lastDate := first.CheckedAt, first.CheckedAt
	best, worst := first, first

	for _, r := range rows[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
		if r.CheckedAt.Before(firstDate.Time) {
			firstDate = r.CheckedAt
		}
		if r.CheckedAt.After(lastDate.Time) {
			lastDate = r.CheckedAt
		}
		if r.Score > best.Score || (r.Score == best.Score && laterThan(r, best)) {
			best = r
		}
		if r.Score < worst.Score || (r.Score == worst.Score && laterThan(r, worst)) {
			worst = r
		}
	}
	for _, r := range rows {
		sum += r.Score
	}

	avg := float64(sum) / float64(len(rows))
	return PeriodSummary{
		Count:        len(rows),
		AverageScore: &avg,
		MinScore:     &minScore,
		MaxScore:     &maxScore,
		FirstDate:    &firstDate,
		LastDate:     &lastDate,
		BestDay:      &DayScore{Date: best.CheckedAt, Score: best.Score},
		WorstDay:     &DayScore{Date: worst.CheckedAt, Score: worst.Score},
	}
}

// laterThan orders by checked_at and then by id, both descending.
func laterThan(a, b Record) bool {
	if !a.CheckedAt.Equal(b.CheckedAt.Time) {
		return a.CheckedAt.After(b.CheckedAt.Time)
	}
	return a.ID > b.ID
}
