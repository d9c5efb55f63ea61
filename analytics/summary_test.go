package analytics

import (
	"context"
	"errors"
	"testing"
	"time"
)

type rangeCall struct {
	userID   uint
	from, to Date
}

type fakeStore struct {
	records map[uint][]Record
	err     error
	calls   []rangeCall
}

func (f *fakeStore) ExistsForDay(ctx context.Context, userID uint, day Date) (bool, error) {
	for _, r := range f.records[userID] {
		if r.CheckedAt.Equal(day.Time) {
			return true, nil
		}
	}
	return false, f.err
}

func (f *fakeStore) FindInRange(ctx context.Context, userID uint, from, to Date) ([]Record, error) {
	f.calls = append(f.calls, rangeCall{userID: userID, from: from, to: to})
	if f.err != nil {
		return nil, f.err
	}
	var out []Record
	for _, r := range f.records[userID] {
		if r.CheckedAt.Before(from.Time) || r.CheckedAt.After(to.Time) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func day(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func rec(id uint, date string, score int) Record {
	return Record{ID: id, CheckedAt: day(date), Score: score}
}

func TestSummaryEmptyRangeLeavesFieldsAbsent(t *testing.T) {
	store := &fakeStore{records: map[uint][]Record{1: {rec(1, "2025-02-01", 4)}}}
	engine := NewEngine(store, FixedClock(day("2025-01-31")))

	got, err := engine.Summary(context.Background(), 1, day("2025-01-01"), day("2025-01-31"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Count != 0 {
		t.Fatalf("count: got %d, want 0", got.Count)
	}
	if got.AverageScore != nil || got.MinScore != nil || got.MaxScore != nil {
		t.Fatalf("expected nil score aggregates, got %+v", got)
	}
	if got.FirstDate != nil || got.LastDate != nil || got.BestDay != nil || got.WorstDay != nil {
		t.Fatalf("expected nil date fields, got %+v", got)
	}
}

func TestSummaryAggregates(t *testing.T) {
	store := &fakeStore{records: map[uint][]Record{
		1: {
			rec(1, "2025-01-02", 3),
			rec(2, "2025-01-05", 5),
			rec(3, "2025-01-03", 1),
			rec(4, "2025-01-04", 4),
		},
		2: {rec(5, "2025-01-03", 5)},
	}}
	engine := NewEngine(store, FixedClock(day("2025-01-05")))

	got, err := engine.Summary(context.Background(), 1, day("2025-01-01"), day("2025-01-05"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Count != 4 {
		t.Fatalf("count: got %d, want 4", got.Count)
	}
	if *got.AverageScore != 3.25 {
		t.Errorf("average: got %v, want 3.25", *got.AverageScore)
	}
	if *got.MinScore != 1 || *got.MaxScore != 5 {
		t.Errorf("min/max: got %d/%d, want 1/5", *got.MinScore, *got.MaxScore)
	}
	if got.FirstDate.String() != "2025-01-02" || got.LastDate.String() != "2025-01-05" {
		t.Errorf("first/last: got %s/%s", got.FirstDate, got.LastDate)
	}
	if got.BestDay.Date.String() != "2025-01-05" || got.BestDay.Score != 5 {
		t.Errorf("best day: got %+v", *got.BestDay)
	}
	if got.WorstDay.Date.String() != "2025-01-03" || got.WorstDay.Score != 1 {
		t.Errorf("worst day: got %+v", *got.WorstDay)
	}
	if float64(*got.MinScore) > *got.AverageScore || *got.AverageScore > float64(*got.MaxScore) {
		t.Errorf("expected min <= avg <= max, got %d <= %v <= %d", *got.MinScore, *got.AverageScore, *got.MaxScore)
	}
}

func TestSummarizeTieBreaksPreferLatestDayThenHighestID(t *testing.T) {
	rows := []Record{
		rec(1, "2025-03-01", 5),
		rec(2, "2025-03-04", 5),
		rec(3, "2025-03-02", 5),
		rec(4, "2025-03-03", 2),
		rec(5, "2025-03-05", 2),
		rec(6, "2025-03-01", 2),
	}
	got := Summarize(rows)
	if got.BestDay.Date.String() != "2025-03-04" {
		t.Errorf("best day: got %s, want 2025-03-04", got.BestDay.Date)
	}
	if got.WorstDay.Date.String() != "2025-03-05" {
		t.Errorf("worst day: got %s, want 2025-03-05", got.WorstDay.Date)
	}
}

func TestLaterThanUsesIDWhenDatesMatch(t *testing.T) {
	a := rec(9, "2025-03-01", 4)
	b := rec(7, "2025-03-01", 4)
	if !laterThan(a, b) {
		t.Fatal("expected higher id to win on equal dates")
	}
	if laterThan(b, a) {
		t.Fatal("expected lower id to lose on equal dates")
	}
}

func TestSummaryRejectsInvertedRange(t *testing.T) {
	store := &fakeStore{}
	engine := NewEngine(store, FixedClock(day("2025-01-05")))

	_, err := engine.Summary(context.Background(), 1, day("2025-01-06"), day("2025-01-05"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected no store query, got %d", len(store.calls))
	}
}

func TestSummaryAllowsSingleDayRange(t *testing.T) {
	store := &fakeStore{records: map[uint][]Record{1: {rec(1, "2025-01-05", 2)}}}
	engine := NewEngine(store, FixedClock(day("2025-01-05")))

	got, err := engine.Summary(context.Background(), 1, day("2025-01-05"), day("2025-01-05"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Count != 1 || *got.AverageScore != 2 {
		t.Fatalf("unexpected summary %+v", got)
	}
}

func TestSummaryPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	engine := NewEngine(&fakeStore{err: boom}, FixedClock(day("2025-01-05")))

	_, err := engine.Summary(context.Background(), 1, day("2025-01-01"), day("2025-01-05"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestSummaryIsIdempotent(t *testing.T) {
	store := &fakeStore{records: map[uint][]Record{1: {
		rec(1, "2025-01-02", 3),
		rec(2, "2025-01-04", 4),
	}}}
	engine := NewEngine(store, FixedClock(day("2025-01-05")))
	ctx := context.Background()

	a, err := engine.Summary(ctx, 1, day("2025-01-01"), day("2025-01-05"))
	if err != nil {
		t.Fatalf("first summary: %v", err)
	}
	b, err := engine.Summary(ctx, 1, day("2025-01-01"), day("2025-01-05"))
	if err != nil {
		t.Fatalf("second summary: %v", err)
	}
	if a.Count != b.Count || *a.AverageScore != *b.AverageScore || *a.BestDay != *b.BestDay || *a.WorstDay != *b.WorstDay {
		t.Fatalf("summaries differ: %+v vs %+v", a, b)
	}
}

func TestSummaryLastDaysWindow(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		wantFrom string
	}{
		{name: "week", days: 7, wantFrom: "2025-01-03"},
		{name: "single day", days: 1, wantFrom: "2025-01-09"},
		{name: "zero clamps to today", days: 0, wantFrom: "2025-01-09"},
		{name: "thirty", days: 30, wantFrom: "2024-12-11"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{}
			engine := NewEngine(store, FixedClock(day("2025-01-09")))
			if _, err := engine.SummaryLastDays(context.Background(), 1, engine.Today(), tc.days); err != nil {
				t.Fatalf("summary: %v", err)
			}
			if len(store.calls) != 1 {
				t.Fatalf("expected 1 query, got %d", len(store.calls))
			}
			call := store.calls[0]
			if call.from.String() != tc.wantFrom || call.to.String() != "2025-01-09" {
				t.Fatalf("range: got %s..%s, want %s..2025-01-09", call.from, call.to, tc.wantFrom)
			}
		})
	}
}

func TestSummaryThisMonthWindow(t *testing.T) {
	store := &fakeStore{}
	engine := NewEngine(store, FixedClock(day("2024-02-10")))
	if _, err := engine.SummaryThisMonth(context.Background(), 1, engine.Today()); err != nil {
		t.Fatalf("summary: %v", err)
	}
	call := store.calls[0]
	if call.from.String() != "2024-02-01" || call.to.String() != "2024-02-29" {
		t.Fatalf("range: got %s..%s, want 2024-02-01..2024-02-29", call.from, call.to)
	}
}

func TestDateHelpers(t *testing.T) {
	if got := day("2025-01-05").ISOWeekday(); got != Sunday {
		t.Errorf("2025-01-05: got %s, want Sun", got)
	}
	if got := day("2025-01-06").ISOWeekday(); got != Monday {
		t.Errorf("2025-01-06: got %s, want Mon", got)
	}
	if got := day("2024-12-31").EndOfMonth().String(); got != "2024-12-31" {
		t.Errorf("end of month: got %s", got)
	}
	if got := day("2025-03-01").AddDays(-1).String(); got != "2025-02-28" {
		t.Errorf("add days: got %s", got)
	}

	local := time.Date(2025, 1, 5, 23, 30, 0, 0, time.FixedZone("UTC+9", 9*3600))
	if got := DateOf(local).String(); got != "2025-01-05" {
		t.Errorf("date of local time: got %s, want 2025-01-05", got)
	}
	if _, err := ParseDate("2025-13-01"); err == nil {
		t.Error("expected parse error for month 13")
	}
}
