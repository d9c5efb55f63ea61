package analytics

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestPercentileNearestRank(t *testing.T) {
	values := []int{5, 3, 1, 4, 2}
	tests := []struct {
		p    float64
		want int
	}{
		{p: 0.6, want: 3},
		{p: 0, want: 1},
		{p: 0.2, want: 1},
		{p: 0.21, want: 2},
		{p: 1, want: 5},
		{p: 1.7, want: 5},
		{p: -0.5, want: 1},
	}
	for _, tc := range tests {
		got, ok := Percentile(values, tc.p)
		if !ok || got != tc.want {
			t.Errorf("Percentile(%v): got %d/%v, want %d", tc.p, got, ok, tc.want)
		}
	}
	if values[0] != 5 {
		t.Fatal("Percentile must not reorder its input")
	}
	if _, ok := Percentile(nil, 0.6); ok {
		t.Fatal("expected no percentile for empty input")
	}
}

func TestRoundPercent(t *testing.T) {
	tests := []struct {
		good, total, want int
	}{
		{good: 2, total: 3, want: 67},
		{good: 1, total: 3, want: 33},
		{good: 1, total: 8, want: 13},
		{good: 0, total: 4, want: 0},
		{good: 4, total: 4, want: 100},
	}
	for _, tc := range tests {
		if got := RoundPercent(tc.good, tc.total); got != tc.want {
			t.Errorf("RoundPercent(%d, %d): got %d, want %d", tc.good, tc.total, got, tc.want)
		}
	}
}

func TestDistributeFixedCutoff(t *testing.T) {
	rows := []Record{
		rec(1, "2025-01-06", 5), // Mon
		rec(2, "2025-01-13", 3), // Mon
		rec(3, "2025-01-14", 2), // Tue
		rec(4, "2025-01-12", 4), // Sun
	}
	got := Distribute(rows, intPtr(4), DefaultAdaptivePercentile)

	if got.CutoffStrategy != CutoffFixed || got.Cutoff != 4 {
		t.Fatalf("cutoff: got %d/%s, want 4/fixed", got.Cutoff, got.CutoffStrategy)
	}
	if !got.HasData {
		t.Fatal("expected has_data")
	}
	want := map[Weekday]*int{
		Monday: intPtr(50), Tuesday: intPtr(0), Sunday: intPtr(100),
	}
	for _, w := range Weekdays {
		gotPct, wantPct := got.Percentages[w], want[w]
		switch {
		case wantPct == nil && gotPct != nil:
			t.Errorf("%s: got %d, want absent", w, *gotPct)
		case wantPct != nil && (gotPct == nil || *gotPct != *wantPct):
			t.Errorf("%s: got %v, want %d", w, gotPct, *wantPct)
		}
	}
	if got.Totals[Monday] != 2 || got.Totals[Wednesday] != 0 {
		t.Errorf("totals: got %v", got.Totals)
	}
	if _, ok := got.Percentages[Wednesday]; !ok {
		t.Error("every weekday key must be present")
	}
}

func TestDistributeAdaptiveCutoff(t *testing.T) {
	rows := []Record{
		rec(1, "2025-01-06", 5),
		rec(2, "2025-01-07", 2),
		rec(3, "2025-01-08", 5),
		rec(4, "2025-01-09", 2),
	}
	got := Distribute(rows, nil, DefaultAdaptivePercentile)

	if got.CutoffStrategy != CutoffAdaptive || got.Cutoff != 5 {
		t.Fatalf("cutoff: got %d/%s, want 5/adaptive", got.Cutoff, got.CutoffStrategy)
	}
	if *got.Percentages[Monday] != 100 || *got.Percentages[Tuesday] != 0 {
		t.Errorf("percentages: Mon=%v Tue=%v", *got.Percentages[Monday], *got.Percentages[Tuesday])
	}
}

func TestDistributeWithoutDataFallsBack(t *testing.T) {
	got := Distribute(nil, nil, DefaultAdaptivePercentile)
	if got.HasData {
		t.Fatal("expected has_data false")
	}
	if got.Cutoff != fallbackCutoff || got.CutoffStrategy != CutoffAdaptive {
		t.Fatalf("cutoff: got %d/%s, want %d/adaptive", got.Cutoff, got.CutoffStrategy, fallbackCutoff)
	}
	for _, w := range Weekdays {
		if got.Percentages[w] != nil {
			t.Errorf("%s: expected absent percentage", w)
		}
		if got.Totals[w] != 0 {
			t.Errorf("%s: expected zero total", w)
		}
	}
}

func TestWeekdayDistributionRejectsInvertedRange(t *testing.T) {
	engine := NewEngine(&fakeStore{}, FixedClock(day("2025-01-05")))
	_, err := engine.WeekdayDistribution(context.Background(), 1, day("2025-01-05"), day("2025-01-04"), nil, DefaultAdaptivePercentile)
	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestTallyWeekdaysSumsToRowCount(t *testing.T) {
	rows := []Record{
		rec(1, "2025-01-01", 1),
		rec(2, "2025-01-02", 2),
		rec(3, "2025-01-08", 3),
		rec(4, "2025-01-11", 4),
		rec(5, "2025-01-12", 5),
	}
	tally := tallyWeekdays(rows, 3)
	total, goods := 0, 0
	for _, w := range Weekdays {
		total += tally.totals[w]
		goods += tally.goods[w]
		if tally.goods[w] > tally.totals[w] {
			t.Errorf("%s: goods %d exceed totals %d", w, tally.goods[w], tally.totals[w])
		}
	}
	if total != len(rows) || goods != 3 {
		t.Fatalf("got total=%d goods=%d, want %d/3", total, goods, len(rows))
	}
}

func TestDistributionJSONUsesShortWeekdayKeys(t *testing.T) {
	got := Distribute([]Record{rec(1, "2025-01-06", 5)}, intPtr(4), DefaultAdaptivePercentile)
	raw, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, want := range []string{`"Mon":100`, `"Fri":null`, `"Sun":0`, `"cutoff_strategy":"fixed"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}

	var back WeekdayDistribution
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Percentages[Friday] != nil || *back.Percentages[Monday] != 100 {
		t.Fatalf("round trip lost absent/zero distinction: %+v", back.Percentages)
	}
}
