package analytics

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestCompareTrend(t *testing.T) {
	tests := []struct {
		name      string
		recent    *float64
		previous  *float64
		wantLabel TrendLabel
		wantDelta float64
	}{
		{name: "inside band", recent: floatPtr(4.02), previous: floatPtr(4), wantLabel: TrendStable},
		{name: "improving", recent: floatPtr(4.5), previous: floatPtr(4), wantLabel: TrendImproving, wantDelta: 12.5},
		{name: "declining", recent: floatPtr(3), previous: floatPtr(4), wantLabel: TrendDeclining, wantDelta: -25},
		{name: "band edge up", recent: floatPtr(103), previous: floatPtr(100), wantLabel: TrendImproving, wantDelta: 3},
		{name: "band edge down", recent: floatPtr(97), previous: floatPtr(100), wantLabel: TrendDeclining, wantDelta: -3},
		{name: "no recent", recent: nil, previous: floatPtr(4), wantLabel: TrendStable},
		{name: "no previous", recent: floatPtr(4), previous: nil, wantLabel: TrendStable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CompareTrend(tc.recent, tc.previous)
			if got.Label != tc.wantLabel {
				t.Fatalf("label: got %s, want %s (delta %v)", got.Label, tc.wantLabel, got.DeltaPct)
			}
			if tc.wantDelta != 0 && got.DeltaPct != tc.wantDelta {
				t.Fatalf("delta: got %v, want %v", got.DeltaPct, tc.wantDelta)
			}
		})
	}
}

func TestCompareTrendKeepsDeltaWhenStable(t *testing.T) {
	got := CompareTrend(floatPtr(4.02), floatPtr(4))
	if got.DeltaPct <= 0 || got.DeltaPct >= stableBandPct {
		t.Fatalf("expected small positive delta, got %v", got.DeltaPct)
	}
	if nilDelta := CompareTrend(nil, nil).DeltaPct; nilDelta != 0 {
		t.Fatalf("expected zero delta without data, got %v", nilDelta)
	}
}

func TestCompareTrendFromZeroBaseline(t *testing.T) {
	got := CompareTrend(floatPtr(2), floatPtr(0))
	if got.Label != TrendImproving {
		t.Fatalf("expected improving from zero baseline, got %s", got.Label)
	}
}

func TestPickExtreme(t *testing.T) {
	tests := []struct {
		name        string
		percentages map[Weekday]*int
		totals      map[Weekday]int
		dir         Direction
		want        *Weekday
	}{
		{
			name:        "larger sample wins tie",
			percentages: map[Weekday]*int{Monday: intPtr(80), Tuesday: intPtr(80)},
			totals:      map[Weekday]int{Monday: 5, Tuesday: 10},
			dir:         Max,
			want:        weekdayPtr(Tuesday),
		},
		{
			name:        "earlier weekday wins full tie",
			percentages: map[Weekday]*int{Wednesday: intPtr(40), Friday: intPtr(40)},
			totals:      map[Weekday]int{Wednesday: 3, Friday: 3},
			dir:         Min,
			want:        weekdayPtr(Wednesday),
		},
		{
			name:        "absent days are skipped",
			percentages: map[Weekday]*int{Monday: nil, Sunday: intPtr(10)},
			totals:      map[Weekday]int{Monday: 0, Sunday: 2},
			dir:         Min,
			want:        weekdayPtr(Sunday),
		},
		{
			name:        "zero percent is a real minimum",
			percentages: map[Weekday]*int{Monday: intPtr(0), Tuesday: intPtr(50)},
			totals:      map[Weekday]int{Monday: 1, Tuesday: 2},
			dir:         Min,
			want:        weekdayPtr(Monday),
		},
		{
			name:        "nothing qualifies",
			percentages: map[Weekday]*int{Monday: nil},
			totals:      map[Weekday]int{},
			dir:         Max,
			want:        nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PickExtreme(tc.percentages, tc.totals, tc.dir)
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("got %s, want none", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("got %v, want %s", got, *tc.want)
			}
		})
	}
}

func weekdayPtr(w Weekday) *Weekday { return &w }
