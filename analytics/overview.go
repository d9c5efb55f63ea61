package analytics

import "context"

// OverviewOptions tunes the dashboard analysis. The zero value is not valid;
// start from DefaultOverviewOptions.
type OverviewOptions struct {
	RecentDays         int
	LookbackDays       int
	GoodScoreCutoff    *int
	AdaptivePercentile float64
}

// DefaultOverviewOptions compares the last 7 days with the 7 before and
// looks 90 days back for weekday patterns with an adaptive cutoff.
func DefaultOverviewOptions() OverviewOptions {
	return OverviewOptions{
		RecentDays:         7,
		LookbackDays:       90,
		AdaptivePercentile: DefaultAdaptivePercentile,
	}
}

// Overview reads the clock once and builds the full report from that single
// "today" so every window in the report lines up.
func (e *Engine) Overview(ctx context.Context, userID uint, opts OverviewOptions) (OverviewReport, error) {
	return e.OverviewAt(ctx, userID, e.clock.Today(), opts)
}

// OverviewAt builds the report for an explicit reference day.
func (e *Engine) OverviewAt(ctx context.Context, userID uint, today Date, opts OverviewOptions) (OverviewReport, error) {
	recentDays := max(1, opts.RecentDays)
	lookbackDays := max(1, opts.LookbackDays)

	recent := Period{From: today.AddDays(-(recentDays - 1)), To: today, Days: recentDays}
	previousTo := recent.From.AddDays(-1)
	previous := Period{From: previousTo.AddDays(-(recentDays - 1)), To: previousTo, Days: recentDays}

	recentSummary, err := e.Summary(ctx, userID, recent.From, recent.To)
	if err != nil {
		return OverviewReport{}, err
	}
	previousSummary, err := e.Summary(ctx, userID, previous.From, previous.To)
	if err != nil {
		return OverviewReport{}, err
	}

	dist, err := e.WeekdayDistribution(ctx, userID, today.AddDays(-(lookbackDays-1)), today, opts.GoodScoreCutoff, opts.AdaptivePercentile)
	if err != nil {
		return OverviewReport{}, err
	}

	var extremes WeekdayExtremes
	if dist.HasData {
		extremes.Best = PickExtreme(dist.Percentages, dist.Totals, Max)
		extremes.Worst = PickExtreme(dist.Percentages, dist.Totals, Min)
	}

	cutoff := GoodCutoff{Value: dist.Cutoff, Strategy: dist.CutoffStrategy}
	if dist.CutoffStrategy == CutoffAdaptive {
		p := opts.AdaptivePercentile
		cutoff.Percentile = &p
	}

	return OverviewReport{
		PeriodRecent:        recent,
		PeriodPrevious:      previous,
		AvgRecent:           recentSummary.AverageScore,
		AvgPrevious:         previousSummary.AverageScore,
		Trend:               CompareTrend(recentSummary.AverageScore, previousSummary.AverageScore),
		RecentCount:         recentSummary.Count,
		PreviousCount:       previousSummary.Count,
		WeekdayDistribution: dist.Percentages,
		WeekdayTotals:       dist.Totals,
		WeekdayExtremes:     extremes,
		WeekdayHasData:      dist.HasData,
		GoodCutoff:          cutoff,
	}, nil
}
