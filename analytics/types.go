package analytics

import (
	"context"
	"errors"
)

// ErrInvalidRange is returned when a range starts after it ends.
var ErrInvalidRange = errors.New("invalid date range: from is after to")

// Record is the slice of a check-in the engine reads.
type Record struct {
	ID        uint
	CheckedAt Date
	Score     int
	Note      *string
}

// Store is the read contract the engine needs from persistence. FindInRange
// may return records in any order.
type Store interface {
	ExistsForDay(ctx context.Context, userID uint, day Date) (bool, error)
	FindInRange(ctx context.Context, userID uint, from, to Date) ([]Record, error)
}

// DayScore pins a score to the day it was recorded.
type DayScore struct {
	Date  Date `json:"date"`
	Score int  `json:"score"`
}

// PeriodSummary holds aggregate metrics over an inclusive range. Every pointer
// field is nil exactly when Count is zero.
type PeriodSummary struct {
	Count        int       `json:"count"`
	AverageScore *float64  `json:"average_score"`
	MinScore     *int      `json:"min_score"`
	MaxScore     *int      `json:"max_score"`
	FirstDate    *Date     `json:"first_date"`
	LastDate     *Date     `json:"last_date"`
	BestDay      *DayScore `json:"best_day"`
	WorstDay     *DayScore `json:"worst_day"`
}

// CutoffStrategy records how the good-day cutoff was chosen.
type CutoffStrategy string

const (
	CutoffFixed    CutoffStrategy = "fixed"
	CutoffAdaptive CutoffStrategy = "adaptive"
)

// WeekdayDistribution is the good-day rate per weekday. A nil percentage means
// no observations for that weekday, which is not the same as 0%.
type WeekdayDistribution struct {
	Percentages    map[Weekday]*int `json:"percentages"`
	Totals         map[Weekday]int  `json:"totals"`
	HasData        bool             `json:"has_data"`
	Cutoff         int              `json:"cutoff"`
	CutoffStrategy CutoffStrategy   `json:"cutoff_strategy"`
}

// TrendLabel classifies the change between two periods.
type TrendLabel string

const (
	TrendImproving TrendLabel = "improving"
	TrendDeclining TrendLabel = "declining"
	TrendStable    TrendLabel = "stable"
)

type TrendResult struct {
	Label    TrendLabel `json:"label"`
	DeltaPct float64    `json:"delta_pct"`
}

// Period describes one comparison window.
type Period struct {
	From Date `json:"from"`
	To   Date `json:"to"`
	Days int  `json:"days"`
}

type WeekdayExtremes struct {
	Best  *Weekday `json:"best"`
	Worst *Weekday `json:"worst"`
}

type GoodCutoff struct {
	Value      int            `json:"value"`
	Strategy   CutoffStrategy `json:"strategy"`
	Percentile *float64       `json:"percentile,omitempty"`
}

// OverviewReport is the dashboard analysis for one user and one "today".
type OverviewReport struct {
	PeriodRecent        Period           `json:"period_recent"`
	PeriodPrevious      Period           `json:"period_previous"`
	AvgRecent           *float64         `json:"avg_recent"`
	AvgPrevious         *float64         `json:"avg_previous"`
	Trend               TrendResult      `json:"trend"`
	RecentCount         int              `json:"recent_count"`
	PreviousCount       int              `json:"previous_count"`
	WeekdayDistribution map[Weekday]*int `json:"weekday_distribution"`
	WeekdayTotals       map[Weekday]int  `json:"weekday_totals"`
	WeekdayExtremes     WeekdayExtremes  `json:"weekday_extremes"`
	WeekdayHasData      bool             `json:"weekday_has_data"`
	GoodCutoff          GoodCutoff       `json:"good_cutoff"`
}
