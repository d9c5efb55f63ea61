package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/repository"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50
)

// Dashboard is everything the home screen needs for one user and one day.
type Dashboard struct {
	Today        analytics.Date           `json:"today"`
	TodayCheckIn *CheckInView             `json:"today_checkin"`
	Summary7     analytics.PeriodSummary  `json:"summary_7d"`
	Summary30    analytics.PeriodSummary  `json:"summary_30d"`
	SummaryMonth analytics.PeriodSummary  `json:"summary_month"`
	RecentItems  []CheckInView            `json:"recent_items"`
	Overall      analytics.OverviewReport `json:"overall"`
}

type DashboardService struct {
	repo   repository.CheckInRepository
	engine *analytics.Engine
	cache  Cache
	ttl    time.Duration
	opts   analytics.OverviewOptions
}

// NewDashboardService builds the dashboard reader. A nil cache or a
// non-positive ttl disables caching.
func NewDashboardService(repo repository.CheckInRepository, engine *analytics.Engine, cache Cache, ttl time.Duration, opts analytics.OverviewOptions) *DashboardService {
	return &DashboardService{repo: repo, engine: engine, cache: cache, ttl: ttl, opts: opts}
}

func (s *DashboardService) caching() bool {
	return s.cache != nil && s.ttl > 0
}

// BuildOverview assembles the dashboard. The clock is read once so every
// section shares the same today.
func (s *DashboardService) BuildOverview(ctx context.Context, userID uint, recentLimit int) (*Dashboard, error) {
	if recentLimit == 0 {
		recentLimit = defaultRecentLimit
	}
	recentLimit = max(1, min(recentLimit, maxRecentLimit))
	today := s.engine.Today()

	key := fmt.Sprintf("%s%s:%d", dashboardKeyPrefix(userID), today, recentLimit)
	if s.caching() {
		var cached Dashboard
		if s.cache.GetJSON(ctx, key, &cached) {
			return &cached, nil
		}
	}

	out := &Dashboard{Today: today}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TodayCheckIn, err = findForDay(gctx, s.repo, userID, today)
		return err
	})
	g.Go(func() (err error) {
		out.Summary7, err = s.engine.SummaryLastDays(gctx, userID, today, 7)
		return err
	})
	g.Go(func() (err error) {
		out.Summary30, err = s.engine.SummaryLastDays(gctx, userID, today, 30)
		return err
	})
	g.Go(func() (err error) {
		out.SummaryMonth, err = s.engine.SummaryThisMonth(gctx, userID, today)
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.Recent(gctx, userID, recentLimit)
		if err != nil {
			return fmt.Errorf("recent check-ins: %w", err)
		}
		out.RecentItems = newCheckInViews(rows)
		return nil
	})
	g.Go(func() (err error) {
		out.Overall, err = s.engine.OverviewAt(gctx, userID, today, s.opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.caching() {
		s.cache.SetJSON(ctx, key, out, s.ttl)
	}
	return out, nil
}

// Summary is the range summary endpoint.
func (s *DashboardService) Summary(ctx context.Context, userID uint, from, to analytics.Date) (analytics.PeriodSummary, error) {
	return s.engine.Summary(ctx, userID, from, to)
}

// Weekdays computes the distribution over the configured lookback ending
// today unless an explicit range is given. cutoff overrides the configured one.
func (s *DashboardService) Weekdays(ctx context.Context, userID uint, from, to *analytics.Date, cutoff *int) (analytics.WeekdayDistribution, error) {
	if cutoff != nil && (*cutoff < 1 || *cutoff > 5) {
		return analytics.WeekdayDistribution{}, ErrInvalidCutoff
	}
	today := s.engine.Today()
	end := today
	if to != nil {
		end = *to
	}
	start := end.AddDays(-(max(1, s.opts.LookbackDays) - 1))
	if from != nil {
		start = *from
	}
	if cutoff == nil {
		cutoff = s.opts.GoodScoreCutoff
	}
	return s.engine.WeekdayDistribution(ctx, userID, start, end, cutoff, s.opts.AdaptivePercentile)
}

// Overview is the analysis alone, uncached.
func (s *DashboardService) Overview(ctx context.Context, userID uint) (analytics.OverviewReport, error) {
	return s.engine.Overview(ctx, userID, s.opts)
}
