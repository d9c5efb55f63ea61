package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/models"
	"github.com/cppla/wellbeing/repository"
	"github.com/cppla/wellbeing/utils"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// CheckInInput carries a create or update request.
type CheckInInput struct {
	CheckedAt string  `json:"checked_at" validate:"required,datetime=2006-01-02"`
	Score     int     `json:"score" validate:"min=1,max=5"`
	Note      *string `json:"note" validate:"omitempty,max=2000"`
}

// ListQuery filters a listing. Empty dates are unbounded; zero paging values
// take the defaults.
type ListQuery struct {
	From    string
	To      string
	Page    int
	PerPage int
}

// CheckInPage is one page of a listing. RangeSummary is set when both ends of
// the range were given.
type CheckInPage struct {
	Items        []CheckInView         `json:"items"`
	Pagination   utils.Pagination      `json:"pagination"`
	RangeSummary *repository.Aggregate `json:"range_summary,omitempty"`
}

// CheckInService enforces one check-in per user and day and ownership of
// every row it touches.
type CheckInService struct {
	repo     repository.CheckInRepository
	cache    Cache
	clock    analytics.Clock
	validate *validator.Validate
}

func NewCheckInService(repo repository.CheckInRepository, cache Cache, clock analytics.Clock) *CheckInService {
	return &CheckInService{
		repo:     repo,
		cache:    cache,
		clock:    clock,
		validate: validator.New(),
	}
}

// normalize validates the input and returns the row fields it describes.
func (s *CheckInService) normalize(in CheckInInput) (models.CheckIn, error) {
	in.CheckedAt = strings.TrimSpace(in.CheckedAt)
	if err := s.validate.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			switch ve[0].StructField() {
			case "CheckedAt":
				return models.CheckIn{}, ErrInvalidDate
			case "Score":
				return models.CheckIn{}, ErrInvalidScore
			case "Note":
				return models.CheckIn{}, ErrNoteTooLong
			}
		}
		return models.CheckIn{}, err
	}
	day, err := analytics.ParseDate(in.CheckedAt)
	if err != nil {
		return models.CheckIn{}, ErrInvalidDate
	}
	return models.CheckIn{
		CheckedAt: day.Time,
		Score:     in.Score,
		Note:      utils.SanitizeNote(in.Note),
	}, nil
}

func (s *CheckInService) Create(ctx context.Context, userID uint, in CheckInInput) (*CheckInView, error) {
	row, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	row.UserID = userID

	if err := s.repo.Create(ctx, &row); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDayConflict
		}
		return nil, fmt.Errorf("create check-in: %w", err)
	}
	invalidateDashboard(ctx, s.cache, userID)

	view := NewCheckInView(row)
	return &view, nil
}

func (s *CheckInService) Update(ctx context.Context, userID, id uint, in CheckInInput) (*CheckInView, error) {
	row, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	row.ID = id
	row.UserID = userID

	if err := s.repo.Update(ctx, &row); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCheckInNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDayConflict
		}
		return nil, fmt.Errorf("update check-in %d: %w", id, err)
	}
	invalidateDashboard(ctx, s.cache, userID)

	view := NewCheckInView(row)
	return &view, nil
}

func (s *CheckInService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.repo.DeleteOwned(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCheckInNotFound
		}
		return fmt.Errorf("delete check-in %d: %w", id, err)
	}
	invalidateDashboard(ctx, s.cache, userID)
	return nil
}

// Get returns the user's check-in. Rows of other users are reported as not
// found.
func (s *CheckInService) Get(ctx context.Context, userID, id uint) (*CheckInView, error) {
	row, err := s.repo.FindOwned(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("find check-in %d: %w", id, err)
	}
	view := NewCheckInView(*row)
	return &view, nil
}

// FindToday returns nil without error when there is no check-in today.
func (s *CheckInService) FindToday(ctx context.Context, userID uint) (*CheckInView, error) {
	return findForDay(ctx, s.repo, userID, s.clock.Today())
}

func findForDay(ctx context.Context, repo repository.CheckInRepository, userID uint, day analytics.Date) (*CheckInView, error) {
	row, err := repo.FindForDay(ctx, userID, day)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find check-in for %s: %w", day, err)
	}
	view := NewCheckInView(*row)
	return &view, nil
}

// List pages through the user's check-ins, newest first.
func (s *CheckInService) List(ctx context.Context, userID uint, q ListQuery) (*CheckInPage, error) {
	filter, err := parseListQuery(q)
	if err != nil {
		return nil, err
	}

	rows, total, err := s.repo.Paginate(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}

	page := &CheckInPage{
		Items:      newCheckInViews(rows),
		Pagination: utils.NewPagination(filter.Page, filter.PerPage, total),
	}
	if filter.From != nil && filter.To != nil {
		agg, err := s.repo.Aggregate(ctx, userID, *filter.From, *filter.To)
		if err != nil {
			return nil, fmt.Errorf("aggregate check-ins: %w", err)
		}
		page.RangeSummary = &agg
	}
	return page, nil
}

func parseListQuery(q ListQuery) (repository.ListFilter, error) {
	filter := repository.ListFilter{Page: max(1, q.Page), PerPage: q.PerPage}
	switch {
	case filter.PerPage == 0:
		filter.PerPage = defaultPerPage
	case filter.PerPage < 1 || filter.PerPage > maxPerPage:
		return filter, ErrInvalidPerPage
	}

	parse := func(raw string) (*analytics.Date, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		d, err := analytics.ParseDate(raw)
		if err != nil {
			return nil, ErrInvalidDate
		}
		return &d, nil
	}
	var err error
	if filter.From, err = parse(q.From); err != nil {
		return filter, err
	}
	if filter.To, err = parse(q.To); err != nil {
		return filter, err
	}
	if filter.From != nil && filter.To != nil && filter.From.After(filter.To.Time) {
		return filter, analytics.ErrInvalidRange
	}
	return filter, nil
}
