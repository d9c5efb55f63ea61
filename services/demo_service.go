package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/models"
	"github.com/cppla/wellbeing/repository"
	"github.com/cppla/wellbeing/utils"
)

const skipDayPercent = 35

// DemoConfig shapes demo accounts and their seeded history.
type DemoConfig struct {
	EmailDomain string
	SeedDays    int
	SeedMax     int
}

// DemoService manages throwaway demo accounts.
type DemoService struct {
	users    repository.UserRepository
	checkIns repository.CheckInRepository
	cache    Cache
	clock    analytics.Clock
	cfg      DemoConfig

	now func() time.Time
	mu  sync.Mutex
	rng *rand.Rand
}

func NewDemoService(users repository.UserRepository, checkIns repository.CheckInRepository, cache Cache, clock analytics.Clock, cfg DemoConfig) *DemoService {
	return &DemoService{
		users:    users,
		checkIns: checkIns,
		cache:    cache,
		clock:    clock,
		cfg:      cfg,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start resumes the caller's demo account, or creates one when the caller is
// anonymous or a regular user, and tops up its seeded history.
func (s *DemoService) Start(ctx context.Context, currentUserID uint) (*models.User, int, error) {
	var user *models.User
	if currentUserID != 0 {
		u, err := s.users.FindByID(ctx, currentUserID)
		switch {
		case err == nil && u.IsDemo:
			user = u
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, 0, fmt.Errorf("find user %d: %w", currentUserID, err)
		}
	}
	if user == nil {
		u, err := s.createUser(ctx)
		if err != nil {
			return nil, 0, err
		}
		user = u
	}

	seeded, err := s.seed(ctx, user.ID)
	if err != nil {
		return nil, 0, err
	}
	return user, seeded, nil
}

// Reset wipes the demo account's check-ins and seeds a fresh history.
func (s *DemoService) Reset(ctx context.Context, userID uint) (int, error) {
	if _, err := s.demoUser(ctx, userID); err != nil {
		return 0, err
	}
	if _, err := s.checkIns.DeleteAllForUser(ctx, userID); err != nil {
		return 0, fmt.Errorf("clear demo check-ins: %w", err)
	}
	invalidateDashboard(ctx, s.cache, userID)
	return s.seed(ctx, userID)
}

// End checks that the caller is a demo account. The caller revokes the token;
// the account itself is left for the purge.
func (s *DemoService) End(ctx context.Context, userID uint) error {
	_, err := s.demoUser(ctx, userID)
	return err
}

// PurgeExpired removes demo accounts older than hours, at least one hour.
func (s *DemoService) PurgeExpired(ctx context.Context, hours int) (int, error) {
	hours = max(1, hours)
	threshold := s.now().Add(-time.Duration(hours) * time.Hour)
	n, err := s.users.PurgeDemoUsers(ctx, threshold)
	if err != nil {
		return 0, fmt.Errorf("purge demo users: %w", err)
	}
	return n, nil
}

func (s *DemoService) demoUser(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	if !u.IsDemo {
		return nil, ErrNotDemoUser
	}
	return u, nil
}

func (s *DemoService) createUser(ctx context.Context) (*models.User, error) {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	hash, err := utils.HashRandomPassword()
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	u := &models.User{
		Name:         "Demo User " + token[:8],
		Email:        fmt.Sprintf("demo+%s@%s", token, s.cfg.EmailDomain),
		PasswordHash: hash,
		IsDemo:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create demo user: %w", err)
	}
	return u, nil
}

func (s *DemoService) seed(ctx context.Context, userID uint) (int, error) {
	rows := s.seedRows(s.clock.Today())
	n, err := s.checkIns.SeedMissing(ctx, userID, rows, s.cfg.SeedMax)
	if err != nil {
		return 0, fmt.Errorf("seed demo check-ins: %w", err)
	}
	if n > 0 {
		invalidateDashboard(ctx, s.cache, userID)
	}
	return n, nil
}

// seedRows draws candidate check-ins from oldest to newest over the seed
// window. Some days are skipped to look like real usage.
func (s *DemoService) seedRows(today analytics.Date) []models.CheckIn {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []models.CheckIn
	for i := s.cfg.SeedDays - 1; i >= 0; i-- {
		if s.rng.Intn(101) < skipDayPercent {
			continue
		}
		score := 2 + s.rng.Intn(4)
		note := demoNote(score)
		rows = append(rows, models.CheckIn{
			CheckedAt: today.AddDays(-i).Time,
			Score:     score,
			Note:      &note,
		})
	}
	return rows
}

func demoNote(score int) string {
	switch {
	case score >= 5:
		return "Great energy and focus."
	case score == 4:
		return "Good day overall."
	case score == 3:
		return "Average mood, steady."
	case score == 2:
		return "Tired; kept it simple."
	default:
		return "Difficult day; taking it slow."
	}
}
