// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/models"
	"github.com/cppla/wellbeing/repository"
)

// CheckIns is a concurrency-safe in-memory repository.CheckInRepository.
// Setting Err makes every call fail with it.
type CheckIns struct {
	mu     sync.Mutex
	rows   map[uint]models.CheckIn
	nextID uint

	Err error
	// LoseRace makes Create behave as if a concurrent insert for the same
	// day committed between the existence check and the insert.
	LoseRace bool
	// RangeQueries counts FindInRange calls.
	RangeQueries int
}

var _ repository.CheckInRepository = (*CheckIns)(nil)

func NewCheckIns() *CheckIns {
	return &CheckIns{rows: map[uint]models.CheckIn{}}
}

// Put stores a row as-is, assigning an id when it has none.
func (m *CheckIns) Put(row models.CheckIn) models.CheckIn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.putLocked(row)
}

func (m *CheckIns) putLocked(row models.CheckIn) models.CheckIn {
	if row.ID == 0 {
		m.nextID++
		row.ID = m.nextID
	} else if row.ID > m.nextID {
		m.nextID = row.ID
	}
	now := time.Now()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	row.CheckedAt = row.Day().Time
	m.rows[row.ID] = row
	return row
}

// All returns the user's rows ordered by id.
func (m *CheckIns) All(userID uint) []models.CheckIn {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CheckIn
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *CheckIns) existsLocked(userID uint, day analytics.Date, exceptID uint) bool {
	for _, r := range m.rows {
		if r.UserID == userID && r.ID != exceptID && r.Day().Equal(day.Time) {
			return true
		}
	}
	return false
}

func (m *CheckIns) ExistsForDay(ctx context.Context, userID uint, day analytics.Date) (bool, error) {
	return m.ExistsForDayExcept(ctx, userID, day, 0)
}

func (m *CheckIns) ExistsForDayExcept(ctx context.Context, userID uint, day analytics.Date, exceptID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	return m.existsLocked(userID, day, exceptID), nil
}

func (m *CheckIns) inRangeLocked(userID uint, from, to analytics.Date) []models.CheckIn {
	var out []models.CheckIn
	for _, r := range m.rows {
		d := r.Day()
		if r.UserID != userID || d.Before(from.Time) || d.After(to.Time) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *CheckIns) FindInRange(ctx context.Context, userID uint, from, to analytics.Date) ([]analytics.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RangeQueries++
	if m.Err != nil {
		return nil, m.Err
	}
	var out []analytics.Record
	for _, r := range m.inRangeLocked(userID, from, to) {
		out = append(out, r.Record())
	}
	return out, nil
}

func (m *CheckIns) Aggregate(ctx context.Context, userID uint, from, to analytics.Date) (repository.Aggregate, error) {
	if from.After(to.Time) {
		return repository.Aggregate{}, analytics.ErrInvalidRange
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return repository.Aggregate{}, m.Err
	}
	var agg repository.Aggregate
	sum := 0
	for _, r := range m.inRangeLocked(userID, from, to) {
		score := r.Score
		if agg.Count == 0 || score < *agg.Min {
			agg.Min = &score
		}
		if agg.Count == 0 || score > *agg.Max {
			s := score
			agg.Max = &s
		}
		agg.Count++
		sum += score
	}
	if agg.Count > 0 {
		avg := float64(sum) / float64(agg.Count)
		agg.Average = &avg
	}
	return agg, nil
}

func (m *CheckIns) Create(ctx context.Context, checkIn *models.CheckIn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.LoseRace || m.existsLocked(checkIn.UserID, checkIn.Day(), 0) {
		return repository.ErrDuplicate
	}
	*checkIn = m.putLocked(*checkIn)
	return nil
}

func (m *CheckIns) Update(ctx context.Context, checkIn *models.CheckIn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	current, ok := m.rows[checkIn.ID]
	if !ok || current.UserID != checkIn.UserID {
		return repository.ErrNotFound
	}
	if m.existsLocked(checkIn.UserID, checkIn.Day(), checkIn.ID) {
		return repository.ErrDuplicate
	}
	checkIn.CreatedAt = current.CreatedAt
	*checkIn = m.putLocked(*checkIn)
	return nil
}

func (m *CheckIns) DeleteOwned(ctx context.Context, userID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	r, ok := m.rows[id]
	if !ok || r.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *CheckIns) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for id, r := range m.rows {
		if r.UserID == userID {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

func (m *CheckIns) FindOwned(ctx context.Context, userID, id uint) (*models.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.rows[id]
	if !ok || r.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *CheckIns) FindForDay(ctx context.Context, userID uint, day analytics.Date) (*models.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.rows {
		if r.UserID == userID && r.Day().Equal(day.Time) {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *CheckIns) sortedLocked(userID uint, keep func(models.CheckIn) bool) []models.CheckIn {
	var out []models.CheckIn
	for _, r := range m.rows {
		if r.UserID == userID && keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckedAt.Equal(out[j].CheckedAt) {
			return out[i].CheckedAt.After(out[j].CheckedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *CheckIns) Paginate(ctx context.Context, userID uint, filter repository.ListFilter) ([]models.CheckIn, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	rows := m.sortedLocked(userID, func(r models.CheckIn) bool {
		d := r.Day()
		if filter.From != nil && d.Before(filter.From.Time) {
			return false
		}
		return filter.To == nil || !d.After(filter.To.Time)
	})
	total := int64(len(rows))
	start := (filter.Page - 1) * filter.PerPage
	if start >= len(rows) {
		return []models.CheckIn{}, total, nil
	}
	end := min(start+filter.PerPage, len(rows))
	return rows[start:end], total, nil
}

func (m *CheckIns) Recent(ctx context.Context, userID uint, limit int) ([]models.CheckIn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	rows := m.sortedLocked(userID, func(models.CheckIn) bool { return true })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *CheckIns) SeedMissing(ctx context.Context, userID uint, rows []models.CheckIn, limit int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	created := 0
	for _, row := range rows {
		if created >= limit {
			break
		}
		row.UserID = userID
		if m.existsLocked(userID, row.Day(), 0) {
			continue
		}
		m.putLocked(row)
		created++
	}
	return created, nil
}

// Users is an in-memory repository.UserRepository with a unique email index.
type Users struct {
	mu     sync.Mutex
	rows   map[uint]models.User
	nextID uint

	Err error
	// CheckIns, when set, loses the purged users' rows too.
	CheckIns *CheckIns
}

var _ repository.UserRepository = (*Users)(nil)

func NewUsers() *Users {
	return &Users{rows: map[uint]models.User{}}
}

func (m *Users) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == 0 {
		m.nextID++
		user.ID = m.nextID
	} else if user.ID > m.nextID {
		m.nextID = user.ID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt
	m.rows[user.ID] = *user
	return nil
}

func (m *Users) FindByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *Users) PurgeDemoUsers(ctx context.Context, createdBefore time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	n := 0
	for id, u := range m.rows {
		if !u.IsDemo || u.CreatedAt.After(createdBefore) {
			continue
		}
		delete(m.rows, id)
		if m.CheckIns != nil {
			_, _ = m.CheckIns.DeleteAllForUser(ctx, id)
		}
		n++
	}
	return n, nil
}
