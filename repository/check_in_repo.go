package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/models"
)

// Aggregate is the SQL-side summary of a range. Pointer fields are nil when
// the range holds no rows.
type Aggregate struct {
	Count   int64    `json:"count"`
	Average *float64 `json:"average_score"`
	Min     *int     `gorm:"column:min_score" json:"min_score"`
	Max     *int     `gorm:"column:max_score" json:"max_score"`
}

// ListFilter narrows a paginated listing. Zero dates mean unbounded.
type ListFilter struct {
	From    *analytics.Date
	To      *analytics.Date
	Page    int
	PerPage int
}

type CheckInRepository interface {
	analytics.Store
	ExistsForDayExcept(ctx context.Context, userID uint, day analytics.Date, exceptID uint) (bool, error)
	Aggregate(ctx context.Context, userID uint, from, to analytics.Date) (Aggregate, error)
	Create(ctx context.Context, checkIn *models.CheckIn) error
	Update(ctx context.Context, checkIn *models.CheckIn) error
	DeleteOwned(ctx context.Context, userID, id uint) error
	DeleteAllForUser(ctx context.Context, userID uint) (int64, error)
	FindOwned(ctx context.Context, userID, id uint) (*models.CheckIn, error)
	FindForDay(ctx context.Context, userID uint, day analytics.Date) (*models.CheckIn, error)
	Paginate(ctx context.Context, userID uint, filter ListFilter) ([]models.CheckIn, int64, error)
	Recent(ctx context.Context, userID uint, limit int) ([]models.CheckIn, error)
	SeedMissing(ctx context.Context, userID uint, rows []models.CheckIn, limit int) (int, error)
}

type CheckInRepositoryImpl struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) CheckInRepository {
	return &CheckInRepositoryImpl{db: db}
}

func (s *CheckInRepositoryImpl) ExistsForDay(ctx context.Context, userID uint, day analytics.Date) (bool, error) {
	return existsForDay(s.db.WithContext(ctx), userID, day, 0)
}

func (s *CheckInRepositoryImpl) ExistsForDayExcept(ctx context.Context, userID uint, day analytics.Date, exceptID uint) (bool, error) {
	return existsForDay(s.db.WithContext(ctx), userID, day, exceptID)
}

func existsForDay(db *gorm.DB, userID uint, day analytics.Date, exceptID uint) (bool, error) {
	q := db.Model(&models.CheckIn{}).Where("user_id = ? AND checked_at = ?", userID, day.String())
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (s *CheckInRepositoryImpl) FindInRange(ctx context.Context, userID uint, from, to analytics.Date) ([]analytics.Record, error) {
	var rows []models.CheckIn
	err := s.db.WithContext(ctx).
		Select("id", "checked_at", "score", "note").
		Where("user_id = ? AND checked_at BETWEEN ? AND ?", userID, from.String(), to.String()).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]analytics.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Record())
	}
	return out, nil
}

func (s *CheckInRepositoryImpl) Aggregate(ctx context.Context, userID uint, from, to analytics.Date) (Aggregate, error) {
	if from.After(to.Time) {
		return Aggregate{}, analytics.ErrInvalidRange
	}
	var agg Aggregate
	err := s.db.WithContext(ctx).
		Model(&models.CheckIn{}).
		Select("COUNT(*) AS count, AVG(score) AS average, MIN(score) AS min_score, MAX(score) AS max_score").
		Where("user_id = ? AND checked_at BETWEEN ? AND ?", userID, from.String(), to.String()).
		Scan(&agg).Error
	return agg, err
}

// Create inserts the check-in unless the user already has one for that day.
// The unique index settles concurrent inserts that pass the check together.
func (s *CheckInRepositoryImpl) Create(ctx context.Context, checkIn *models.CheckIn) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := existsForDay(tx, checkIn.UserID, checkIn.Day(), 0)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}
		return translate(tx.Create(checkIn).Error)
	})
}

func (s *CheckInRepositoryImpl) Update(ctx context.Context, checkIn *models.CheckIn) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.CheckIn
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", checkIn.ID, checkIn.UserID).
			First(&current).Error
		if err != nil {
			return translate(err)
		}

		collision, err := existsForDay(tx, checkIn.UserID, checkIn.Day(), checkIn.ID)
		if err != nil {
			return err
		}
		if collision {
			return ErrDuplicate
		}

		err = tx.Model(&current).Updates(map[string]any{
			"checked_at": checkIn.Day().String(),
			"score":      checkIn.Score,
			"note":       checkIn.Note,
		}).Error
		if err != nil {
			return translate(err)
		}
		return tx.First(checkIn, current.ID).Error
	})
}

func (s *CheckInRepositoryImpl) DeleteOwned(ctx context.Context, userID, id uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CheckIn{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CheckInRepositoryImpl) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CheckIn{})
	return result.RowsAffected, result.Error
}

func (s *CheckInRepositoryImpl) FindOwned(ctx context.Context, userID, id uint) (*models.CheckIn, error) {
	var row models.CheckIn
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (s *CheckInRepositoryImpl) FindForDay(ctx context.Context, userID uint, day analytics.Date) (*models.CheckIn, error) {
	var row models.CheckIn
	err := s.db.WithContext(ctx).Where("user_id = ? AND checked_at = ?", userID, day.String()).First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// Paginate lists newest first. Page and PerPage must already be normalized.
func (s *CheckInRepositoryImpl) Paginate(ctx context.Context, userID uint, filter ListFilter) ([]models.CheckIn, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.CheckIn{}).Where("user_id = ?", userID)
	if filter.From != nil {
		q = q.Where("checked_at >= ?", filter.From.String())
	}
	if filter.To != nil {
		q = q.Where("checked_at <= ?", filter.To.String())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CheckIn
	err := q.Order("checked_at DESC").Order("id DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *CheckInRepositoryImpl) Recent(ctx context.Context, userID uint, limit int) ([]models.CheckIn, error) {
	var rows []models.CheckIn
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("checked_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// SeedMissing inserts rows in order, skipping days the user already has, and
// stops after limit inserts. It returns how many rows were created.
func (s *CheckInRepositoryImpl) SeedMissing(ctx context.Context, userID uint, rows []models.CheckIn, limit int) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if created >= limit {
				return nil
			}
			row := rows[i]
			row.UserID = userID
			exists, err := existsForDay(tx, userID, row.Day(), 0)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := tx.Create(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
