package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/wellbeing/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	PurgeDemoUsers(ctx context.Context, createdBefore time.Time) (int, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (s *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// PurgeDemoUsers removes demo users created at or before the threshold
// together with their check-ins, in one transaction.
func (s *UserRepositoryImpl) PurgeDemoUsers(ctx context.Context, createdBefore time.Time) (int, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_demo = ? AND created_at <= ?", true, createdBefore).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id IN ?", ids).Delete(&models.CheckIn{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.User{}).Error
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
