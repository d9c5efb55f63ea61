package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account that owns check-ins. Passwords are stored as bcrypt hashes only.
// Demo users are ephemeral and removed by the purge job.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	IsDemo       bool      `gorm:"not null;default:false;index:idx_users_demo_created,priority:1" json:"is_demo"`
	CreatedAt    time.Time `gorm:"index:idx_users_demo_created,priority:2" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CheckIns     []CheckIn `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
