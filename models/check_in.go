package models

import (
	"time"

	"github.com/cppla/wellbeing/analytics"
)

// CheckIn is one well-being entry. A user has at most one per calendar day,
// enforced by idx_check_ins_user_day.
type CheckIn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_check_ins_user_day,priority:1" json:"user_id"`
	CheckedAt time.Time `gorm:"type:date;not null;uniqueIndex:idx_check_ins_user_day,priority:2" json:"checked_at"`
	Score     int       `gorm:"not null" json:"score"`
	Note      *string   `gorm:"type:text" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Day returns the calendar day the check-in belongs to.
func (c CheckIn) Day() analytics.Date {
	return analytics.DateOf(c.CheckedAt)
}

// Record projects the row onto what the analytics engine reads.
func (c CheckIn) Record() analytics.Record {
	return analytics.Record{
		ID:        c.ID,
		CheckedAt: c.Day(),
		Score:     c.Score,
		Note:      c.Note,
	}
}
