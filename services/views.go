package services

import (
	"time"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/models"
)

// CheckInView is the wire shape of a check-in.
type CheckInView struct {
	ID        uint              `json:"id"`
	CheckedAt analytics.Date    `json:"checked_at"`
	Weekday   analytics.Weekday `json:"weekday"`
	Score     int               `json:"score"`
	Note      *string           `json:"note"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func NewCheckInView(m models.CheckIn) CheckInView {
	day := m.Day()
	return CheckInView{
		ID:        m.ID,
		CheckedAt: day,
		Weekday:   day.ISOWeekday(),
		Score:     m.Score,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func newCheckInViews(rows []models.CheckIn) []CheckInView {
	out := make([]CheckInView, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewCheckInView(r))
	}
	return out
}

// UserView hides credentials.
type UserView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsDemo    bool      `json:"is_demo"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserView(u models.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, IsDemo: u.IsDemo, CreatedAt: u.CreatedAt}
}
