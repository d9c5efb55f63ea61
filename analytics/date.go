package analytics

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a calendar day.
const DateLayout = "2006-01-02"

// Date is a calendar day without time-of-day. The embedded time is always
// midnight UTC so that comparisons and day arithmetic never cross DST edges.
type Date struct {
	time.Time
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// AddDays shifts the date by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// EndOfMonth returns the last day of d's month.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), d.Month()+1, 1).AddDays(-1)
}

// ISOWeekday maps the date onto Monday=1 .. Sunday=7.
func (d Date) ISOWeekday() Weekday {
	wd := d.Time.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Clock yields the reference "today". Implementations must be safe for
// concurrent use.
type Clock interface {
	Today() Date
}

// LocationClock reads wall-clock time in a fixed deployment location.
type LocationClock struct {
	Location *time.Location
}

func (c LocationClock) Today() Date {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// FixedClock always returns the same day.
type FixedClock Date

func (c FixedClock) Today() Date {
	return Date(c)
}
