package analytics

import "fmt"

// Weekday is an ISO-8601 day of week, Monday=1 through Sunday=7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Weekdays lists the buckets in Monday..Sunday order. Every scan that needs a
// deterministic tie-break walks this slice.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayShort = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayShort[w]
}

// MarshalText lets Weekday be used as a JSON object key ("Mon".."Sun").
func (w Weekday) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(w))
	}
	return []byte(weekdayShort[w]), nil
}

func (w *Weekday) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWeekday accepts the short English names used on the wire.
func ParseWeekday(s string) (Weekday, error) {
	for _, w := range Weekdays {
		if weekdayShort[w] == s {
			return w, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
