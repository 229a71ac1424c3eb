package daily

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Valid reports whether t names a real wall-clock minute.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// ParseTimeOfDay parses "HH:MM" in 24-hour form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("time of day %q: want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("time of day %q: hour: %w", s, err)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("time of day %q: minute: %w", s, err)
	}
	t := TimeOfDay{Hour: hour, Minute: minute}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("time of day %q: out of range", s)
	}
	return t, nil
}

// BoundaryInstant returns tod on the calendar date of date as observed in
// loc. On days where tod falls into a DST gap the instant is normalized the
// way time.Date does.
func BoundaryInstant(date time.Time, loc *time.Location, tod TimeOfDay) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, mo, d := date.In(loc).Date()
	return time.Date(y, mo, d, tod.Hour, tod.Minute, 0, 0, loc)
}
