// Package timeofday provides a wall-clock time value ("HH:MM") detached from
// any calendar date, matching the TIME column the store uses for check-in and
// check-out.
package timeofday

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a time of day with minute precision.
type TimeOfDay struct {
	hour   int
	minute int
	valid  bool
}

// Parse reads "HH:MM" or "HH:MM:SS" (seconds ignored).
func Parse(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return New(t.Hour(), t.Minute()), nil
}

// New builds a time of day from hour and minute.
func New(hour, minute int) TimeOfDay {
	return TimeOfDay{hour: hour, minute: minute, valid: true}
}

// FromTime extracts the time-of-day component of t.
func FromTime(t time.Time) TimeOfDay {
	return New(t.Hour(), t.Minute())
}

// IsZero reports whether the value was never set.
func (t TimeOfDay) IsZero() bool { return !t.valid }

// Minutes returns minutes elapsed since midnight.
func (t TimeOfDay) Minutes() int { return t.hour*60 + t.minute }

// Before reports t < other.
func (t TimeOfDay) Before(other TimeOfDay) bool { return t.Minutes() < other.Minutes() }

// After reports t > other.
func (t TimeOfDay) After(other TimeOfDay) bool { return t.Minutes() > other.Minutes() }

// On anchors the time of day to a calendar date.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.hour, t.minute, 0, 0, date.Location())
}

// String renders "HH:MM", the format used by forms and CSV export.
func (t TimeOfDay) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// Scan accepts TIME column values delivered as time.Time, string or []byte.
func (t *TimeOfDay) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*t = FromTime(x)
		return nil
	case string:
		parsed, err := Parse(x)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(x))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case nil:
		*t = TimeOfDay{}
		return nil
	default:
		return fmt.Errorf("timeofday: unsupported Scan type %T", v)
	}
}

// Value sends "HH:MM:00" so a Postgres TIME column accepts it.
func (t TimeOfDay) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return fmt.Sprintf("%02d:%02d:00", t.hour, t.minute), nil
}

// MarshalJSON renders the value as "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON reads "HH:MM" or "HH:MM:SS".
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = TimeOfDay{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
