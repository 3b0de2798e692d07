package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownSchedule = errors.New("unknown schedule")

// Schedule decides whether an item may be reordered on a given date.
type Schedule interface {
	CanOrderToday(date time.Time) bool
}

// AnyDay permits ordering every day.
type AnyDay struct{}

func (AnyDay) CanOrderToday(time.Time) bool { return true }

func (AnyDay) String() string { return "any" }

// FirstOfMonth permits ordering only on the first calendar day of a month.
type FirstOfMonth struct{}

func (FirstOfMonth) CanOrderToday(date time.Time) bool { return date.Day() == 1 }

func (FirstOfMonth) String() string { return "first-of-month" }

// Weekly permits ordering on one weekday.
type Weekly struct {
	Day time.Weekday
}

func (s Weekly) CanOrderToday(date time.Time) bool { return date.Weekday() == s.Day }

func (s Weekly) String() string { return "weekly:" + strings.ToLower(s.Day.String()) }

// ParseSchedule builds a Schedule from its catalog representation:
// "" / "any" / "anyday", "first-of-month", or "weekly:<weekday>".
func ParseSchedule(s string) (Schedule, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	switch raw {
	case "", "any", "anyday", "any-day":
		return AnyDay{}, nil
	case "first-of-month", "firstofmonth", "monthly":
		return FirstOfMonth{}, nil
	}

	if day, ok := strings.CutPrefix(raw, "weekly:"); ok {
		for d := time.Sunday; d <= time.Saturday; d++ {
			name := strings.ToLower(d.String())
			if day == name || day == name[:3] {
				return Weekly{Day: d}, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSchedule, s)
}

// ScheduleName renders a schedule back to its catalog representation.
func ScheduleName(s Schedule) string {
	if s == nil {
		return AnyDay{}.String()
	}
	if named, ok := s.(fmt.Stringer); ok {
		return named.String()
	}
	return fmt.Sprintf("%T", s)
}
