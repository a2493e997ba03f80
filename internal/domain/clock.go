package domain

import (
	"fmt"
	"time"
)

type Clock interface {
	Now() time.Time
}

// LocalClock reads the wall clock of one fixed zone. Times are carried
// timezone-naive: the wall-clock fields are kept and tagged UTC so they round
// trip unchanged through TIMESTAMP WITHOUT TIME ZONE columns.
type LocalClock struct {
	loc *time.Location
}

func NewLocalClock(loc *time.Location) LocalClock {
	if loc == nil {
		loc = time.Local
	}
	return LocalClock{loc: loc}
}

func (c LocalClock) Now() time.Time {
	return Naive(time.Now().In(c.loc))
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Naive drops the zone of t, keeping its wall-clock reading.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseLocal parses the local date-time strings used across the back office
// (datetime-local inputs and SQL-style timestamps).
func ParseLocal(s string) (time.Time, error) {
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Naive(t), nil
	}
	return time.Time{}, Validation("invalid date %q, expected YYYY-MM-DDTHH:MM[:SS]", s)
}

// ParseDay parses a YYYY-MM-DD date and returns its start.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDay(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}
