package payroll

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage and wire format for calendar days.
const DateLayout = "2006-01-02"

// NewDate returns the calendar day at UTC midnight.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar day, keeping the wall-clock date.
func DateOf(t time.Time) time.Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the local calendar day as a UTC-midnight date.
func Today() time.Time {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", s)}
	}
	return t, nil
}

// AddDays shifts a date by n calendar days.
func AddDays(d time.Time, n int) time.Time { return d.AddDate(0, 0, n) }

// DaysBetween returns whole days from one date to another.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}
