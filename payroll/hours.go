package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ClockLayout is the format of shift start and end times.
const ClockLayout = "15:04"

var minutesPerHour = decimal.NewFromInt(60)

// HoursWorkedStrict returns the hours between two clock times on the same
// nominal day. When end is not after start the shift crosses midnight and
// end is taken from the following day, so equal times mean 24 hours.
func HoursWorkedStrict(start, end string) (decimal.Decimal, error) {
	s, err := parseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	e, err := parseClock(end)
	if err != nil {
		return decimal.Zero, err
	}
	if !e.After(s) {
		e = e.Add(24 * time.Hour)
	}
	minutes := decimal.NewFromInt(int64(e.Sub(s) / time.Minute))
	return minutes.Div(minutesPerHour), nil
}

// HoursWorked is HoursWorkedStrict with malformed input counted as zero hours.
// Callers that need to log the failure use HoursWorkedStrict.
func HoursWorked(start, end string) decimal.Decimal {
	h, err := HoursWorkedStrict(start, end)
	if err != nil {
		return decimal.Zero
	}
	return h
}

func parseClock(v string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, &ParseError{Value: v, Err: err}
	}
	return t, nil
}
