package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// PAY PERIOD - Fixed 14-day reporting window
// =============================================================================

// PayPeriod is a biweekly pay window, inclusive on both ends.
// Overtime never spans a period: each period splits into two weeks.
type PayPeriod struct {
	Start       time.Time
	End         time.Time
	Label       string
	Synthesized bool // true when no predefined period matched
}

// PeriodLength is the number of days in a pay period.
const PeriodLength = 14

// CustomPeriodLabel labels periods synthesized outside the table.
const CustomPeriodLabel = "Custom Period"

// Contains returns true if the date is within [Start, End].
func (p PayPeriod) Contains(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Days returns every day in the period.
func (p PayPeriod) Days() []time.Time {
	var days []time.Time
	for d := p.Start; !d.After(p.End); d = AddDays(d, 1) {
		days = append(days, d)
	}
	return days
}

// Weeks splits the period into week 1 (first 7 days) and week 2 (the rest).
func (p PayPeriod) Weeks() (week1, week2 PayPeriod) {
	week1End := AddDays(p.Start, 6)
	if week1End.After(p.End) {
		week1End = p.End
	}
	week1 = PayPeriod{Start: p.Start, End: week1End, Label: p.Label + " (Week 1)", Synthesized: p.Synthesized}
	week2 = PayPeriod{Start: AddDays(week1End, 1), End: p.End, Label: p.Label + " (Week 2)", Synthesized: p.Synthesized}
	return week1, week2
}

func (p PayPeriod) String() string {
	return "[" + p.Start.Format(DateLayout) + ", " + p.End.Format(DateLayout) + "]"
}

// =============================================================================
// PERIOD TABLE
// =============================================================================

var (
	firstPeriodStart = NewDate(2025, time.August, 10)
	periodCount      = 10
	predefined       = buildPeriods(firstPeriodStart, periodCount)
)

func buildPeriods(start time.Time, n int) []PayPeriod {
	periods := make([]PayPeriod, 0, n)
	for i := 0; i < n; i++ {
		s := AddDays(start, i*PeriodLength)
		e := AddDays(s, PeriodLength-1)
		periods = append(periods, PayPeriod{Start: s, End: e, Label: periodLabel(s, e)})
	}
	return periods
}

// periodLabel renders "Aug 10 - Aug 23, 2025".
func periodLabel(start, end time.Time) string {
	if start.Year() != end.Year() {
		return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))
}

// Periods returns a copy of the predefined pay periods, oldest first.
func Periods() []PayPeriod {
	out := make([]PayPeriod, len(predefined))
	copy(out, predefined)
	return out
}

// ResolvePeriod returns the predefined period containing date. Dates outside
// the table get a synthesized period [date, date+13].
func ResolvePeriod(date time.Time) PayPeriod {
	date = DateOf(date)
	for _, p := range predefined {
		if p.Contains(date) {
			return p
		}
	}
	return PayPeriod{
		Start:       date,
		End:         AddDays(date, PeriodLength-1),
		Label:       CustomPeriodLabel,
		Synthesized: true,
	}
}

// PeriodAfter returns the period that starts the day after p ends. Past the
// end of the table the windows keep the 14-day cadence of p.
func PeriodAfter(p PayPeriod) PayPeriod {
	return ResolvePeriod(AddDays(p.End, 1))
}

// Describe names the period with its dates, e.g. "Custom Period (Dec 28,
// 2025 - Jan 10, 2026)" for a synthesized one.
func (p PayPeriod) Describe() string {
	if !p.Synthesized {
		return p.Label
	}
	return fmt.Sprintf("%s (%s)", p.Label, periodLabel(p.Start, p.End))
}

// CurrentAndPrevious returns the period containing today and the one before it.
// The previous period is the latest predefined period ending before the
// current one starts; if there is none, a 14-day period ending the day
// before is synthesized.
func CurrentAndPrevious(today time.Time) (current, previous PayPeriod) {
	current = ResolvePeriod(today)

	found := false
	for _, p := range predefined {
		if p.End.Before(current.Start) && (!found || p.End.After(previous.End)) {
			previous = p
			found = true
		}
	}
	if found {
		return current, previous
	}

	end := AddDays(current.Start, -1)
	return current, PayPeriod{
		Start:       AddDays(end, -(PeriodLength - 1)),
		End:         end,
		Label:       CustomPeriodLabel,
		Synthesized: true,
	}
}
