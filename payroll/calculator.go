/*
calculator.go - Weekly overtime and biweekly pay

PURPOSE:
  Converts a week's worth of shifts into taxable gross, per-diem, and
  overtime, then combines two weeks into a pay-period total.

OVERTIME MODEL:
  A simplified FLSA blended rate, applied per calendar week:

    site_bonus_total = bonus_per_day * bonus_days
    regular_rate     = (base_weekly + site_bonus_total) / hours   (hours > 40)
    overtime_pay     = (hours - 40) * 0.5 * regular_rate
    taxable_gross    = base_weekly + site_bonus_total + overtime_pay

  Weeks are never merged: a 30h week followed by a 50h week pays overtime on
  10 hours, not zero.

PERIOD TOTAL:
    after_tax = (gross1 + gross2) * (1 - tax_rate) + (per_diem1 + per_diem2)

SEE ALSO:
  - period.go: Week boundaries
  - projection.go: Monthly variant with a 160h threshold
*/
package payroll

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Weekly overtime constants.
var (
	WeeklyOvertimeThreshold = decimal.NewFromInt(40)
	overtimePremium         = decimal.NewFromFloat(0.5)
)

// =============================================================================
// WEEK SPLIT
// =============================================================================

// SplitIntoWeeks partitions shifts into the period's first 7 days and the
// remaining days. Shifts outside the period are dropped.
func SplitIntoWeeks(shifts []Shift, period PayPeriod) (week1, week2 []Shift) {
	w1, w2 := period.Weeks()
	for _, s := range shifts {
		switch {
		case w1.Contains(s.Date):
			week1 = append(week1, s)
		case w2.Contains(s.Date):
			week2 = append(week2, s)
		}
	}
	return week1, week2
}

// ShiftsIn returns the shifts dated within the period.
func ShiftsIn(shifts []Shift, period PayPeriod) []Shift {
	var out []Shift
	for _, s := range shifts {
		if period.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// WEEK INPUT
// =============================================================================

// WeekInput is the aggregate of one week's shifts.
type WeekInput struct {
	Hours     decimal.Decimal
	PerDiems  []PerDiem
	BonusDays int
	Days      int // distinct calendar days worked
	Shifts    int
}

// SummarizeWeek aggregates hours, per-diem choices, and site-bonus days.
// A day counts once toward bonus days even with several flagged shifts.
func SummarizeWeek(shifts []Shift) WeekInput {
	in := WeekInput{Hours: decimal.Zero, Shifts: len(shifts)}
	days := make(map[time.Time]bool)
	bonusDays := make(map[time.Time]bool)
	for _, s := range shifts {
		in.Hours = in.Hours.Add(s.Hours())
		in.PerDiems = append(in.PerDiems, s.PerDiem)
		d := DateOf(s.Date)
		days[d] = true
		if s.SiteBonus {
			bonusDays[d] = true
		}
	}
	in.Days = len(days)
	in.BonusDays = len(bonusDays)
	return in
}

// =============================================================================
// WEEKLY PAY
// =============================================================================

// WeeklyPayResult is the pay for one calendar week.
type WeeklyPayResult struct {
	Hours          decimal.Decimal
	TaxableGross   decimal.Decimal
	PerDiemTotal   decimal.Decimal
	OvertimePay    decimal.Decimal
	OvertimeHours  decimal.Decimal
	SiteBonusTotal decimal.Decimal
	RegularRate    decimal.Decimal // zero when no overtime
}

// WeeklyPay computes one week's pay.
func WeeklyPay(hours decimal.Decimal, perDiems []PerDiem, bonusDays int, baseWeekly, bonusPerDay decimal.Decimal) WeeklyPayResult {
	res := WeeklyPayResult{
		Hours:          hours,
		SiteBonusTotal: bonusPerDay.Mul(decimal.NewFromInt(int64(bonusDays))),
		OvertimePay:    decimal.Zero,
		OvertimeHours:  decimal.Zero,
		RegularRate:    decimal.Zero,
		PerDiemTotal:   PerDiemTotal(perDiems),
	}

	if hours.GreaterThan(WeeklyOvertimeThreshold) {
		res.RegularRate = baseWeekly.Add(res.SiteBonusTotal).Div(hours)
		res.OvertimeHours = hours.Sub(WeeklyOvertimeThreshold)
		res.OvertimePay = res.OvertimeHours.Mul(overtimePremium).Mul(res.RegularRate)
	}

	res.TaxableGross = baseWeekly.Add(res.SiteBonusTotal).Add(res.OvertimePay)
	return res
}

// WeeklyPayFor runs WeeklyPay over an aggregated week.
func WeeklyPayFor(in WeekInput, params Params) WeeklyPayResult {
	return WeeklyPay(in.Hours, in.PerDiems, in.BonusDays, params.WeeklyBase, params.BonusPerDay)
}

// PerDiemTotal sums stipends. Unknown tiers contribute nothing.
func PerDiemTotal(choices []PerDiem) decimal.Decimal {
	total := decimal.Zero
	for _, c := range choices {
		total = total.Add(c.Rate())
	}
	return total
}

// =============================================================================
// PERIOD PAY
// =============================================================================

// PeriodPayResult is the biweekly total.
type PeriodPayResult struct {
	Week1        WeeklyPayResult
	Week2        WeeklyPayResult
	TaxableGross decimal.Decimal
	PerDiemTotal decimal.Decimal
	Tax          decimal.Decimal
	AfterTax     decimal.Decimal
}

// PeriodPay sums two independently computed weeks and applies tax to the
// taxable portion only.
func PeriodPay(week1, week2 WeekInput, params Params) PeriodPayResult {
	w1 := WeeklyPayFor(week1, params)
	w2 := WeeklyPayFor(week2, params)

	gross := w1.TaxableGross.Add(w2.TaxableGross)
	perDiem := w1.PerDiemTotal.Add(w2.PerDiemTotal)
	rate := params.TaxRate()

	return PeriodPayResult{
		Week1:        w1,
		Week2:        w2,
		TaxableGross: gross,
		PerDiemTotal: perDiem,
		Tax:          gross.Mul(rate),
		AfterTax:     gross.Mul(decimal.NewFromInt(1).Sub(rate)).Add(perDiem),
	}
}

// =============================================================================
// PERIOD REPORT
// =============================================================================

// PeriodReport is the pay for one pay period with its shifts.
type PeriodReport struct {
	Period PayPeriod
	Week1  WeekInput
	Week2  WeekInput
	Pay    PeriodPayResult
	Shifts []Shift
}

// TotalHours returns the hours across both weeks.
func (r PeriodReport) TotalHours() decimal.Decimal {
	return r.Week1.Hours.Add(r.Week2.Hours)
}

// ReportFor computes the pay for one period from any set of shifts.
func ReportFor(period PayPeriod, shifts []Shift, params Params) PeriodReport {
	in := ShiftsIn(shifts, period)
	w1, w2 := SplitIntoWeeks(in, period)
	week1, week2 := SummarizeWeek(w1), SummarizeWeek(w2)
	return PeriodReport{
		Period: period,
		Week1:  week1,
		Week2:  week2,
		Pay:    PeriodPay(week1, week2, params),
		Shifts: in,
	}
}

// AnalyzeByPeriods groups shifts by pay period and reports every period that
// has at least one shift, newest first. Shifts outside the predefined table
// are packed into consecutive synthesized 14-day windows, each anchored at
// the earliest shift it covers, so no shift is counted twice.
func AnalyzeByPeriods(shifts []Shift, params Params) []PeriodReport {
	var periods []PayPeriod
	seen := make(map[time.Time]bool)
	var outside []time.Time
	var outsideShifts []Shift

	for _, s := range shifts {
		p := ResolvePeriod(s.Date)
		if p.Synthesized {
			outside = append(outside, DateOf(s.Date))
			outsideShifts = append(outsideShifts, s)
			continue
		}
		if !seen[p.Start] {
			seen[p.Start] = true
			periods = append(periods, p)
		}
	}

	sort.Slice(outside, func(i, j int) bool { return outside[i].Before(outside[j]) })
	for _, d := range outside {
		if n := len(periods); n > 0 && periods[n-1].Synthesized && periods[n-1].Contains(d) {
			continue
		}
		periods = append(periods, ResolvePeriod(d))
	}

	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Start.After(periods[j].Start) })

	reports := make([]PeriodReport, 0, len(periods))
	for _, p := range periods {
		// A synthesized window may overlap the table; it only owns outside shifts.
		source := shifts
		if p.Synthesized {
			source = outsideShifts
		}
		reports = append(reports, ReportFor(p, source, params))
	}
	return reports
}
