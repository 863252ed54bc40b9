/*
projection.go - Monthly take-home extrapolation

PURPOSE:
  Answers "what would a month look like if I kept working like this week?"
  for three canned workloads.

MODEL:
  Given a sample week (hours per day, share of days with a site bonus, most
  frequent per-diem tier), each scenario scales to N working days:

    hours      = avg_hours_per_day * N
    bonus_days = bonus_rate * N
    base       = weekly_base * 4
    overtime   = (hours - 160) * 0.5 * (base + bonus) / hours   when hours > 160
    take_home  = (base + bonus + overtime) * (1 - tax) + per_diem_rate * N

  A month is exactly 4 weeks here (base x4, threshold 40x4), not 4.33.

SCENARIOS:
  Light month    5 days
  Average month  20 days
  Heavy month    28 days
*/
package payroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Monthly projection constants.
var (
	WeeksPerMonth            = decimal.NewFromInt(4)
	MonthlyOvertimeThreshold = decimal.NewFromInt(160)
)

// NoDataLabel labels the placeholder scenario returned for an empty sample.
const NoDataLabel = "No data"

// ScenarioSpec is a canned workload.
type ScenarioSpec struct {
	Name string
	Days int
}

// Scenarios are the light, average, and heavy workloads.
var Scenarios = []ScenarioSpec{
	{Name: "Light month", Days: 5},
	{Name: "Average month", Days: 20},
	{Name: "Heavy month", Days: 28},
}

// Sample describes one representative week.
type Sample struct {
	Hours         decimal.Decimal
	Days          int
	BonusDays     int
	CommonPerDiem PerDiem
}

// AvgHoursPerDay returns Hours / Days, or zero with no days.
func (s Sample) AvgHoursPerDay() decimal.Decimal {
	if s.Days == 0 {
		return decimal.Zero
	}
	return s.Hours.Div(decimal.NewFromInt(int64(s.Days)))
}

// BonusRate returns the share of worked days that earned a site bonus.
func (s Sample) BonusRate() decimal.Decimal {
	if s.Days == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.BonusDays)).Div(decimal.NewFromInt(int64(s.Days)))
}

// SampleFromShifts aggregates shifts into a projection sample. The most
// frequent per-diem tier wins; ties go to the tier listed first in
// PerDiemOptions.
func SampleFromShifts(shifts []Shift) Sample {
	week := SummarizeWeek(shifts)
	return Sample{
		Hours:         week.Hours,
		Days:          week.Days,
		BonusDays:     week.BonusDays,
		CommonPerDiem: mostFrequent(week.PerDiems),
	}
}

func mostFrequent(choices []PerDiem) PerDiem {
	if len(choices) == 0 {
		return PerDiemNone
	}
	counts := make(map[PerDiem]int)
	for _, c := range choices {
		counts[c]++
	}

	rank := make(map[PerDiem]int, len(PerDiemOptions))
	for i, o := range PerDiemOptions {
		rank[o] = i
	}
	keys := make([]PerDiem, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		if iok != jok {
			return iok
		}
		if iok {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys[0]
}

// Scenario is one projected month.
type Scenario struct {
	Label        string
	Days         int
	Hours        decimal.Decimal
	BonusDays    decimal.Decimal
	TaxableGross decimal.Decimal
	OvertimePay  decimal.Decimal
	PerDiemTotal decimal.Decimal
	TakeHome     decimal.Decimal
}

// MonthlyProjection extrapolates the sample to each canned scenario. A sample
// with zero hours or zero days yields a single "No data" placeholder.
func MonthlyProjection(sample Sample, params Params) []Scenario {
	if sample.Days == 0 || !sample.Hours.IsPositive() {
		return []Scenario{{
			Label:        NoDataLabel,
			Hours:        decimal.Zero,
			BonusDays:    decimal.Zero,
			TaxableGross: decimal.Zero,
			OvertimePay:  decimal.Zero,
			PerDiemTotal: decimal.Zero,
			TakeHome:     decimal.Zero,
		}}
	}

	avg := sample.AvgHoursPerDay()
	bonusRate := sample.BonusRate()
	base := params.WeeklyBase.Mul(WeeksPerMonth)
	keep := decimal.NewFromInt(1).Sub(params.TaxRate())

	out := make([]Scenario, 0, len(Scenarios))
	for _, spec := range Scenarios {
		days := decimal.NewFromInt(int64(spec.Days))
		hours := avg.Mul(days)
		bonusDays := bonusRate.Mul(days)
		bonus := params.BonusPerDay.Mul(bonusDays)

		overtime := decimal.Zero
		if hours.GreaterThan(MonthlyOvertimeThreshold) {
			rate := base.Add(bonus).Div(hours)
			overtime = hours.Sub(MonthlyOvertimeThreshold).Mul(overtimePremium).Mul(rate)
		}

		gross := base.Add(bonus).Add(overtime)
		perDiem := sample.CommonPerDiem.Rate().Mul(days)

		out = append(out, Scenario{
			Label:        fmt.Sprintf("%s (%d days)", spec.Name, spec.Days),
			Days:         spec.Days,
			Hours:        hours,
			BonusDays:    bonusDays,
			TaxableGross: gross,
			OvertimePay:  overtime,
			PerDiemTotal: perDiem,
			TakeHome:     gross.Mul(keep).Add(perDiem),
		})
	}
	return out
}

// RepresentativeWeek picks the sample week for a projection: the most recent
// week of the current period, then of the previous one, that has shifts.
// Failing both, it takes the 7 days ending at the newest shift.
func RepresentativeWeek(shifts []Shift, today time.Time) []Shift {
	if len(shifts) == 0 {
		return nil
	}
	current, previous := CurrentAndPrevious(today)
	for _, p := range []PayPeriod{current, previous} {
		w1, w2 := SplitIntoWeeks(shifts, p)
		if len(w2) > 0 {
			return w2
		}
		if len(w1) > 0 {
			return w1
		}
	}

	latest := DateOf(shifts[0].Date)
	for _, s := range shifts[1:] {
		if d := DateOf(s.Date); d.After(latest) {
			latest = d
		}
	}
	window := PayPeriod{Start: AddDays(latest, -6), End: latest}
	return ShiftsIn(shifts, window)
}
