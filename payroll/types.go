/*
Package payroll turns recorded shifts into pay figures.

PURPOSE:
  Pure, stateless functions: pay-period lookup, hours worked, weekly
  overtime, biweekly after-tax totals, and monthly extrapolation. Nothing
  here touches the database or holds state between calls.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: One recorded work shift
  - PerDiem: Meal stipend tier attached to a shift
  - Params: Salary inputs for a calculation (weekly base, bonus, tax)

DESIGN PRINCIPLES:
  1. Precision: Money uses decimal.Decimal, never float64
  2. Overtime is computed per calendar week, never across a pay period
  3. Per-diem is non-taxable and added after tax

SEE ALSO:
  - period.go: Pay period table and lookup
  - calculator.go: Weekly and period pay
  - projection.go: Monthly extrapolation
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHIFT
// =============================================================================

// Shift is one recorded work shift. Shifts are never updated, only deleted.
type Shift struct {
	ID        int64
	Date      time.Time // Calendar day, UTC midnight
	StartTime string    // "HH:MM"
	EndTime   string    // "HH:MM", may be earlier than StartTime (overnight)
	PerDiem   PerDiem
	SiteBonus bool
	CreatedAt time.Time
}

// Hours returns the shift duration. Malformed times count as zero.
func (s Shift) Hours() decimal.Decimal {
	return HoursWorked(s.StartTime, s.EndTime)
}

// =============================================================================
// PER DIEM
// =============================================================================

// PerDiem is a meal stipend tier.
type PerDiem string

const (
	PerDiemNone                 PerDiem = "None"
	PerDiemBreakfast            PerDiem = "Breakfast Only"
	PerDiemBreakfastLunch       PerDiem = "Breakfast + Lunch"
	PerDiemBreakfastLunchDinner PerDiem = "Breakfast + Lunch + Dinner"
	PerDiemLunchDinner          PerDiem = "Lunch + Dinner"
	PerDiemDinner               PerDiem = "Dinner Only"
)

// PerDiemOptions lists the tiers in display order.
var PerDiemOptions = []PerDiem{
	PerDiemNone,
	PerDiemBreakfast,
	PerDiemBreakfastLunch,
	PerDiemBreakfastLunchDinner,
	PerDiemLunchDinner,
	PerDiemDinner,
}

var perDiemRates = map[PerDiem]decimal.Decimal{
	PerDiemNone:                 decimal.Zero,
	PerDiemBreakfast:            decimal.NewFromInt(15),
	PerDiemBreakfastLunch:       decimal.NewFromInt(20),
	PerDiemBreakfastLunchDinner: decimal.NewFromInt(54),
	PerDiemLunchDinner:          decimal.NewFromInt(39),
	PerDiemDinner:               decimal.NewFromInt(23),
}

// Rate returns the stipend for the tier. Unknown tiers pay nothing.
func (p PerDiem) Rate() decimal.Decimal {
	if r, ok := perDiemRates[p]; ok {
		return r
	}
	return decimal.Zero
}

// Valid reports whether p is one of the known tiers.
func (p PerDiem) Valid() bool {
	_, ok := perDiemRates[p]
	return ok
}

// ParsePerDiem maps stored text to a tier. Empty text (NULL column) is None.
func ParsePerDiem(s string) PerDiem {
	if s == "" {
		return PerDiemNone
	}
	return PerDiem(s)
}

// =============================================================================
// PARAMS
// =============================================================================

// Params are the salary inputs for a calculation. They are not persisted.
type Params struct {
	WeeklyBase     decimal.Decimal
	BonusPerDay    decimal.Decimal
	TaxRatePercent decimal.Decimal // 15 means 15%
}

// Default salary inputs.
var (
	DefaultWeeklyBase     = decimal.NewFromInt(700)
	DefaultBonusPerDay    = decimal.NewFromInt(45)
	DefaultTaxRatePercent = decimal.NewFromInt(15)
)

// Tax rate bounds accepted from user input, in percent.
var (
	MinTaxRatePercent = decimal.NewFromInt(10)
	MaxTaxRatePercent = decimal.NewFromInt(25)
)

// DefaultParams returns the stock salary inputs.
func DefaultParams() Params {
	return Params{
		WeeklyBase:     DefaultWeeklyBase,
		BonusPerDay:    DefaultBonusPerDay,
		TaxRatePercent: DefaultTaxRatePercent,
	}
}

// TaxRate returns the rate as a fraction (0.15 for 15%).
func (p Params) TaxRate() decimal.Decimal {
	return p.TaxRatePercent.Div(hundred)
}

// Validate rejects negative amounts and tax rates outside 10-25%.
func (p Params) Validate() error {
	if p.WeeklyBase.IsNegative() {
		return &ValidationError{Field: "weekly_base", Message: "must not be negative"}
	}
	if p.BonusPerDay.IsNegative() {
		return &ValidationError{Field: "bonus_per_day", Message: "must not be negative"}
	}
	if p.TaxRatePercent.LessThan(MinTaxRatePercent) || p.TaxRatePercent.GreaterThan(MaxTaxRatePercent) {
		return &ValidationError{Field: "tax_rate_percent", Message: "must be between 10 and 25"}
	}
	return nil
}

var hundred = decimal.NewFromInt(100)
