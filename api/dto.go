/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the payroll
  types from the wire format.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts are computed with decimals and rendered as numbers rounded to
  cents. Hours are rounded to two places as well.

SEE ALSO:
  - handlers.go: Uses these types
  - timesheet/input.go: ShiftInput and BulkShiftInput double as request bodies
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amauryrb/hwtimesheet/payroll"
	"github.com/amauryrb/hwtimesheet/timesheet"
)

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftDTO represents a stored shift.
type ShiftDTO struct {
	ID        int64   `json:"id"`
	Date      string  `json:"date"`
	Weekday   string  `json:"weekday"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Hours     float64 `json:"hours"`
	PerDiem   string  `json:"per_diem"`
	SiteBonus bool    `json:"site_bonus"`
	CreatedAt string  `json:"created_at,omitempty"`
}

func toShiftDTO(s payroll.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:        s.ID,
		Date:      s.Date.Format(payroll.DateLayout),
		Weekday:   s.Date.Weekday().String(),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Hours:     money(s.Hours()),
		PerDiem:   string(s.PerDiem),
		SiteBonus: s.SiteBonus,
	}
	if !s.CreatedAt.IsZero() {
		dto.CreatedAt = s.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toShiftDTOs(shifts []payroll.Shift) []ShiftDTO {
	dtos := make([]ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, toShiftDTO(s))
	}
	return dtos
}

// CreateShiftRequest is the body of POST /api/shifts.
type CreateShiftRequest = timesheet.ShiftInput

// BulkShiftRequest is the body of POST /api/shifts/bulk.
type BulkShiftRequest = timesheet.BulkShiftInput

// =============================================================================
// PERIODS
// =============================================================================

// PeriodDTO represents a pay period.
type PeriodDTO struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Label       string `json:"label"`
	Synthesized bool   `json:"synthesized,omitempty"`
}

func toPeriodDTO(p payroll.PayPeriod) PeriodDTO {
	return PeriodDTO{
		Start:       p.Start.Format(payroll.DateLayout),
		End:         p.End.Format(payroll.DateLayout),
		Label:       p.Label,
		Synthesized: p.Synthesized,
	}
}

// CurrentPeriodsDTO is the response of GET /api/periods/current.
type CurrentPeriodsDTO struct {
	Today    string    `json:"today"`
	Current  PeriodDTO `json:"current"`
	Previous PeriodDTO `json:"previous"`
}

// =============================================================================
// PAY
// =============================================================================

// WeekDTO is one week of a pay period.
type WeekDTO struct {
	Hours          float64 `json:"hours"`
	Days           int     `json:"days"`
	BonusDays      int     `json:"bonus_days"`
	TaxableGross   float64 `json:"taxable_gross"`
	SiteBonusTotal float64 `json:"site_bonus_total"`
	OvertimeHours  float64 `json:"overtime_hours"`
	OvertimePay    float64 `json:"overtime_pay"`
	RegularRate    float64 `json:"regular_rate"`
	PerDiemTotal   float64 `json:"per_diem_total"`
}

// PeriodReportDTO is the pay for one period.
type PeriodReportDTO struct {
	Period       PeriodDTO  `json:"period"`
	Week1        WeekDTO    `json:"week1"`
	Week2        WeekDTO    `json:"week2"`
	TotalHours   float64    `json:"total_hours"`
	TaxableGross float64    `json:"taxable_gross"`
	PerDiemTotal float64    `json:"per_diem_total"`
	Tax          float64    `json:"tax"`
	AfterTax     float64    `json:"after_tax"`
	Shifts       []ShiftDTO `json:"shifts"`
}

func toWeekDTO(in payroll.WeekInput, pay payroll.WeeklyPayResult) WeekDTO {
	return WeekDTO{
		Hours:          money(in.Hours),
		Days:           in.Days,
		BonusDays:      in.BonusDays,
		TaxableGross:   money(pay.TaxableGross),
		SiteBonusTotal: money(pay.SiteBonusTotal),
		OvertimeHours:  money(pay.OvertimeHours),
		OvertimePay:    money(pay.OvertimePay),
		RegularRate:    money(pay.RegularRate),
		PerDiemTotal:   money(pay.PerDiemTotal),
	}
}

func toPeriodReportDTO(r payroll.PeriodReport) PeriodReportDTO {
	return PeriodReportDTO{
		Period:       toPeriodDTO(r.Period),
		Week1:        toWeekDTO(r.Week1, r.Pay.Week1),
		Week2:        toWeekDTO(r.Week2, r.Pay.Week2),
		TotalHours:   money(r.TotalHours()),
		TaxableGross: money(r.Pay.TaxableGross),
		PerDiemTotal: money(r.Pay.PerDiemTotal),
		Tax:          money(r.Pay.Tax),
		AfterTax:     money(r.Pay.AfterTax),
		Shifts:       toShiftDTOs(r.Shifts),
	}
}

// CurrentPayDTO is the response of GET /api/pay/current.
type CurrentPayDTO struct {
	Current  PeriodReportDTO `json:"current"`
	Previous PeriodReportDTO `json:"previous"`
}

// ScenarioDTO is one projected month.
type ScenarioDTO struct {
	Label        string  `json:"label"`
	Days         int     `json:"days"`
	Hours        float64 `json:"hours"`
	BonusDays    float64 `json:"bonus_days"`
	TaxableGross float64 `json:"taxable_gross"`
	OvertimePay  float64 `json:"overtime_pay"`
	PerDiemTotal float64 `json:"per_diem_total"`
	TakeHome     float64 `json:"take_home"`
}

// ProjectionDTO is the response of GET /api/pay/projection.
type ProjectionDTO struct {
	SampleHours   float64       `json:"sample_hours"`
	SampleDays    int           `json:"sample_days"`
	SampleBonus   int           `json:"sample_bonus_days"`
	CommonPerDiem string        `json:"common_per_diem"`
	SampleWeek    []ShiftDTO    `json:"sample_week"`
	Scenarios     []ScenarioDTO `json:"scenarios"`
}

func toProjectionDTO(p timesheet.Projection) ProjectionDTO {
	dto := ProjectionDTO{
		SampleHours:   money(p.Sample.Hours),
		SampleDays:    p.Sample.Days,
		SampleBonus:   p.Sample.BonusDays,
		CommonPerDiem: string(p.Sample.CommonPerDiem),
		SampleWeek:    toShiftDTOs(p.SampleWeek),
	}
	for _, s := range p.Scenarios {
		dto.Scenarios = append(dto.Scenarios, ScenarioDTO{
			Label:        s.Label,
			Days:         s.Days,
			Hours:        money(s.Hours),
			BonusDays:    money(s.BonusDays),
			TaxableGross: money(s.TaxableGross),
			OvertimePay:  money(s.OvertimePay),
			PerDiemTotal: money(s.PerDiemTotal),
			TakeHome:     money(s.TakeHome),
		})
	}
	return dto
}

// =============================================================================
// PARAMS & STATE
// =============================================================================

// ParamsDTO carries the calculator parameters.
type ParamsDTO struct {
	WeeklyBase     float64 `json:"weekly_base"`
	BonusPerDay    float64 `json:"bonus_per_day"`
	TaxRatePercent float64 `json:"tax_rate_percent"`
}

func toParamsDTO(p payroll.Params) ParamsDTO {
	return ParamsDTO{
		WeeklyBase:     money(p.WeeklyBase),
		BonusPerDay:    money(p.BonusPerDay),
		TaxRatePercent: money(p.TaxRatePercent),
	}
}

// UpdateParamsRequest is the body of PUT /api/params. Omitted fields keep
// their current value.
type UpdateParamsRequest struct {
	WeeklyBase     *float64 `json:"weekly_base,omitempty"`
	BonusPerDay    *float64 `json:"bonus_per_day,omitempty"`
	TaxRatePercent *float64 `json:"tax_rate_percent,omitempty"`
}

func (req UpdateParamsRequest) apply(p payroll.Params) payroll.Params {
	if req.WeeklyBase != nil {
		p.WeeklyBase = decimal.NewFromFloat(*req.WeeklyBase)
	}
	if req.BonusPerDay != nil {
		p.BonusPerDay = decimal.NewFromFloat(*req.BonusPerDay)
	}
	if req.TaxRatePercent != nil {
		p.TaxRatePercent = decimal.NewFromFloat(*req.TaxRatePercent)
	}
	return p
}

// StateDTO is the response of GET /api/state.
type StateDTO struct {
	Status     string       `json:"status"`
	Notice     *Notice      `json:"notice,omitempty"`
	ShiftCount int          `json:"shift_count"`
	Params     ParamsDTO    `json:"params"`
	Version    uint64       `json:"version"`
	PerDiems   []PerDiemDTO `json:"per_diem_options"`
}

// PerDiemDTO is one selectable per-diem tier.
type PerDiemDTO struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

func perDiemOptions() []PerDiemDTO {
	out := make([]PerDiemDTO, 0, len(payroll.PerDiemOptions))
	for _, p := range payroll.PerDiemOptions {
		out = append(out, PerDiemDTO{Name: string(p), Rate: money(p.Rate())})
	}
	return out
}

// MessageDTO is returned by mutating endpoints.
type MessageDTO struct {
	Message string `json:"message"`
	Count   int64  `json:"count,omitempty"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// LoadDemoRequest is the body of POST /api/demos/load.
type LoadDemoRequest struct {
	DemoID string `json:"demo_id"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
