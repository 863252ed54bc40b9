package timesheet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amauryrb/hwtimesheet/payroll"
)

// ShiftInput is a shift as typed by the user.
type ShiftInput struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	PerDiem   string `json:"per_diem" validate:"omitempty,perdiem"`
	SiteBonus bool   `json:"site_bonus"`
}

// BulkShiftInput creates one identical shift per day in [StartDate, EndDate].
type BulkShiftInput struct {
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"required,datetime=2006-01-02"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	PerDiem      string `json:"per_diem" validate:"omitempty,perdiem"`
	SiteBonus    bool   `json:"site_bonus"`
	WeekdaysOnly bool   `json:"weekdays_only"`
}

// MaxBulkDays caps a bulk entry range.
const MaxBulkDays = 62

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("perdiem", func(fl validator.FieldLevel) bool {
		return payroll.PerDiem(fl.Field().String()).Valid()
	})
}

// Shift validates the input and converts it to a payroll.Shift.
func (in ShiftInput) Shift() (payroll.Shift, error) {
	in = in.trimmed()
	if err := validateStruct(in); err != nil {
		return payroll.Shift{}, err
	}
	d, err := payroll.ParseDate(in.Date)
	if err != nil {
		return payroll.Shift{}, err
	}
	return payroll.Shift{
		Date:      d,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		PerDiem:   payroll.ParsePerDiem(in.PerDiem),
		SiteBonus: in.SiteBonus,
	}, nil
}

func (in ShiftInput) trimmed() ShiftInput {
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.PerDiem = strings.TrimSpace(in.PerDiem)
	return in
}

func (in BulkShiftInput) trimmed() BulkShiftInput {
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.PerDiem = strings.TrimSpace(in.PerDiem)
	return in
}

// Shifts validates the range and expands it into one shift per day.
func (in BulkShiftInput) Shifts() ([]payroll.Shift, error) {
	in = in.trimmed()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	start, err := payroll.ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := payroll.ParseDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, &payroll.ValidationError{Field: "end_date", Message: "end date is before start date"}
	}
	if payroll.DaysBetween(start, end) >= MaxBulkDays {
		return nil, &payroll.ValidationError{Field: "end_date", Message: fmt.Sprintf("range exceeds %d days", MaxBulkDays)}
	}

	var shifts []payroll.Shift
	for d := start; !d.After(end); d = payroll.AddDays(d, 1) {
		if in.WeekdaysOnly && (d.Weekday() == time.Saturday || d.Weekday() == time.Sunday) {
			continue
		}
		shift, err := ShiftInput{
			Date:      d.Format(payroll.DateLayout),
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			PerDiem:   in.PerDiem,
			SiteBonus: in.SiteBonus,
		}.Shift()
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	if len(shifts) == 0 {
		return nil, &payroll.ValidationError{Field: "start_date", Message: "range contains no weekdays"}
	}
	return shifts, nil
}

// validateStruct runs struct tags and reports the first failing field as a
// *payroll.ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &payroll.ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return &payroll.ValidationError{Field: field, Message: "is required"}
	case "datetime":
		return &payroll.ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", fe.Value())}
	case "perdiem":
		return &payroll.ValidationError{Field: field, Message: fmt.Sprintf("unknown per diem %q", fe.Value())}
	default:
		return &payroll.ValidationError{Field: field, Message: fe.Error()}
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
