/*
Package timesheet is the boundary shared by the HTTP API and the CLI.

PURPOSE:
  Turns user input into shifts, stores them, and turns stored shifts into
  pay reports. Every operation validates first, logs what it did, and
  returns errors from the payroll taxonomy so callers can map them to
  status codes or exit codes without string matching.

OPERATIONS:
  AddShift / AddShifts    Validate and persist one shift or a date range
  ListShifts              All shifts, newest first
  DeleteShift             By ID text; non-numeric is a validation error
  DeleteAllShifts         Clears the table, returns how many were removed
  PeriodReport            Pay for the period containing a date
  CurrentReports          Pay for the current and previous period
  Analyze                 Pay for every period that has shifts
  Project                 Monthly scenarios from a representative week

STATUS MESSAGES:
  The user-facing one-liners ("✅ Shift saved for ...") live here so the
  web UI and the CLI say the same thing.

SEE ALSO:
  - payroll/calculator.go: Pay math
  - store/sqlite/sqlite.go: ShiftStore implementation
  - api/handlers.go: HTTP mapping of these operations
*/
package timesheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amauryrb/hwtimesheet/payroll"
)

// ShiftStore is the persistence the service needs.
type ShiftStore interface {
	Create(ctx context.Context, shift payroll.Shift) (int64, error)
	CreateBatch(ctx context.Context, shifts []payroll.Shift) ([]int64, error)
	List(ctx context.Context) ([]payroll.Shift, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int, error)
}

// Service implements the timesheet operations.
type Service struct {
	store  ShiftStore
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. A nil logger disables logging.
func NewService(store ShiftStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:  store,
		logger: logger.Named("timesheet"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the service clock's calendar date.
func (s *Service) Today() time.Time {
	return payroll.DateOf(s.now())
}

// =============================================================================
// SHIFTS
// =============================================================================

// AddShift validates and stores one shift, returning it with its new ID.
func (s *Service) AddShift(ctx context.Context, in ShiftInput) (payroll.Shift, error) {
	shift, err := in.Shift()
	if err != nil {
		s.logger.Debug("rejected shift", zap.Error(err))
		return payroll.Shift{}, err
	}

	id, err := s.store.Create(ctx, shift)
	if err != nil {
		s.logger.Error("failed to save shift",
			zap.String("date", shift.Date.Format(payroll.DateLayout)),
			zap.Error(err))
		return payroll.Shift{}, err
	}
	shift.ID = id
	s.warnUnreadableTimes(shift)

	s.logger.Info("shift saved",
		zap.Int64("id", id),
		zap.String("date", shift.Date.Format(payroll.DateLayout)),
		zap.String("start", shift.StartTime),
		zap.String("end", shift.EndTime),
		zap.String("per_diem", string(shift.PerDiem)),
		zap.Bool("site_bonus", shift.SiteBonus),
		zap.String("hours", shift.Hours().StringFixed(2)))
	return shift, nil
}

// AddShifts stores one shift per day of the range in a single transaction.
func (s *Service) AddShifts(ctx context.Context, in BulkShiftInput) ([]payroll.Shift, error) {
	shifts, err := in.Shifts()
	if err != nil {
		s.logger.Debug("rejected bulk entry", zap.Error(err))
		return nil, err
	}

	ids, err := s.store.CreateBatch(ctx, shifts)
	if err != nil {
		s.logger.Error("failed to save shifts", zap.Int("count", len(shifts)), zap.Error(err))
		return nil, err
	}
	for i := range shifts {
		shifts[i].ID = ids[i]
	}
	if len(shifts) > 0 {
		s.warnUnreadableTimes(shifts[0])
	}

	s.logger.Info("shifts saved",
		zap.Int("count", len(shifts)),
		zap.String("from", in.StartDate),
		zap.String("to", in.EndDate))
	return shifts, nil
}

// warnUnreadableTimes logs a shift whose clock times do not parse. Such a
// shift is kept and counts as zero hours.
func (s *Service) warnUnreadableTimes(shift payroll.Shift) {
	if _, err := payroll.HoursWorkedStrict(shift.StartTime, shift.EndTime); err != nil {
		s.logger.Warn("shift times not recognized, counting zero hours",
			zap.Int64("id", shift.ID),
			zap.String("date", shift.Date.Format(payroll.DateLayout)),
			zap.String("start", shift.StartTime),
			zap.String("end", shift.EndTime),
			zap.Error(err))
	}
}

// ListShifts returns every stored shift, newest first.
func (s *Service) ListShifts(ctx context.Context) ([]payroll.Shift, error) {
	shifts, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to load shifts", zap.Error(err))
		return nil, err
	}
	return shifts, nil
}

// CountShifts returns the number of stored shifts.
func (s *Service) CountShifts(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// DeleteShift removes the shift whose ID is idText. Returns
// payroll.ErrNotFound when no such shift exists.
func (s *Service) DeleteShift(ctx context.Context, idText string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
	if err != nil || id <= 0 {
		return 0, &payroll.ValidationError{Field: "id", Message: fmt.Sprintf("invalid shift id %q", idText)}
	}

	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete shift", zap.Int64("id", id), zap.Error(err))
		return 0, err
	}
	if !removed {
		return 0, fmt.Errorf("shift %d: %w", id, payroll.ErrNotFound)
	}

	s.logger.Info("shift deleted", zap.Int64("id", id))
	return id, nil
}

// DeleteAllShifts removes every shift and returns how many were removed.
func (s *Service) DeleteAllShifts(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		s.logger.Error("failed to clear shifts", zap.Error(err))
		return 0, err
	}
	s.logger.Info("all shifts deleted", zap.Int64("count", n))
	return n, nil
}

// =============================================================================
// PAY
// =============================================================================

// PeriodReport computes pay for the period containing date.
func (s *Service) PeriodReport(ctx context.Context, date time.Time, params payroll.Params) (payroll.PeriodReport, error) {
	if err := params.Validate(); err != nil {
		return payroll.PeriodReport{}, err
	}
	shifts, err := s.ListShifts(ctx)
	if err != nil {
		return payroll.PeriodReport{}, err
	}
	return payroll.ReportFor(payroll.ResolvePeriod(date), shifts, params), nil
}

// CurrentReports computes pay for the period containing today and the one
// before it.
func (s *Service) CurrentReports(ctx context.Context, params payroll.Params) (current, previous payroll.PeriodReport, err error) {
	if err := params.Validate(); err != nil {
		return current, previous, err
	}
	shifts, err := s.ListShifts(ctx)
	if err != nil {
		return current, previous, err
	}
	cur, prev := payroll.CurrentAndPrevious(s.Today())
	return payroll.ReportFor(cur, shifts, params), payroll.ReportFor(prev, shifts, params), nil
}

// Analyze computes pay for every period that has at least one shift.
func (s *Service) Analyze(ctx context.Context, params payroll.Params) ([]payroll.PeriodReport, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	shifts, err := s.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	return payroll.AnalyzeByPeriods(shifts, params), nil
}

// Projection is a monthly projection and the week it was sampled from.
type Projection struct {
	SampleWeek []payroll.Shift
	Sample     payroll.Sample
	Scenarios  []payroll.Scenario
}

// Project extrapolates the representative week to monthly scenarios.
func (s *Service) Project(ctx context.Context, params payroll.Params) (Projection, error) {
	if err := params.Validate(); err != nil {
		return Projection{}, err
	}
	shifts, err := s.ListShifts(ctx)
	if err != nil {
		return Projection{}, err
	}
	week := payroll.RepresentativeWeek(shifts, s.Today())
	sample := payroll.SampleFromShifts(week)
	return Projection{
		SampleWeek: week,
		Sample:     sample,
		Scenarios:  payroll.MonthlyProjection(sample, params),
	}, nil
}

// =============================================================================
// STATUS MESSAGES
// =============================================================================

// SavedMessage is shown after a shift is stored.
func SavedMessage(date time.Time) string {
	return fmt.Sprintf("✅ Shift saved for %s", date.Format(payroll.DateLayout))
}

// BulkSavedMessage is shown after a bulk entry is stored.
func BulkSavedMessage(n int) string {
	return fmt.Sprintf("✅ %d shifts saved", n)
}

// DeletedMessage is shown after a shift is removed.
func DeletedMessage(id int64) string {
	return fmt.Sprintf("🗑️ Shift %d deleted", id)
}

// ClearedMessage is shown after the table is cleared.
func ClearedMessage(n int64) string {
	return fmt.Sprintf("🗑️ Deleted %d shifts", n)
}

// ReadyMessage is the initial status line.
func ReadyMessage(n int) string {
	return fmt.Sprintf("Ready - %d existing shifts loaded", n)
}

// FailureMessage describes err for the status line. action completes
// "Failed to ..." for storage errors, e.g. "save shift to database".
func FailureMessage(action string, err error) string {
	switch {
	case payroll.IsClientError(err):
		return "❌ " + err.Error()
	case payroll.IsNotFound(err):
		return "❌ Shift not found"
	default:
		return "❌ Failed to " + action
	}
}
