/*
handlers.go - HTTP API handlers for the timesheet

PURPOSE:
  Exposes the timesheet service via REST API. Handles HTTP request/response
  and JSON serialization, and records every outcome in the view state.

ENDPOINTS:
  Shifts:
    GET    /api/shifts              List all shifts, newest first
    POST   /api/shifts              Record one shift
    POST   /api/shifts/bulk         Record one shift per day of a range
    DELETE /api/shifts              Delete every shift
    DELETE /api/shifts/{id}         Delete one shift

  Periods:
    GET    /api/periods             The predefined pay period table
    GET    /api/periods/current     Current and previous period

  Pay:
    GET    /api/pay/period?date=    Pay for the period containing date
    GET    /api/pay/current         Pay for the current and previous period
    GET    /api/pay/analysis        Pay for every period with shifts
    GET    /api/pay/projection      Monthly scenarios

  State:
    GET    /api/state               Status line, one-shot notice, params
    PUT    /api/params              Update calculator parameters

  Demos:
    GET    /api/demos               List demo timesheets
    POST   /api/demos/load          Replace all shifts with a demo

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Shift not found
  - 500: Storage errors
  Every error also sets the status line and an error notice.

SEE ALSO:
  - dto.go: Request/response data structures
  - state.go: View state container
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/amauryrb/hwtimesheet/payroll"
	"github.com/amauryrb/hwtimesheet/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Service *timesheet.Service
	State   *State
	Logger  *zap.Logger
}

// NewHandler creates a handler. The initial status reports how many shifts
// are already stored.
func NewHandler(ctx context.Context, svc *timesheet.Service, params payroll.Params, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	shifts, err := svc.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	initial := ViewState{
		Shifts: shifts,
		Status: timesheet.ReadyMessage(len(shifts)),
		Params: params,
	}
	return &Handler{
		Service: svc,
		State:   NewState(initial),
		Logger:  logger.Named("api"),
	}, nil
}

// =============================================================================
// SHIFT ENDPOINTS
// =============================================================================

// ListShifts returns every shift.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Service.ListShifts(r.Context())
	if err != nil {
		h.fail(w, "load shifts", err)
		return
	}
	h.State.Update(func(v ViewState) ViewState { return v.WithShifts(shifts) })
	writeJSON(w, http.StatusOK, toShiftDTOs(shifts))
}

// CreateShift records one shift.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "save shift to database", &payroll.ValidationError{Message: "invalid request body"})
		return
	}

	shift, err := h.Service.AddShift(r.Context(), req)
	if err != nil {
		h.fail(w, "save shift to database", err)
		return
	}

	h.changed(r.Context(), NoticeSuccess, timesheet.SavedMessage(shift.Date))
	writeJSON(w, http.StatusCreated, toShiftDTO(shift))
}

// CreateShiftsBulk records one shift per day of a date range.
func (h *Handler) CreateShiftsBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "save shifts to database", &payroll.ValidationError{Message: "invalid request body"})
		return
	}

	shifts, err := h.Service.AddShifts(r.Context(), req)
	if err != nil {
		h.fail(w, "save shifts to database", err)
		return
	}

	h.changed(r.Context(), NoticeSuccess, timesheet.BulkSavedMessage(len(shifts)))
	writeJSON(w, http.StatusCreated, toShiftDTOs(shifts))
}

// DeleteShift removes one shift.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, err := h.Service.DeleteShift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "delete shift", err)
		return
	}

	msg := timesheet.DeletedMessage(id)
	h.changed(r.Context(), NoticeInfo, msg)
	writeJSON(w, http.StatusOK, MessageDTO{Message: msg, Count: 1})
}

// DeleteAllShifts removes every shift.
func (h *Handler) DeleteAllShifts(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.DeleteAllShifts(r.Context())
	if err != nil {
		h.fail(w, "delete shifts", err)
		return
	}

	msg := timesheet.ClearedMessage(n)
	h.changed(r.Context(), NoticeInfo, msg)
	writeJSON(w, http.StatusOK, MessageDTO{Message: msg, Count: n})
}

// =============================================================================
// PERIOD ENDPOINTS
// =============================================================================

// ListPeriods returns the predefined pay period table.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods := payroll.Periods()
	dtos := make([]PeriodDTO, 0, len(periods))
	for _, p := range periods {
		dtos = append(dtos, toPeriodDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CurrentPeriods returns the current and previous pay period.
func (h *Handler) CurrentPeriods(w http.ResponseWriter, r *http.Request) {
	today := h.Service.Today()
	current, previous := payroll.CurrentAndPrevious(today)
	writeJSON(w, http.StatusOK, CurrentPeriodsDTO{
		Today:    today.Format(payroll.DateLayout),
		Current:  toPeriodDTO(current),
		Previous: toPeriodDTO(previous),
	})
}

// =============================================================================
// PAY ENDPOINTS
// =============================================================================

// PeriodPay returns pay for the period containing ?date= (default today).
func (h *Handler) PeriodPay(w http.ResponseWriter, r *http.Request) {
	date := h.Service.Today()
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := payroll.ParseDate(q)
		if err != nil {
			h.fail(w, "calculate pay", err)
			return
		}
		date = d
	}

	report, err := h.Service.PeriodReport(r.Context(), date, h.State.Snapshot().Params)
	if err != nil {
		h.fail(w, "calculate pay", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodReportDTO(report))
}

// CurrentPay returns pay for the current and previous period.
func (h *Handler) CurrentPay(w http.ResponseWriter, r *http.Request) {
	current, previous, err := h.Service.CurrentReports(r.Context(), h.State.Snapshot().Params)
	if err != nil {
		h.fail(w, "calculate pay", err)
		return
	}
	writeJSON(w, http.StatusOK, CurrentPayDTO{
		Current:  toPeriodReportDTO(current),
		Previous: toPeriodReportDTO(previous),
	})
}

// Analysis returns pay for every period that has shifts.
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Service.Analyze(r.Context(), h.State.Snapshot().Params)
	if err != nil {
		h.fail(w, "analyze timesheet", err)
		return
	}
	dtos := make([]PeriodReportDTO, 0, len(reports))
	for _, rep := range reports {
		dtos = append(dtos, toPeriodReportDTO(rep))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Projection returns monthly scenarios from the representative week.
func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	proj, err := h.Service.Project(r.Context(), h.State.Snapshot().Params)
	if err != nil {
		h.fail(w, "project pay", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectionDTO(proj))
}

// =============================================================================
// STATE ENDPOINTS
// =============================================================================

// GetState returns the view state and clears its notice.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	snap := h.State.TakeNotice()
	writeJSON(w, http.StatusOK, StateDTO{
		Status:     snap.Status,
		Notice:     snap.Notice,
		ShiftCount: len(snap.Shifts),
		Params:     toParamsDTO(snap.Params),
		Version:    snap.Version,
		PerDiems:   perDiemOptions(),
	})
}

// UpdateParams replaces the calculator parameters.
func (h *Handler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	var req UpdateParamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "update parameters", &payroll.ValidationError{Message: "invalid request body"})
		return
	}

	params := req.apply(h.State.Snapshot().Params)
	if err := params.Validate(); err != nil {
		h.fail(w, "update parameters", err)
		return
	}

	h.State.Update(func(v ViewState) ViewState {
		v.Params = params
		return v
	})
	h.Logger.Info("parameters updated",
		zap.String("weekly_base", params.WeeklyBase.String()),
		zap.String("bonus_per_day", params.BonusPerDay.String()),
		zap.String("tax_rate_percent", params.TaxRatePercent.String()))
	writeJSON(w, http.StatusOK, toParamsDTO(params))
}

// =============================================================================
// DEMO ENDPOINTS
// =============================================================================

// ListDemos returns the available demo timesheets.
func (h *Handler) ListDemos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, timesheet.Demos())
}

// LoadDemo replaces every shift with a demo timesheet.
func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	var req LoadDemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, "load demo", &payroll.ValidationError{Message: "invalid request body"})
		return
	}

	shifts, err := h.Service.LoadDemo(r.Context(), req.DemoID)
	if err != nil {
		h.fail(w, "load demo", err)
		return
	}

	msg := timesheet.BulkSavedMessage(len(shifts))
	h.changed(r.Context(), NoticeSuccess, msg)
	writeJSON(w, http.StatusOK, MessageDTO{Message: msg, Count: int64(len(shifts))})
}

// =============================================================================
// HELPERS
// =============================================================================

// changed reloads shifts into the view state and sets the status line.
func (h *Handler) changed(ctx context.Context, level NoticeLevel, message string) {
	shifts, err := h.Service.ListShifts(ctx)
	h.State.Update(func(v ViewState) ViewState {
		if err == nil {
			v = v.WithShifts(shifts)
		}
		return v.WithStatus(level, message)
	})
	if err != nil {
		h.Logger.Warn("failed to reload shifts", zap.Error(err))
	}
}

// fail maps err to a status code, records it in the view state and writes
// the error response.
func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	status := statusFor(err)
	msg := timesheet.FailureMessage(action, err)
	h.State.Update(func(v ViewState) ViewState { return v.WithStatus(NoticeError, msg) })

	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", zap.String("action", action), zap.Error(err))
	}

	resp := ErrorResponse{Error: msg}
	var ve *payroll.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	if status != http.StatusInternalServerError {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch {
	case payroll.IsClientError(err):
		return http.StatusBadRequest
	case payroll.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
