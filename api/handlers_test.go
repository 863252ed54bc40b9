/*
handlers_test.go - HTTP tests for the timesheet API

Tests for:
- Shift entry, listing and deletion through the router
- Status code mapping (400 / 404 / 500)
- View state: status line, one-shot notices, params
- Pay endpoints
- Period rollover watcher
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/amauryrb/hwtimesheet/payroll"
	"github.com/amauryrb/hwtimesheet/store/sqlite"
	"github.com/amauryrb/hwtimesheet/timesheet"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	handler *Handler
	router  *chi.Mux
	now     time.Time
}

func setupTestServer(t *testing.T) *testServer {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return setupWithStore(t, store)
}

func setupWithStore(t *testing.T, store timesheet.ShiftStore) *testServer {
	ts := &testServer{now: time.Date(2025, time.August, 27, 12, 0, 0, 0, time.UTC)}
	logger := zaptest.NewLogger(t)
	svc := timesheet.NewService(store, logger, timesheet.WithClock(func() time.Time { return ts.now }))

	h, err := NewHandler(context.Background(), svc, payroll.DefaultParams(), logger)
	require.NoError(t, err)
	ts.handler = h
	ts.router = NewRouter(h, RouterOptions{})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (ts *testServer) addShift(t *testing.T, date, start, end string) ShiftDTO {
	rec := ts.do(t, http.MethodPost, "/api/shifts", CreateShiftRequest{
		Date: date, StartTime: start, EndTime: end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ShiftDTO](t, rec)
}

// brokenStore fails every call after construction.
type brokenStore struct{ failing bool }

var errBroken = errors.New("database is locked")

func (b *brokenStore) err(op string) error {
	return &payroll.StorageError{Op: op, Err: errBroken}
}
func (b *brokenStore) Create(context.Context, payroll.Shift) (int64, error) {
	return 0, b.err("create")
}
func (b *brokenStore) CreateBatch(context.Context, []payroll.Shift) ([]int64, error) {
	return nil, b.err("create batch")
}
func (b *brokenStore) List(context.Context) ([]payroll.Shift, error) {
	if !b.failing {
		return nil, nil
	}
	return nil, b.err("list")
}
func (b *brokenStore) Delete(context.Context, int64) (bool, error) { return false, b.err("delete") }
func (b *brokenStore) DeleteAll(context.Context) (int64, error) { return 0, b.err("delete all") }
func (b *brokenStore) Count(context.Context) (int, error) { return 0, b.err("count") }

// =============================================================================
// SHIFTS
// =============================================================================

func TestCreateShift_Success(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/shifts", CreateShiftRequest{
		Date:      "2025-08-25",
		StartTime: "22:00",
		EndTime:   "06:00",
		PerDiem:   "Dinner Only",
		SiteBonus: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	dto := decode[ShiftDTO](t, rec)
	assert.Positive(t, dto.ID)
	assert.Equal(t, "Monday", dto.Weekday)
	assert.Equal(t, 8.0, dto.Hours)
	assert.Equal(t, "Dinner Only", dto.PerDiem)

	snap := ts.handler.State.Snapshot()
	assert.Equal(t, "✅ Shift saved for 2025-08-25", snap.Status)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, NoticeSuccess, snap.Notice.Level)
	assert.Len(t, snap.Shifts, 1)
}

func TestCreateShift_ValidationError(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/shifts", CreateShiftRequest{
		Date: "not-a-date", StartTime: "08:00", EndTime: "17:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "date", resp.Field)
	assert.Contains(t, resp.Error, "❌")

	snap := ts.handler.State.Snapshot()
	require.NotNil(t, snap.Notice)
	assert.Equal(t, NoticeError, snap.Notice.Level)
}

func TestCreateShift_MalformedBody(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/shifts", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListShifts_NewestFirst(t *testing.T) {
	ts := setupTestServer(t)
	ts.addShift(t, "2025-08-11", "08:00", "17:00")
	ts.addShift(t, "2025-08-25", "08:00", "17:00")

	rec := ts.do(t, http.MethodGet, "/api/shifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	shifts := decode[[]ShiftDTO](t, rec)
	require.Len(t, shifts, 2)
	assert.Equal(t, "2025-08-25", shifts[0].Date)
}

func TestBulkCreate(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/shifts/bulk", BulkShiftRequest{
		StartDate:    "2025-08-24",
		EndDate:      "2025-08-30",
		StartTime:    "08:00",
		EndTime:      "16:00",
		WeekdaysOnly: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, decode[[]ShiftDTO](t, rec), 5)
	assert.Equal(t, "✅ 5 shifts saved", ts.handler.State.Snapshot().Status)

	rec = ts.do(t, http.MethodPost, "/api/shifts/bulk", BulkShiftRequest{
		StartDate: "2025-08-30", EndDate: "2025-08-24", StartTime: "08:00", EndTime: "16:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteShift(t *testing.T) {
	ts := setupTestServer(t)
	shift := ts.addShift(t, "2025-08-25", "08:00", "17:00")

	t.Run("non-numeric", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/api/shifts/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/api/shifts/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "❌ Shift not found", ts.handler.State.Snapshot().Status)
		assert.Len(t, ts.handler.State.Snapshot().Shifts, 1)
	})

	t.Run("existing", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/api/shifts/"+strconv.FormatInt(shift.ID, 10), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, ts.handler.State.Snapshot().Shifts)
	})
}

func TestDeleteAllShifts(t *testing.T) {
	ts := setupTestServer(t)
	ts.addShift(t, "2025-08-25", "08:00", "17:00")
	ts.addShift(t, "2025-08-26", "08:00", "17:00")

	rec := ts.do(t, http.MethodDelete, "/api/shifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msg := decode[MessageDTO](t, rec)
	assert.EqualValues(t, 2, msg.Count)

	rec = ts.do(t, http.MethodDelete, "/api/shifts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[MessageDTO](t, rec).Count)
}

func TestStorageFailureIs500(t *testing.T) {
	store := &brokenStore{}
	ts := setupWithStore(t, store)
	store.failing = true

	rec := ts.do(t, http.MethodPost, "/api/shifts", CreateShiftRequest{
		Date: "2025-08-25", StartTime: "08:00", EndTime: "17:00",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "❌ Failed to save shift to database", resp.Error)
	assert.Empty(t, resp.Details, "internal errors are not echoed")

	rec = ts.do(t, http.MethodGet, "/api/pay/analysis", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// =============================================================================
// PERIODS & PAY
// =============================================================================

func TestPeriods(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/periods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	periods := decode[[]PeriodDTO](t, rec)
	require.Len(t, periods, 10)
	assert.Equal(t, "Aug 10 - Aug 23, 2025", periods[0].Label)

	rec = ts.do(t, http.MethodGet, "/api/periods/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cur := decode[CurrentPeriodsDTO](t, rec)
	assert.Equal(t, "2025-08-27", cur.Today)
	assert.Equal(t, "2025-08-24", cur.Current.Start)
	assert.Equal(t, "2025-08-10", cur.Previous.Start)
}

func TestPeriodPay(t *testing.T) {
	ts := setupTestServer(t)
	// 45 hours in week 1 with one bonus day
	for _, d := range []string{"2025-08-10", "2025-08-11", "2025-08-12", "2025-08-13"} {
		ts.addShift(t, d, "08:00", "17:00")
	}
	rec := ts.do(t, http.MethodPost, "/api/shifts", CreateShiftRequest{
		Date: "2025-08-14", StartTime: "08:00", EndTime: "17:00", SiteBonus: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/pay/period?date=2025-08-20", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[PeriodReportDTO](t, rec)
	assert.Equal(t, "Aug 10 - Aug 23, 2025", report.Period.Label)
	assert.Equal(t, 45.0, report.Week1.Hours)
	assert.Equal(t, 41.39, report.Week1.OvertimePay)
	assert.Equal(t, 786.39, report.Week1.TaxableGross)
	assert.Equal(t, 1486.39, report.TaxableGross)
	assert.Len(t, report.Shifts, 5)

	rec = ts.do(t, http.MethodGet, "/api/pay/period?date=someday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentPayAndProjection(t *testing.T) {
	ts := setupTestServer(t)
	ts.addShift(t, "2025-08-25", "08:00", "18:00")

	rec := ts.do(t, http.MethodGet, "/api/pay/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pay := decode[CurrentPayDTO](t, rec)
	assert.Equal(t, 10.0, pay.Current.TotalHours)
	assert.Zero(t, pay.Previous.TotalHours)

	rec = ts.do(t, http.MethodGet, "/api/pay/projection", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	proj := decode[ProjectionDTO](t, rec)
	assert.Equal(t, 1, proj.SampleDays)
	require.Len(t, proj.Scenarios, 3)
	assert.Equal(t, "Light month (5 days)", proj.Scenarios[0].Label)
	assert.Equal(t, 50.0, proj.Scenarios[0].Hours)
}

func TestAnalysis(t *testing.T) {
	ts := setupTestServer(t)
	ts.addShift(t, "2025-08-11", "08:00", "17:00")
	ts.addShift(t, "2026-03-02", "08:00", "17:00") // outside the period table

	rec := ts.do(t, http.MethodGet, "/api/pay/analysis", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	reports := decode[[]PeriodReportDTO](t, rec)
	require.Len(t, reports, 2)
	assert.Equal(t, payroll.CustomPeriodLabel, reports[0].Period.Label)
	assert.True(t, reports[0].Period.Synthesized)
}

// =============================================================================
// STATE & PARAMS
// =============================================================================

func TestGetState_NoticeShownOnce(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[StateDTO](t, rec)
	assert.Equal(t, "Ready - 0 existing shifts loaded", state.Status)
	assert.Nil(t, state.Notice)
	assert.Len(t, state.PerDiems, len(payroll.PerDiemOptions))

	ts.addShift(t, "2025-08-25", "08:00", "17:00")

	state = decode[StateDTO](t, ts.do(t, http.MethodGet, "/api/state", nil))
	require.NotNil(t, state.Notice)
	assert.Equal(t, "✅ Shift saved for 2025-08-25", state.Notice.Message)
	assert.Equal(t, 1, state.ShiftCount)

	state = decode[StateDTO](t, ts.do(t, http.MethodGet, "/api/state", nil))
	assert.Nil(t, state.Notice, "notice is cleared after it was read")
	assert.Equal(t, "✅ Shift saved for 2025-08-25", state.Status, "status line stays")
}

func TestUpdateParams(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/params", ParamsDTO{WeeklyBase: 800, BonusPerDay: 50, TaxRatePercent: 20})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20", ts.handler.State.Snapshot().Params.TaxRatePercent.String())

	rec = ts.do(t, http.MethodPut, "/api/params", ParamsDTO{WeeklyBase: 800, BonusPerDay: 50, TaxRatePercent: 30})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "20", ts.handler.State.Snapshot().Params.TaxRatePercent.String(), "rejected params are not applied")

	// New params flow into pay
	ts.addShift(t, "2025-08-25", "08:00", "16:00")
	report := decode[PeriodReportDTO](t, ts.do(t, http.MethodGet, "/api/pay/period?date=2025-08-25", nil))
	assert.Equal(t, 1600.0, report.TaxableGross)
	assert.Equal(t, 1280.0, report.AfterTax)
}

func TestUpdateParams_PartialBodyKeepsOtherFields(t *testing.T) {
	ts := setupTestServer(t)

	// WHEN: only the tax rate is sent
	rec := ts.do(t, http.MethodPut, "/api/params", map[string]float64{"tax_rate_percent": 20})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: weekly base and bonus keep their defaults
	got := decode[ParamsDTO](t, rec)
	assert.Equal(t, ParamsDTO{WeeklyBase: 700, BonusPerDay: 45, TaxRatePercent: 20}, got)

	params := ts.handler.State.Snapshot().Params
	assert.Equal(t, "700", params.WeeklyBase.String())
	assert.Equal(t, "45", params.BonusPerDay.String())
}

// =============================================================================
// DEMOS
// =============================================================================

func TestDemos(t *testing.T) {
	ts := setupTestServer(t)
	ts.addShift(t, "2025-08-25", "08:00", "17:00")

	rec := ts.do(t, http.MethodGet, "/api/demos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]timesheet.Demo](t, rec), 3)

	rec = ts.do(t, http.MethodPost, "/api/demos/load", LoadDemoRequest{DemoID: "regular-weeks"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ts.handler.State.Snapshot().Shifts, 20)

	rec = ts.do(t, http.MethodPost, "/api/demos/load", LoadDemoRequest{DemoID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// STATE CONTAINER
// =============================================================================

func TestState_UpdateIsCopyOnWrite(t *testing.T) {
	s := NewState(ViewState{Status: "start"})
	before := s.Snapshot()

	after := s.Update(func(v ViewState) ViewState {
		return v.WithShifts([]payroll.Shift{{ID: 1}}).WithStatus(NoticeInfo, "changed")
	})

	assert.Equal(t, "start", before.Status)
	assert.Empty(t, before.Shifts)
	assert.Equal(t, "changed", after.Status)
	assert.Equal(t, before.Version+1, after.Version)
}

// =============================================================================
// PERIOD WATCHER
// =============================================================================

func TestPeriodWatcher_AnnouncesRollover(t *testing.T) {
	ts := setupTestServer(t)
	ts.addShift(t, "2025-09-01", "08:00", "16:00")
	watcher := NewPeriodWatcher(ts.handler)
	ctx := context.Background()

	// First check only records the current period
	assert.False(t, watcher.Check(ctx))
	ts.now = ts.now.AddDate(0, 0, 1)
	assert.False(t, watcher.Check(ctx), "same period")

	// WHEN: the clock crosses into Sep 7 - Sep 20
	ts.now = time.Date(2025, time.September, 8, 9, 0, 0, 0, time.UTC)
	require.True(t, watcher.Check(ctx))

	// THEN: a notice names the new period and the closed period's take-home
	snap := ts.handler.State.Snapshot()
	require.NotNil(t, snap.Notice)
	assert.Equal(t, "📅 New pay period: Sep 7 - Sep 20, 2025 (last period take-home $1190.00)", snap.Notice.Message)
}

func TestPeriodWatcher_PastTheTableKeepsBiweeklyCadence(t *testing.T) {
	ts := setupTestServer(t)
	watcher := NewPeriodWatcher(ts.handler)
	ctx := context.Background()

	// GIVEN: the last predefined period, Dec 14 - Dec 27, 2025
	ts.addShift(t, "2026-01-05", "08:00", "16:00")
	ts.now = time.Date(2025, time.December, 20, 9, 0, 0, 0, time.UTC)
	assert.False(t, watcher.Check(ctx))

	// WHEN: the clock leaves the table
	ts.now = time.Date(2025, time.December, 28, 9, 0, 0, 0, time.UTC)
	require.True(t, watcher.Check(ctx))
	snap := ts.handler.State.Snapshot()
	require.NotNil(t, snap.Notice)
	assert.Equal(t, "📅 New pay period: Custom Period (Dec 28, 2025 - Jan 10, 2026) (last period take-home $1190.00)", snap.Notice.Message)
	ts.handler.State.TakeNotice()

	// THEN: the following days stay in the same window
	for day := 29; day <= 31; day++ {
		ts.now = time.Date(2025, time.December, day, 9, 0, 0, 0, time.UTC)
		assert.False(t, watcher.Check(ctx), "Dec %d", day)
	}
	for day := 1; day <= 10; day++ {
		ts.now = time.Date(2026, time.January, day, 9, 0, 0, 0, time.UTC)
		assert.False(t, watcher.Check(ctx), "Jan %d", day)
	}
	assert.Nil(t, ts.handler.State.Snapshot().Notice)

	// AND: the next window opens 14 days later, totalling the one that closed
	ts.now = time.Date(2026, time.January, 11, 9, 0, 0, 0, time.UTC)
	require.True(t, watcher.Check(ctx))
	assert.Equal(t, "📅 New pay period: Custom Period (Jan 11 - Jan 24, 2026) (last period take-home $1190.00)",
		ts.handler.State.Snapshot().Notice.Message)
}

func TestPeriodWatcher_StopReleasesGoroutine(t *testing.T) {
	ts := setupTestServer(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	watcher := NewPeriodWatcher(ts.handler)
	watcher.CheckInterval = 10 * time.Millisecond
	watcher.Start()
	watcher.Start() // second start is a no-op
	time.Sleep(30 * time.Millisecond)
	watcher.Stop()
	watcher.Stop()
}

func TestPeriodWatcher_Disabled(t *testing.T) {
	ts := setupTestServer(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	watcher := NewPeriodWatcher(ts.handler)
	watcher.Enabled = false
	watcher.Start()
	watcher.Stop()
}
