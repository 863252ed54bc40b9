package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amauryrb/hwtimesheet/payroll"
	"github.com/amauryrb/hwtimesheet/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testShift(y int, m time.Month, d int) payroll.Shift {
	return payroll.Shift{
		Date:      payroll.NewDate(y, m, d),
		StartTime: "08:00",
		EndTime:   "17:00",
		PerDiem:   payroll.PerDiemBreakfastLunch,
		SiteBonus: true,
	}
}

// =============================================================================
// CRUD
// =============================================================================

func TestStore_CreateThenList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, testShift(2025, time.August, 12))
	require.NoError(t, err)
	assert.Positive(t, id)

	shifts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 1)

	got := shifts[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, payroll.NewDate(2025, time.August, 12), got.Date)
	assert.Equal(t, "08:00", got.StartTime)
	assert.Equal(t, "17:00", got.EndTime)
	assert.Equal(t, payroll.PerDiemBreakfastLunch, got.PerDiem)
	assert.True(t, got.SiteBonus)
	assert.False(t, got.CreatedAt.IsZero(), "created_at defaults to insertion time")
}

func TestStore_ListOrdering(t *testing.T) {
	// GIVEN: Two shifts on the same newest date and one older shift
	// THEN: newest date first, and within a date the latest insert first
	store := newTestStore(t)
	ctx := context.Background()

	older, err := store.Create(ctx, testShift(2025, time.August, 10))
	require.NoError(t, err)
	first, err := store.Create(ctx, testShift(2025, time.August, 12))
	require.NoError(t, err)
	second, err := store.Create(ctx, testShift(2025, time.August, 12))
	require.NoError(t, err)

	shifts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 3)
	assert.Equal(t, []int64{second, first, older}, []int64{shifts[0].ID, shifts[1].ID, shifts[2].ID})
}

func TestStore_DefaultsForOptionalColumns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, payroll.Shift{
		Date:      payroll.NewDate(2025, time.September, 1),
		StartTime: "22:00",
		EndTime:   "06:00",
	})
	require.NoError(t, err)

	shifts, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, payroll.PerDiemNone, shifts[0].PerDiem, "NULL per_diem reads back as None")
	assert.False(t, shifts[0].SiteBonus)
}

func TestStore_ListRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, d := range []int{9, 10, 23, 24} {
		_, err := store.Create(ctx, testShift(2025, time.August, d))
		require.NoError(t, err)
	}

	p := payroll.Periods()[0]
	shifts, err := store.ListRange(ctx, p.Start, p.End)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, 23, shifts[0].Date.Day())
	assert.Equal(t, 10, shifts[1].Date.Day())
}

func TestStore_Get(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, testShift(2025, time.August, 10))
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = store.Get(ctx, id+100)
	assert.ErrorIs(t, err, payroll.ErrNotFound)
}

func TestStore_DeleteMissingLeavesStoreUnchanged(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Create(ctx, testShift(2025, time.August, 10))
	require.NoError(t, err)

	removed, err := store.Delete(ctx, id+42)
	require.NoError(t, err)
	assert.False(t, removed)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err = store.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_DeleteAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "empty store removes nothing")

	for _, d := range []int{10, 11, 12} {
		_, err := store.Create(ctx, testShift(2025, time.August, d))
		require.NoError(t, err)
	}

	n, err = store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	shifts, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestStore_CreateBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.CreateBatch(ctx, []payroll.Shift{
		testShift(2025, time.August, 10),
		testShift(2025, time.August, 11),
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_ClosedStoreReturnsStorageError(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Create(context.Background(), testShift(2025, time.August, 10))
	require.Error(t, err)
	assert.ErrorIs(t, err, payroll.ErrStorage)

	var se *payroll.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "create", se.Op)
}

// =============================================================================
// SCHEMA REPAIR
// =============================================================================

// The drop-and-recreate below is intended behavior: an outdated table loses
// its rows. These tests pin that down so nobody "fixes" it by accident.

func TestNew_FreshDatabase(t *testing.T) {
	store := newTestStore(t)
	report := store.SchemaReport()
	assert.False(t, report.TableExisted)
	assert.False(t, report.Rebuilt)
}

func TestNew_DropsTableMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// GIVEN: a table from an older version without date/created_at
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE shifts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		per_diem TEXT,
		site_bonus INTEGER DEFAULT 0
	)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO shifts (start_time, end_time) VALUES ('08:00', '17:00')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	// WHEN: the store opens it
	store, err := sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	// THEN: the table is rebuilt and the old row is gone
	report := store.SchemaReport()
	assert.True(t, report.TableExisted)
	assert.True(t, report.Rebuilt)
	assert.ElementsMatch(t, []string{"date", "created_at"}, report.MissingColumns)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.Create(context.Background(), testShift(2025, time.August, 10))
	assert.NoError(t, err)
}

func TestNew_KeepsCompleteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timesheet.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), testShift(2025, time.August, 10))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	report := reopened.SchemaReport()
	assert.True(t, report.TableExisted)
	assert.False(t, report.Rebuilt)
	assert.Empty(t, report.MissingColumns)

	n, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestList_ReadsLegacyDatesAndSkipsUnreadableRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// GIVEN: a complete table written by an older version, with timestamps
	// in the date column and one row that is not a date at all
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE shifts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		per_diem TEXT,
		site_bonus INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO shifts (date, start_time, end_time) VALUES
		('2025-08-12', '08:00', '16:00'),
		('2025-08-13 00:00:00', '08:00', '16:00'),
		('last tuesday', '08:00', '16:00')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	core, logs := observer.New(zapcore.WarnLevel)
	store, err := sqlite.New(path, sqlite.WithLogger(zap.New(core)))
	require.NoError(t, err)
	defer store.Close()
	require.False(t, store.SchemaReport().Rebuilt)

	// WHEN: listing
	shifts, err := store.List(context.Background())

	// THEN: readable rows come back, the unreadable one is logged
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, payroll.NewDate(2025, time.August, 13), shifts[0].Date)
	assert.Equal(t, payroll.NewDate(2025, time.August, 12), shifts[1].Date)
	assert.Equal(t, 1, logs.FilterMessage("skipping shift with unreadable date").Len())
}
