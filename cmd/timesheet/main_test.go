package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runApp(t, args...)
	return out, err
}

func runApp(t *testing.T, args ...string) (string, *App, error) {
	t.Helper()
	cmd, app := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := execute(cmd, app)
	return out.String(), app, err
}

func setupDir(t *testing.T) string {
	dir := t.TempDir()
	chdir(t, dir)
	return filepath.Join(dir, "timesheet.db")
}

func TestCLI_AddListAndPay(t *testing.T) {
	db := setupDir(t)

	out, err := run(t, "--db", db, "shift", "add", "2025-08-12", "08:00", "17:00", "--per-diem", "Breakfast + Lunch", "--bonus")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Shift saved for 2025-08-12")

	out, err = run(t, "--db", db, "shift", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ready - 1 existing shifts loaded")
	assert.Contains(t, out, "Breakfast + Lunch")

	// 700 + 45 bonus in week 1, 700 in week 2, 15% tax, $20 per diem
	out, err = run(t, "--db", db, "pay", "period", "2025-08-20")
	require.NoError(t, err)
	assert.Contains(t, out, "Pay period: Aug 10 - Aug 23, 2025")
	assert.Contains(t, out, "Taxable gross: $1445.00")
	assert.Contains(t, out, "After tax:     $1248.25")
}

func TestCLI_TaxFlag(t *testing.T) {
	db := setupDir(t)

	_, err := run(t, "--db", db, "shift", "add", "2025-08-12", "08:00", "16:00")
	require.NoError(t, err)

	out, err := run(t, "--db", db, "--tax", "20", "pay", "period", "2025-08-12")
	require.NoError(t, err)
	assert.Contains(t, out, "After tax:     $1120.00")

	_, err = run(t, "--db", db, "--tax", "40", "pay", "period", "2025-08-12")
	assert.Error(t, err)
}

func TestCLI_DeleteMissingShift(t *testing.T) {
	db := setupDir(t)

	out, err := run(t, "--db", db, "shift", "delete", "999")
	require.Error(t, err)
	assert.Contains(t, out, "❌ Shift not found")
}

func TestCLI_FailingCommandReleasesStore(t *testing.T) {
	db := setupDir(t)

	// GIVEN: a command that opens the store and then fails
	_, app, err := runApp(t, "--db", db, "shift", "delete", "999")
	require.Error(t, err)

	// THEN: the store and logger were released
	assert.Nil(t, app.store)
	assert.Nil(t, app.logger)

	// AND: the database accepts a writer right away
	raw, err := sql.Open("sqlite3", db+"?_busy_timeout=0")
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec(`INSERT INTO shifts (date, start_time, end_time) VALUES ('2025-08-12', '08:00', '16:00')`)
	assert.NoError(t, err)
}

func TestCLI_ClearNeedsConfirmation(t *testing.T) {
	db := setupDir(t)
	_, err := run(t, "--db", db, "shift", "add", "2025-08-12", "08:00", "16:00")
	require.NoError(t, err)

	_, err = run(t, "--db", db, "shift", "clear")
	assert.Error(t, err)

	out, err := run(t, "--db", db, "shift", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 shifts")
}

func TestCLI_StartupRepairsLegacySchema(t *testing.T) {
	db := setupDir(t)

	raw, err := sql.Open("sqlite3", db)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE shifts (id INTEGER PRIMARY KEY, start_time TEXT, end_time TEXT)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	out, err := run(t, "--db", db, "shift", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ready - 0 existing shifts loaded")
}

func TestCLI_StartupFailureIsAnError(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	// A directory is not a database file
	_, err := run(t, "--db", dir, "shift", "list")
	assert.Error(t, err)
}

func TestCLI_ConfigInit(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote timesheet.yaml")

	data, err := os.ReadFile(filepath.Join(dir, "timesheet.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "tax_rate_percent: 15")

	_, err = run(t, "config", "init")
	assert.Error(t, err, "existing config is not overwritten")
}

func TestCLI_Periods(t *testing.T) {
	db := setupDir(t)

	out, err := run(t, "--db", db, "periods")
	require.NoError(t, err)
	assert.Contains(t, out, "Aug 10 - Aug 23, 2025")
	assert.Contains(t, out, "Dec 14 - Dec 27, 2025")
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
