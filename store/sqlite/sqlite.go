/*
Package sqlite provides the SQLite-backed shift store.

PURPOSE:
  Persists shifts in a single table and nothing else. Pay figures are never
  stored; they are recomputed from shifts on every request.

KEY TABLES:
  shifts: One row per recorded shift

SCHEMA REPAIR:
  On New() the store checks the shifts table against the expected columns.
  If the table exists but any column is missing, it is DROPPED and
  recreated. All existing shifts are lost. This is the only migration path:
  a personal single-user timesheet evolves its schema destructively.
  SchemaReport() tells the caller whether this happened.

CONCURRENCY:
  Single user, single writer. The pool is capped at one connection, which
  also keeps ":memory:" databases alive for the lifetime of the Store.

ERRORS:
  Every failure is returned as *payroll.StorageError. A row whose date
  cannot be read in any known layout is skipped and logged, so one bad row
  never hides the rest of the timesheet.

USAGE:
  store, err := sqlite.New("./timesheet.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - payroll/types.go: Shift type
  - timesheet/service.go: Validation before Create
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/amauryrb/hwtimesheet/payroll"
)

// Store implements the shift store using SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	report SchemaReport
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for skipped rows.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.Named("sqlite")
		}
	}
}

// SchemaReport describes what New() found and did to the shifts table.
type SchemaReport struct {
	TableExisted   bool
	MissingColumns []string
	Rebuilt        bool // table was dropped and recreated
}

// requiredColumns is the expected shape of the shifts table.
var requiredColumns = []string{"id", "date", "start_time", "end_time", "per_diem", "site_bonus", "created_at"}

const createShiftsTable = `
CREATE TABLE IF NOT EXISTS shifts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	per_diem TEXT,
	site_bonus INTEGER DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_shifts_date_created
	ON shifts(date DESC, created_at DESC);
`

// New opens the database at dbPath and verifies/repairs the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, &payroll.StorageError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, &payroll.StorageError{Op: "migrate", Err: err}
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaReport returns the result of the startup schema check.
func (s *Store) SchemaReport() SchemaReport {
	return s.report
}

// migrate creates the table, dropping an existing one that lacks columns.
func (s *Store) migrate(ctx context.Context) error {
	cols, err := s.columns(ctx)
	if err != nil {
		return err
	}

	report := SchemaReport{TableExisted: len(cols) > 0}
	if report.TableExisted {
		for _, c := range requiredColumns {
			if !cols[c] {
				report.MissingColumns = append(report.MissingColumns, c)
			}
		}
		if len(report.MissingColumns) > 0 {
			if _, err := s.db.ExecContext(ctx, "DROP TABLE shifts"); err != nil {
				return fmt.Errorf("drop outdated shifts table: %w", err)
			}
			report.Rebuilt = true
		}
	}

	if _, err := s.db.ExecContext(ctx, createShiftsTable); err != nil {
		return fmt.Errorf("create shifts table: %w", err)
	}

	s.report = report
	return nil
}

// columns returns the column names of the shifts table, empty if absent.
func (s *Store) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM pragma_table_info('shifts')")
	if err != nil {
		return nil, fmt.Errorf("inspect shifts table: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// =============================================================================
// SHIFTS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertShift = `
	INSERT INTO shifts (date, start_time, end_time, per_diem, site_bonus)
	VALUES (?, ?, ?, ?, ?)
`

// Create inserts a shift and returns its ID. ID and CreatedAt on the input
// are ignored.
func (s *Store) Create(ctx context.Context, shift payroll.Shift) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.insert(ctx, s.db, shift)
	if err != nil {
		return 0, &payroll.StorageError{Op: "create", Err: err}
	}
	return id, nil
}

// CreateBatch inserts shifts atomically: either all are stored or none.
func (s *Store) CreateBatch(ctx context.Context, shifts []payroll.Shift) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &payroll.StorageError{Op: "create batch", Err: err}
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(shifts))
	for _, shift := range shifts {
		id, err := s.insert(ctx, tx, shift)
		if err != nil {
			return nil, &payroll.StorageError{Op: "create batch", Err: err}
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, &payroll.StorageError{Op: "create batch", Err: err}
	}
	return ids, nil
}

func (s *Store) insert(ctx context.Context, db execer, shift payroll.Shift) (int64, error) {
	res, err := db.ExecContext(ctx, insertShift,
		shift.Date.Format(payroll.DateLayout),
		shift.StartTime,
		shift.EndTime,
		nullString(string(shift.PerDiem)),
		boolToInt(shift.SiteBonus),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const selectShifts = `
	SELECT id, date, start_time, end_time, per_diem, site_bonus,
	       COALESCE(strftime('%Y-%m-%dT%H:%M:%SZ', created_at), '')
	FROM shifts
`

// List returns every shift, newest date first, then newest insertion first.
func (s *Store) List(ctx context.Context) ([]payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts, err := s.queryShifts(ctx, selectShifts+" ORDER BY date DESC, created_at DESC, id DESC")
	if err != nil {
		return nil, &payroll.StorageError{Op: "list", Err: err}
	}
	return shifts, nil
}

// ListRange returns shifts dated within [from, to], in List order.
func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectShifts + `
		WHERE date >= ? AND date <= ?
		ORDER BY date DESC, created_at DESC, id DESC
	`
	shifts, err := s.queryShifts(ctx, query, from.Format(payroll.DateLayout), to.Format(payroll.DateLayout))
	if err != nil {
		return nil, &payroll.StorageError{Op: "list range", Err: err}
	}
	return shifts, nil
}

// Get returns one shift, or payroll.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (payroll.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts, err := s.queryShifts(ctx, selectShifts+" WHERE id = ?", id)
	if err != nil {
		return payroll.Shift{}, &payroll.StorageError{Op: "get", Err: err}
	}
	if len(shifts) == 0 {
		return payroll.Shift{}, payroll.ErrNotFound
	}
	return shifts[0], nil
}

// Delete removes one shift and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", id)
	if err != nil {
		return false, &payroll.StorageError{Op: "delete", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &payroll.StorageError{Op: "delete", Err: err}
	}
	return n > 0, nil
}

// DeleteAll removes every shift and returns how many were removed.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts")
	if err != nil {
		return 0, &payroll.StorageError{Op: "delete all", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &payroll.StorageError{Op: "delete all", Err: err}
	}
	return n, nil
}

// Count returns the number of stored shifts.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM shifts").Scan(&n); err != nil {
		return 0, &payroll.StorageError{Op: "count", Err: err}
	}
	return n, nil
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]payroll.Shift, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []payroll.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if errors.Is(err, errUnreadableDate) {
			s.logger.Warn("skipping shift with unreadable date", zap.Int64("id", shift.ID), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

var errUnreadableDate = errors.New("unreadable date")

// storedDateLayouts are the date formats found in shifts tables, newest first.
// Older databases hold full timestamps.
var storedDateLayouts = []string{
	payroll.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC3339Nano,
}

func parseStoredDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range storedDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return payroll.DateOf(t), nil
		}
	}
	return time.Time{}, errUnreadableDate
}

func scanShift(rows *sql.Rows) (payroll.Shift, error) {
	var (
		shift     payroll.Shift
		dateText  string
		perDiem   sql.NullString
		siteBonus sql.NullInt64
		createdAt string
	)

	err := rows.Scan(&shift.ID, &dateText, &shift.StartTime, &shift.EndTime, &perDiem, &siteBonus, &createdAt)
	if err != nil {
		return shift, fmt.Errorf("failed to scan shift: %w", err)
	}

	shift.Date, err = parseStoredDate(dateText)
	if err != nil {
		return shift, fmt.Errorf("shift %d has date %q: %w", shift.ID, dateText, err)
	}
	shift.PerDiem = payroll.ParsePerDiem(perDiem.String)
	shift.SiteBonus = siteBonus.Valid && siteBonus.Int64 != 0
	if createdAt != "" {
		shift.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	}
	return shift, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
