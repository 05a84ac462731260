/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements generic.PlanStore and generic.HolidayStore using SQLite so
  that saved plans and company holidays survive restarts.

INTERFACES IMPLEMENTED:
  generic.PlanStore:    Saved optimization runs
  generic.HolidayStore: Custom holidays layered over national calendars

IMMUTABLE PLANS:
  The plans table is insert-only:
  - No UPDATE statements on plans
  - A changed request is a new plan with a new ID
  - DELETE is allowed so users can discard plans

KEY TABLES:
  plans:           One row per optimization run (request + result JSON)
  custom_holidays: Company days off per country / subdivision

INDEXES:
  - idx_plans_created:          Listing newest first
  - idx_plans_year_country:     Filtered listing
  - idx_custom_holidays_region: Holiday resolution (hot path)
  - idx_custom_holidays_unique: One name per region and date

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/planner.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/rest-planner/generic"
)

const (
	dateLayout      = "2006-01-02"
	// Fixed width so that text ordering matches time ordering.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ generic.PlanStore    = (*Store)(nil)
	_ generic.HolidayStore = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Plans (insert-only)
	CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL,
		country_code TEXT NOT NULL,
		subdivision TEXT NOT NULL DEFAULT '',
		leave_budget TEXT NOT NULL,
		min_rest INTEGER NOT NULL,
		total_rest_days INTEGER NOT NULL,
		used_leave TEXT NOT NULL,
		score REAL NOT NULL,
		request_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plans_created
		ON plans(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_plans_year_country
		ON plans(year, country_code);

	-- Custom holidays (company-specific)
	CREATE TABLE IF NOT EXISTS custom_holidays (
		id TEXT PRIMARY KEY,
		country_code TEXT NOT NULL,
		subdivision TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_custom_holidays_region
		ON custom_holidays(country_code, subdivision, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_custom_holidays_unique
		ON custom_holidays(country_code, subdivision, date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PLAN STORE (generic.PlanStore interface)
// =============================================================================

// SavePlan inserts a plan. An empty ID gets a fresh UUID; a zero CreatedAt
// gets the current time.
func (s *Store) SavePlan(ctx context.Context, plan generic.PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if plan.ID == "" {
		plan.ID = generic.PlanID(uuid.NewString())
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO plans
		(id, name, year, country_code, subdivision, leave_budget, min_rest,
		 total_rest_days, used_leave, score, request_json, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		plan.ID,
		plan.Name,
		plan.Year,
		plan.CountryCode,
		plan.Subdivision,
		plan.LeaveBudget.Value.String(),
		plan.MinRest,
		plan.TotalRestDays,
		plan.UsedLeave.Value.String(),
		plan.Score,
		plan.RequestJSON,
		plan.ResultJSON,
		plan.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("plan %s already exists: %w", plan.ID, err)
		}
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

const planColumns = `id, name, year, country_code, subdivision, leave_budget, min_rest,
	total_rest_days, used_leave, score, request_json, result_json, created_at`

// GetPlan retrieves a plan by ID.
func (s *Store) GetPlan(ctx context.Context, id generic.PlanID) (*generic.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+planColumns+" FROM plans WHERE id = ?", id)
	plan, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, generic.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return &plan, nil
}

// ListPlans returns plans newest first.
func (s *Store) ListPlans(ctx context.Context, filter generic.PlanFilter) ([]generic.PlanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if filter.Year != 0 {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.CountryCode != "" {
		where = append(where, "country_code = ?")
		args = append(args, filter.CountryCode)
	}

	query := "SELECT " + planColumns + " FROM plans"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []generic.PlanRecord
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to load plans: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// DeletePlan removes a plan.
func (s *Store) DeletePlan(ctx context.Context, id generic.PlanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrPlanNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (generic.PlanRecord, error) {
	var p generic.PlanRecord
	var budget, used, createdAt string
	err := row.Scan(&p.ID, &p.Name, &p.Year, &p.CountryCode, &p.Subdivision,
		&budget, &p.MinRest, &p.TotalRestDays, &used, &p.Score,
		&p.RequestJSON, &p.ResultJSON, &createdAt)
	if err != nil {
		return generic.PlanRecord{}, err
	}
	if p.LeaveBudget, err = parseAmount(budget); err != nil {
		return generic.PlanRecord{}, fmt.Errorf("plan %s: invalid leave_budget: %w", p.ID, err)
	}
	if p.UsedLeave, err = parseAmount(used); err != nil {
		return generic.PlanRecord{}, fmt.Errorf("plan %s: invalid used_leave: %w", p.ID, err)
	}
	if p.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return generic.PlanRecord{}, fmt.Errorf("plan %s: invalid created_at %q: %w", p.ID, createdAt, err)
	}
	return p, nil
}

// =============================================================================
// HOLIDAY STORE (generic.HolidayStore interface)
// =============================================================================

// SaveHoliday creates or replaces a custom holiday. An empty ID gets a
// fresh UUID.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = generic.HolidayID(uuid.NewString())
	}

	query := `
		INSERT INTO custom_holidays (id, country_code, subdivision, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			country_code = excluded.country_code,
			subdivision = excluded.subdivision,
			date = excluded.date,
			name = excluded.name,
			recurring = excluded.recurring
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.CountryCode,
		h.Subdivision,
		h.Date.Time.Format(dateLayout),
		h.Name,
		h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &generic.ConfigError{
				Field:   "date",
				Message: fmt.Sprintf("%q already exists on %s for %s", h.Name, h.Date, h.CountryCode),
			}
		}
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id generic.HolidayID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM custom_holidays WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return generic.ErrHolidayNotFound
	}
	return nil
}

// ListHolidays returns all custom holidays of a country (for admin UI).
func (s *Store) ListHolidays(ctx context.Context, countryCode string) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, country_code, subdivision, date, name, recurring
		FROM custom_holidays
		WHERE ? = '' OR country_code = ?
		ORDER BY date ASC, name ASC
	`
	return s.queryHolidays(ctx, query, countryCode, countryCode)
}

// CustomHolidays returns the holidays of a region for one year.
// Includes country-wide and subdivision-specific entries.
func (s *Store) CustomHolidays(ctx context.Context, countryCode, subdivision string, year int) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, country_code, subdivision, date, name, recurring
		FROM custom_holidays
		WHERE country_code = ?
		  AND (subdivision = '' OR subdivision = ?)
		  AND (recurring = TRUE OR strftime('%Y', date) = ?)
		ORDER BY date ASC, name ASC
	`
	all, err := s.queryHolidays(ctx, query, countryCode, subdivision, fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, err
	}
	out := generic.ResolveCustomHolidays(all, countryCode, subdivision, year)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) queryHolidays(ctx context.Context, query string, args ...any) ([]generic.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &h.CountryCode, &h.Subdivision, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		date, err := generic.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("holiday %s: %w", h.ID, err)
		}
		h.Date = date
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func parseAmount(value string) (generic.Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return generic.Amount{}, err
	}
	return generic.Amount{Value: d, Unit: generic.UnitDays}, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
