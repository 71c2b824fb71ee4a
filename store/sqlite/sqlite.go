/*
Package sqlite provides the SQLite-backed implementation of vacation.Store.

PURPOSE:
  Implements the persistence interfaces (EmployeeStore, RequestStore,
  MovementStore) using SQLite. In production the same patterns apply
  to PostgreSQL with only minor SQL dialect differences.

KEY TABLES:
  employees:         Employee records with hire dates
  vacation_requests: Requests with lifecycle state
  movements:         Append-only balance audit trail

LIFECYCLE GUARD:
  Transitions use a conditional UPDATE restricted to status = 'pending'.
  When zero rows are affected the request was already decided by a
  concurrent writer and ErrAlreadyDecided is returned; the movements of
  the losing transition are never written.

APPEND-ONLY MOVEMENTS:
  No UPDATE or DELETE statements touch the movements table. Corrections
  are made by appending adjust movements.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's single-writer
  model. WAL mode keeps readers unblocked.

DATES:
  Calendar dates (hire_date, date_start, date_end, effective_at) are
  stored as ISO "2006-01-02" strings; instants as RFC3339.

USAGE:
  store, err := sqlite.New("./data/vacation.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool instead.
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

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nominahq/vacation-engine/vacation"
)

// Store implements vacation.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		role TEXT NOT NULL DEFAULT 'employee',
		manager_id TEXT,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_company
		ON employees(company_id);

	CREATE TABLE IF NOT EXISTS vacation_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		company_id TEXT NOT NULL,
		date_start TEXT NOT NULL,
		date_end TEXT NOT NULL,
		days INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		comments TEXT,
		rejection_reason TEXT,
		decided_by TEXT,
		decided_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON vacation_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_requests_company_status
		ON vacation_requests(company_id, status);

	-- Overlap checks scan an employee's held spans (hot path)
	CREATE INDEX IF NOT EXISTS idx_requests_employee_status_dates
		ON vacation_requests(employee_id, status, date_start, date_end);

	-- Movements (append-only audit trail)
	CREATE TABLE IF NOT EXISTS movements (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		request_id TEXT NOT NULL,
		movement_type TEXT NOT NULL,
		delta TEXT NOT NULL,
		effective_at TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_employee
		ON movements(employee_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_movements_request
		ON movements(request_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

func (s *Store) CreateEmployee(ctx context.Context, e *vacation.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, company_id, name, email, role, manager_id, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.CompanyID,
		e.Name,
		nullString(e.Email),
		e.Role,
		nullString(string(e.ManagerID)),
		e.HireDate.String(),
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return vacation.ErrDuplicateID
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

// isDuplicateKey reports whether err is a primary key or unique constraint
// violation.
func isDuplicateKey(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *Store) GetEmployee(ctx context.Context, id vacation.EmployeeID) (*vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, name, email, role, manager_id, hire_date, created_at
		FROM employees WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

func (s *Store) EmployeesByCompany(ctx context.Context, companyID vacation.CompanyID) ([]vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, name, email, role, manager_id, hire_date, created_at
		FROM employees WHERE company_id = ? ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var result []vacation.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// =============================================================================
// REQUEST STORE
// =============================================================================

func (s *Store) CreateRequest(ctx context.Context, r *vacation.VacationRequest, movements []vacation.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO vacation_requests
		(id, employee_id, company_id, date_start, date_end, days, status,
		 comments, rejection_reason, decided_by, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		r.ID,
		r.EmployeeID,
		r.CompanyID,
		r.Start.String(),
		r.End.String(),
		r.Days,
		r.Status,
		nullString(r.Comments),
		nullString(r.RejectionReason),
		nullString(string(r.DecidedBy)),
		nullTime(r.DecidedAt),
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return vacation.ErrDuplicateID
		}
		return fmt.Errorf("failed to create request: %w", err)
	}

	if err := appendMovements(ctx, tx, movements); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) GetRequest(ctx context.Context, id vacation.RequestID) (*vacation.VacationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectRequest+` WHERE id = ?`, id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return r, nil
}

// TransitionRequest writes the terminal state and the movements atomically.
// The UPDATE is conditional on the stored row still being pending; a
// concurrent decision leaves zero rows affected and nothing is written.
func (s *Store) TransitionRequest(ctx context.Context, r *vacation.VacationRequest, movements []vacation.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE vacation_requests
		SET status = ?, rejection_reason = ?, decided_by = ?, decided_at = ?
		WHERE id = ? AND status = 'pending'
	`
	res, err := tx.ExecContext(ctx, query,
		r.Status,
		nullString(r.RejectionReason),
		nullString(string(r.DecidedBy)),
		nullTime(r.DecidedAt),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to transition request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to transition request: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM vacation_requests WHERE id = ?`, r.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to transition request: %w", err)
		}
		if exists == 0 {
			return vacation.ErrRequestNotFound
		}
		return vacation.ErrAlreadyDecided
	}

	if err := appendMovements(ctx, tx, movements); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) RequestsByEmployee(ctx context.Context, employeeID vacation.EmployeeID) ([]vacation.VacationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		selectRequest+` WHERE employee_id = ? ORDER BY created_at ASC, id ASC`, employeeID)
}

func (s *Store) RequestsByCompany(ctx context.Context, companyID vacation.CompanyID) ([]vacation.VacationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		selectRequest+` WHERE company_id = ? ORDER BY created_at ASC, id ASC`, companyID)
}

func (s *Store) PendingRequests(ctx context.Context, companyID vacation.CompanyID) ([]vacation.VacationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRequests(ctx,
		selectRequest+` WHERE company_id = ? AND status = 'pending' ORDER BY created_at ASC, id ASC`,
		companyID)
}

const selectRequest = `
	SELECT id, employee_id, company_id, date_start, date_end, days, status,
	       comments, rejection_reason, decided_by, decided_at, created_at
	FROM vacation_requests
`

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]vacation.VacationRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var result []vacation.VacationRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}

// =============================================================================
// MOVEMENT STORE
// =============================================================================

func (s *Store) MovementsByEmployee(ctx context.Context, employeeID vacation.EmployeeID) ([]vacation.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, request_id, movement_type, delta, effective_at, reason, created_at
		FROM movements
		WHERE employee_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var result []vacation.Movement
	for rows.Next() {
		var (
			m         vacation.Movement
			delta     string
			effective string
			reason    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.RequestID, &m.Type,
			&delta, &effective, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		m.Delta, err = decimal.NewFromString(delta)
		if err != nil {
			return nil, fmt.Errorf("failed to parse movement delta: %w", err)
		}
		m.EffectiveAt, err = vacation.ParseDate(effective)
		if err != nil {
			return nil, fmt.Errorf("failed to parse movement date: %w", err)
		}
		m.Reason = reason.String
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		result = append(result, m)
	}
	return result, rows.Err()
}

func appendMovements(ctx context.Context, tx *sql.Tx, movements []vacation.Movement) error {
	query := `
		INSERT INTO movements
		(id, employee_id, request_id, movement_type, delta, effective_at, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, m := range movements {
		_, err := tx.ExecContext(ctx, query,
			m.ID,
			m.EmployeeID,
			m.RequestID,
			m.Type,
			m.Delta.String(),
			m.EffectiveAt.String(),
			nullString(m.Reason),
			m.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to append movement: %w", err)
		}
	}
	return nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*vacation.Employee, error) {
	var (
		e         vacation.Employee
		email     sql.NullString
		managerID sql.NullString
		hireDate  string
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.CompanyID, &e.Name, &email, &e.Role,
		&managerID, &hireDate, &createdAt); err != nil {
		return nil, err
	}
	e.Email = email.String
	e.ManagerID = vacation.EmployeeID(managerID.String)

	var err error
	e.HireDate, err = vacation.ParseDate(hireDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hire date: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

func scanRequest(row rowScanner) (*vacation.VacationRequest, error) {
	var (
		r         vacation.VacationRequest
		start     string
		end       string
		comments  sql.NullString
		reason    sql.NullString
		decidedBy sql.NullString
		decidedAt sql.NullString
		createdAt string
	)
	if err := row.Scan(&r.ID, &r.EmployeeID, &r.CompanyID, &start, &end,
		&r.Days, &r.Status, &comments, &reason, &decidedBy, &decidedAt, &createdAt); err != nil {
		return nil, err
	}
	r.Comments = comments.String
	r.RejectionReason = reason.String
	r.DecidedBy = vacation.EmployeeID(decidedBy.String)

	var err error
	r.Start, err = vacation.ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start date: %w", err)
	}
	r.End, err = vacation.ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end date: %w", err)
	}
	if decidedAt.Valid && strings.TrimSpace(decidedAt.String) != "" {
		t, err := time.Parse(time.RFC3339, decidedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse decided_at: %w", err)
		}
		r.DecidedAt = &t
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
