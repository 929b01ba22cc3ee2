/*
Package sqlite provides a SQLite-backed implementation of leave.TxStore.

PURPOSE:
  Persists the whole leave engine state: reference entities, leave
  requests, entitlement rows, the approval audit trail, sprints, and
  the holiday calendar. The same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

KEY TABLES:
  departments, employees, leave_types:  reference data
  leave_requests:                       the approval state machine rows
  leave_entitlements:                   per-(employee, year) balances,
                                        UNIQUE(employee_id, year)
  approval_history:                     append-only audit trail
  sprints, holidays:                    planning and calendar data

TIME ENCODING:
  All instants are stored as RFC3339 strings in UTC. Leave request
  bounds carry a granularity column so hour-level requests round-trip;
  sprint and holiday dates are day-granularity by construction.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety; WithTx holds the write lock for
  the whole closure, so a check-then-insert inside one transaction
  cannot interleave with another writer. Unique-key violations map to
  leave.ErrConflict.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: interface definitions
  - leave/store/memory.go: in-memory implementation for tests
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

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/furkangemici/leave-management-system-sub000/leave"
)

// Store implements leave.TxStore using SQLite.
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

	// Writers are serialized by s.mu anyway, and a single connection
	// keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

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
	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		hire_date TEXT NOT NULL,
		daily_work_hours TEXT NOT NULL,
		department_id TEXT NOT NULL REFERENCES departments(id),
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_employees_department
		ON employees(department_id);

	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_paid INTEGER NOT NULL DEFAULT 1,
		deducts_from_annual INTEGER NOT NULL DEFAULT 0,
		document_required INTEGER NOT NULL DEFAULT 0,
		request_unit TEXT NOT NULL,
		workflow TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		leave_type_id TEXT NOT NULL REFERENCES leave_types(id),
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		granularity INTEGER NOT NULL DEFAULT 0,
		duration_hours TEXT NOT NULL,
		status TEXT NOT NULL,
		next_approver_role TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Overlap checks and the sprint report scan by employee and range
	CREATE INDEX IF NOT EXISTS idx_requests_employee_range
		ON leave_requests(employee_id, start_at, end_at);

	-- Approver inbox scans by pending role
	CREATE INDEX IF NOT EXISTS idx_requests_pending_role
		ON leave_requests(next_approver_role)
		WHERE next_approver_role != '';

	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS leave_entitlements (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		year INTEGER NOT NULL,
		total_hours TEXT NOT NULL,
		used_hours TEXT NOT NULL,
		carried_hours TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, year)
	);

	CREATE TABLE IF NOT EXISTS approval_history (
		id TEXT PRIMARY KEY,
		leave_request_id TEXT NOT NULL REFERENCES leave_requests(id),
		approver_id TEXT NOT NULL,
		action TEXT NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_request
		ON approval_history(leave_request_id);

	CREATE TABLE IF NOT EXISTS sprints (
		id TEXT PRIMARY KEY,
		department_id TEXT NOT NULL REFERENCES departments(id),
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		duration_weeks INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sprints_department_end
		ON sprints(department_id, end_date DESC);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		is_half_day INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx so the row-level
// helpers serve the plain store and the transactional view alike.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mapErr converts SQLite constraint violations into the domain's
// conflict error so racing writers can retry.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", leave.ErrConflict, err)
	}
	return err
}

// =============================================================================
// TIME ENCODING
// =============================================================================

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func encodePoint(tp leave.TimePoint) string { return encodeTime(tp.Time) }

func decodePoint(s string, granularity int) leave.TimePoint {
	return leave.TimePoint{Time: decodeTime(s), Granularity: leave.Granularity(granularity)}
}

func encodeDate(tp leave.TimePoint) string { return tp.Date().Time.Format("2006-01-02") }

func decodeDate(s string) leave.TimePoint {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return leave.TimePoint{}
	}
	return leave.DateOf(t)
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

func (s *Store) GetDepartment(ctx context.Context, id string) (*leave.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getDepartment(ctx, s.db, id)
}

func getDepartment(ctx context.Context, q querier, id string) (*leave.Department, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, name, is_active FROM departments WHERE id = ?`, id)
	var d leave.Department
	if err := row.Scan(&d.ID, &d.Name, &d.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (s *Store) ListDepartments(ctx context.Context, activeOnly bool) ([]leave.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listDepartments(ctx, s.db, activeOnly)
}

func listDepartments(ctx context.Context, q querier, activeOnly bool) ([]leave.Department, error) {
	query := `SELECT id, name, is_active FROM departments`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Department
	for rows.Next() {
		var d leave.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.IsActive); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) SaveDepartment(ctx context.Context, d leave.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveDepartment(ctx, s.db, d)
}

func saveDepartment(ctx context.Context, q querier, d leave.Department) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO departments (id, name, is_active)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_active = excluded.is_active
	`, d.ID, d.Name, d.IsActive)
	return mapErr(err)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, first_name, last_name, email, hire_date, daily_work_hours, department_id, is_active`

func scanEmployee(scan func(...any) error) (*leave.Employee, error) {
	var e leave.Employee
	var hireDate, dailyHours string
	if err := scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &hireDate, &dailyHours, &e.DepartmentID, &e.IsActive); err != nil {
		return nil, err
	}
	e.HireDate = decodeTime(hireDate)
	e.DailyWorkHours = leave.MustParseHours(dailyHours)
	return &e, nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, id)
}

func getEmployee(ctx context.Context, q querier, id string) (*leave.Employee, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (s *Store) ListEmployees(ctx context.Context, activeOnly bool) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEmployees(ctx, s.db, activeOnly)
}

func listEmployees(ctx context.Context, q querier, activeOnly bool) ([]leave.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id`
	return queryEmployees(ctx, q, query)
}

func (s *Store) ListEmployeesByDepartment(ctx context.Context, departmentID string) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEmployeesByDepartment(ctx, s.db, departmentID)
}

func listEmployeesByDepartment(ctx context.Context, q querier, departmentID string) ([]leave.Employee, error) {
	return queryEmployees(ctx, q,
		`SELECT `+employeeColumns+` FROM employees WHERE department_id = ? AND is_active = 1 ORDER BY id`,
		departmentID)
}

func queryEmployees(ctx context.Context, q querier, query string, args ...any) ([]leave.Employee, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Employee
	for rows.Next() {
		e, err := scanEmployee(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) SaveEmployee(ctx context.Context, e leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveEmployee(ctx, s.db, e)
}

func saveEmployee(ctx context.Context, q querier, e leave.Employee) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO employees (id, first_name, last_name, email, hire_date, daily_work_hours, department_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			hire_date = excluded.hire_date,
			daily_work_hours = excluded.daily_work_hours,
			department_id = excluded.department_id,
			is_active = excluded.is_active
	`, e.ID, e.FirstName, e.LastName, e.Email, encodeTime(e.HireDate), e.DailyWorkHours.String(), e.DepartmentID, e.IsActive)
	return mapErr(err)
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

const leaveTypeColumns = `id, name, is_paid, deducts_from_annual, document_required, request_unit, workflow, is_active`

func scanLeaveType(scan func(...any) error) (*leave.LeaveType, error) {
	var lt leave.LeaveType
	var unit, workflow string
	if err := scan(&lt.ID, &lt.Name, &lt.IsPaid, &lt.DeductsFromAnnual, &lt.DocumentRequired, &unit, &workflow, &lt.IsActive); err != nil {
		return nil, err
	}
	lt.RequestUnit = leave.RequestUnit(unit)
	// Parsed once at scan time, never per transition.
	lt.Workflow = leave.ParseWorkflow(workflow)
	return &lt, nil
}

func (s *Store) GetLeaveType(ctx context.Context, id string) (*leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLeaveType(ctx, s.db, id)
}

func getLeaveType(ctx context.Context, q querier, id string) (*leave.LeaveType, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+leaveTypeColumns+` FROM leave_types WHERE id = ?`, id)
	lt, err := scanLeaveType(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return lt, err
}

func (s *Store) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLeaveTypes(ctx, s.db, activeOnly)
}

func listLeaveTypes(ctx context.Context, q querier, activeOnly bool) ([]leave.LeaveType, error) {
	query := `SELECT ` + leaveTypeColumns + ` FROM leave_types`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *lt)
	}
	return out, rows.Err()
}

func (s *Store) SaveLeaveType(ctx context.Context, lt leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLeaveType(ctx, s.db, lt)
}

func saveLeaveType(ctx context.Context, q querier, lt leave.LeaveType) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO leave_types (id, name, is_paid, deducts_from_annual, document_required, request_unit, workflow, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_paid = excluded.is_paid,
			deducts_from_annual = excluded.deducts_from_annual,
			document_required = excluded.document_required,
			request_unit = excluded.request_unit,
			workflow = excluded.workflow,
			is_active = excluded.is_active
	`, lt.ID, lt.Name, lt.IsPaid, lt.DeductsFromAnnual, lt.DocumentRequired,
		string(lt.RequestUnit), lt.Workflow.String(), lt.IsActive)
	return mapErr(err)
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

const requestColumns = `id, employee_id, leave_type_id, start_at, end_at, granularity, duration_hours, status, next_approver_role, reason, created_at, updated_at`

func scanRequest(scan func(...any) error) (*leave.LeaveRequest, error) {
	var r leave.LeaveRequest
	var startAt, endAt, duration, status, role, createdAt, updatedAt string
	var granularity int
	if err := scan(&r.ID, &r.EmployeeID, &r.LeaveTypeID, &startAt, &endAt, &granularity,
		&duration, &status, &role, &r.Reason, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.StartAt = decodePoint(startAt, granularity)
	r.EndAt = decodePoint(endAt, granularity)
	r.DurationHours = leave.MustParseHours(duration)
	r.Status = leave.Status(status)
	r.NextApproverRole = leave.Role(role)
	r.CreatedAt = decodeTime(createdAt)
	r.UpdatedAt = decodeTime(updatedAt)
	return &r, nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRequest(ctx, s.db, id)
}

func getRequest(ctx context.Context, q querier, id string) (*leave.LeaveRequest, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE id = ?`, id)
	r, err := scanRequest(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *Store) CreateRequest(ctx context.Context, r leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createRequest(ctx, s.db, r)
}

func createRequest(ctx context.Context, q querier, r leave.LeaveRequest) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO leave_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.EmployeeID, r.LeaveTypeID, encodePoint(r.StartAt), encodePoint(r.EndAt),
		int(r.StartAt.Granularity), r.DurationHours.String(), string(r.Status),
		string(r.NextApproverRole), r.Reason, encodeTime(r.CreatedAt), encodeTime(r.UpdatedAt))
	return mapErr(err)
}

func (s *Store) UpdateRequest(ctx context.Context, r leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateRequest(ctx, s.db, r)
}

func updateRequest(ctx context.Context, q querier, r leave.LeaveRequest) error {
	res, err := q.ExecContext(ctx, `
		UPDATE leave_requests SET
			status = ?,
			next_approver_role = ?,
			duration_hours = ?,
			updated_at = ?
		WHERE id = ?
	`, string(r.Status), string(r.NextApproverRole), r.DurationHours.String(),
		encodeTime(r.UpdatedAt), r.ID)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrRequestNotFound
	}
	return nil
}

func (s *Store) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRequestsByEmployee(ctx, s.db, employeeID)
}

func listRequestsByEmployee(ctx context.Context, q querier, employeeID string) ([]leave.LeaveRequest, error) {
	return queryRequests(ctx, q,
		`SELECT `+requestColumns+` FROM leave_requests WHERE employee_id = ? ORDER BY created_at DESC`,
		employeeID)
}

func (s *Store) HasOverlappingRequest(ctx context.Context, employeeID string, from, to leave.TimePoint, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return hasOverlappingRequest(ctx, s.db, employeeID, from, to, excludeID)
}

func hasOverlappingRequest(ctx context.Context, q querier, employeeID string, from, to leave.TimePoint, excludeID string) (bool, error) {
	row := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leave_requests
		WHERE employee_id = ?
		  AND id != ?
		  AND status NOT IN (?, ?)
		  AND date(start_at) <= ?
		  AND date(end_at) >= ?
	`, employeeID, excludeID,
		string(leave.StatusRejected), string(leave.StatusCancelled),
		encodeDate(to), encodeDate(from))
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListRequestsPendingRole(ctx context.Context, roles []leave.Role) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRequestsPendingRole(ctx, s.db, roles)
}

func listRequestsPendingRole(ctx context.Context, q querier, roles []leave.Role) ([]leave.LeaveRequest, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(roles))
	args := make([]any, 0, len(roles))
	for i, role := range roles {
		placeholders[i] = "?"
		args = append(args, string(role))
	}
	query := `SELECT ` + requestColumns + ` FROM leave_requests
		WHERE next_approver_role IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at`
	return queryRequests(ctx, q, query, args...)
}

func (s *Store) ListApprovedOverlapping(ctx context.Context, employeeIDs []string, from, to leave.TimePoint) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listApprovedOverlapping(ctx, s.db, employeeIDs, from, to)
}

func listApprovedOverlapping(ctx context.Context, q querier, employeeIDs []string, from, to leave.TimePoint) ([]leave.LeaveRequest, error) {
	args := []any{string(leave.StatusApproved), encodeDate(to), encodeDate(from)}
	query := `SELECT ` + requestColumns + ` FROM leave_requests
		WHERE status = ?
		  AND date(start_at) <= ?
		  AND date(end_at) >= ?`
	if employeeIDs != nil {
		if len(employeeIDs) == 0 {
			return nil, nil
		}
		placeholders := make([]string, len(employeeIDs))
		for i, id := range employeeIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += ` AND employee_id IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY start_at`
	return queryRequests(ctx, q, query, args...)
}

func (s *Store) ListApprovedFrom(ctx context.Context, employeeIDs []string, from leave.TimePoint) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listApprovedFrom(ctx, s.db, employeeIDs, from)
}

func listApprovedFrom(ctx context.Context, q querier, employeeIDs []string, from leave.TimePoint) ([]leave.LeaveRequest, error) {
	args := []any{string(leave.StatusApproved), encodeDate(from)}
	query := `SELECT ` + requestColumns + ` FROM leave_requests
		WHERE status = ? AND date(end_at) >= ?`
	if employeeIDs != nil {
		if len(employeeIDs) == 0 {
			return nil, nil
		}
		placeholders := make([]string, len(employeeIDs))
		for i, id := range employeeIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		query += ` AND employee_id IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY start_at`
	return queryRequests(ctx, q, query, args...)
}

func (s *Store) MonthlyHourlyUsage(ctx context.Context, employeeID, leaveTypeID string, year int, month time.Month) (int, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return monthlyHourlyUsage(ctx, s.db, employeeID, leaveTypeID, year, month)
}

func monthlyHourlyUsage(ctx context.Context, q querier, employeeID, leaveTypeID string, year int, month time.Month) (int, decimal.Decimal, error) {
	// Decimals are stored as TEXT; the sum happens in Go.
	rows, err := q.QueryContext(ctx, `
		SELECT duration_hours FROM leave_requests
		WHERE employee_id = ?
		  AND leave_type_id = ?
		  AND status NOT IN (?, ?)
		  AND strftime('%Y-%m', start_at) = ?
	`, employeeID, leaveTypeID,
		string(leave.StatusRejected), string(leave.StatusCancelled),
		fmt.Sprintf("%04d-%02d", year, int(month)))
	if err != nil {
		return 0, decimal.Zero, err
	}
	defer rows.Close()

	count := 0
	total := decimal.Zero
	for rows.Next() {
		var duration string
		if err := rows.Scan(&duration); err != nil {
			return 0, decimal.Zero, err
		}
		count++
		total = total.Add(leave.MustParseHours(duration))
	}
	return count, total, rows.Err()
}

func queryRequests(ctx context.Context, q querier, query string, args ...any) ([]leave.LeaveRequest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// =============================================================================
// ENTITLEMENTS
// =============================================================================

const entitlementColumns = `id, employee_id, year, total_hours, used_hours, carried_hours, created_at`

func scanEntitlement(scan func(...any) error) (*leave.LeaveEntitlement, error) {
	var le leave.LeaveEntitlement
	var total, used, carried, createdAt string
	if err := scan(&le.ID, &le.EmployeeID, &le.Year, &total, &used, &carried, &createdAt); err != nil {
		return nil, err
	}
	le.TotalHoursEntitled = leave.MustParseHours(total)
	le.HoursUsed = leave.MustParseHours(used)
	le.CarriedForwardHours = leave.MustParseHours(carried)
	le.CreatedAt = decodeTime(createdAt)
	return &le, nil
}

func (s *Store) GetEntitlement(ctx context.Context, employeeID string, year int) (*leave.LeaveEntitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEntitlement(ctx, s.db, employeeID, year)
}

func getEntitlement(ctx context.Context, q querier, employeeID string, year int) (*leave.LeaveEntitlement, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+entitlementColumns+` FROM leave_entitlements WHERE employee_id = ? AND year = ?`,
		employeeID, year)
	le, err := scanEntitlement(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return le, err
}

func (s *Store) CreateEntitlement(ctx context.Context, le leave.LeaveEntitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createEntitlement(ctx, s.db, le)
}

func createEntitlement(ctx context.Context, q querier, le leave.LeaveEntitlement) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO leave_entitlements (`+entitlementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, le.ID, le.EmployeeID, le.Year, le.TotalHoursEntitled.String(),
		le.HoursUsed.String(), le.CarriedForwardHours.String(), encodeTime(le.CreatedAt))
	return mapErr(err)
}

func (s *Store) UpdateEntitlement(ctx context.Context, le leave.LeaveEntitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateEntitlement(ctx, s.db, le)
}

func updateEntitlement(ctx context.Context, q querier, le leave.LeaveEntitlement) error {
	res, err := q.ExecContext(ctx, `
		UPDATE leave_entitlements SET
			total_hours = ?,
			used_hours = ?,
			carried_hours = ?
		WHERE employee_id = ? AND year = ?
	`, le.TotalHoursEntitled.String(), le.HoursUsed.String(),
		le.CarriedForwardHours.String(), le.EmployeeID, le.Year)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leave.ErrNoLeaveBalance
	}
	return nil
}

func (s *Store) ListEntitlementsByYear(ctx context.Context, year int) ([]leave.LeaveEntitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEntitlementsByYear(ctx, s.db, year)
}

func listEntitlementsByYear(ctx context.Context, q querier, year int) ([]leave.LeaveEntitlement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+entitlementColumns+` FROM leave_entitlements WHERE year = ? ORDER BY employee_id`,
		year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.LeaveEntitlement
	for rows.Next() {
		le, err := scanEntitlement(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *le)
	}
	return out, rows.Err()
}

// =============================================================================
// APPROVAL HISTORY
// =============================================================================

func (s *Store) AppendApproval(ctx context.Context, rec leave.ApprovalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendApproval(ctx, s.db, rec)
}

func appendApproval(ctx context.Context, q querier, rec leave.ApprovalRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO approval_history (id, leave_request_id, approver_id, action, comments, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.LeaveRequestID, rec.ApproverID, string(rec.Action), rec.Comments, encodeTime(rec.CreatedAt))
	return mapErr(err)
}

func (s *Store) ListApprovals(ctx context.Context, leaveRequestID string) ([]leave.ApprovalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listApprovals(ctx, s.db, leaveRequestID)
}

func listApprovals(ctx context.Context, q querier, leaveRequestID string) ([]leave.ApprovalRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, leave_request_id, approver_id, action, comments, created_at
		FROM approval_history WHERE leave_request_id = ? ORDER BY created_at
	`, leaveRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.ApprovalRecord
	for rows.Next() {
		var rec leave.ApprovalRecord
		var action, createdAt string
		if err := rows.Scan(&rec.ID, &rec.LeaveRequestID, &rec.ApproverID, &action, &rec.Comments, &createdAt); err != nil {
			return nil, err
		}
		rec.Action = leave.Status(action)
		rec.CreatedAt = decodeTime(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// SPRINTS
// =============================================================================

const sprintColumns = `id, department_id, name, start_date, end_date, duration_weeks`

func scanSprint(scan func(...any) error) (*leave.Sprint, error) {
	var sp leave.Sprint
	var start, end string
	if err := scan(&sp.ID, &sp.DepartmentID, &sp.Name, &start, &end, &sp.DurationWeeks); err != nil {
		return nil, err
	}
	sp.StartDate = decodeDate(start)
	sp.EndDate = decodeDate(end)
	return &sp, nil
}

func (s *Store) CreateSprint(ctx context.Context, sp leave.Sprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return createSprint(ctx, s.db, sp)
}

func createSprint(ctx context.Context, q querier, sp leave.Sprint) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sprints (`+sprintColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sp.ID, sp.DepartmentID, sp.Name, encodeDate(sp.StartDate), encodeDate(sp.EndDate), sp.DurationWeeks)
	return mapErr(err)
}

func (s *Store) GetSprint(ctx context.Context, id string) (*leave.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSprint(ctx, s.db, id)
}

func getSprint(ctx context.Context, q querier, id string) (*leave.Sprint, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE id = ?`, id)
	sp, err := scanSprint(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sp, err
}

func (s *Store) ListSprintsByDepartment(ctx context.Context, departmentID string) ([]leave.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSprintsByDepartment(ctx, s.db, departmentID)
}

func listSprintsByDepartment(ctx context.Context, q querier, departmentID string) ([]leave.Sprint, error) {
	return querySprints(ctx, q,
		`SELECT `+sprintColumns+` FROM sprints WHERE department_id = ? ORDER BY start_date`,
		departmentID)
}

func (s *Store) LatestSprint(ctx context.Context, departmentID string) (*leave.Sprint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return latestSprint(ctx, s.db, departmentID)
}

func latestSprint(ctx context.Context, q querier, departmentID string) (*leave.Sprint, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+sprintColumns+` FROM sprints
		WHERE department_id = ?
		ORDER BY end_date DESC LIMIT 1
	`, departmentID)
	sp, err := scanSprint(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sp, err
}

func querySprints(ctx context.Context, q querier, query string, args ...any) ([]leave.Sprint, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Sprint
	for rows.Next() {
		sp, err := scanSprint(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) HolidaysInRange(ctx context.Context, from, to leave.TimePoint) ([]leave.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return holidaysInRange(ctx, s.db, from, to)
}

func holidaysInRange(ctx context.Context, q querier, from, to leave.TimePoint) ([]leave.Holiday, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, is_half_day, is_active
		FROM holidays
		WHERE is_active = 1 AND start_date <= ? AND end_date >= ?
		ORDER BY start_date
	`, encodeDate(to), encodeDate(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []leave.Holiday
	for rows.Next() {
		var h leave.Holiday
		var start, end string
		if err := rows.Scan(&h.ID, &h.Name, &start, &end, &h.IsHalfDay, &h.IsActive); err != nil {
			return nil, err
		}
		h.StartDate = decodeDate(start)
		h.EndDate = decodeDate(end)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) SaveHoliday(ctx context.Context, h leave.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveHoliday(ctx, s.db, h)
}

func saveHoliday(ctx context.Context, q querier, h leave.Holiday) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO holidays (id, name, start_date, end_date, is_half_day, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			is_half_day = excluded.is_half_day,
			is_active = excluded.is_active
	`, h.ID, h.Name, encodeDate(h.StartDate), encodeDate(h.EndDate), h.IsHalfDay, h.IsActive)
	return mapErr(err)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes a function within a database transaction. The write
// lock is held for the whole closure so check-then-insert sequences
// cannot interleave with other writers.
func (s *Store) WithTx(ctx context.Context, fn func(store leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	txStore := &txStore{tx: sqlTx}
	if err := fn(txStore); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs every operation against the open transaction. The
// parent already holds the write lock.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetDepartment(ctx context.Context, id string) (*leave.Department, error) {
	return getDepartment(ctx, ts.tx, id)
}

func (ts *txStore) ListDepartments(ctx context.Context, activeOnly bool) ([]leave.Department, error) {
	return listDepartments(ctx, ts.tx, activeOnly)
}

func (ts *txStore) SaveDepartment(ctx context.Context, d leave.Department) error {
	return saveDepartment(ctx, ts.tx, d)
}

func (ts *txStore) GetEmployee(ctx context.Context, id string) (*leave.Employee, error) {
	return getEmployee(ctx, ts.tx, id)
}

func (ts *txStore) ListEmployees(ctx context.Context, activeOnly bool) ([]leave.Employee, error) {
	return listEmployees(ctx, ts.tx, activeOnly)
}

func (ts *txStore) ListEmployeesByDepartment(ctx context.Context, departmentID string) ([]leave.Employee, error) {
	return listEmployeesByDepartment(ctx, ts.tx, departmentID)
}

func (ts *txStore) SaveEmployee(ctx context.Context, e leave.Employee) error {
	return saveEmployee(ctx, ts.tx, e)
}

func (ts *txStore) GetLeaveType(ctx context.Context, id string) (*leave.LeaveType, error) {
	return getLeaveType(ctx, ts.tx, id)
}

func (ts *txStore) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	return listLeaveTypes(ctx, ts.tx, activeOnly)
}

func (ts *txStore) SaveLeaveType(ctx context.Context, lt leave.LeaveType) error {
	return saveLeaveType(ctx, ts.tx, lt)
}

func (ts *txStore) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	return getRequest(ctx, ts.tx, id)
}

func (ts *txStore) CreateRequest(ctx context.Context, r leave.LeaveRequest) error {
	return createRequest(ctx, ts.tx, r)
}

func (ts *txStore) UpdateRequest(ctx context.Context, r leave.LeaveRequest) error {
	return updateRequest(ctx, ts.tx, r)
}

func (ts *txStore) ListRequestsByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	return listRequestsByEmployee(ctx, ts.tx, employeeID)
}

func (ts *txStore) HasOverlappingRequest(ctx context.Context, employeeID string, from, to leave.TimePoint, excludeID string) (bool, error) {
	return hasOverlappingRequest(ctx, ts.tx, employeeID, from, to, excludeID)
}

func (ts *txStore) ListRequestsPendingRole(ctx context.Context, roles []leave.Role) ([]leave.LeaveRequest, error) {
	return listRequestsPendingRole(ctx, ts.tx, roles)
}

func (ts *txStore) ListApprovedOverlapping(ctx context.Context, employeeIDs []string, from, to leave.TimePoint) ([]leave.LeaveRequest, error) {
	return listApprovedOverlapping(ctx, ts.tx, employeeIDs, from, to)
}

func (ts *txStore) ListApprovedFrom(ctx context.Context, employeeIDs []string, from leave.TimePoint) ([]leave.LeaveRequest, error) {
	return listApprovedFrom(ctx, ts.tx, employeeIDs, from)
}

func (ts *txStore) MonthlyHourlyUsage(ctx context.Context, employeeID, leaveTypeID string, year int, month time.Month) (int, decimal.Decimal, error) {
	return monthlyHourlyUsage(ctx, ts.tx, employeeID, leaveTypeID, year, month)
}

func (ts *txStore) GetEntitlement(ctx context.Context, employeeID string, year int) (*leave.LeaveEntitlement, error) {
	return getEntitlement(ctx, ts.tx, employeeID, year)
}

func (ts *txStore) CreateEntitlement(ctx context.Context, le leave.LeaveEntitlement) error {
	return createEntitlement(ctx, ts.tx, le)
}

func (ts *txStore) UpdateEntitlement(ctx context.Context, le leave.LeaveEntitlement) error {
	return updateEntitlement(ctx, ts.tx, le)
}

func (ts *txStore) ListEntitlementsByYear(ctx context.Context, year int) ([]leave.LeaveEntitlement, error) {
	return listEntitlementsByYear(ctx, ts.tx, year)
}

func (ts *txStore) AppendApproval(ctx context.Context, rec leave.ApprovalRecord) error {
	return appendApproval(ctx, ts.tx, rec)
}

func (ts *txStore) ListApprovals(ctx context.Context, leaveRequestID string) ([]leave.ApprovalRecord, error) {
	return listApprovals(ctx, ts.tx, leaveRequestID)
}

func (ts *txStore) CreateSprint(ctx context.Context, sp leave.Sprint) error {
	return createSprint(ctx, ts.tx, sp)
}

func (ts *txStore) GetSprint(ctx context.Context, id string) (*leave.Sprint, error) {
	return getSprint(ctx, ts.tx, id)
}

func (ts *txStore) ListSprintsByDepartment(ctx context.Context, departmentID string) ([]leave.Sprint, error) {
	return listSprintsByDepartment(ctx, ts.tx, departmentID)
}

func (ts *txStore) LatestSprint(ctx context.Context, departmentID string) (*leave.Sprint, error) {
	return latestSprint(ctx, ts.tx, departmentID)
}

func (ts *txStore) HolidaysInRange(ctx context.Context, from, to leave.TimePoint) ([]leave.Holiday, error) {
	return holidaysInRange(ctx, ts.tx, from, to)
}

func (ts *txStore) SaveHoliday(ctx context.Context, h leave.Holiday) error {
	return saveHoliday(ctx, ts.tx, h)
}
