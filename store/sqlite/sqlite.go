/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Stores the records the quota engine consumes (users, shift types,
  periods, holidays, schedules, leave requests). The engine itself never
  touches the database: handlers fetch records here and pass them in.

KEY TABLES:
  users           agents/planners/admins with leave entitlements
  shift_types     the code catalog (soft-deactivated, never deleted)
  periods         the generated 28-day period grid per year
  holidays        public holiday dates
  schedules       one row per (user, date) planning cell
  leave_requests  leave lifecycle records

INVARIANTS ENFORCED HERE:
  - schedules are unique per (user_id, date): upserts replace the cell
  - shift_types are unique per code
  - periods are unique per (year, number)

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better read
  concurrency. ":memory:" is supported for tests.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - planning: the Store interface consumed by the request service
  - api: handlers wiring records into the engine
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/planningos/quota-engine/engine"
	"github.com/planningos/quota-engine/planning"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query method
// works inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements all persistence used by the API and the planning service.
type Store struct {
	db *sql.DB
	q  dbtx
}

// New opens (or creates) the database at path. Use ":memory:" for tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, q: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		matricule TEXT,
		role TEXT NOT NULL,
		cn_entitlement INTEGER NOT NULL DEFAULT 0,
		cn_carryover INTEGER NOT NULL DEFAULT 0,
		jc_entitlement INTEGER NOT NULL DEFAULT 0,
		jc_carryover INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS shift_types (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		description TEXT,
		category TEXT NOT NULL,
		color_hex TEXT,
		display_order INTEGER NOT NULL DEFAULT 0,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		night_minutes INTEGER NOT NULL DEFAULT 0,
		counts_towards_quota INTEGER NOT NULL DEFAULT 0,
		is_holiday_work INTEGER NOT NULL DEFAULT 0,
		requires_recovery INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS periods (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		number INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		hour_quota INTEGER NOT NULL,
		UNIQUE(year, number)
	);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		is_moveable INTEGER NOT NULL DEFAULT 0
	);

	-- One planning cell per (user, date). Upserts replace the cell.
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		date TEXT NOT NULL,
		shift_code TEXT,
		is_holiday INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(user_id, date)
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_user_date ON schedules(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_schedules_date ON schedules(date);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		leave_code TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL,
		decided_by TEXT,
		decided_at TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_user ON leave_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status ON leave_requests(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WithTx runs fn against a transaction-scoped store.
func (s *Store) WithTx(ctx context.Context, fn func(planning.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	txStore := &Store{db: s.db, q: tx}
	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// =============================================================================
// USERS
// =============================================================================

// UserRecord is a persisted user.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Matricule    string
	Role         string

	CNEntitlement int
	CNCarryover   int
	JCEntitlement int
	JCCarryover   int

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the display name used on dashboards.
func (u *UserRecord) FullName() string { return u.FirstName + " " + u.LastName }

// Entitlements maps the record onto the engine's leave input.
func (u *UserRecord) Entitlements() engine.LeaveEntitlements {
	return engine.LeaveEntitlements{
		CNEntitlement: u.CNEntitlement,
		CNCarryover:   u.CNCarryover,
		JCEntitlement: u.JCEntitlement,
		JCCarryover:   u.JCCarryover,
	}
}

func (s *Store) CreateUser(ctx context.Context, u *UserRecord) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, matricule, role,
			cn_entitlement, cn_carryover, jc_entitlement, jc_carryover, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Matricule, u.Role,
		u.CNEntitlement, u.CNCarryover, u.JCEntitlement, u.JCCarryover,
		boolToInt(u.IsActive), now.Format(time.RFC3339), now.Format(time.RFC3339))
	return err
}

func (s *Store) UpdateUser(ctx context.Context, u *UserRecord) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := s.q.ExecContext(ctx, `
		UPDATE users SET email = ?, password_hash = ?, first_name = ?, last_name = ?,
			matricule = ?, role = ?, cn_entitlement = ?, cn_carryover = ?,
			jc_entitlement = ?, jc_carryover = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Matricule, u.Role,
		u.CNEntitlement, u.CNCarryover, u.JCEntitlement, u.JCCarryover,
		boolToInt(u.IsActive), u.UpdatedAt.Format(time.RFC3339), u.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeactivateUser soft-deletes a user; historical schedules keep referencing it.
func (s *Store) DeactivateUser(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE users SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) GetUser(ctx context.Context, id string) (*UserRecord, error) {
	return scanUser(s.q.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return scanUser(s.q.QueryRowContext(ctx, selectUser+` WHERE email = ?`, email))
}

// ListUsers returns users ordered by last then first name.
func (s *Store) ListUsers(ctx context.Context, activeOnly bool) ([]*UserRecord, error) {
	query := selectUser
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*UserRecord
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const selectUser = `
	SELECT id, email, password_hash, first_name, last_name, matricule, role,
		cn_entitlement, cn_carryover, jc_entitlement, jc_carryover,
		is_active, created_at, updated_at
	FROM users`

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(row rowScanner) (*UserRecord, error) {
	var u UserRecord
	var matricule sql.NullString
	var active int
	var createdAt, updatedAt string

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&matricule, &u.Role, &u.CNEntitlement, &u.CNCarryover,
		&u.JCEntitlement, &u.JCCarryover, &active, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.Matricule = matricule.String
	u.IsActive = active == 1
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	u.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &u, nil
}

// =============================================================================
// SHIFT TYPES
// =============================================================================

func (s *Store) CreateShiftType(ctx context.Context, st engine.ShiftType) (engine.ShiftType, error) {
	if err := st.Validate(); err != nil {
		return engine.ShiftType{}, err
	}
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO shift_types (id, code, description, category, color_hex, display_order,
			duration_minutes, night_minutes, counts_towards_quota, is_holiday_work,
			requires_recovery, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Code, st.Description, string(st.Category), st.ColorHex, st.DisplayOrder,
		st.DurationMinutes, st.NightMinutes, boolToInt(st.CountsTowardsQuota),
		boolToInt(st.IsHolidayWork), boolToInt(st.RequiresRecovery), boolToInt(st.IsActive))
	return st, err
}

func (s *Store) UpdateShiftType(ctx context.Context, st engine.ShiftType) error {
	if err := st.Validate(); err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE shift_types SET description = ?, category = ?, color_hex = ?, display_order = ?,
			duration_minutes = ?, night_minutes = ?, counts_towards_quota = ?,
			is_holiday_work = ?, requires_recovery = ?, is_active = ?
		WHERE id = ?`,
		st.Description, string(st.Category), st.ColorHex, st.DisplayOrder,
		st.DurationMinutes, st.NightMinutes, boolToInt(st.CountsTowardsQuota),
		boolToInt(st.IsHolidayWork), boolToInt(st.RequiresRecovery), boolToInt(st.IsActive), st.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeactivateShiftType soft-deletes: historical schedules keep the code.
func (s *Store) DeactivateShiftType(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE shift_types SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) GetShiftType(ctx context.Context, id string) (engine.ShiftType, error) {
	return scanShiftType(s.q.QueryRowContext(ctx, selectShiftType+` WHERE id = ?`, id))
}

// ListShiftTypes returns the catalog in display order.
func (s *Store) ListShiftTypes(ctx context.Context, includeInactive bool) ([]engine.ShiftType, error) {
	query := selectShiftType
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY display_order, code`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []engine.ShiftType
	for rows.Next() {
		st, err := scanShiftType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, st)
	}
	return types, rows.Err()
}

// Catalog loads the full catalog. Inactive entries are included: the
// engine must see them as "inactive", not invisible.
func (s *Store) Catalog(ctx context.Context) (engine.Catalog, error) {
	types, err := s.ListShiftTypes(ctx, true)
	if err != nil {
		return nil, err
	}
	return engine.NewCatalog(types), nil
}

const selectShiftType = `
	SELECT id, code, description, category, color_hex, display_order,
		duration_minutes, night_minutes, counts_towards_quota, is_holiday_work,
		requires_recovery, is_active
	FROM shift_types`

func scanShiftType(row rowScanner) (engine.ShiftType, error) {
	var st engine.ShiftType
	var description, color sql.NullString
	var category string
	var counts, holidayWork, recovery, active int

	err := row.Scan(&st.ID, &st.Code, &description, &category, &color, &st.DisplayOrder,
		&st.DurationMinutes, &st.NightMinutes, &counts, &holidayWork, &recovery, &active)
	if err == sql.ErrNoRows {
		return engine.ShiftType{}, ErrNotFound
	}
	if err != nil {
		return engine.ShiftType{}, err
	}

	st.Description = description.String
	st.ColorHex = color.String
	st.Category = engine.ShiftCategory(category)
	st.CountsTowardsQuota = counts == 1
	st.IsHolidayWork = holidayWork == 1
	st.RequiresRecovery = recovery == 1
	st.IsActive = active == 1
	return st, nil
}

// =============================================================================
// PERIODS
// =============================================================================

// SavePeriods upserts a generated period grid, keyed by (year, number) so
// regeneration is idempotent.
func (s *Store) SavePeriods(ctx context.Context, periods []engine.Period) error {
	for i := range periods {
		if periods[i].ID == "" {
			periods[i].ID = uuid.NewString()
		}
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO periods (id, year, number, start_date, end_date, hour_quota)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(year, number) DO UPDATE SET
				start_date = excluded.start_date,
				end_date = excluded.end_date,
				hour_quota = excluded.hour_quota`,
			periods[i].ID, periods[i].Year, periods[i].Number,
			periods[i].Start.String(), periods[i].End.String(), periods[i].HourQuota)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetPeriod(ctx context.Context, id string) (engine.Period, error) {
	return scanPeriod(s.q.QueryRowContext(ctx, selectPeriod+` WHERE id = ?`, id))
}

// ListPeriods returns a year's periods in number order.
func (s *Store) ListPeriods(ctx context.Context, year int) ([]engine.Period, error) {
	rows, err := s.q.QueryContext(ctx, selectPeriod+` WHERE year = ? ORDER BY number`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []engine.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

const selectPeriod = `SELECT id, year, number, start_date, end_date, hour_quota FROM periods`

func scanPeriod(row rowScanner) (engine.Period, error) {
	var p engine.Period
	var start, end string

	err := row.Scan(&p.ID, &p.Year, &p.Number, &start, &end, &p.HourQuota)
	if err == sql.ErrNoRows {
		return engine.Period{}, ErrNotFound
	}
	if err != nil {
		return engine.Period{}, err
	}

	if p.Start, err = engine.ParseDate(start); err != nil {
		return engine.Period{}, err
	}
	if p.End, err = engine.ParseDate(end); err != nil {
		return engine.Period{}, err
	}
	return p, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHolidays upserts holidays keyed by date.
func (s *Store) SaveHolidays(ctx context.Context, holidays []engine.Holiday) error {
	for i := range holidays {
		if holidays[i].ID == "" {
			holidays[i].ID = uuid.NewString()
		}
		_, err := s.q.ExecContext(ctx, `
			INSERT INTO holidays (id, date, name, is_moveable)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				name = excluded.name,
				is_moveable = excluded.is_moveable`,
			holidays[i].ID, holidays[i].Date.String(), holidays[i].Name,
			boolToInt(holidays[i].IsMoveable))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListHolidays returns a year's holidays in date order. Year 0 lists all.
func (s *Store) ListHolidays(ctx context.Context, year int) ([]engine.Holiday, error) {
	query := `SELECT id, date, name, is_moveable FROM holidays`
	var args []any
	if year != 0 {
		query += ` WHERE date >= ? AND date <= ?`
		args = append(args, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	}
	query += ` ORDER BY date`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []engine.Holiday
	for rows.Next() {
		var h engine.Holiday
		var date string
		var moveable int
		if err := rows.Scan(&h.ID, &date, &h.Name, &moveable); err != nil {
			return nil, err
		}
		if h.Date, err = engine.ParseDate(date); err != nil {
			return nil, err
		}
		h.IsMoveable = moveable == 1
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// SCHEDULES
// =============================================================================

// UpsertSchedule writes one planning cell, replacing any existing
// assignment for the same (user, date).
func (s *Store) UpsertSchedule(ctx context.Context, sch engine.Schedule) error {
	if sch.ID == "" {
		sch.ID = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO schedules (id, user_id, date, shift_code, is_holiday, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			shift_code = excluded.shift_code,
			is_holiday = excluded.is_holiday,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		sch.ID, sch.UserID, sch.Date.String(), nullable(sch.ShiftCode),
		boolToInt(sch.IsHoliday), nullable(sch.Notes), now, now)
	return err
}

// BulkUpsertSchedules writes many cells atomically (grid edits touch
// several days at once).
func (s *Store) BulkUpsertSchedules(ctx context.Context, schedules []engine.Schedule) error {
	return s.WithTx(ctx, func(tx planning.Store) error {
		for _, sch := range schedules {
			if err := tx.UpsertSchedule(ctx, sch); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetSchedule(ctx context.Context, id string) (engine.Schedule, error) {
	return scanSchedule(s.q.QueryRowContext(ctx, selectSchedule+` WHERE id = ?`, id))
}

func (s *Store) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListSchedules returns schedules in [from, to], optionally restricted to
// one user (empty userID means all users), ordered by user then date.
func (s *Store) ListSchedules(ctx context.Context, userID string, from, to engine.Date) ([]engine.Schedule, error) {
	query := selectSchedule + ` WHERE date >= ? AND date <= ?`
	args := []any{from.String(), to.String()}
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY user_id, date`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []engine.Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sch)
	}
	return schedules, rows.Err()
}

const selectSchedule = `SELECT id, user_id, date, shift_code, is_holiday, notes FROM schedules`

func scanSchedule(row rowScanner) (engine.Schedule, error) {
	var sch engine.Schedule
	var date string
	var code, notes sql.NullString
	var holiday int

	err := row.Scan(&sch.ID, &sch.UserID, &date, &code, &holiday, &notes)
	if err == sql.ErrNoRows {
		return engine.Schedule{}, ErrNotFound
	}
	if err != nil {
		return engine.Schedule{}, err
	}

	if sch.Date, err = engine.ParseDate(date); err != nil {
		return engine.Schedule{}, err
	}
	sch.ShiftCode = code.String
	sch.Notes = notes.String
	sch.IsHoliday = holiday == 1
	return sch, nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (s *Store) CreateLeaveRequest(ctx context.Context, req *planning.LeaveRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO leave_requests (id, user_id, leave_code, start_date, end_date, reason,
			status, decided_by, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.UserID, req.LeaveCode, req.Start.String(), req.End.String(),
		nullable(req.Reason), string(req.Status), nullable(req.DecidedBy),
		nullableTime(req.DecidedAt), req.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) UpdateLeaveRequest(ctx context.Context, req *planning.LeaveRequest) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE leave_requests SET status = ?, decided_by = ?, decided_at = ? WHERE id = ?`,
		string(req.Status), nullable(req.DecidedBy), nullableTime(req.DecidedAt), req.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) GetLeaveRequest(ctx context.Context, id string) (*planning.LeaveRequest, error) {
	return scanLeaveRequest(s.q.QueryRowContext(ctx, selectLeaveRequest+` WHERE id = ?`, id))
}

// ListLeaveRequests filters by user and/or status; empty values mean "any".
func (s *Store) ListLeaveRequests(ctx context.Context, userID string, status planning.Status) ([]*planning.LeaveRequest, error) {
	query := selectLeaveRequest + ` WHERE 1=1`
	var args []any
	if userID != "" {
		query += ` AND user_id = ?`
		args = append(args, userID)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*planning.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

const selectLeaveRequest = `
	SELECT id, user_id, leave_code, start_date, end_date, reason, status,
		decided_by, decided_at, created_at
	FROM leave_requests`

func scanLeaveRequest(row rowScanner) (*planning.LeaveRequest, error) {
	var req planning.LeaveRequest
	var start, end, createdAt string
	var reason, decidedBy, decidedAt sql.NullString
	var status string

	err := row.Scan(&req.ID, &req.UserID, &req.LeaveCode, &start, &end,
		&reason, &status, &decidedBy, &decidedAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Start, err = engine.ParseDate(start); err != nil {
		return nil, err
	}
	if req.End, err = engine.ParseDate(end); err != nil {
		return nil, err
	}
	req.Reason = reason.String
	req.Status = planning.Status(status)
	req.DecidedBy = decidedBy.String
	if decidedAt.Valid {
		req.DecidedAt, _ = time.Parse(time.RFC3339, decidedAt.String)
	}
	req.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &req, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
