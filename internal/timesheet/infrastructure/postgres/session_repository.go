package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	timesheet "github.com/ju4700/ZKTecho-sub001/internal/timesheet/domain"
)

// SessionRepository is a Postgres implementation for day sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository constructs a repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Upsert writes the session keyed by (employee_id, work_date). Last write
// wins, so re-running a batch stores the same row.
func (r *SessionRepository) Upsert(ctx context.Context, session *timesheet.DaySession) error {
	if r == nil || r.db == nil {
		return errors.New("session repo: nil db")
	}
	if session == nil {
		return timesheet.ErrNilSession
	}
	dayKey, err := session.DayKey()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO day_sessions (
	employee_id, work_date, day_start, clock_in, clock_out, break_in, break_out,
	total_hours, break_hours, regular_hours, overtime_hours,
	regular_pay, overtime_pay, total_pay, anomalous, processed, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
)
ON CONFLICT (employee_id, work_date)
DO UPDATE SET
	day_start = EXCLUDED.day_start,
	clock_in = EXCLUDED.clock_in,
	clock_out = EXCLUDED.clock_out,
	break_in = EXCLUDED.break_in,
	break_out = EXCLUDED.break_out,
	total_hours = EXCLUDED.total_hours,
	break_hours = EXCLUDED.break_hours,
	regular_hours = EXCLUDED.regular_hours,
	overtime_hours = EXCLUDED.overtime_hours,
	regular_pay = EXCLUDED.regular_pay,
	overtime_pay = EXCLUDED.overtime_pay,
	total_pay = EXCLUDED.total_pay,
	anomalous = EXCLUDED.anomalous,
	processed = EXCLUDED.processed,
	updated_at = EXCLUDED.updated_at`,
		session.EmployeeID, dayKey.String(), session.DayStart.UTC(),
		nullableTime(session.ClockIn), nullableTime(session.ClockOut),
		nullableTime(session.BreakIn), nullableTime(session.BreakOut),
		session.TotalHours, session.BreakHours, session.RegularHours, session.OvertimeHours,
		session.RegularPay, session.OvertimePay, session.TotalPay,
		session.Anomalous, session.Processed, session.UpdatedAt.UTC())
	return err
}

// FindByEmployeeDay loads one session, nil when absent.
func (r *SessionRepository) FindByEmployeeDay(ctx context.Context, employeeID string, dayStart time.Time) (*timesheet.DaySession, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("session repo: nil db")
	}
	dayKey, err := timesheet.NewDayKey(dayStart)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
SELECT employee_id, day_start, clock_in, clock_out, break_in, break_out,
	total_hours, break_hours, regular_hours, overtime_hours,
	regular_pay, overtime_pay, total_pay, anomalous, processed, updated_at
FROM day_sessions
WHERE employee_id = $1 AND work_date = $2
LIMIT 1`, employeeID, dayKey.String())
	return scanSession(row)
}

// ListByEmployeeRange lists one employee's sessions with day_start in [from, to).
func (r *SessionRepository) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]timesheet.DaySession, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("session repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT employee_id, day_start, clock_in, clock_out, break_in, break_out,
	total_hours, break_hours, regular_hours, overtime_hours,
	regular_pay, overtime_pay, total_pay, anomalous, processed, updated_at
FROM day_sessions
WHERE employee_id = $1 AND day_start >= $2 AND day_start < $3
ORDER BY day_start ASC`, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListByRange lists all sessions with day_start in [from, to), ordered by
// employee then day so period aggregation is reproducible.
func (r *SessionRepository) ListByRange(ctx context.Context, from, to time.Time) ([]timesheet.DaySession, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("session repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT employee_id, day_start, clock_in, clock_out, break_in, break_out,
	total_hours, break_hours, regular_hours, overtime_hours,
	regular_pay, overtime_pay, total_pay, anomalous, processed, updated_at
FROM day_sessions
WHERE day_start >= $1 AND day_start < $2
ORDER BY employee_id ASC, day_start ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*timesheet.DaySession, error) {
	var session timesheet.DaySession
	var clockIn, clockOut, breakIn, breakOut sql.NullTime
	err := row.Scan(
		&session.EmployeeID,
		&session.DayStart,
		&clockIn,
		&clockOut,
		&breakIn,
		&breakOut,
		&session.TotalHours,
		&session.BreakHours,
		&session.RegularHours,
		&session.OvertimeHours,
		&session.RegularPay,
		&session.OvertimePay,
		&session.TotalPay,
		&session.Anomalous,
		&session.Processed,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	session.DayStart = session.DayStart.UTC()
	session.UpdatedAt = session.UpdatedAt.UTC()
	session.ClockIn = timeFromNull(clockIn)
	session.ClockOut = timeFromNull(clockOut)
	session.BreakIn = timeFromNull(breakIn)
	session.BreakOut = timeFromNull(breakOut)
	return &session, nil
}

func collectSessions(rows *sql.Rows) ([]timesheet.DaySession, error) {
	var result []timesheet.DaySession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		if session != nil {
			result = append(result, *session)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timeFromNull(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
