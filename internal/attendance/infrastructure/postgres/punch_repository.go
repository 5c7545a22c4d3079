package postgres

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
)

// PunchRepository is a Postgres implementation for punch events.
type PunchRepository struct {
	db *sql.DB
}

// NewPunchRepository constructs a repository.
func NewPunchRepository(db *sql.DB) *PunchRepository {
	return &PunchRepository{db: db}
}

// InsertPunches writes events not already present. The unique index on
// (device_user_id, punch_ts) is the dedup backstop: a row that raced in
// from another run simply does not count.
func (r *PunchRepository) InsertPunches(ctx context.Context, events []attendance.PunchEvent) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("punch repo: nil db")
	}
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, event := range events {
		result, err := tx.ExecContext(ctx, `
INSERT INTO punch_events (
	id, employee_id, device_user_id, punch_ts, punch_type, device_id, consumed, created_at
) VALUES ($1,$2,$3,$4,$5,$6,FALSE,$7)
ON CONFLICT (device_user_id, punch_ts)
DO NOTHING`,
			newPunchID(), event.EmployeeID, event.DeviceUserID, event.Timestamp.UTC(),
			string(event.Type), event.DeviceID, time.Now().UTC())
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		inserted += int(rows)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ExistingKeys reports which keys are already stored.
func (r *PunchRepository) ExistingKeys(ctx context.Context, keys []attendance.DedupKey) (map[attendance.DedupKey]struct{}, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("punch repo: nil db")
	}

	existing := make(map[attendance.DedupKey]struct{})
	for _, key := range keys {
		var exists bool
		err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (
	SELECT 1 FROM punch_events WHERE device_user_id = $1 AND punch_ts = $2
)`, key.DeviceUserID, time.UnixMilli(key.TSMillis).UTC()).Scan(&exists)
		if err != nil {
			return nil, err
		}
		if exists {
			existing[key] = struct{}{}
		}
	}
	return existing, nil
}

// ListByEmployeeDay returns the employee's punches inside [dayStart, dayEnd)
// in arrival order.
func (r *PunchRepository) ListByEmployeeDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) ([]attendance.PunchEvent, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("punch repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT employee_id, device_user_id, punch_ts, punch_type, device_id
FROM punch_events
WHERE employee_id = $1 AND punch_ts >= $2 AND punch_ts < $3
ORDER BY created_at ASC, id ASC`, employeeID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []attendance.PunchEvent
	for rows.Next() {
		var event attendance.PunchEvent
		var punchType string
		if err := rows.Scan(&event.EmployeeID, &event.DeviceUserID, &event.Timestamp, &punchType, &event.DeviceID); err != nil {
			return nil, err
		}
		event.Type = attendance.PunchType(punchType)
		event.Timestamp = event.Timestamp.UTC()
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkConsumed flags the employee's punches for the day window.
func (r *PunchRepository) MarkConsumed(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("punch repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE punch_events
SET consumed = TRUE
WHERE employee_id = $1 AND punch_ts >= $2 AND punch_ts < $3`, employeeID, dayStart, dayEnd)
	return err
}

func newPunchID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return "punch-" + hex.EncodeToString(buf)
}
