package postgres

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	payroll "github.com/ju4700/ZKTecho-sub001/internal/payroll/domain"
)

// RecordRepository persists committed payroll records.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Insert writes one payroll record. The unique index on
// (employee_id, period) turns a re-commit into ErrDuplicateRecord.
func (r *RecordRepository) Insert(ctx context.Context, summary payroll.PayrollSummary, committedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("payroll record repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
INSERT INTO payroll_records (
	id, employee_id, period, total_days,
	total_regular_hours, total_overtime_hours,
	total_regular_pay, total_overtime_pay, total_pay, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (employee_id, period)
DO NOTHING`,
		newRecordID(), summary.EmployeeID, summary.Period.String(), summary.TotalDays,
		summary.TotalRegularHours, summary.TotalOvertimeHours,
		summary.TotalRegularPay, summary.TotalOvertimePay, summary.TotalPay,
		committedAt.UTC())
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return payroll.ErrDuplicateRecord
	}
	return nil
}

func newRecordID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return "payrec-" + hex.EncodeToString(buf)
}
