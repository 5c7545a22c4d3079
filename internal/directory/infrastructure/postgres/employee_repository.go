package postgres

import (
	"context"
	"database/sql"
	"errors"

	directory "github.com/ju4700/ZKTecho-sub001/internal/directory/domain"
)

// EmployeeRepository is a Postgres implementation of the employee directory.
type EmployeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository constructs a repository.
func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByDeviceUserID resolves a device user, nil on a miss.
func (r *EmployeeRepository) FindByDeviceUserID(ctx context.Context, deviceUserID string) (*directory.Employee, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("employee repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, device_user_id, name, active, hourly_rate, scheduled_regular_hours, overtime_multiplier
FROM employees
WHERE device_user_id = $1 AND active = TRUE
LIMIT 1`, deviceUserID)
	return scanEmployee(row)
}

// Get loads an employee by id, nil when absent.
func (r *EmployeeRepository) Get(ctx context.Context, employeeID string) (*directory.Employee, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("employee repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, device_user_id, name, active, hourly_rate, scheduled_regular_hours, overtime_multiplier
FROM employees
WHERE id = $1
LIMIT 1`, employeeID)
	return scanEmployee(row)
}

func scanEmployee(row *sql.Row) (*directory.Employee, error) {
	var employee directory.Employee
	var scheduled, multiplier sql.NullFloat64
	err := row.Scan(
		&employee.ID,
		&employee.DeviceUserID,
		&employee.Name,
		&employee.Active,
		&employee.Profile.HourlyRate,
		&scheduled,
		&multiplier,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if scheduled.Valid {
		employee.Profile.ScheduledRegularHours = scheduled.Float64
	}
	if multiplier.Valid {
		employee.Profile.OvertimeMultiplier = multiplier.Float64
	}
	employee.Profile = employee.Profile.Normalize()
	return &employee, nil
}
