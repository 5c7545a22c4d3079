package payroll

import "errors"

var (
	ErrDuplicateRecord = errors.New("payroll: record already exists for employee and period")
	ErrInvalidPeriod   = errors.New("payroll: invalid period")
	ErrEmptyEmployee   = errors.New("payroll: empty employee id")
)
