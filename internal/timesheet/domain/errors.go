package timesheet

import "errors"

var (
	ErrEmptyEmployeeID  = errors.New("timesheet: empty employee id")
	ErrInvalidDayStart  = errors.New("timesheet: invalid day start")
	ErrInvalidPeriod    = errors.New("timesheet: invalid period")
	ErrNegativeHours    = errors.New("timesheet: negative hours")
	ErrNilSession       = errors.New("timesheet: nil session")
	ErrNegativeRate     = errors.New("timesheet: negative hourly rate")
	ErrNegativeFigure   = errors.New("timesheet: negative pay figure")
	ErrInvalidThreshold = errors.New("timesheet: invalid regular hours threshold")
)
