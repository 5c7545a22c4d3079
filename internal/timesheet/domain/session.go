package timesheet

import (
	"context"
	"time"
)

// SessionID is the identity of a day session: employeeId + day key.
type SessionID string

// BuildSessionID builds the identity from employee and day start.
func BuildSessionID(employeeID string, dayStart time.Time) (SessionID, error) {
	if employeeID == "" {
		return "", ErrEmptyEmployeeID
	}
	key, err := NewDayKey(dayStart)
	if err != nil {
		return "", err
	}
	return SessionID(employeeID + "|" + key.String()), nil
}

// DaySession is one employee's reconstructed attendance for one local
// calendar day. Slots left nil mean the matching punch never arrived; a
// partial session is valid data, not an error.
// Invariants:
// 1) RegularHours + OvertimeHours == max(0, TotalHours - BreakHours).
// 2) All derived hour and pay fields are non-negative.
// 3) Processed only becomes true after hours and pay have been computed.
type DaySession struct {
	EmployeeID string
	DayStart   time.Time

	ClockIn  *time.Time
	ClockOut *time.Time
	BreakIn  *time.Time
	BreakOut *time.Time

	TotalHours    float64
	BreakHours    float64
	RegularHours  float64
	OvertimeHours float64

	RegularPay  float64
	OvertimePay float64
	TotalPay    float64

	// Anomalous marks a day whose raw punch order produced a negative
	// measured interval before clamping, so it can be pulled for review.
	Anomalous bool
	Processed bool

	UpdatedAt time.Time
}

// ID returns the session identity.
func (s *DaySession) ID() (SessionID, error) {
	return BuildSessionID(s.EmployeeID, s.DayStart)
}

// DayKey returns the storage key of the session's calendar day.
func (s *DaySession) DayKey() (DayKey, error) {
	return NewDayKey(s.DayStart)
}

// IsComplete reports whether both clock slots are filled.
func (s *DaySession) IsComplete() bool {
	return s.ClockIn != nil && s.ClockOut != nil
}

// Apply overwrites the derived figures from a hours fact and a pay fact,
// then marks the session processed. Recomputation always replaces, never
// accumulates.
func (s *DaySession) Apply(hours HoursFact, pay PayFact) error {
	if err := hours.Validate(); err != nil {
		return err
	}
	if err := pay.Validate(); err != nil {
		return err
	}
	s.TotalHours = hours.TotalHours
	s.BreakHours = hours.BreakHours
	s.RegularHours = hours.RegularHours
	s.OvertimeHours = hours.OvertimeHours
	s.Anomalous = hours.Anomalous
	s.RegularPay = pay.RegularPay
	s.OvertimePay = pay.OvertimePay
	s.TotalPay = pay.TotalPay
	s.Processed = true
	return nil
}

// SessionRepository persists day sessions keyed by (employee, day).
type SessionRepository interface {
	// Upsert writes the session, replacing any stored row for the same
	// (employee, day). Last write wins; running the same batch twice
	// stores the same session.
	Upsert(ctx context.Context, session *DaySession) error
	// FindByEmployeeDay returns nil when no session exists for the day.
	FindByEmployeeDay(ctx context.Context, employeeID string, dayStart time.Time) (*DaySession, error)
	// ListByEmployeeRange lists sessions with DayStart in [from, to).
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]DaySession, error)
	// ListByRange lists all employees' sessions with DayStart in [from, to),
	// ordered by employee then day for reproducible aggregation.
	ListByRange(ctx context.Context, from, to time.Time) ([]DaySession, error)
}
