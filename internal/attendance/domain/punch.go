package attendance

import (
	"context"
	"time"
)

// PunchType is the kind of clock event a device reports.
type PunchType string

const (
	PunchClockIn  PunchType = "CLOCK_IN"
	PunchClockOut PunchType = "CLOCK_OUT"
	PunchBreakIn  PunchType = "BREAK_IN"
	PunchBreakOut PunchType = "BREAK_OUT"
)

// IsValid checks if the punch type is one of the supported values.
func (t PunchType) IsValid() bool {
	switch t {
	case PunchClockIn, PunchClockOut, PunchBreakIn, PunchBreakOut:
		return true
	default:
		return false
	}
}

// PunchEvent is one raw clock signal from a biometric device.
// Immutable once created. Identity on the wire is (DeviceUserID, Timestamp):
// two punches sharing that pair are the same physical event, regardless of
// how the employee mapping looked when each copy arrived.
type PunchEvent struct {
	EmployeeID   string
	DeviceUserID string
	Timestamp    time.Time
	Type         PunchType
	DeviceID     string
}

// DedupKey is the natural key of a physical punch.
type DedupKey struct {
	DeviceUserID string
	TSMillis     int64
}

// Key returns the dedup key for the event.
func (e PunchEvent) Key() DedupKey {
	return DedupKey{DeviceUserID: e.DeviceUserID, TSMillis: e.Timestamp.UnixMilli()}
}

// PunchRepository persists punch events.
type PunchRepository interface {
	// InsertPunches writes events not already present (keyed dedup on
	// (device_user_id, punch_ts)) and returns how many rows were inserted.
	InsertPunches(ctx context.Context, events []PunchEvent) (int, error)
	// ExistingKeys reports which of the given keys are already stored.
	ExistingKeys(ctx context.Context, keys []DedupKey) (map[DedupKey]struct{}, error)
	// ListByEmployeeDay returns every stored punch for one employee whose
	// timestamp falls inside [dayStart, dayEnd), consumed or not, in
	// insertion order.
	ListByEmployeeDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) ([]PunchEvent, error)
	// MarkConsumed flags an employee's punches for the day window so later
	// runs skip them unless new punches reopen the day.
	MarkConsumed(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) error
}
