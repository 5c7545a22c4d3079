package directory

import "context"

// Defaults applied when an employee record carries no explicit value.
const (
	DefaultScheduledRegularHours = 8.0
	DefaultOvertimeMultiplier    = 1.5
)

// Employee is one directory record. The directory is the source of truth
// for identity; device-local user ids only exist to be mapped here.
type Employee struct {
	ID           string
	DeviceUserID string
	Name         string
	Active       bool

	Profile PayProfile
}

// PayProfile is the compensation configuration consumed read-only by the
// reconciliation core.
type PayProfile struct {
	HourlyRate            float64
	ScheduledRegularHours float64
	OvertimeMultiplier    float64
}

// Normalize fills zero-valued profile fields with defaults.
func (p PayProfile) Normalize() PayProfile {
	if p.ScheduledRegularHours <= 0 {
		p.ScheduledRegularHours = DefaultScheduledRegularHours
	}
	if p.OvertimeMultiplier <= 0 {
		p.OvertimeMultiplier = DefaultOvertimeMultiplier
	}
	if p.HourlyRate < 0 {
		p.HourlyRate = 0
	}
	return p
}

// Repository resolves device users to employees and supplies pay profiles.
type Repository interface {
	// FindByDeviceUserID returns nil when no employee maps to the device
	// user; a miss is a skip, not an error.
	FindByDeviceUserID(ctx context.Context, deviceUserID string) (*Employee, error)
	// Get returns nil when the employee does not exist.
	Get(ctx context.Context, employeeID string) (*Employee, error)
}
