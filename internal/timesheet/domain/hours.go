package timesheet

import "time"

// HoursFact is the derived hours breakdown for one day session.
type HoursFact struct {
	TotalHours    float64
	BreakHours    float64
	RegularHours  float64
	OvertimeHours float64
	Anomalous     bool
}

// Validate ensures basic domain invariants for a fact.
func (f HoursFact) Validate() error {
	if f.TotalHours < 0 || f.BreakHours < 0 || f.RegularHours < 0 || f.OvertimeHours < 0 {
		return ErrNegativeHours
	}
	return nil
}

// ComputeHours derives the hours breakdown from the session's slots and
// the employee's daily regular-hours threshold.
//
// Negative measured intervals (clock skew, a ClockOut before the first
// ClockIn) clamp to zero rather than erroring: the device is not
// authoritative, so a nonsensical interval means "no session data", never
// negative billable time. Such days carry the Anomalous flag.
func ComputeHours(session *DaySession, scheduledRegularHours float64) (HoursFact, error) {
	if session == nil {
		return HoursFact{}, ErrNilSession
	}
	if scheduledRegularHours <= 0 {
		return HoursFact{}, ErrInvalidThreshold
	}

	fact := HoursFact{}
	if session.ClockIn != nil && session.ClockOut != nil {
		raw := hoursBetween(*session.ClockIn, *session.ClockOut)
		if raw < 0 {
			fact.Anomalous = true
		}
		fact.TotalHours = clampZero(raw)
	}
	if session.BreakIn != nil && session.BreakOut != nil {
		raw := hoursBetween(*session.BreakIn, *session.BreakOut)
		if raw < 0 {
			fact.Anomalous = true
		}
		fact.BreakHours = clampZero(raw)
	}

	workHours := fact.TotalHours - fact.BreakHours
	fact.RegularHours = clampZero(minFloat(workHours, scheduledRegularHours))
	fact.OvertimeHours = clampZero(workHours - fact.RegularHours)
	return fact, nil
}

func hoursBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours()
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
