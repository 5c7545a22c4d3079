package timesheet

import (
	"sort"
	"time"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
)

// GroupKey identifies one employee's punches on one local calendar day.
type GroupKey struct {
	EmployeeID string
	DayKey     DayKey
}

// Group is an ordered run of punches for one (employee, day) pair.
type Group struct {
	EmployeeID string
	DayStart   time.Time
	Punches    []attendance.PunchEvent
}

// GroupByEmployeeDay partitions punches by (employeeId, local calendar
// date of the timestamp). Arrival order is preserved inside each group so
// the builder's stable sort has a deterministic tie-break.
func GroupByEmployeeDay(punches []attendance.PunchEvent, loc *time.Location) []Group {
	if loc == nil {
		loc = time.UTC
	}

	index := make(map[GroupKey]int)
	var groups []Group
	for _, punch := range punches {
		if punch.EmployeeID == "" || punch.Timestamp.IsZero() {
			continue
		}
		dayStart := DayStartOf(punch.Timestamp, loc)
		dayKey, err := NewDayKey(dayStart)
		if err != nil {
			continue
		}
		key := GroupKey{EmployeeID: punch.EmployeeID, DayKey: dayKey}
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, Group{EmployeeID: punch.EmployeeID, DayStart: dayStart})
		}
		groups[pos].Punches = append(groups[pos].Punches, punch)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].EmployeeID != groups[j].EmployeeID {
			return groups[i].EmployeeID < groups[j].EmployeeID
		}
		return groups[i].DayStart.Before(groups[j].DayStart)
	})
	return groups
}

// BuildDaySession assigns one day's punches to session slots:
// first ClockIn, last ClockOut, first BreakIn, last BreakOut. A repeated
// badge-in does not restart the session; a ClockOut that precedes the
// first ClockIn is still recorded; ordering anomalies are the hours
// calculator's concern, not the builder's.
func BuildDaySession(employeeID string, dayStart time.Time, punches []attendance.PunchEvent) (*DaySession, error) {
	if employeeID == "" {
		return nil, ErrEmptyEmployeeID
	}
	if dayStart.IsZero() {
		return nil, ErrInvalidDayStart
	}

	ordered := make([]attendance.PunchEvent, len(punches))
	copy(ordered, punches)
	// Stable: a device cannot emit two meaningfully distinct punches in
	// the same millisecond, so equal timestamps keep arrival order.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	session := &DaySession{EmployeeID: employeeID, DayStart: dayStart}
	for _, punch := range ordered {
		ts := punch.Timestamp
		switch punch.Type {
		case attendance.PunchClockIn:
			if session.ClockIn == nil {
				session.ClockIn = &ts
			}
		case attendance.PunchClockOut:
			session.ClockOut = &ts
		case attendance.PunchBreakIn:
			if session.BreakIn == nil {
				session.BreakIn = &ts
			}
		case attendance.PunchBreakOut:
			session.BreakOut = &ts
		}
	}
	return session, nil
}
