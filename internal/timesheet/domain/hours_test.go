package timesheet

import (
	"math"
	"testing"
	"time"
)

const floatTolerance = 1e-9

func sessionWithSlots(clockIn, clockOut, breakIn, breakOut *time.Time) *DaySession {
	return &DaySession{
		EmployeeID: "emp-1",
		DayStart:   time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		ClockIn:    clockIn,
		ClockOut:   clockOut,
		BreakIn:    breakIn,
		BreakOut:   breakOut,
	}
}

func at(hour, minute int) *time.Time {
	ts := time.Date(2026, time.March, 9, hour, minute, 0, 0, time.UTC)
	return &ts
}

func TestComputeHoursWithBreakAndOvertime(t *testing.T) {
	session := sessionWithSlots(at(8, 0), at(17, 0), at(12, 0), at(12, 30))

	fact, err := ComputeHours(session, 8)
	if err != nil {
		t.Fatalf("compute hours: %v", err)
	}
	if fact.TotalHours != 9 {
		t.Fatalf("total hours: got %v want 9", fact.TotalHours)
	}
	if fact.BreakHours != 0.5 {
		t.Fatalf("break hours: got %v want 0.5", fact.BreakHours)
	}
	if fact.RegularHours != 8 {
		t.Fatalf("regular hours: got %v want 8", fact.RegularHours)
	}
	if fact.OvertimeHours != 0.5 {
		t.Fatalf("overtime hours: got %v want 0.5", fact.OvertimeHours)
	}
	if fact.Anomalous {
		t.Fatalf("clean day must not be flagged anomalous")
	}
}

func TestComputeHoursNoOvertime(t *testing.T) {
	session := sessionWithSlots(at(8, 0), at(16, 0), nil, nil)

	fact, err := ComputeHours(session, 8)
	if err != nil {
		t.Fatalf("compute hours: %v", err)
	}
	if fact.RegularHours != 8 || fact.OvertimeHours != 0 {
		t.Fatalf("expected 8 regular / 0 overtime, got %v / %v", fact.RegularHours, fact.OvertimeHours)
	}
}

func TestComputeHoursPartialSessionYieldsZero(t *testing.T) {
	session := sessionWithSlots(nil, at(9, 0), nil, nil)

	fact, err := ComputeHours(session, 8)
	if err != nil {
		t.Fatalf("compute hours: %v", err)
	}
	if fact.TotalHours != 0 || fact.RegularHours != 0 || fact.OvertimeHours != 0 {
		t.Fatalf("partial session must zero derived fields: %+v", fact)
	}
}

func TestComputeHoursClampsNegativeDuration(t *testing.T) {
	session := sessionWithSlots(at(17, 0), at(8, 0), nil, nil)

	fact, err := ComputeHours(session, 8)
	if err != nil {
		t.Fatalf("compute hours: %v", err)
	}
	if fact.TotalHours != 0 {
		t.Fatalf("negative interval must clamp to zero, got %v", fact.TotalHours)
	}
	if !fact.Anomalous {
		t.Fatalf("clamped day must be flagged anomalous")
	}
}

func TestComputeHoursBreakLongerThanShift(t *testing.T) {
	// Break slots without clock slots: work hours go negative, regular
	// and overtime must still floor at zero.
	session := sessionWithSlots(nil, nil, at(12, 0), at(13, 0))

	fact, err := ComputeHours(session, 8)
	if err != nil {
		t.Fatalf("compute hours: %v", err)
	}
	if fact.BreakHours != 1 {
		t.Fatalf("break hours: got %v want 1", fact.BreakHours)
	}
	if fact.RegularHours != 0 || fact.OvertimeHours != 0 {
		t.Fatalf("hours must not go negative: %+v", fact)
	}
}

func TestComputeHoursDecompositionInvariant(t *testing.T) {
	cases := []*DaySession{
		sessionWithSlots(at(8, 0), at(17, 0), at(12, 0), at(12, 30)),
		sessionWithSlots(at(8, 0), at(23, 45), at(13, 0), at(13, 15)),
		sessionWithSlots(at(9, 30), at(10, 0), nil, nil),
		sessionWithSlots(at(17, 0), at(8, 0), at(12, 0), at(11, 0)),
		sessionWithSlots(nil, nil, at(12, 0), at(13, 0)),
	}

	for i, session := range cases {
		fact, err := ComputeHours(session, 8)
		if err != nil {
			t.Fatalf("case %d: compute hours: %v", i, err)
		}
		want := fact.TotalHours - fact.BreakHours
		if want < 0 {
			want = 0
		}
		got := fact.RegularHours + fact.OvertimeHours
		if math.Abs(got-want) > floatTolerance {
			t.Fatalf("case %d: regular+overtime=%v, want %v", i, got, want)
		}
	}
}

func TestComputeHoursRejectsBadThreshold(t *testing.T) {
	session := sessionWithSlots(at(8, 0), at(16, 0), nil, nil)
	if _, err := ComputeHours(session, 0); err == nil {
		t.Fatalf("expected threshold error")
	}
	if _, err := ComputeHours(nil, 8); err == nil {
		t.Fatalf("expected nil session error")
	}
}
