package timesheet

import "time"

// DayKey is the persisted representation of a local calendar date.
type DayKey string

// MonthKey is the persisted representation of a payroll period.
type MonthKey string

// NewDayKey builds a DayKey for the given day start.
func NewDayKey(dayStart time.Time) (DayKey, error) {
	if dayStart.IsZero() {
		return "", ErrInvalidDayStart
	}
	return DayKey(dayStart.Format("20060102")), nil
}

// String returns the raw string for storage.
func (k DayKey) String() string { return string(k) }

// NewMonthKey builds a MonthKey for the month containing t.
func NewMonthKey(t time.Time) (MonthKey, error) {
	if t.IsZero() {
		return "", ErrInvalidPeriod
	}
	return MonthKey(t.Format("200601")), nil
}

// String returns the raw string for storage.
func (k MonthKey) String() string { return string(k) }

// DayStartOf truncates a timestamp to local midnight in loc. Grouping by
// the local calendar date of the punch, not of ingestion, is what keeps a
// night shift's punches on the day the employee experienced.
func DayStartOf(ts time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := ts.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// MonthWindow returns [start, end) bounds of the month containing t in loc.
func MonthWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
