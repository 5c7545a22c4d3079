package application

import (
	"context"
	"errors"
	"sort"
	"time"

	payroll "github.com/ju4700/ZKTecho-sub001/internal/payroll/domain"
	timesheet "github.com/ju4700/ZKTecho-sub001/internal/timesheet/domain"
)

// SessionReader loads stored day sessions for aggregation.
type SessionReader interface {
	ListByRange(ctx context.Context, from, to time.Time) ([]timesheet.DaySession, error)
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]timesheet.DaySession, error)
}

// PayrollService computes period summaries and commits payroll records.
type PayrollService struct {
	sessions SessionReader
	records  payroll.RecordRepository
	loc      *time.Location
}

// NewPayrollService constructs the service. The record repository may be
// nil when commit is not wired (read-only deployments).
func NewPayrollService(sessions SessionReader, records payroll.RecordRepository, loc *time.Location) (*PayrollService, error) {
	if sessions == nil {
		return nil, errors.New("payroll service: nil session reader")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PayrollService{sessions: sessions, records: records, loc: loc}, nil
}

// ComputePayroll groups the period's day sessions by employee and sums
// them. Employees without sessions in the period are omitted: absence
// means no attendance data, not a zero-pay decision. Output is sorted by
// employee id and totals are summed in day order, so the same session set
// always reproduces the same result.
func (s *PayrollService) ComputePayroll(ctx context.Context, employeeIDs []string, period time.Time) ([]payroll.PayrollSummary, error) {
	if period.IsZero() {
		return nil, payroll.ErrInvalidPeriod
	}
	from, to := timesheet.MonthWindow(period, s.loc)
	monthKey, err := timesheet.NewMonthKey(from)
	if err != nil {
		return nil, err
	}

	var sessions []timesheet.DaySession
	if len(employeeIDs) == 0 {
		sessions, err = s.sessions.ListByRange(ctx, from, to)
		if err != nil {
			return nil, err
		}
	} else {
		for _, employeeID := range uniqueSorted(employeeIDs) {
			if employeeID == "" {
				return nil, payroll.ErrEmptyEmployee
			}
			rows, err := s.sessions.ListByEmployeeRange(ctx, employeeID, from, to)
			if err != nil {
				return nil, err
			}
			sessions = append(sessions, rows...)
		}
	}

	index := make(map[string]int)
	var summaries []payroll.PayrollSummary
	for _, session := range sessions {
		pos, ok := index[session.EmployeeID]
		if !ok {
			pos = len(summaries)
			index[session.EmployeeID] = pos
			summaries = append(summaries, payroll.PayrollSummary{
				EmployeeID: session.EmployeeID,
				Period:     monthKey,
			})
		}
		summaries[pos].Accumulate(session)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].EmployeeID < summaries[j].EmployeeID
	})
	return summaries, nil
}

// CommitRecord persists one computed summary as the period's payroll
// record. A duplicate (employee, period) pair surfaces as
// payroll.ErrDuplicateRecord from the repository.
func (s *PayrollService) CommitRecord(ctx context.Context, summary payroll.PayrollSummary, committedAt time.Time) error {
	if s.records == nil {
		return errors.New("payroll service: record repository not configured")
	}
	if summary.EmployeeID == "" {
		return payroll.ErrEmptyEmployee
	}
	if summary.Period == "" {
		return payroll.ErrInvalidPeriod
	}
	if committedAt.IsZero() {
		committedAt = time.Now().UTC()
	}
	return s.records.Insert(ctx, summary, committedAt)
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var result []string
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	sort.Strings(result)
	return result
}
