package payroll

import (
	"context"
	"time"

	timesheet "github.com/ju4700/ZKTecho-sub001/internal/timesheet/domain"
)

// PayrollSummary is the rolled-up payroll view for one employee over one
// period. It is always recomputed fresh from the period's day sessions;
// it is a view, never an independently mutated record.
type PayrollSummary struct {
	EmployeeID         string             `json:"employee_id"`
	Period             timesheet.MonthKey `json:"period"`
	TotalDays          int                `json:"total_days"`
	TotalRegularHours  float64            `json:"total_regular_hours"`
	TotalOvertimeHours float64            `json:"total_overtime_hours"`
	TotalRegularPay    float64            `json:"total_regular_pay"`
	TotalOvertimePay   float64            `json:"total_overtime_pay"`
	TotalPay           float64            `json:"total_pay"`
}

// Accumulate folds one day session into the summary. Summation happens in
// day order so the same session set always produces identical totals.
func (s *PayrollSummary) Accumulate(session timesheet.DaySession) {
	s.TotalDays++
	s.TotalRegularHours += session.RegularHours
	s.TotalOvertimeHours += session.OvertimeHours
	s.TotalRegularPay += session.RegularPay
	s.TotalOvertimePay += session.OvertimePay
	s.TotalPay += session.TotalPay
}

// RecordRepository persists committed payroll summaries. One record per
// (employee, period); a second commit for the same pair is a rejection,
// not an overwrite.
type RecordRepository interface {
	Insert(ctx context.Context, summary PayrollSummary, committedAt time.Time) error
}
