package application

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	payroll "github.com/ju4700/ZKTecho-sub001/internal/payroll/domain"
	timesheet "github.com/ju4700/ZKTecho-sub001/internal/timesheet/domain"
	timesheetmem "github.com/ju4700/ZKTecho-sub001/internal/timesheet/infrastructure/memory"
)

const sumTolerance = 1e-9

type recordStoreStub struct {
	inserted []payroll.PayrollSummary
	err      error
}

func (s *recordStoreStub) Insert(ctx context.Context, summary payroll.PayrollSummary, committedAt time.Time) error {
	_ = ctx
	_ = committedAt
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, summary)
	return nil
}

func storedSession(t *testing.T, repo *timesheetmem.SessionRepository, employeeID string, day int, regular, overtime, regularPay, overtimePay float64) {
	t.Helper()
	session := timesheet.DaySession{
		EmployeeID:    employeeID,
		DayStart:      time.Date(2026, time.January, day, 0, 0, 0, 0, time.UTC),
		TotalHours:    regular + overtime,
		RegularHours:  regular,
		OvertimeHours: overtime,
		RegularPay:    regularPay,
		OvertimePay:   overtimePay,
		TotalPay:      regularPay + overtimePay,
		Processed:     true,
		UpdatedAt:     time.Date(2026, time.January, day, 23, 0, 0, 0, time.UTC),
	}
	if err := repo.Upsert(context.Background(), &session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestComputePayrollAggregatesMonth(t *testing.T) {
	sessions := timesheetmem.NewSessionRepository()
	storedSession(t, sessions, "emp-1", 5, 8, 1, 160, 30)
	storedSession(t, sessions, "emp-1", 6, 8, 0, 160, 0)
	storedSession(t, sessions, "emp-2", 5, 7.5, 0, 120, 0)
	// outside the period, must not count
	session := timesheet.DaySession{
		EmployeeID: "emp-1",
		DayStart:   time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		TotalHours: 8, RegularHours: 8, RegularPay: 160, TotalPay: 160,
		Processed: true,
	}
	if err := sessions.Upsert(context.Background(), &session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	service, err := NewPayrollService(sessions, nil, time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	period := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	summaries, err := service.ComputePayroll(context.Background(), nil, period)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].EmployeeID != "emp-1" || summaries[1].EmployeeID != "emp-2" {
		t.Fatalf("expected sorted employee order, got %s then %s", summaries[0].EmployeeID, summaries[1].EmployeeID)
	}

	first := summaries[0]
	if first.TotalDays != 2 {
		t.Fatalf("expected 2 days for emp-1, got %d", first.TotalDays)
	}
	if math.Abs(first.TotalRegularHours-16) > sumTolerance {
		t.Fatalf("expected 16 regular hours, got %v", first.TotalRegularHours)
	}
	if math.Abs(first.TotalOvertimeHours-1) > sumTolerance {
		t.Fatalf("expected 1 overtime hour, got %v", first.TotalOvertimeHours)
	}
	if math.Abs(first.TotalPay-350) > sumTolerance {
		t.Fatalf("expected 350 total pay, got %v", first.TotalPay)
	}
	if first.Period.String() != "202601" {
		t.Fatalf("expected period 202601, got %s", first.Period)
	}
}

func TestComputePayrollOmitsEmployeesWithoutSessions(t *testing.T) {
	sessions := timesheetmem.NewSessionRepository()
	storedSession(t, sessions, "emp-1", 5, 8, 0, 160, 0)

	service, err := NewPayrollService(sessions, nil, time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	period := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	summaries, err := service.ComputePayroll(context.Background(), []string{"emp-1", "emp-absent"}, period)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected only employees with sessions, got %d summaries", len(summaries))
	}
	if summaries[0].EmployeeID != "emp-1" {
		t.Fatalf("expected emp-1, got %s", summaries[0].EmployeeID)
	}
}

func TestComputePayrollDeterministic(t *testing.T) {
	sessions := timesheetmem.NewSessionRepository()
	storedSession(t, sessions, "emp-2", 7, 8, 0, 160, 0)
	storedSession(t, sessions, "emp-1", 9, 8, 2, 160, 60)
	storedSession(t, sessions, "emp-1", 3, 6, 0, 120, 0)

	service, err := NewPayrollService(sessions, nil, time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	period := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	first, err := service.ComputePayroll(context.Background(), nil, period)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := service.ComputePayroll(context.Background(), nil, period)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected stable result size, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("expected identical summaries, got %+v vs %+v", first[i], second[i])
		}
	}
}

func TestCommitRecordDelegatesAndValidates(t *testing.T) {
	sessions := timesheetmem.NewSessionRepository()
	store := &recordStoreStub{}
	service, err := NewPayrollService(sessions, store, time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary := payroll.PayrollSummary{EmployeeID: "emp-1", Period: "202601", TotalPay: 350}
	if err := service.CommitRecord(context.Background(), summary, time.Now()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 record inserted, got %d", len(store.inserted))
	}

	if err := service.CommitRecord(context.Background(), payroll.PayrollSummary{Period: "202601"}, time.Now()); !errors.Is(err, payroll.ErrEmptyEmployee) {
		t.Fatalf("expected ErrEmptyEmployee, got %v", err)
	}
	if err := service.CommitRecord(context.Background(), payroll.PayrollSummary{EmployeeID: "emp-1"}, time.Now()); !errors.Is(err, payroll.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestCommitRecordSurfacesDuplicate(t *testing.T) {
	sessions := timesheetmem.NewSessionRepository()
	store := &recordStoreStub{err: payroll.ErrDuplicateRecord}
	service, err := NewPayrollService(sessions, store, time.UTC)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary := payroll.PayrollSummary{EmployeeID: "emp-1", Period: "202601"}
	if err := service.CommitRecord(context.Background(), summary, time.Now()); !errors.Is(err, payroll.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
}
