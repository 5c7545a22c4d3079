package integration_test

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
	attendancemem "github.com/ju4700/ZKTecho-sub001/internal/attendance/infrastructure/memory"
	zkteco "github.com/ju4700/ZKTecho-sub001/internal/attendance/interfaces/zkteco"
	directory "github.com/ju4700/ZKTecho-sub001/internal/directory/domain"
	directorymem "github.com/ju4700/ZKTecho-sub001/internal/directory/infrastructure/memory"
	"github.com/ju4700/ZKTecho-sub001/internal/eventing"
	"github.com/ju4700/ZKTecho-sub001/internal/eventing/eventbus"
	payrollapp "github.com/ju4700/ZKTecho-sub001/internal/payroll/application"
	timesheetapp "github.com/ju4700/ZKTecho-sub001/internal/timesheet/application"
	"github.com/ju4700/ZKTecho-sub001/internal/timesheet/application/events"
	timesheetmem "github.com/ju4700/ZKTecho-sub001/internal/timesheet/infrastructure/memory"
)

const tolerance = 1e-9

type pipeline struct {
	punches  *attendancemem.PunchRepository
	sessions *timesheetmem.SessionRepository
	dir      *directorymem.EmployeeRepository
	bus      *eventbus.InMemoryBus
	service  *timesheetapp.ReconcileService
	payroll  *payrollapp.PayrollService
}

func newPipeline(t *testing.T, loc *time.Location) *pipeline {
	t.Helper()
	punches := attendancemem.NewPunchRepository()
	sessions := timesheetmem.NewSessionRepository()
	dir := directorymem.NewEmployeeRepository()
	dir.Put(directory.Employee{
		ID:           "emp-1",
		DeviceUserID: "101",
		Active:       true,
		Profile: directory.PayProfile{
			HourlyRate:            20,
			ScheduledRegularHours: 8,
			OvertimeMultiplier:    1.5,
		},
	})

	bus := eventbus.NewInMemoryBus()
	publisher := eventing.NewPublisher(bus)
	logger := log.New(os.Stderr, "", 0)

	service, err := timesheetapp.NewReconcileService(punches, sessions, dir, publisher, timesheetapp.SystemClock{}, loc, logger)
	if err != nil {
		t.Fatalf("reconcile service: %v", err)
	}
	payrollService, err := payrollapp.NewPayrollService(sessions, nil, loc)
	if err != nil {
		t.Fatalf("payroll service: %v", err)
	}
	return &pipeline{punches: punches, sessions: sessions, dir: dir, bus: bus, service: service, payroll: payrollService}
}

func TestIngestToPayrollEndToEnd(t *testing.T) {
	p := newPipeline(t, time.UTC)

	var processed []events.SessionProcessed
	eventing.Subscribe(p.bus, eventbus.EventTypeOf[events.SessionProcessed](), "test.capture", func(ctx context.Context, event any) error {
		evt, ok := event.(events.SessionProcessed)
		if !ok {
			return eventbus.ErrInvalidEventType
		}
		processed = append(processed, evt)
		return nil
	}, nil)

	handler, err := zkteco.NewIngestHandler(p.service, nil)
	if err != nil {
		t.Fatalf("ingest handler: %v", err)
	}

	dayIn := time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	body := map[string]any{
		"deviceId": "dev-1",
		"punches": []map[string]any{
			{"deviceUserId": "101", "ts": dayIn.UnixMilli(), "type": "CLOCK_IN"},
			{"deviceUserId": "101", "ts": dayIn.Add(3 * time.Hour).UnixMilli(), "type": "BREAK_IN"},
			{"deviceUserId": "101", "ts": dayIn.Add(3*time.Hour + 30*time.Minute).UnixMilli(), "type": "BREAK_OUT"},
			{"deviceUserId": "101", "ts": dayIn.Add(9 * time.Hour).UnixMilli(), "type": "CLOCK_OUT"},
		},
	}
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/ingest/zkteco/punches", strings.NewReader(string(payload)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("ingest: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var summary timesheetapp.BatchSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.PunchesInserted != 4 || summary.SessionsWritten != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(processed) != 1 {
		t.Fatalf("expected 1 session event, got %d", len(processed))
	}
	if math.Abs(processed[0].TotalPay-175) > tolerance {
		t.Fatalf("expected 175 pay in event, got %v", processed[0].TotalPay)
	}

	summaries, err := p.payroll.ComputePayroll(context.Background(), nil, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("compute payroll: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 payroll summary, got %d", len(summaries))
	}
	got := summaries[0]
	if got.TotalDays != 1 {
		t.Fatalf("expected 1 day, got %d", got.TotalDays)
	}
	if math.Abs(got.TotalRegularHours-8) > tolerance || math.Abs(got.TotalOvertimeHours-0.5) > tolerance {
		t.Fatalf("unexpected hours: %+v", got)
	}
	if math.Abs(got.TotalPay-175) > tolerance {
		t.Fatalf("expected 175 total pay, got %v", got.TotalPay)
	}
}

func TestReplayedBatchLeavesPayrollUnchanged(t *testing.T) {
	p := newPipeline(t, time.UTC)
	ctx := context.Background()

	batch := []attendance.PunchEvent{
		{DeviceUserID: "101", Timestamp: time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC), Type: attendance.PunchClockIn, DeviceID: "dev-1"},
		{DeviceUserID: "101", Timestamp: time.Date(2026, time.January, 5, 17, 0, 0, 0, time.UTC), Type: attendance.PunchClockOut, DeviceID: "dev-1"},
	}
	if _, err := p.service.ProcessBatch(ctx, "dev-1", batch); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	period := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	before, err := p.payroll.ComputePayroll(ctx, nil, period)
	if err != nil {
		t.Fatalf("payroll before replay: %v", err)
	}

	if _, err := p.service.ProcessBatch(ctx, "dev-1", batch); err != nil {
		t.Fatalf("replay batch: %v", err)
	}
	after, err := p.payroll.ComputePayroll(ctx, nil, period)
	if err != nil {
		t.Fatalf("payroll after replay: %v", err)
	}

	if len(before) != 1 || len(after) != 1 {
		t.Fatalf("expected single summary, got %d and %d", len(before), len(after))
	}
	if before[0] != after[0] {
		t.Fatalf("expected identical payroll after replay, got %+v vs %+v", before[0], after[0])
	}
}

func TestNightShiftGroupsOnLocalDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Dhaka")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	p := newPipeline(t, loc)
	ctx := context.Background()

	// 2026-01-05 23:00 local clock-in is 17:00 UTC; the whole shift
	// belongs to the local 5th even though the clock-out is the UTC 6th.
	clockIn := time.Date(2026, time.January, 5, 23, 0, 0, 0, loc)
	clockOut := clockIn.Add(4 * time.Hour)
	batch := []attendance.PunchEvent{
		{DeviceUserID: "101", Timestamp: clockIn.UTC(), Type: attendance.PunchClockIn, DeviceID: "dev-1"},
		{DeviceUserID: "101", Timestamp: clockOut.UTC(), Type: attendance.PunchClockOut, DeviceID: "dev-1"},
	}
	summary, err := p.service.ProcessBatch(ctx, "dev-1", batch)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if summary.SessionsWritten != 2 {
		// clock-in on the local 5th, clock-out lands on the local 6th
		t.Fatalf("expected 2 day groups across local midnight, got %d", summary.SessionsWritten)
	}

	dayStart := time.Date(2026, time.January, 5, 0, 0, 0, 0, loc)
	session, err := p.sessions.FindByEmployeeDay(ctx, "emp-1", dayStart)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if session == nil {
		t.Fatal("expected session stored under the local 5th")
	}
	if session.ClockIn == nil || !session.ClockIn.Equal(clockIn.UTC()) {
		t.Fatalf("expected clock-in on local 5th, got %+v", session.ClockIn)
	}
}
