package application

import (
	"context"
	"errors"
	"log"
	"time"

	attendanceapp "github.com/ju4700/ZKTecho-sub001/internal/attendance/application"
	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
	directory "github.com/ju4700/ZKTecho-sub001/internal/directory/domain"
	"github.com/ju4700/ZKTecho-sub001/internal/observability/metrics"
	"github.com/ju4700/ZKTecho-sub001/internal/timesheet/application/events"
	timesheet "github.com/ju4700/ZKTecho-sub001/internal/timesheet/domain"
)

// BatchSummary is the structured outcome of one processBatch invocation.
// Nothing is dropped silently: every received punch lands in exactly one
// of inserted, duplicate, or unmapped.
type BatchSummary struct {
	PunchesReceived     int      `json:"punches_received"`
	PunchesInserted     int      `json:"punches_inserted"`
	DuplicatesSkipped   int      `json:"duplicates_skipped"`
	SessionsWritten     int      `json:"sessions_written"`
	SessionsSkipped     int      `json:"sessions_skipped"`
	UnmappedDeviceUsers []string `json:"unmapped_device_users"`
}

// EventPublisher emits reconciliation events.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ReconcileService turns raw punch batches into stored day sessions with
// derived hours and pay. The computation itself is pure; all state lives
// behind the repositories, so concurrent runs for distinct (employee, day)
// groups never share anything.
type ReconcileService struct {
	punches   attendance.PunchRepository
	sessions  timesheet.SessionRepository
	directory directory.Repository
	publisher EventPublisher
	clock     Clock
	loc       *time.Location
	logger    *log.Logger
}

// NewReconcileService constructs the service.
func NewReconcileService(
	punches attendance.PunchRepository,
	sessions timesheet.SessionRepository,
	dir directory.Repository,
	publisher EventPublisher,
	clock Clock,
	loc *time.Location,
	logger *log.Logger,
) (*ReconcileService, error) {
	if punches == nil {
		return nil, errors.New("reconcile service: nil punch repository")
	}
	if sessions == nil {
		return nil, errors.New("reconcile service: nil session repository")
	}
	if dir == nil {
		return nil, errors.New("reconcile service: nil directory")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = log.Default()
	}

	return &ReconcileService{
		punches:   punches,
		sessions:  sessions,
		directory: dir,
		publisher: publisher,
		clock:     clock,
		loc:       loc,
		logger:    logger,
	}, nil
}

// ProcessBatch runs the full reconciliation pipeline for one finite punch
// batch: dedup, persist, rebuild every touched (employee, day) session
// from all of the day's stored punches, derive hours and pay, upsert, and
// mark the day's punches consumed. Running the same batch twice writes
// nothing new and leaves sessions unchanged.
func (s *ReconcileService) ProcessBatch(ctx context.Context, source string, batch []attendance.PunchEvent) (BatchSummary, error) {
	start := s.clock.Now()
	summary := BatchSummary{PunchesReceived: len(batch)}
	if len(batch) == 0 {
		return summary, nil
	}
	result := metrics.ResultError
	defer func() {
		metrics.ObserveReconcileBatch(result, s.clock.Now().Sub(start))
	}()

	keys := make([]attendance.DedupKey, 0, len(batch))
	for _, punch := range batch {
		keys = append(keys, punch.Key())
	}
	existing, err := s.punches.ExistingKeys(ctx, keys)
	if err != nil {
		return summary, err
	}

	filtered, err := attendanceapp.Deduplicate(ctx, batch, existing, s.directory)
	if err != nil {
		return summary, err
	}
	summary.DuplicatesSkipped = filtered.Duplicates
	summary.UnmappedDeviceUsers = filtered.UnmappedDeviceUsers
	metrics.AddDuplicatePunches(filtered.Duplicates)
	metrics.AddUnmappedPunches(len(filtered.UnmappedDeviceUsers))

	if len(filtered.Accepted) > 0 {
		inserted, err := s.punches.InsertPunches(ctx, filtered.Accepted)
		if err != nil {
			return summary, err
		}
		summary.PunchesInserted = inserted
	}

	for _, group := range timesheet.GroupByEmployeeDay(filtered.Accepted, s.loc) {
		written, err := s.reconcileDay(ctx, group.EmployeeID, group.DayStart)
		if err != nil {
			return summary, err
		}
		if written {
			summary.SessionsWritten++
		} else {
			summary.SessionsSkipped++
		}
	}

	if s.publisher != nil {
		event := events.BatchReconciled{
			Source:          source,
			PunchesInserted: summary.PunchesInserted,
			SessionsWritten: summary.SessionsWritten,
			OccurredAt:      s.clock.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Printf("reconcile: publish batch event: %v", err)
		}
	}
	result = metrics.ResultSuccess
	return summary, nil
}

// reconcileDay recomputes one (employee, day) session from scratch. A day
// already marked processed reopens here whenever a late punch lands on it;
// the stored row is replaced, never patched.
func (s *ReconcileService) reconcileDay(ctx context.Context, employeeID string, dayStart time.Time) (bool, error) {
	dayEnd := dayStart.AddDate(0, 0, 1)

	punches, err := s.punches.ListByEmployeeDay(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return false, err
	}
	if len(punches) == 0 {
		return false, nil
	}

	employee, err := s.directory.Get(ctx, employeeID)
	if err != nil {
		return false, err
	}
	if employee == nil {
		// Mapping disappeared between dedup and computation. Skip, do
		// not abort the batch.
		s.logger.Printf("reconcile: employee %s vanished from directory, day %s skipped", employeeID, dayStart.Format("2006-01-02"))
		return false, nil
	}
	profile := employee.Profile.Normalize()

	session, err := timesheet.BuildDaySession(employeeID, dayStart, punches)
	if err != nil {
		return false, err
	}
	hours, err := timesheet.ComputeHours(session, profile.ScheduledRegularHours)
	if err != nil {
		return false, err
	}
	pay, err := timesheet.ComputePay(hours, profile.HourlyRate, profile.OvertimeMultiplier)
	if err != nil {
		return false, err
	}
	if err := session.Apply(hours, pay); err != nil {
		return false, err
	}
	session.UpdatedAt = s.clock.Now().UTC()

	if err := s.sessions.Upsert(ctx, session); err != nil {
		return false, err
	}
	if err := s.punches.MarkConsumed(ctx, employeeID, dayStart, dayEnd); err != nil {
		return false, err
	}

	if s.publisher != nil {
		event := events.SessionProcessed{
			EmployeeID: employeeID,
			DayStart:   dayStart,
			TotalHours: session.TotalHours,
			TotalPay:   session.TotalPay,
			Anomalous:  session.Anomalous,
			OccurredAt: s.clock.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Printf("reconcile: publish session event: %v", err)
		}
	}
	return true, nil
}
