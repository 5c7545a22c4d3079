package collector

import (
	"context"
	"errors"
	"log"
	"time"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
	"github.com/ju4700/ZKTecho-sub001/internal/observability/metrics"
	timesheetapp "github.com/ju4700/ZKTecho-sub001/internal/timesheet/application"
)

// PunchFetcher pulls attendance logs from the device bridge.
type PunchFetcher interface {
	FetchPunches(ctx context.Context, deviceID string, from, to time.Time) ([]attendance.PunchEvent, error)
}

// BatchProcessor runs the reconciliation pipeline for one punch batch.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, source string, batch []attendance.PunchEvent) (timesheetapp.BatchSummary, error)
}

// Runner pulls one device's punches and feeds them to reconciliation.
type Runner struct {
	fetcher   PunchFetcher
	processor BatchProcessor
	logger    *log.Logger
}

// NewRunner constructs a Runner.
func NewRunner(fetcher PunchFetcher, processor BatchProcessor, logger *log.Logger) (*Runner, error) {
	if fetcher == nil {
		return nil, errors.New("collector: nil fetcher")
	}
	if processor == nil {
		return nil, errors.New("collector: nil processor")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{fetcher: fetcher, processor: processor, logger: logger}, nil
}

// Run pulls one device's window and reconciles it. Pulling an already
// ingested window is harmless, duplicates are dropped downstream.
func (r *Runner) Run(ctx context.Context, deviceID string, from, to time.Time) (timesheetapp.BatchSummary, error) {
	punches, err := r.fetcher.FetchPunches(ctx, deviceID, from, to)
	if err != nil {
		metrics.IncPullRun(metrics.ResultError)
		return timesheetapp.BatchSummary{}, err
	}
	if len(punches) == 0 {
		metrics.IncPullRun(metrics.ResultSuccess)
		return timesheetapp.BatchSummary{}, nil
	}

	summary, err := r.processor.ProcessBatch(ctx, deviceID, punches)
	if err != nil {
		metrics.IncPullRun(metrics.ResultError)
		return timesheetapp.BatchSummary{}, err
	}
	metrics.IncPullRun(metrics.ResultSuccess)
	r.logger.Printf("collector pull: device=%s received=%d inserted=%d duplicates=%d sessions=%d",
		deviceID, summary.PunchesReceived, summary.PunchesInserted, summary.DuplicatesSkipped, summary.SessionsWritten)
	return summary, nil
}
