package collector

import (
	"context"
	"log"
	"time"
)

// Scheduler triggers device pulls on schedule.
type Scheduler struct {
	runner   *Runner
	devices  []string
	dailyAt  string
	lookback time.Duration
	logger   *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(runner *Runner, devices []string, dailyAt string, lookback time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		devices:  devices,
		dailyAt:  dailyAt,
		lookback: lookback,
		logger:   logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.runner == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !s.shouldRun(now.UTC()) {
				continue
			}
			s.runOnce(ctx, now.UTC())
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	hour, minute, err := parseDailyAt(s.dailyAt)
	if err != nil {
		return false
	}
	return now.Hour() == hour && now.Minute() == minute
}

func (s *Scheduler) runOnce(ctx context.Context, now time.Time) {
	if len(s.devices) == 0 {
		return
	}
	lookback := s.lookback
	if lookback <= 0 {
		lookback = 48 * time.Hour
	}
	from := now.Add(-lookback)
	for _, deviceID := range s.devices {
		if deviceID == "" {
			continue
		}
		if _, err := s.runner.Run(ctx, deviceID, from, now); err != nil && s.logger != nil {
			s.logger.Printf("collector schedule error: device=%s err=%v", deviceID, err)
		}
	}
}

func parseDailyAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
