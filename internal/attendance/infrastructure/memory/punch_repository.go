package memory

import (
	"context"
	"sync"
	"time"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
)

type storedPunch struct {
	event    attendance.PunchEvent
	consumed bool
}

// PunchRepository is an in-memory repository for punch events.
type PunchRepository struct {
	mu     sync.RWMutex
	order  []attendance.DedupKey
	events map[attendance.DedupKey]*storedPunch
}

// NewPunchRepository constructs a repository.
func NewPunchRepository() *PunchRepository {
	return &PunchRepository{events: make(map[attendance.DedupKey]*storedPunch)}
}

// InsertPunches writes events not already present.
func (r *PunchRepository) InsertPunches(ctx context.Context, events []attendance.PunchEvent) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, event := range events {
		key := event.Key()
		if _, ok := r.events[key]; ok {
			continue
		}
		copied := event
		r.events[key] = &storedPunch{event: copied}
		r.order = append(r.order, key)
		inserted++
	}
	return inserted, nil
}

// ExistingKeys reports which keys are already stored.
func (r *PunchRepository) ExistingKeys(ctx context.Context, keys []attendance.DedupKey) (map[attendance.DedupKey]struct{}, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing := make(map[attendance.DedupKey]struct{})
	for _, key := range keys {
		if _, ok := r.events[key]; ok {
			existing[key] = struct{}{}
		}
	}
	return existing, nil
}

// ListByEmployeeDay returns the employee's punches inside [dayStart, dayEnd)
// in insertion order.
func (r *PunchRepository) ListByEmployeeDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) ([]attendance.PunchEvent, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []attendance.PunchEvent
	for _, key := range r.order {
		stored := r.events[key]
		event := stored.event
		if event.EmployeeID != employeeID {
			continue
		}
		if event.Timestamp.Before(dayStart) || !event.Timestamp.Before(dayEnd) {
			continue
		}
		result = append(result, event)
	}
	return result, nil
}

// MarkConsumed flags the employee's punches for the day window.
func (r *PunchRepository) MarkConsumed(ctx context.Context, employeeID string, dayStart, dayEnd time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range r.order {
		stored := r.events[key]
		event := stored.event
		if event.EmployeeID != employeeID {
			continue
		}
		if event.Timestamp.Before(dayStart) || !event.Timestamp.Before(dayEnd) {
			continue
		}
		stored.consumed = true
	}
	return nil
}

// CountUnconsumed reports stored punches not yet folded into a processed
// session (assertion convenience).
func (r *PunchRepository) CountUnconsumed() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, stored := range r.events {
		if !stored.consumed {
			count++
		}
	}
	return count
}
