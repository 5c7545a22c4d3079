package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	timesheet "github.com/ju4700/ZKTecho-sub001/internal/timesheet/domain"
)

// SessionRepository is an in-memory repository for day sessions.
type SessionRepository struct {
	mu   sync.RWMutex
	data map[timesheet.SessionID]timesheet.DaySession
}

// NewSessionRepository constructs a repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{data: make(map[timesheet.SessionID]timesheet.DaySession)}
}

// Upsert writes the session, replacing any stored row for the same key.
func (r *SessionRepository) Upsert(ctx context.Context, session *timesheet.DaySession) error {
	_ = ctx
	if session == nil {
		return timesheet.ErrNilSession
	}
	id, err := session.ID()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.data[id] = *session
	r.mu.Unlock()
	return nil
}

// FindByEmployeeDay loads one session, nil when absent.
func (r *SessionRepository) FindByEmployeeDay(ctx context.Context, employeeID string, dayStart time.Time) (*timesheet.DaySession, error) {
	_ = ctx
	id, err := timesheet.BuildSessionID(employeeID, dayStart)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	session, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// ListByEmployeeRange lists one employee's sessions with DayStart in [from, to).
func (r *SessionRepository) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]timesheet.DaySession, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []timesheet.DaySession
	for _, session := range r.data {
		if session.EmployeeID != employeeID {
			continue
		}
		if session.DayStart.Before(from) || !session.DayStart.Before(to) {
			continue
		}
		result = append(result, session)
	}
	sortSessions(result)
	return result, nil
}

// ListByRange lists all sessions with DayStart in [from, to), ordered by
// employee then day.
func (r *SessionRepository) ListByRange(ctx context.Context, from, to time.Time) ([]timesheet.DaySession, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []timesheet.DaySession
	for _, session := range r.data {
		if session.DayStart.Before(from) || !session.DayStart.Before(to) {
			continue
		}
		result = append(result, session)
	}
	sortSessions(result)
	return result, nil
}

func sortSessions(sessions []timesheet.DaySession) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].EmployeeID != sessions[j].EmployeeID {
			return sessions[i].EmployeeID < sessions[j].EmployeeID
		}
		return sessions[i].DayStart.Before(sessions[j].DayStart)
	})
}
