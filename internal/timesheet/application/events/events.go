package events

import "time"

// SessionProcessed is emitted after a day session has been recomputed and
// stored. Re-reconciling the same day emits it again with the fresh figures.
type SessionProcessed struct {
	EmployeeID string    `json:"employee_id"`
	DayStart   time.Time `json:"day_start"`
	TotalHours float64   `json:"total_hours"`
	TotalPay   float64   `json:"total_pay"`
	Anomalous  bool      `json:"anomalous"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BatchReconciled is emitted once per processed punch batch.
type BatchReconciled struct {
	Source          string    `json:"source"`
	PunchesInserted int       `json:"punches_inserted"`
	SessionsWritten int       `json:"sessions_written"`
	OccurredAt      time.Time `json:"occurred_at"`
}
