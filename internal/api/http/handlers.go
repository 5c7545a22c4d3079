package apihttp

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

const timeLayout = time.RFC3339

// SessionsHandler serves day session queries.
type SessionsHandler struct {
	db *sql.DB
}

// NewSessionsHandler constructs a SessionsHandler.
func NewSessionsHandler(db *sql.DB) *SessionsHandler {
	return &SessionsHandler{db: db}
}

// ServeHTTP handles GET /api/v1/sessions.
func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		http.Error(w, "employee_id is required", http.StatusBadRequest)
		return
	}

	from, err := parseTimeQuery(r, "from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return
	}

	rows, err := querySessions(r.Context(), h.db, employeeID, from, to)
	if err != nil {
		http.Error(w, "query sessions error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// ExportSessionsCSVHandler serves day session CSV exports.
type ExportSessionsCSVHandler struct {
	db *sql.DB
}

// NewExportSessionsCSVHandler constructs a ExportSessionsCSVHandler.
func NewExportSessionsCSVHandler(db *sql.DB) *ExportSessionsCSVHandler {
	return &ExportSessionsCSVHandler{db: db}
}

// ServeHTTP handles GET /api/v1/exports/sessions.csv.
func (h *ExportSessionsCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		http.Error(w, "employee_id is required", http.StatusBadRequest)
		return
	}

	from, err := parseTimeQuery(r, "from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !to.After(from) {
		http.Error(w, "to must be after from", http.StatusBadRequest)
		return
	}

	rows, err := querySessions(r.Context(), h.db, employeeID, from, to)
	if err != nil {
		http.Error(w, "query sessions error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"employee_id",
		"day_start",
		"clock_in",
		"clock_out",
		"break_in",
		"break_out",
		"total_hours",
		"break_hours",
		"regular_hours",
		"overtime_hours",
		"regular_pay",
		"overtime_pay",
		"total_pay",
		"anomalous",
		"updated_at",
	})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.EmployeeID,
			row.DayStart.Format(timeLayout),
			formatTimePtr(row.ClockIn),
			formatTimePtr(row.ClockOut),
			formatTimePtr(row.BreakIn),
			formatTimePtr(row.BreakOut),
			formatFloat(row.TotalHours),
			formatFloat(row.BreakHours),
			formatFloat(row.RegularHours),
			formatFloat(row.OvertimeHours),
			formatFloat(row.RegularPay),
			formatFloat(row.OvertimePay),
			formatFloat(row.TotalPay),
			strconv.FormatBool(row.Anomalous),
			formatTime(row.UpdatedAt),
		})
	}
	writer.Flush()
}

type sessionRow struct {
	EmployeeID    string     `json:"employee_id"`
	DayStart      time.Time  `json:"day_start"`
	ClockIn       *time.Time `json:"clock_in"`
	ClockOut      *time.Time `json:"clock_out"`
	BreakIn       *time.Time `json:"break_in"`
	BreakOut      *time.Time `json:"break_out"`
	TotalHours    float64    `json:"total_hours"`
	BreakHours    float64    `json:"break_hours"`
	RegularHours  float64    `json:"regular_hours"`
	OvertimeHours float64    `json:"overtime_hours"`
	RegularPay    float64    `json:"regular_pay"`
	OvertimePay   float64    `json:"overtime_pay"`
	TotalPay      float64    `json:"total_pay"`
	Anomalous     bool       `json:"anomalous"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func querySessions(ctx context.Context, db *sql.DB, employeeID string, from, to time.Time) ([]sessionRow, error) {
	rows, err := db.QueryContext(ctx, `
SELECT
	employee_id,
	day_start,
	clock_in,
	clock_out,
	break_in,
	break_out,
	total_hours,
	break_hours,
	regular_hours,
	overtime_hours,
	regular_pay,
	overtime_pay,
	total_pay,
	anomalous,
	updated_at
FROM day_sessions
WHERE employee_id = $1
	AND day_start >= $2
	AND day_start < $3
ORDER BY day_start ASC`, employeeID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []sessionRow
	for rows.Next() {
		var row sessionRow
		var clockIn, clockOut, breakIn, breakOut sql.NullTime
		if err := rows.Scan(
			&row.EmployeeID,
			&row.DayStart,
			&clockIn,
			&clockOut,
			&breakIn,
			&breakOut,
			&row.TotalHours,
			&row.BreakHours,
			&row.RegularHours,
			&row.OvertimeHours,
			&row.RegularPay,
			&row.OvertimePay,
			&row.TotalPay,
			&row.Anomalous,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		row.DayStart = row.DayStart.UTC()
		row.UpdatedAt = row.UpdatedAt.UTC()
		row.ClockIn = timePtr(clockIn)
		row.ClockOut = timePtr(clockOut)
		row.BreakIn = timePtr(breakIn)
		row.BreakOut = timePtr(breakOut)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be RFC3339")
	}
	return parsed.UTC(), nil
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time.UTC()
	return &t
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(timeLayout)
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(timeLayout)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
