package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ju4700/ZKTecho-sub001/internal/audit"
	"github.com/ju4700/ZKTecho-sub001/internal/auth"
	"github.com/ju4700/ZKTecho-sub001/internal/observability/metrics"
	payrollapp "github.com/ju4700/ZKTecho-sub001/internal/payroll/application"
	payroll "github.com/ju4700/ZKTecho-sub001/internal/payroll/domain"
	timesheet "github.com/ju4700/ZKTecho-sub001/internal/timesheet/domain"
)

const monthQueryLayout = "2006-01"

// PayrollHandler handles payroll APIs.
type PayrollHandler struct {
	service     *payrollapp.PayrollService
	auditLogger audit.Logger
	loc         *time.Location
}

// NewPayrollHandler constructs a handler.
func NewPayrollHandler(service *payrollapp.PayrollService, auditLogger audit.Logger, loc *time.Location) (*PayrollHandler, error) {
	if service == nil {
		return nil, errors.New("payroll handler: nil service")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &PayrollHandler{service: service, auditLogger: auditLogger, loc: loc}, nil
}

// ServeHTTP handles payroll routes.
func (h *PayrollHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/payroll" && r.Method == http.MethodGet {
		h.handleCompute(w, r)
		return
	}
	if path == "/api/v1/payroll/records" && r.Method == http.MethodPost {
		h.handleCommit(w, r)
		return
	}
	if path == "/api/v1/exports/payroll.xlsx" && r.Method == http.MethodGet {
		h.handleExport(w, r, "xlsx")
		return
	}
	if path == "/api/v1/exports/payroll.pdf" && r.Method == http.MethodGet {
		h.handleExport(w, r, "pdf")
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *PayrollHandler) handleCompute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	period, err := h.parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		http.Error(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
		return
	}
	employeeIDs := r.URL.Query()["employee_id"]

	summaries, err := h.service.ComputePayroll(r.Context(), employeeIDs, period)
	if err != nil {
		metrics.ObservePayrollCompute(metrics.ResultError, time.Since(start))
		respondServiceError(w, err)
		return
	}
	metrics.ObservePayrollCompute(metrics.ResultSuccess, time.Since(start))

	resp := struct {
		Period    string                   `json:"period"`
		Summaries []payroll.PayrollSummary `json:"summaries"`
	}{Period: period.Format(monthQueryLayout), Summaries: summaries}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *PayrollHandler) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID string `json:"employee_id"`
		Month      string `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	period, err := h.parseMonth(req.Month)
	if err != nil {
		http.Error(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
		return
	}
	if req.EmployeeID == "" {
		http.Error(w, "missing employee_id", http.StatusBadRequest)
		return
	}

	summaries, err := h.service.ComputePayroll(r.Context(), []string{req.EmployeeID}, period)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if len(summaries) == 0 {
		http.Error(w, "no sessions for employee in period", http.StatusNotFound)
		return
	}

	summary := summaries[0]
	if err := h.service.CommitRecord(r.Context(), summary, time.Now().UTC()); err != nil {
		if errors.Is(err, payroll.ErrDuplicateRecord) {
			metrics.IncPayrollCommit(metrics.ResultError)
			http.Error(w, "payroll record already committed for period", http.StatusConflict)
			return
		}
		metrics.IncPayrollCommit(metrics.ResultError)
		respondServiceError(w, err)
		return
	}
	metrics.IncPayrollCommit(metrics.ResultSuccess)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
	h.logAudit(r, summary.EmployeeID, "payroll.commit", map[string]any{
		"period":    string(summary.Period),
		"total_pay": summary.TotalPay,
	})
}

func (h *PayrollHandler) handleExport(w http.ResponseWriter, r *http.Request, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObservePayrollExport(format, result, time.Since(start))
	}()

	period, err := h.parseMonth(r.URL.Query().Get("month"))
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
		return
	}

	summaries, err := h.service.ComputePayroll(r.Context(), nil, period)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}

	monthKey := summariesPeriod(summaries, period)
	generatedAt := time.Now().UTC()

	var data []byte
	switch format {
	case "pdf":
		data, err = BuildPayrollPDF(monthKey, summaries, generatedAt)
		if err == nil {
			w.Header().Set("Content-Type", "application/pdf")
		}
	default:
		data, err = BuildPayrollXLSX(monthKey, summaries, generatedAt)
		if err == nil {
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		}
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, "", "payroll.export", map[string]any{
		"format":    format,
		"period":    period.Format(monthQueryLayout),
		"employees": len(summaries),
	})
}

func (h *PayrollHandler) parseMonth(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, payroll.ErrInvalidPeriod
	}
	return time.ParseInLocation(monthQueryLayout, value, h.loc)
}

func (h *PayrollHandler) logAudit(r *http.Request, employeeID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "payroll",
		ResourceID:   employeeID,
		EmployeeID:   employeeID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func summariesPeriod(summaries []payroll.PayrollSummary, period time.Time) timesheet.MonthKey {
	if len(summaries) > 0 {
		return summaries[0].Period
	}
	return timesheet.MonthKey(period.Format("200601"))
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
