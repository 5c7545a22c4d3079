package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "attendance_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestErrors   *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	reconcileBatchTotal   *prometheus.CounterVec
	reconcileBatchLatency *prometheus.HistogramVec
	duplicatePunchesTotal prometheus.Counter
	unmappedPunchesTotal  prometheus.Counter

	payrollComputeTotal   *prometheus.CounterVec
	payrollComputeLatency *prometheus.HistogramVec
	payrollCommitTotal    *prometheus.CounterVec
	payrollExportTotal    *prometheus.CounterVec
	payrollExportLatency  *prometheus.HistogramVec

	pullRunsTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total punch ingest requests by result",
			},
			[]string{"result"},
		)
		ingestErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_errors_total",
				Help: "Total punch ingest errors by reason",
			},
			[]string{"reason"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Punch ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		reconcileBatchTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "reconcile_batch_total",
				Help: "Total batch reconciliations by result",
			},
			[]string{"result"},
		)
		reconcileBatchLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "reconcile_batch_latency_seconds",
				Help:    "Batch reconciliation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		duplicatePunchesTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "duplicate_punches_total",
				Help: "Total punches dropped as duplicates",
			},
		)
		unmappedPunchesTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "unmapped_punches_total",
				Help: "Total punches from device users with no employee mapping",
			},
		)

		payrollComputeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payroll_compute_total",
				Help: "Total payroll period computations by result",
			},
			[]string{"result"},
		)
		payrollComputeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payroll_compute_latency_seconds",
				Help:    "Payroll period computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		payrollCommitTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payroll_commit_total",
				Help: "Total payroll record commits by result",
			},
			[]string{"result"},
		)
		payrollExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payroll_export_total",
				Help: "Total payroll export operations by format and result",
			},
			[]string{"format", "result"},
		)
		payrollExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payroll_export_latency_seconds",
				Help:    "Payroll export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		pullRunsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "device_pull_runs_total",
				Help: "Total device bridge pull runs by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestErrors,
			ingestLatency,
			reconcileBatchTotal,
			reconcileBatchLatency,
			duplicatePunchesTotal,
			unmappedPunchesTotal,
			payrollComputeTotal,
			payrollComputeLatency,
			payrollCommitTotal,
			payrollExportTotal,
			payrollExportLatency,
			pullRunsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveIngest records ingest request duration and result.
func ObserveIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncIngestError increments ingest error counter.
func IncIngestError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if ingestErrors != nil {
		ingestErrors.WithLabelValues(reason).Inc()
	}
}

// ObserveReconcileBatch records batch reconciliation latency and result.
func ObserveReconcileBatch(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if reconcileBatchTotal != nil {
		reconcileBatchTotal.WithLabelValues(result).Inc()
	}
	if reconcileBatchLatency != nil {
		reconcileBatchLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddDuplicatePunches increments the duplicate punch counter by count.
func AddDuplicatePunches(count int) {
	if count <= 0 {
		return
	}
	if duplicatePunchesTotal != nil {
		duplicatePunchesTotal.Add(float64(count))
	}
}

// AddUnmappedPunches increments the unmapped punch counter by count.
func AddUnmappedPunches(count int) {
	if count <= 0 {
		return
	}
	if unmappedPunchesTotal != nil {
		unmappedPunchesTotal.Add(float64(count))
	}
}

// ObservePayrollCompute records payroll computation latency and result.
func ObservePayrollCompute(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if payrollComputeTotal != nil {
		payrollComputeTotal.WithLabelValues(result).Inc()
	}
	if payrollComputeLatency != nil {
		payrollComputeLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncPayrollCommit increments the payroll commit counter.
func IncPayrollCommit(result string) {
	if result == "" {
		result = resultSuccess
	}
	if payrollCommitTotal != nil {
		payrollCommitTotal.WithLabelValues(result).Inc()
	}
}

// ObservePayrollExport records export latency, format and result.
func ObservePayrollExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if payrollExportTotal != nil {
		payrollExportTotal.WithLabelValues(format, result).Inc()
	}
	if payrollExportLatency != nil {
		payrollExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncPullRun increments the device pull run counter.
func IncPullRun(result string) {
	if result == "" {
		result = resultSuccess
	}
	if pullRunsTotal != nil {
		pullRunsTotal.WithLabelValues(result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
