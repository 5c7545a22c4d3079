package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "punch_events_unconsumed",
			Help: "Stored punch events not yet folded into a day session",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM punch_events WHERE consumed = FALSE")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "day_sessions_anomalous",
			Help: "Day sessions flagged anomalous by the hours calculator",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM day_sessions WHERE anomalous = TRUE")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "payroll_records_total",
			Help: "Committed payroll records",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM payroll_records")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
