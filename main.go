package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	apihttp "github.com/ju4700/ZKTecho-sub001/internal/api/http"
	punchrepo "github.com/ju4700/ZKTecho-sub001/internal/attendance/infrastructure/postgres"
	zkteco "github.com/ju4700/ZKTecho-sub001/internal/attendance/interfaces/zkteco"
	"github.com/ju4700/ZKTecho-sub001/internal/audit"
	"github.com/ju4700/ZKTecho-sub001/internal/auth"
	"github.com/ju4700/ZKTecho-sub001/internal/collector"
	directoryrepo "github.com/ju4700/ZKTecho-sub001/internal/directory/infrastructure/postgres"
	"github.com/ju4700/ZKTecho-sub001/internal/eventing"
	"github.com/ju4700/ZKTecho-sub001/internal/eventing/eventbus"
	eventingrepo "github.com/ju4700/ZKTecho-sub001/internal/eventing/infrastructure/postgres"
	"github.com/ju4700/ZKTecho-sub001/internal/observability/metrics"
	payrollapp "github.com/ju4700/ZKTecho-sub001/internal/payroll/application"
	payrollrepo "github.com/ju4700/ZKTecho-sub001/internal/payroll/infrastructure/postgres"
	payrollinterfaces "github.com/ju4700/ZKTecho-sub001/internal/payroll/interfaces"
	timesheetapp "github.com/ju4700/ZKTecho-sub001/internal/timesheet/application"
	"github.com/ju4700/ZKTecho-sub001/internal/timesheet/application/events"
	sessionrepo "github.com/ju4700/ZKTecho-sub001/internal/timesheet/infrastructure/postgres"
	"github.com/ju4700/ZKTecho-sub001/internal/zkbridge"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatalf("timezone error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	punchRepo := punchrepo.NewPunchRepository(db)
	sessionRepo := sessionrepo.NewSessionRepository(db)
	employeeRepo := directoryrepo.NewEmployeeRepository(db)
	recordRepo := payrollrepo.NewRecordRepository(db)

	bus := eventbus.NewInMemoryBus()
	processedStore := eventingrepo.NewProcessedStore(db)
	publisher := eventing.NewPublisher(bus)

	eventing.Subscribe(bus, eventbus.EventTypeOf[events.SessionProcessed](), "timesheet.log", func(ctx context.Context, event any) error {
		evt, ok := event.(events.SessionProcessed)
		if !ok {
			return eventbus.ErrInvalidEventType
		}
		logger.Printf("session processed: employee=%s day=%s hours=%.2f pay=%.2f anomalous=%t",
			evt.EmployeeID, evt.DayStart.Format("2006-01-02"), evt.TotalHours, evt.TotalPay, evt.Anomalous)
		return nil
	}, processedStore)
	eventing.Subscribe(bus, eventbus.EventTypeOf[events.BatchReconciled](), "attendance.log", func(ctx context.Context, event any) error {
		evt, ok := event.(events.BatchReconciled)
		if !ok {
			return eventbus.ErrInvalidEventType
		}
		logger.Printf("batch reconciled: source=%s inserted=%d sessions=%d", evt.Source, evt.PunchesInserted, evt.SessionsWritten)
		return nil
	}, processedStore)

	reconcileService, err := timesheetapp.NewReconcileService(punchRepo, sessionRepo, employeeRepo, publisher, timesheetapp.SystemClock{}, loc, logger)
	if err != nil {
		logger.Fatalf("reconcile service error: %v", err)
	}

	payrollService, err := payrollapp.NewPayrollService(sessionRepo, recordRepo, loc)
	if err != nil {
		logger.Fatalf("payroll service error: %v", err)
	}
	payrollHandler, err := payrollinterfaces.NewPayrollHandler(payrollService, auditRepo, loc)
	if err != nil {
		logger.Fatalf("payroll handler error: %v", err)
	}

	ingestHandler, err := zkteco.NewIngestHandler(reconcileService, logger)
	if err != nil {
		logger.Fatalf("ingest handler error: %v", err)
	}

	collectorCfg, err := collector.LoadConfig()
	if err != nil {
		logger.Fatalf("collector config error: %v", err)
	}
	if len(collectorCfg.Devices) > 0 {
		bridgeClient, err := zkbridge.NewClient(collectorCfg.BridgeBaseURL, collectorCfg.BridgeToken)
		if err != nil {
			logger.Fatalf("bridge client error: %v", err)
		}
		runner, err := collector.NewRunner(bridgeClient, reconcileService, logger)
		if err != nil {
			logger.Fatalf("collector runner error: %v", err)
		}
		scheduler := collector.NewScheduler(runner, collectorCfg.Devices, collectorCfg.Schedule.DailyAt,
			time.Duration(collectorCfg.LookbackHours)*time.Hour, logger)
		go scheduler.Start(context.Background())
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/ingest/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	ingestAuth := auth.NewIngestAuthMiddleware([]byte(cfg.IngestSecret), time.Duration(cfg.IngestSkewSeconds)*time.Second)

	mux := http.NewServeMux()
	mux.Handle("/ingest/zkteco/punches", ingestAuth.Wrap(ingestHandler))
	mux.Handle("/api/v1/sessions", apihttp.NewSessionsHandler(db))
	mux.Handle("/api/v1/payroll", payrollHandler)
	mux.Handle("/api/v1/payroll/records", payrollHandler)
	mux.Handle("/api/v1/exports/payroll.xlsx", payrollHandler)
	mux.Handle("/api/v1/exports/payroll.pdf", payrollHandler)
	mux.Handle("/api/v1/exports/sessions.csv", apihttp.NewExportSessionsCSVHandler(db))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL       string
	HTTPAddr          string
	Timezone          string
	JWTSecret         string
	IngestSecret      string
	IngestSkewSeconds int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		Timezone:          getenvDefault("TIMEZONE", "Asia/Dhaka"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		IngestSecret:      getenvDefault("INGEST_HMAC_SECRET", ""),
		IngestSkewSeconds: getenvIntDefault("INGEST_MAX_SKEW_SECONDS", 300),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
