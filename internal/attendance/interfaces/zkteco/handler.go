package zkteco

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
	"github.com/ju4700/ZKTecho-sub001/internal/observability/metrics"
	timesheetapp "github.com/ju4700/ZKTecho-sub001/internal/timesheet/application"
)

// BatchProcessor runs the reconciliation pipeline for one punch batch.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, source string, batch []attendance.PunchEvent) (timesheetapp.BatchSummary, error)
}

// IngestHandler accepts punch batches pushed by the ZKTeco device bridge.
type IngestHandler struct {
	processor BatchProcessor
	logger    *log.Logger
}

// NewIngestHandler constructs an ingest handler.
func NewIngestHandler(processor BatchProcessor, logger *log.Logger) (*IngestHandler, error) {
	if processor == nil {
		return nil, errors.New("zkteco ingest: nil processor")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &IngestHandler{processor: processor, logger: logger}, nil
}

// ServeHTTP ingests one punch batch and returns the batch summary.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Printf("punch ingest: read body error: %v", err)
		metrics.IncIngestError("read_body")
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req ingestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Printf("punch ingest: decode error: %v", err)
		metrics.IncIngestError("decode")
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	batch, err := req.toPunchEvents()
	if err != nil {
		h.logger.Printf("punch ingest: invalid payload: %v", err)
		metrics.IncIngestError("payload")
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	summary, err := h.processor.ProcessBatch(r.Context(), req.DeviceID, batch)
	if err != nil {
		h.logger.Printf("punch ingest: process error: %v", err)
		metrics.ObserveIngest(metrics.ResultError, time.Since(start))
		http.Error(w, "process error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveIngest(metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

type ingestRequest struct {
	DeviceID string        `json:"deviceId"`
	Punches  []ingestPunch `json:"punches"`
}

type ingestPunch struct {
	DeviceUserID string `json:"deviceUserId"`
	TS           int64  `json:"ts"`
	Type         string `json:"type"`
	Code         *int   `json:"code"`
}

func (r ingestRequest) toPunchEvents() ([]attendance.PunchEvent, error) {
	if r.DeviceID == "" {
		return nil, errors.New("missing deviceId")
	}
	if len(r.Punches) == 0 {
		return nil, errors.New("no punches")
	}

	events := make([]attendance.PunchEvent, 0, len(r.Punches))
	for _, punch := range r.Punches {
		if punch.DeviceUserID == "" {
			return nil, errors.New("missing deviceUserId")
		}
		ts, err := parseTimestamp(punch.TS)
		if err != nil {
			return nil, err
		}
		punchType, err := resolvePunchType(punch)
		if err != nil {
			return nil, err
		}
		events = append(events, attendance.PunchEvent{
			DeviceUserID: punch.DeviceUserID,
			Timestamp:    ts,
			Type:         punchType,
			DeviceID:     r.DeviceID,
		})
	}
	return events, nil
}

// resolvePunchType accepts either the symbolic type or the raw device
// state code; bridges in the field send one or the other.
func resolvePunchType(punch ingestPunch) (attendance.PunchType, error) {
	if punch.Type != "" {
		punchType := attendance.PunchType(punch.Type)
		if !punchType.IsValid() {
			return "", errors.New("unknown punch type " + punch.Type)
		}
		return punchType, nil
	}
	if punch.Code != nil {
		punchType, ok := attendance.PunchTypeFromCode(*punch.Code)
		if !ok {
			return "", errors.New("unknown punch code")
		}
		return punchType, nil
	}
	return "", errors.New("missing punch type")
}

func parseTimestamp(value int64) (time.Time, error) {
	if value <= 0 {
		return time.Time{}, errors.New("invalid ts")
	}
	// Accept milliseconds or seconds.
	if value > 1_000_000_000_000 {
		return time.UnixMilli(value).UTC(), nil
	}
	return time.Unix(value, 0).UTC(), nil
}
