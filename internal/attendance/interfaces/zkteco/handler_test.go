package zkteco

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
	timesheetapp "github.com/ju4700/ZKTecho-sub001/internal/timesheet/application"
)

type processorStub struct {
	source string
	batch  []attendance.PunchEvent
	result timesheetapp.BatchSummary
	err    error
}

func (p *processorStub) ProcessBatch(ctx context.Context, source string, batch []attendance.PunchEvent) (timesheetapp.BatchSummary, error) {
	_ = ctx
	p.source = source
	p.batch = batch
	return p.result, p.err
}

func TestIngestHandlerAcceptsBatch(t *testing.T) {
	stub := &processorStub{result: timesheetapp.BatchSummary{PunchesReceived: 2, PunchesInserted: 2, SessionsWritten: 1}}
	handler, err := NewIngestHandler(stub, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	body := `{
		"deviceId": "dev-1",
		"punches": [
			{"deviceUserId": "101", "ts": 1767949200000, "type": "CLOCK_IN"},
			{"deviceUserId": "101", "ts": 1767981600000, "code": 1}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/ingest/zkteco/punches", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.source != "dev-1" {
		t.Fatalf("expected source dev-1, got %q", stub.source)
	}
	if len(stub.batch) != 2 {
		t.Fatalf("expected 2 punches forwarded, got %d", len(stub.batch))
	}
	if stub.batch[0].Type != attendance.PunchClockIn {
		t.Fatalf("expected first punch CLOCK_IN, got %s", stub.batch[0].Type)
	}
	if stub.batch[1].Type != attendance.PunchClockOut {
		t.Fatalf("expected code 1 mapped to CLOCK_OUT, got %s", stub.batch[1].Type)
	}
	wantTS := time.UnixMilli(1767949200000).UTC()
	if !stub.batch[0].Timestamp.Equal(wantTS) {
		t.Fatalf("expected ts %v, got %v", wantTS, stub.batch[0].Timestamp)
	}

	var summary timesheetapp.BatchSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.SessionsWritten != 1 {
		t.Fatalf("expected summary echoed, got %+v", summary)
	}
}

func TestIngestHandlerRejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing device", `{"punches":[{"deviceUserId":"101","ts":1767949200000,"type":"CLOCK_IN"}]}`},
		{"no punches", `{"deviceId":"dev-1","punches":[]}`},
		{"missing device user", `{"deviceId":"dev-1","punches":[{"ts":1767949200000,"type":"CLOCK_IN"}]}`},
		{"bad type", `{"deviceId":"dev-1","punches":[{"deviceUserId":"101","ts":1767949200000,"type":"NAP"}]}`},
		{"bad code", `{"deviceId":"dev-1","punches":[{"deviceUserId":"101","ts":1767949200000,"code":9}]}`},
		{"zero ts", `{"deviceId":"dev-1","punches":[{"deviceUserId":"101","ts":0,"type":"CLOCK_IN"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, err := NewIngestHandler(&processorStub{}, nil)
			if err != nil {
				t.Fatalf("new handler: %v", err)
			}
			req := httptest.NewRequest(http.MethodPost, "/ingest/zkteco/punches", strings.NewReader(tc.body))
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

func TestIngestHandlerMethodNotAllowed(t *testing.T) {
	handler, err := NewIngestHandler(&processorStub{}, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/ingest/zkteco/punches", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
}

func TestIngestHandlerSecondsTimestampAccepted(t *testing.T) {
	stub := &processorStub{}
	handler, err := NewIngestHandler(stub, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	body := `{"deviceId":"dev-1","punches":[{"deviceUserId":"101","ts":1767949200,"type":"CLOCK_IN"}]}`
	req := httptest.NewRequest(http.MethodPost, "/ingest/zkteco/punches", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	want := time.Unix(1767949200, 0).UTC()
	if !stub.batch[0].Timestamp.Equal(want) {
		t.Fatalf("expected seconds ts normalized to %v, got %v", want, stub.batch[0].Timestamp)
	}
}
