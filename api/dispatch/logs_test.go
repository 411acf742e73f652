package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/medifleet/dispatch/core/dispatch/logging"
)

func newLogStore(t *testing.T) *logging.JSONLStore {
	t.Helper()
	store, err := logging.NewJSONLStore(filepath.Join(t.TempDir(), "cycles.jsonl"))
	if err != nil {
		t.Fatalf("log store: %v", err)
	}
	return store
}

func TestLogHandler_Basic(t *testing.T) {
	store := newLogStore(t)
	rec := logging.LogRecord{
		Timestamp: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		CycleID:   "c1",
		Assigned:  1,
		Outcomes:  []logging.Outcome{{DeliveryID: "d1", Kind: "assigned"}},
	}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	h := NewLogHandler(store, "")
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/dispatch/logs?cycle_id=c1", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []logging.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].CycleID != "c1" {
		t.Fatalf("unexpected output %#v", out)
	}
}

func TestLogHandler_DeliveryFilter(t *testing.T) {
	store := newLogStore(t)
	_ = store.Append(context.Background(), logging.LogRecord{
		CycleID:  "c1",
		Outcomes: []logging.Outcome{{DeliveryID: "d1", Kind: "assigned"}},
	})
	_ = store.Append(context.Background(), logging.LogRecord{
		CycleID:  "c2",
		Outcomes: []logging.Outcome{{DeliveryID: "d2", Kind: "failed"}},
	})

	h := NewLogHandler(store, "")
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/dispatch/logs?delivery_id=d2", nil)
	h.ServeHTTP(rr, req)
	var out []logging.LogRecord
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	if len(out) != 1 || out[0].CycleID != "c2" {
		t.Fatalf("delivery filter bad %#v", out)
	}
}

func TestLogHandler_Auth(t *testing.T) {
	store := newLogStore(t)
	h := NewLogHandler(store, "secret")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/dispatch/logs", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/dispatch/logs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
