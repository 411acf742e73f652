package queue

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/medifleet/dispatch/core/logger"
	"github.com/medifleet/dispatch/core/model"
	corequeue "github.com/medifleet/dispatch/core/queue"
	"github.com/medifleet/dispatch/core/scoring"
	"github.com/medifleet/dispatch/core/sla"
	"github.com/medifleet/dispatch/infra/storage/memory"
	"github.com/medifleet/dispatch/internal/clock"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func seedQueue(store *memory.Store, id string, priority model.Priority, createdAt time.Time) {
	store.PutRequest(model.DeliveryRequest{ID: "req-" + id, Priority: priority, HospitalID: "hosp-1", SupplyID: "sup-1", CreatedAt: createdAt})
	store.PutDelivery(model.Delivery{ID: id, RequestID: "req-" + id, Status: model.DeliveryPending, CreatedAt: createdAt})
}

func TestStatusHandler(t *testing.T) {
	store := memory.New()
	seedQueue(store, "d1", model.PriorityEmergency, testNow.Add(-10*time.Minute))
	seedQueue(store, "d2", model.PriorityNormal, testNow.Add(-20*time.Minute))
	store.PutDrone(model.Drone{ID: "drone-1", Status: model.DroneAvailable, Active: true, BatteryLevel: 80, MaxPayloadKg: 10})

	fake := clock.NewFake(testNow)
	provider := corequeue.NewProvider(store, store, store, scoring.NewScorer(fake))
	reporter := corequeue.NewStatusReporter(provider, store, fake)

	h := NewStatusHandler(reporter)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/queue/status", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out corequeue.Status
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalPending != 2 {
		t.Fatalf("total pending %d", out.TotalPending)
	}
	if out.ByPriority["emergency"] != 1 || out.ByPriority["normal"] != 1 {
		t.Fatalf("by priority %#v", out.ByPriority)
	}
	if out.OldestWaitMinutes != 20 {
		t.Fatalf("oldest wait %d", out.OldestWaitMinutes)
	}
	if out.AvailableDrones != 1 {
		t.Fatalf("available drones %d", out.AvailableDrones)
	}
}

func TestAlertsHandler(t *testing.T) {
	store := memory.New()
	seedQueue(store, "d1", model.PriorityEmergency, testNow.Add(-25*time.Minute))

	monitor := sla.NewMonitor(store, store, store, 0, clock.NewFake(testNow), logger.Nop{}, nil)
	h := NewAlertsHandler(monitor)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/alerts", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []sla.Alert
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].DeliveryID != "d1" {
		t.Fatalf("unexpected alerts %#v", out)
	}
}

func TestAlertsHandler_EmptyList(t *testing.T) {
	store := memory.New()
	monitor := sla.NewMonitor(store, store, store, 0, clock.NewFake(testNow), logger.Nop{}, nil)
	h := NewAlertsHandler(monitor)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/alerts", nil)
	h.ServeHTTP(rr, req)
	if body := rr.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}
