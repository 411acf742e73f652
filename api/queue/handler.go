package queue

import (
	"encoding/json"
	"net/http"

	corequeue "github.com/medifleet/dispatch/core/queue"
	"github.com/medifleet/dispatch/core/sla"
)

// NewStatusHandler returns an HTTP handler exposing the queue snapshot via
// GET /api/queue/status.
func NewStatusHandler(reporter *corequeue.StatusReporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		st, err := reporter.Snapshot(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewAlertsHandler returns an HTTP handler running one SLA scan via
// GET /api/alerts. The scan is read-only, so exposing it as GET is safe.
func NewAlertsHandler(monitor *sla.Monitor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		alerts := monitor.Check(r.Context())
		if alerts == nil {
			alerts = []sla.Alert{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(alerts); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
