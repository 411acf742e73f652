package drones

import (
	"encoding/json"
	"net/http"

	"github.com/medifleet/dispatch/core/dronestatus"
)

// NewStatusHandler returns an HTTP handler exposing drone status data via GET /api/drones/status.
func NewStatusHandler(store dronestatus.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f := dronestatus.Filter{
			HubID: r.URL.Query().Get("hub_id"),
		}
		entries := store.List(f)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
