package dispatch

import (
	"encoding/json"
	"net/http"

	coredispatch "github.com/medifleet/dispatch/core/dispatch"
)

// NewRunHandler returns an HTTP handler running one dispatch cycle on
// POST /api/dispatch/run and returning the cycle result.
func NewRunHandler(o *coredispatch.Orchestrator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res := o.RunCycle(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
