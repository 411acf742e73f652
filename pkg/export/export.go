// Package export renders dispatch data in formats consumed by operations
// tooling.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/medifleet/dispatch/core/dispatch/logging"
	"github.com/medifleet/dispatch/core/sla"
)

// WriteAlertsJSON writes SLA alerts to w in JSON format.
func WriteAlertsJSON(w io.Writer, alerts []sla.Alert) error {
	enc := json.NewEncoder(w)
	return enc.Encode(alerts)
}

// WriteAlertsCSV writes SLA alerts to w in CSV format.
func WriteAlertsCSV(w io.Writer, alerts []sla.Alert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"alert_id", "delivery_id", "hospital", "supply", "wait_minutes", "priority", "detected_at"}); err != nil {
		return err
	}
	for _, a := range alerts {
		rec := []string{
			a.ID,
			a.DeliveryID,
			a.Hospital,
			a.Supply,
			strconv.Itoa(a.WaitMinutes),
			a.Priority,
			a.DetectedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOutcomesCSV flattens cycle logs into one CSV row per delivery outcome.
func WriteOutcomesCSV(w io.Writer, records []logging.LogRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"cycle_id", "timestamp", "delivery_id", "outcome", "score", "priority", "drone_id", "hub_id", "reason"}); err != nil {
		return err
	}
	for _, r := range records {
		for _, o := range r.Outcomes {
			rec := []string{
				r.CycleID,
				r.Timestamp.Format(time.RFC3339),
				o.DeliveryID,
				o.Kind,
				strconv.Itoa(o.Score),
				o.Priority,
				o.DroneID,
				o.HubID,
				o.Reason,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
