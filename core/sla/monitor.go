// Package sla watches for urgent deliveries that wait too long for a drone.
package sla

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medifleet/dispatch/core/events"
	"github.com/medifleet/dispatch/core/logger"
	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/core/monitoring"
	"github.com/medifleet/dispatch/core/storage"
	"github.com/medifleet/dispatch/internal/clock"
	"github.com/medifleet/dispatch/internal/eventbus"
)

// DefaultThreshold is the wait beyond which an unassigned emergency
// delivery breaches its service level.
const DefaultThreshold = 15 * time.Minute

// Alert records one SLA breach.
type Alert struct {
	ID          string    `json:"id"`
	DeliveryID  string    `json:"delivery_id"`
	Hospital    string    `json:"hospital"`
	Supply      string    `json:"supply"`
	WaitMinutes int       `json:"wait_minutes"`
	Priority    string    `json:"priority"`
	Message     string    `json:"message"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Monitor scans pending deliveries for SLA breaches. It is strictly
// read-only and intended to run on a tighter cadence than dispatch cycles.
type Monitor struct {
	deliveries storage.DeliveryStore
	hospitals  storage.HospitalStore
	supplies   storage.SupplyStore
	threshold  time.Duration
	clock      clock.Clock
	log        logger.Logger
	bus        eventbus.EventBus
}

// NewMonitor returns a Monitor. A zero threshold uses DefaultThreshold and
// a nil clock falls back to the wall clock. The bus is optional.
func NewMonitor(deliveries storage.DeliveryStore, hospitals storage.HospitalStore, supplies storage.SupplyStore, threshold time.Duration, c clock.Clock, log logger.Logger, bus eventbus.EventBus) *Monitor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if c == nil {
		c = clock.Real{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Monitor{
		deliveries: deliveries,
		hospitals:  hospitals,
		supplies:   supplies,
		threshold:  threshold,
		clock:      c,
		log:        log,
		bus:        bus,
	}
}

// Check returns one alert per unassigned emergency delivery whose wait
// exceeds the threshold. Store failures are logged and degrade to an empty
// list; Check never fails the caller.
func (m *Monitor) Check(ctx context.Context) []Alert {
	pending, err := m.deliveries.ListPending(ctx)
	if err != nil {
		m.log.Errorf("sla scan failed: %v", err)
		monitoring.CaptureException(err, map[string]string{"component": "sla"})
		return nil
	}

	now := m.clock.Now()
	var alerts []Alert
	for _, d := range pending {
		if !d.Unassigned() {
			continue
		}
		req, err := m.deliveries.GetRequest(ctx, d.RequestID)
		if err != nil {
			m.log.Warnf("sla scan: request %s: %v", d.RequestID, err)
			continue
		}
		if req.Priority != model.PriorityEmergency {
			continue
		}
		wait := now.Sub(d.CreatedAt)
		if wait <= m.threshold {
			continue
		}
		alerts = append(alerts, m.buildAlert(ctx, d, req, wait, now))
	}
	return alerts
}

func (m *Monitor) buildAlert(ctx context.Context, d model.Delivery, req model.DeliveryRequest, wait time.Duration, now time.Time) Alert {
	a := Alert{
		ID:          uuid.NewString(),
		DeliveryID:  d.ID,
		WaitMinutes: int(wait.Minutes()),
		Priority:    req.Priority.String(),
		DetectedAt:  now,
	}
	if hosp, err := m.hospitals.GetHospital(ctx, req.HospitalID); err == nil {
		a.Hospital = hosp.Name
	}
	if supply, err := m.supplies.GetSupply(ctx, req.SupplyID); err == nil {
		a.Supply = supply.Name
	}
	a.Message = fmt.Sprintf("emergency delivery %s unassigned for %d minutes", d.ID, a.WaitMinutes)
	if m.bus != nil {
		m.bus.Publish(events.AlertEvent{DeliveryID: d.ID, WaitMinutes: a.WaitMinutes})
	}
	return a
}
