package queue

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/medifleet/dispatch/core/storage"
	"github.com/medifleet/dispatch/internal/clock"
)

// Status summarizes the pending queue and fleet readiness.
type Status struct {
	TotalPending      int            `json:"total_pending"`
	ByPriority        map[string]int `json:"by_priority"`
	OldestWaitMinutes int            `json:"oldest_wait_minutes"`
	MeanWaitMinutes   float64        `json:"mean_wait_minutes"`
	AvailableDrones   int            `json:"available_drones"`
	MeanBatteryLevel  float64        `json:"mean_battery_level"`
}

// StatusReporter computes queue status snapshots.
type StatusReporter struct {
	provider *Provider
	drones   storage.DroneStore
	clock    clock.Clock
}

// NewStatusReporter returns a reporter over the queue and fleet stores.
func NewStatusReporter(provider *Provider, drones storage.DroneStore, c clock.Clock) *StatusReporter {
	if c == nil {
		c = clock.Real{}
	}
	return &StatusReporter{provider: provider, drones: drones, clock: c}
}

// Snapshot returns the current queue status. It is read-only.
func (r *StatusReporter) Snapshot(ctx context.Context) (Status, error) {
	items, err := r.provider.Pending(ctx)
	if err != nil {
		return Status{}, err
	}

	now := r.clock.Now()
	st := Status{
		TotalPending: len(items),
		ByPriority:   make(map[string]int),
	}
	waits := make([]float64, 0, len(items))
	for _, it := range items {
		st.ByPriority[it.Priority.String()]++
		wait := now.Sub(it.Delivery.CreatedAt).Minutes()
		if wait < 0 {
			wait = 0
		}
		waits = append(waits, wait)
		if m := int(wait); m > st.OldestWaitMinutes {
			st.OldestWaitMinutes = m
		}
	}
	if len(waits) > 0 {
		st.MeanWaitMinutes = math.Round(stat.Mean(waits, nil)*100) / 100
	}

	avail, err := r.drones.ListAvailable(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("list available drones: %w", err)
	}
	st.AvailableDrones = len(avail)
	if len(avail) > 0 {
		batteries := make([]float64, len(avail))
		for i, d := range avail {
			batteries[i] = float64(d.BatteryLevel)
		}
		st.MeanBatteryLevel = math.Round(stat.Mean(batteries, nil)*100) / 100
	}
	return st, nil
}
