package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medifleet/dispatch/core/events"
	coremetrics "github.com/medifleet/dispatch/core/metrics"
	"github.com/medifleet/dispatch/internal/eventbus"
)

func TestPromSink_RecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	err = sink.RecordOutcomes([]coremetrics.OutcomeRecord{
		{DeliveryID: "d1", Outcome: "assigned", Priority: "emergency"},
		{DeliveryID: "d2", Outcome: "failed", Priority: "normal"},
	})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "dispatch_outcomes_total" {
			found = true
			assert.Len(t, f.GetMetric(), 2)
		}
	}
	assert.True(t, found, "dispatch_outcomes_total should be gathered")
}

func TestPromSink_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	// Registering twice reuses the existing collectors.
	_, err = NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
}

func TestPromSink_RecordCycleAndAlerts(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordCycle(coremetrics.CycleStats{
		CycleID:  "c1",
		Assigned: 2,
		Duration: 120 * time.Millisecond,
	}))
	require.NoError(t, sink.RecordAlerts(2, time.Now()))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["dispatch_cycle_seconds"])
	assert.True(t, names["sla_alerts_total"])
}

func TestStartEventCollector_ForwardsAlerts(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		StartEventCollector(ctx, bus, sink)
		close(done)
	}()

	// Give the collector a moment to subscribe before publishing.
	time.Sleep(20 * time.Millisecond)
	bus.Publish(events.AlertEvent{DeliveryID: "d1", WaitMinutes: 22})
	bus.Publish(events.CycleEvent{CycleID: "c1", Assigned: 1, Duration: time.Second})

	assert.Eventually(t, func() bool {
		families, err := reg.Gather()
		if err != nil {
			return false
		}
		for _, f := range families {
			if f.GetName() == "sla_alerts_total" {
				for _, m := range f.GetMetric() {
					if m.GetCounter().GetValue() >= 1 {
						return true
					}
				}
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop on context cancel")
	}
}

func TestSinkFactory_Builtins(t *testing.T) {
	sink, err := coremetrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, sink)
}
