package metrics

import (
	"context"
	"time"

	"github.com/medifleet/dispatch/core/events"
	coremetrics "github.com/medifleet/dispatch/core/metrics"
	"github.com/medifleet/dispatch/internal/eventbus"
	"github.com/medifleet/dispatch/infra/logger"
)

// StartEventCollector subscribes to the event bus and forwards SLA alert
// events to the sink. Cycle stats are recorded by the orchestrator itself,
// so only alerts flow through here. It returns once the context is canceled
// or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	alertRec, ok := sink.(coremetrics.AlertRecorder)
	if !ok {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			if ev, isAlert := e.(events.AlertEvent); isAlert {
				if err := alertRec.RecordAlerts(1, time.Now()); err != nil {
					log.Errorf("record alert %s: %v", ev.DeliveryID, err)
				}
			}
		}
	}
}
