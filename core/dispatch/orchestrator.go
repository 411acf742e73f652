package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medifleet/dispatch/core/dispatch/logging"
	"github.com/medifleet/dispatch/core/dronestatus"
	"github.com/medifleet/dispatch/core/events"
	"github.com/medifleet/dispatch/core/geo"
	"github.com/medifleet/dispatch/core/logger"
	"github.com/medifleet/dispatch/core/matching"
	"github.com/medifleet/dispatch/core/metrics"
	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/core/monitoring"
	"github.com/medifleet/dispatch/core/notify"
	"github.com/medifleet/dispatch/core/queue"
	"github.com/medifleet/dispatch/core/storage"
	"github.com/medifleet/dispatch/internal/clock"
	"github.com/medifleet/dispatch/internal/eventbus"
)

const (
	reasonNoHub   = "no operational hub"
	reasonNoDrone = "no eligible drone"
)

// Orchestrator drives the priority-sorted queue through hub location, drone
// matching and the atomic claim. One RunCycle call is one synchronous
// batch; overlapping runs are safe because the claim itself is atomic.
type Orchestrator struct {
	queue       *queue.Provider
	locator     *geo.HubLocator
	matcher     *matching.Matcher
	store       storage.Store
	notifier    notify.Notifier
	clock       clock.Clock
	logger      logger.Logger
	metrics     metrics.MetricsSink
	bus         eventbus.EventBus
	logStore    logging.LogStore
	statusStore dronestatus.Store
	mu          sync.Mutex
}

// NewOrchestrator creates an orchestrator. queue, locator, matcher and
// store are mandatory; the notifier defaults to a no-op and the clock to
// the wall clock.
func NewOrchestrator(q *queue.Provider, locator *geo.HubLocator, matcher *matching.Matcher, store storage.Store, notifier notify.Notifier, c clock.Clock, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus) (*Orchestrator, error) {
	if q == nil || locator == nil || matcher == nil || store == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewOrchestrator")
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if c == nil {
		c = clock.Real{}
	}
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Orchestrator{
		queue:    q,
		locator:  locator,
		matcher:  matcher,
		store:    store,
		notifier: notifier,
		clock:    c,
		logger:   log,
		metrics:  sink,
		bus:      bus,
	}, nil
}

// SetLogStore configures the store used to persist cycle logs.
func (o *Orchestrator) SetLogStore(store logging.LogStore) {
	o.mu.Lock()
	o.logStore = store
	o.mu.Unlock()
}

// SetStatusStore configures the store used to persist drone status snapshots.
func (o *Orchestrator) SetStatusStore(store dronestatus.Store) {
	o.mu.Lock()
	o.statusStore = store
	o.mu.Unlock()
}

// Run executes dispatch cycles at the given interval until the context is
// canceled.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			o.RunCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunCycle processes the full pending queue once, strictly in descending
// score order. Failures on one delivery never abort the batch; every item
// yields a tagged outcome. Interruption between items is safe because each
// claim is atomic and the next run re-scans.
func (o *Orchestrator) RunCycle(ctx context.Context) CycleResult {
	start := o.clock.Now()
	res := CycleResult{CycleID: uuid.NewString(), StartedAt: start}

	items, err := o.queue.Pending(ctx)
	if err != nil {
		o.logger.Errorf("queue snapshot failed: %v", err)
		res.Duration = o.clock.Now().Sub(start)
		return res
	}
	queueDepth.Set(float64(len(items)))
	o.logger.Infof("dispatch cycle %s: %d pending deliveries", res.CycleID, len(items))

	for _, it := range items {
		if ctx.Err() != nil {
			o.logger.Warnf("cycle %s interrupted after %d items", res.CycleID, len(res.Details))
			break
		}
		res.add(o.processOne(ctx, res.CycleID, it))
	}

	res.Duration = o.clock.Now().Sub(start)
	cycleDuration.Observe(res.Duration.Seconds())
	if o.bus != nil {
		o.bus.Publish(events.CycleEvent{
			CycleID:  res.CycleID,
			Assigned: res.Assigned,
			Failed:   res.Failed,
			Skipped:  res.Skipped,
			Duration: res.Duration,
		})
	}
	o.record(ctx, res, len(items))
	return res
}

// processOne dispatches a single delivery. Any panic is converted into an
// error outcome so the batch keeps going.
func (o *Orchestrator) processOne(ctx context.Context, cycleID string, it queue.Item) (out Outcome) {
	out = Outcome{DeliveryID: it.Delivery.ID, Score: it.Score, Priority: it.Priority.String()}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Errorf("delivery %s: panic recovered: %v", it.Delivery.ID, r)
			monitoring.CaptureException(fmt.Errorf("dispatch panic: %v", r), map[string]string{
				"cycle_id":    cycleID,
				"delivery_id": it.Delivery.ID,
			})
			out.Kind = OutcomeError
			out.Message = fmt.Sprintf("panic: %v", r)
		}
	}()

	// Re-read the delivery: a concurrent run may have claimed it since the
	// queue snapshot.
	fresh, err := o.store.GetDelivery(ctx, it.Delivery.ID)
	if err == nil && !fresh.Unassigned() {
		deliveriesSkipped.Inc()
		out.Kind = OutcomeSkipped
		return out
	}

	hub, err := o.locator.Nearest(ctx, it.Delivery, it.Request)
	if err != nil {
		if errors.Is(err, geo.ErrNoOperationalHub) {
			return o.fail(out, reasonNoHub)
		}
		return o.unexpected(cycleID, out, err)
	}
	out.HubID = hub.ID

	candidates, err := o.matcher.Candidates(ctx, hub.ID, it.Request.WeightKg)
	if err != nil {
		if errors.Is(err, matching.ErrNoEligibleDrone) {
			return o.fail(out, reasonNoDrone)
		}
		return o.unexpected(cycleID, out, err)
	}

	for _, cand := range candidates {
		err := o.store.Assign(ctx, it.Delivery.ID, cand.Drone.ID, o.clock.Now())
		switch {
		case err == nil:
			return o.assigned(ctx, cycleID, it, hub, cand, out)
		case errors.Is(err, storage.ErrDroneUnavailable):
			// Lost the race for this drone; fall through to the next one.
			claimConflicts.Inc()
			if o.bus != nil {
				o.bus.Publish(events.ConflictEvent{CycleID: cycleID, DeliveryID: it.Delivery.ID, DroneID: cand.Drone.ID})
			}
			o.logger.Debugw("drone claimed concurrently", map[string]any{
				"cycle_id":    cycleID,
				"delivery_id": it.Delivery.ID,
				"drone_id":    cand.Drone.ID,
			})
		case errors.Is(err, storage.ErrDeliveryNotPending):
			deliveriesSkipped.Inc()
			out.Kind = OutcomeSkipped
			return out
		default:
			return o.unexpected(cycleID, out, err)
		}
	}
	// Every ranked candidate was claimed by concurrent runs.
	return o.fail(out, reasonNoDrone)
}

func (o *Orchestrator) assigned(ctx context.Context, cycleID string, it queue.Item, hub model.Hub, cand matching.Candidate, out Outcome) Outcome {
	out.Kind = OutcomeAssigned
	out.DroneID = cand.Drone.ID
	deliveriesAssigned.WithLabelValues(out.Priority).Inc()
	o.logger.Infof("delivery %s assigned to drone %s at hub %s (score %d)", it.Delivery.ID, cand.Drone.ID, hub.ID, it.Score)

	emergency := it.Priority == model.PriorityEmergency
	if o.bus != nil {
		o.bus.Publish(events.AssignmentEvent{
			CycleID:    cycleID,
			DeliveryID: it.Delivery.ID,
			DroneID:    cand.Drone.ID,
			HubID:      hub.ID,
			Score:      it.Score,
			Priority:   out.Priority,
			Emergency:  emergency,
		})
	}
	o.mu.Lock()
	statusStore := o.statusStore
	o.mu.Unlock()
	if statusStore != nil {
		statusStore.RecordAssignment(cand.Drone.ID, dronestatus.LastAssignment{
			DeliveryID: it.Delivery.ID,
			CycleID:    cycleID,
			Score:      it.Score,
			Priority:   out.Priority,
			Timestamp:  o.clock.Now(),
		})
	}
	if emergency {
		notice := notify.EmergencyNotice{
			DeliveryID: it.Delivery.ID,
			DroneID:    cand.Drone.ID,
			HubID:      hub.ID,
			Score:      it.Score,
			AssignedAt: o.clock.Now(),
		}
		if hosp, err := o.store.GetHospital(ctx, it.Request.HospitalID); err == nil {
			notice.Hospital = hosp.Name
		}
		if err := o.notifier.NotifyEmergencyAssignment(ctx, notice); err != nil {
			o.logger.Errorf("emergency notification for %s failed: %v", it.Delivery.ID, err)
		}
	}
	return out
}

func (o *Orchestrator) fail(out Outcome, reason string) Outcome {
	dispatchFailures.WithLabelValues(reason).Inc()
	o.logger.Warnf("delivery %s not dispatched: %s", out.DeliveryID, reason)
	out.Kind = OutcomeFailed
	out.Reason = reason
	return out
}

func (o *Orchestrator) unexpected(cycleID string, out Outcome, err error) Outcome {
	o.logger.Errorf("delivery %s: %v", out.DeliveryID, err)
	monitoring.CaptureException(err, map[string]string{
		"cycle_id":    cycleID,
		"delivery_id": out.DeliveryID,
	})
	out.Kind = OutcomeError
	out.Message = err.Error()
	return out
}

// record persists the cycle to the metrics sink and the log store.
func (o *Orchestrator) record(ctx context.Context, res CycleResult, queueSize int) {
	recs := make([]metrics.OutcomeRecord, 0, len(res.Details))
	logOutcomes := make([]logging.Outcome, 0, len(res.Details))
	for _, d := range res.Details {
		recs = append(recs, metrics.OutcomeRecord{
			CycleID:    res.CycleID,
			DeliveryID: d.DeliveryID,
			DroneID:    d.DroneID,
			HubID:      d.HubID,
			Score:      d.Score,
			Priority:   d.Priority,
			Outcome:    string(d.Kind),
			Reason:     d.Reason,
			Time:       res.StartedAt,
		})
		logOutcomes = append(logOutcomes, logging.Outcome{
			DeliveryID: d.DeliveryID,
			Kind:       string(d.Kind),
			Score:      d.Score,
			Priority:   d.Priority,
			DroneID:    d.DroneID,
			HubID:      d.HubID,
			Reason:     d.Reason,
			Message:    d.Message,
		})
	}
	if err := o.metrics.RecordOutcomes(recs); err != nil {
		o.logger.Errorf("metrics error: %v", err)
	}
	if cr, ok := o.metrics.(metrics.CycleRecorder); ok {
		stats := metrics.CycleStats{
			CycleID:   res.CycleID,
			Assigned:  res.Assigned,
			Failed:    res.Failed,
			Skipped:   res.Skipped,
			Errors:    res.Errors,
			QueueSize: queueSize,
			Duration:  res.Duration,
			Time:      res.StartedAt,
		}
		if err := cr.RecordCycle(stats); err != nil {
			o.logger.Errorf("cycle metrics error: %v", err)
		}
	}
	o.mu.Lock()
	logStore := o.logStore
	o.mu.Unlock()
	if logStore != nil {
		err := logStore.Append(ctx, logging.LogRecord{
			Timestamp: res.StartedAt,
			CycleID:   res.CycleID,
			QueueSize: queueSize,
			Assigned:  res.Assigned,
			Failed:    res.Failed,
			Skipped:   res.Skipped,
			Errors:    res.Errors,
			Duration:  res.Duration,
			Outcomes:  logOutcomes,
		})
		if err != nil {
			o.logger.Errorf("cycle log append failed: %v", err)
		}
	}
}

// Close releases resources held by the orchestrator.
func (o *Orchestrator) Close() error {
	if o.bus != nil {
		o.bus.Close()
	}
	o.mu.Lock()
	logStore := o.logStore
	o.mu.Unlock()
	if logStore != nil {
		return logStore.Close()
	}
	return nil
}
