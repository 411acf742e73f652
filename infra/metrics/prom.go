package metrics

import (
	"time"

	coremetrics "github.com/medifleet/dispatch/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records dispatch outcomes in Prometheus metrics.
type PromSink struct {
	outcomes *prometheus.CounterVec
	cycles   *prometheus.HistogramVec
	alerts   prometheus.Counter
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_outcomes_total",
		Help: "Total number of per-delivery dispatch outcomes",
	}, []string{"outcome", "priority"})
	cycles := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_cycle_seconds",
		Help:    "Dispatch cycle duration as seen by the metrics sink",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	alerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sla_alerts_total",
		Help: "Total number of SLA breach alerts emitted",
	})

	if err := reg.Register(outcomes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			outcomes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(cycles); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			cycles = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(alerts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			alerts = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	return &PromSink{outcomes: outcomes, cycles: cycles, alerts: alerts}, nil
}

// RecordOutcomes increments the outcome counters.
func (s *PromSink) RecordOutcomes(records []coremetrics.OutcomeRecord) error {
	for _, r := range records {
		s.outcomes.WithLabelValues(r.Outcome, r.Priority).Inc()
	}
	return nil
}

// RecordCycle observes the cycle duration.
func (s *PromSink) RecordCycle(stats coremetrics.CycleStats) error {
	outcome := "ok"
	if stats.Errors > 0 {
		outcome = "errors"
	}
	s.cycles.WithLabelValues(outcome).Observe(stats.Duration.Seconds())
	return nil
}

// RecordAlerts counts emitted SLA alerts.
func (s *PromSink) RecordAlerts(count int, _ time.Time) error {
	s.alerts.Add(float64(count))
	return nil
}
