package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cycleDuration      prometheus.Histogram
	deliveriesAssigned *prometheus.CounterVec
	dispatchFailures   *prometheus.CounterVec
	deliveriesSkipped  prometheus.Counter
	claimConflicts     prometheus.Counter
	queueDepth         prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Histogram, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter, prometheus.Gauge) {
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_cycle_duration_seconds",
			Help:    "Duration of full dispatch cycles",
			Buckets: prometheus.DefBuckets,
		},
	)
	asn := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deliveries_assigned_total",
			Help: "Number of deliveries bound to a drone",
		},
		[]string{"priority"},
	)
	fail := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_failures_total",
			Help: "Number of deliveries that could not be dispatched",
		},
		[]string{"reason"},
	)
	skip := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "deliveries_skipped_total",
			Help: "Number of deliveries skipped because a concurrent run claimed them",
		},
	)
	conf := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drone_claim_conflicts_total",
			Help: "Number of claim attempts lost to a concurrent transaction",
		},
	)
	depth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_queue_depth",
			Help: "Size of the pending delivery queue at cycle start",
		},
	)
	return dur, asn, fail, skip, conf, depth
}

func init() {
	cycleDuration, deliveriesAssigned, dispatchFailures, deliveriesSkipped, claimConflicts, queueDepth = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(cycleDuration, deliveriesAssigned, dispatchFailures, deliveriesSkipped, claimConflicts, queueDepth)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	cycleDuration, deliveriesAssigned, dispatchFailures, deliveriesSkipped, claimConflicts, queueDepth = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
