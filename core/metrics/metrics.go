package metrics

import "time"

// OutcomeRecord represents one per-delivery dispatch outcome to be recorded.
type OutcomeRecord struct {
	CycleID    string
	DeliveryID string
	DroneID    string
	HubID      string
	Score      int
	Priority   string
	Outcome    string
	Reason     string
	Time       time.Time
}

// MetricsSink records dispatch outcomes for observability purposes.
type MetricsSink interface {
	RecordOutcomes(records []OutcomeRecord) error
}

// CycleStats summarizes one dispatch cycle.
type CycleStats struct {
	CycleID   string
	Assigned  int
	Failed    int
	Skipped   int
	Errors    int
	QueueSize int
	Duration  time.Duration
	Time      time.Time
}

// CycleRecorder optionally records per-cycle aggregates.
type CycleRecorder interface {
	RecordCycle(stats CycleStats) error
}

// AlertRecorder optionally records SLA breach alerts.
type AlertRecorder interface {
	RecordAlerts(count int, at time.Time) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordOutcomes([]OutcomeRecord) error { return nil }
