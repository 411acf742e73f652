package metrics

import (
	"errors"
	"time"
)

// MultiSink fans records out to several sinks. Errors are collected so one
// failing sink does not hide the others.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordOutcomes(records []OutcomeRecord) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordOutcomes(records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordCycle forwards cycle stats to every sink implementing CycleRecorder.
func (m *MultiSink) RecordCycle(stats CycleStats) error {
	var errs []error
	for _, s := range m.Sinks {
		if cr, ok := s.(CycleRecorder); ok {
			if err := cr.RecordCycle(stats); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordAlerts forwards alert counts to every sink implementing AlertRecorder.
func (m *MultiSink) RecordAlerts(count int, at time.Time) error {
	var errs []error
	for _, s := range m.Sinks {
		if ar, ok := s.(AlertRecorder); ok {
			if err := ar.RecordAlerts(count, at); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
