// Package logging persists dispatch cycle decisions for audit and replay.
package logging

import (
	"context"
	"time"
)

// Outcome mirrors the per-delivery result of a cycle for persistence.
type Outcome struct {
	DeliveryID string `json:"delivery_id"`
	Kind       string `json:"kind"`
	Score      int    `json:"score"`
	Priority   string `json:"priority"`
	DroneID    string `json:"drone_id,omitempty"`
	HubID      string `json:"hub_id,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
}

// LogRecord captures one dispatch cycle and its outcomes.
type LogRecord struct {
	Timestamp time.Time     `json:"timestamp"`
	CycleID   string        `json:"cycle_id"`
	QueueSize int           `json:"queue_size"`
	Assigned  int           `json:"assigned"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`
	Outcomes  []Outcome     `json:"outcomes"`
}

// LogQuery defines filters for retrieving records.
type LogQuery struct {
	Start      time.Time
	End        time.Time
	CycleID    string
	DeliveryID string
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

func (r LogRecord) matchesDelivery(id string) bool {
	if id == "" {
		return true
	}
	for _, o := range r.Outcomes {
		if o.DeliveryID == id {
			return true
		}
	}
	return false
}
