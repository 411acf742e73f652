package dispatch

import "time"

// OutcomeKind tags the per-delivery result of a dispatch attempt.
type OutcomeKind string

const (
	// OutcomeAssigned means a drone was bound to the delivery.
	OutcomeAssigned OutcomeKind = "assigned"
	// OutcomeFailed means no hub or drone could serve the delivery this
	// cycle; the condition is retryable.
	OutcomeFailed OutcomeKind = "failed"
	// OutcomeSkipped means the delivery was claimed by a concurrent run
	// since the queue snapshot.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeError means an unexpected error was caught for this item.
	OutcomeError OutcomeKind = "error"
)

// Outcome is the tagged per-delivery result. DroneID is set for assigned
// outcomes, Reason for failed ones and Message for errors.
type Outcome struct {
	DeliveryID string      `json:"delivery_id"`
	Kind       OutcomeKind `json:"kind"`
	Score      int         `json:"score"`
	Priority   string      `json:"priority"`
	DroneID    string      `json:"drone_id,omitempty"`
	HubID      string      `json:"hub_id,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// CycleResult aggregates one dispatch cycle.
type CycleResult struct {
	CycleID   string        `json:"cycle_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Assigned  int           `json:"assigned"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Errors    int           `json:"errors"`
	Details   []Outcome     `json:"details"`
}

func (r *CycleResult) add(o Outcome) {
	switch o.Kind {
	case OutcomeAssigned:
		r.Assigned++
	case OutcomeFailed:
		r.Failed++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeError:
		r.Errors++
	}
	r.Details = append(r.Details, o)
}
