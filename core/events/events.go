// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - CycleEvent: a dispatch cycle finished
//   - AssignmentEvent: a drone was bound to a delivery
//   - ConflictEvent: a claim attempt lost a concurrent race
//   - AlertEvent: the SLA monitor flagged an overdue emergency delivery
package events

import "time"

// CycleEvent is published after every dispatch cycle.
type CycleEvent struct {
	CycleID  string
	Assigned int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// AssignmentEvent is published for each successful claim.
type AssignmentEvent struct {
	CycleID    string
	DeliveryID string
	DroneID    string
	HubID      string
	Score      int
	Priority   string
	Emergency  bool
}

// ConflictEvent is published when a candidate drone was claimed by a
// concurrent transaction before ours committed.
type ConflictEvent struct {
	CycleID    string
	DeliveryID string
	DroneID    string
}

// AlertEvent is published for each SLA breach detected.
type AlertEvent struct {
	DeliveryID  string
	WaitMinutes int
}
