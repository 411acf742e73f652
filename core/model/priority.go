package model

import "strings"

// Priority is the canonical urgency level attached to a delivery request.
// Upstream systems use several overlapping vocabularies ("critical",
// "urgent", "medium"); ParsePriority folds them all into this enum.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityEmergency
)

// ParsePriority maps a raw priority label to the canonical enum. Unknown
// labels resolve to PriorityNormal.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "emergency", "critical":
		return PriorityEmergency
	case "high", "urgent":
		return PriorityHigh
	case "medium", "normal":
		return PriorityNormal
	case "low":
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// String returns the canonical label for the priority.
func (p Priority) String() string {
	switch p {
	case PriorityEmergency:
		return "emergency"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "normal"
	}
}

// BaseScore returns the scoring baseline for the priority tier.
func (p Priority) BaseScore() float64 {
	switch p {
	case PriorityEmergency:
		return 100
	case PriorityHigh:
		return 50
	case PriorityLow:
		return 5
	default:
		return 10
	}
}
