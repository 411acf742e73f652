// Package notify defines the outbound notification hooks the dispatch
// engine invokes. Delivery of the notifications themselves (SMS, dashboard
// push) is handled by external collaborators.
package notify

import (
	"context"
	"time"
)

// EmergencyNotice announces that an emergency delivery was just assigned.
type EmergencyNotice struct {
	DeliveryID string    `json:"delivery_id"`
	DroneID    string    `json:"drone_id"`
	HubID      string    `json:"hub_id"`
	Hospital   string    `json:"hospital,omitempty"`
	Score      int       `json:"score"`
	AssignedAt time.Time `json:"assigned_at"`
}

// SLABreach announces an overdue unassigned emergency delivery.
type SLABreach struct {
	AlertID     string    `json:"alert_id"`
	DeliveryID  string    `json:"delivery_id"`
	WaitMinutes int       `json:"wait_minutes"`
	Message     string    `json:"message"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Notifier publishes high-priority notifications.
type Notifier interface {
	NotifyEmergencyAssignment(ctx context.Context, n EmergencyNotice) error
	NotifySLABreach(ctx context.Context, b SLABreach) error
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) NotifyEmergencyAssignment(context.Context, EmergencyNotice) error { return nil }
func (Nop) NotifySLABreach(context.Context, SLABreach) error                 { return nil }
