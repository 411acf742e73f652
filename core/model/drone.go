package model

import "time"

// DroneStatus reflects the operational state reported by the fleet.
type DroneStatus string

const (
	DroneAvailable   DroneStatus = "available"
	DroneAssigned    DroneStatus = "assigned"
	DroneInFlight    DroneStatus = "in_flight"
	DroneCharging    DroneStatus = "charging"
	DroneMaintenance DroneStatus = "maintenance"
)

// Drone represents one aircraft stationed at a hub.
type Drone struct {
	ID                string      `json:"id"`
	Status            DroneStatus `json:"status"`
	BatteryLevel      int         `json:"battery_level"` // 0-100
	MaxPayloadKg      float64     `json:"max_payload_kg"`
	TotalFlightHours  float64     `json:"total_flight_hours"`
	HubID             string      `json:"hub_id"`
	Active            bool        `json:"active"`
	CurrentDeliveryID string      `json:"current_delivery_id,omitempty"`
}

// Hub is a depot drones launch from.
type Hub struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Location    Coordinate `json:"location"`
	Active      bool       `json:"active"`
	Operational bool       `json:"operational"`
}

// MaintenanceSeverity classifies a maintenance finding.
type MaintenanceSeverity string

const (
	MaintenanceMinor    MaintenanceSeverity = "minor"
	MaintenanceModerate MaintenanceSeverity = "moderate"
	MaintenanceCritical MaintenanceSeverity = "critical"
)

// MaintenanceRecord is one maintenance finding for a drone.
type MaintenanceRecord struct {
	ID        string              `json:"id"`
	DroneID   string              `json:"drone_id"`
	Severity  MaintenanceSeverity `json:"severity"`
	Status    string              `json:"status"` // open, in_progress, completed
	CreatedAt time.Time           `json:"created_at"`
}

// Completed reports whether the maintenance work is done.
func (r MaintenanceRecord) Completed() bool { return r.Status == "completed" }
