package model

import "time"

// DeliveryStatus tracks a delivery through its lifecycle. The dispatch core
// only drives the pending to assigned transition; later transitions belong
// to the fulfillment services.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryAssigned  DeliveryStatus = "assigned"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCompleted DeliveryStatus = "completed"
	DeliveryCancelled DeliveryStatus = "cancelled"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether the coordinate is unset.
func (c Coordinate) IsZero() bool { return c.Lat == 0 && c.Lon == 0 }

// DeliveryRequest is the hospital-facing order a delivery was created from.
type DeliveryRequest struct {
	ID         string    `json:"id"`
	Priority   Priority  `json:"priority"`
	HospitalID string    `json:"hospital_id"`
	SupplyID   string    `json:"supply_id"`
	Quantity   int       `json:"quantity"`
	WeightKg   float64   `json:"weight_kg"` // 0 means unspecified
	CreatedAt  time.Time `json:"created_at"`
}

// Delivery is one unit of work for the dispatch engine.
type Delivery struct {
	ID        string         `json:"id"`
	RequestID string         `json:"request_id"`
	Status    DeliveryStatus `json:"status"`
	DroneID   string         `json:"drone_id,omitempty"`
	Pickup    Coordinate     `json:"pickup"`
	CreatedAt time.Time      `json:"created_at"`
	AssignedAt time.Time     `json:"assigned_at,omitempty"`
}

// Unassigned reports whether the delivery still waits for a drone.
func (d Delivery) Unassigned() bool {
	return d.Status == DeliveryPending && d.DroneID == ""
}

// Hospital is the delivery destination.
type Hospital struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Location     Coordinate `json:"location"`
	HighPriority bool       `json:"high_priority"`
}

// Supply describes the requested medical item.
type Supply struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}
