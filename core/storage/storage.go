package storage

import (
	"context"
	"time"

	"github.com/medifleet/dispatch/core/model"
)

// DeliveryStore provides read access to deliveries and their originating
// requests. Listing never mutates persisted state.
type DeliveryStore interface {
	// ListPending returns deliveries with status pending and no drone bound.
	ListPending(ctx context.Context) ([]model.Delivery, error)
	GetDelivery(ctx context.Context, id string) (model.Delivery, error)
	GetRequest(ctx context.Context, id string) (model.DeliveryRequest, error)
}

// DroneStore provides read access to the fleet.
type DroneStore interface {
	// ListByHub returns every drone stationed at the hub.
	ListByHub(ctx context.Context, hubID string) ([]model.Drone, error)
	// CountAvailable returns the number of active, available drones.
	CountAvailable(ctx context.Context) (int, error)
	// ListAvailable returns every active, available drone.
	ListAvailable(ctx context.Context) ([]model.Drone, error)
}

// HubStore provides read access to launch hubs.
type HubStore interface {
	// ListOperational returns hubs that are active and operational.
	ListOperational(ctx context.Context) ([]model.Hub, error)
}

// HospitalStore resolves delivery destinations.
type HospitalStore interface {
	GetHospital(ctx context.Context, id string) (model.Hospital, error)
}

// SupplyStore resolves requested supplies.
type SupplyStore interface {
	GetSupply(ctx context.Context, id string) (model.Supply, error)
}

// MaintenanceStore provides the recent maintenance history of a drone.
type MaintenanceStore interface {
	// RecentByDrone returns maintenance records created at or after since.
	RecentByDrone(ctx context.Context, droneID string, since time.Time) ([]model.MaintenanceRecord, error)
}

// AssignmentStore performs the atomic claim binding one drone to one
// delivery. Implementations must re-validate delivery.status == pending and
// drone.status == available inside the same atomic scope as the write, so a
// candidate selected from a stale read can never be claimed twice.
type AssignmentStore interface {
	// Assign transitions the delivery to assigned and the drone to assigned
	// as one indivisible update. It returns ErrDeliveryNotPending if the
	// delivery moved past pending, and ErrDroneUnavailable if the drone was
	// claimed concurrently. On any error no partial state is left behind.
	Assign(ctx context.Context, deliveryID, droneID string, now time.Time) error
}

// Store aggregates every repository the dispatch engine consumes.
type Store interface {
	DeliveryStore
	DroneStore
	HubStore
	HospitalStore
	SupplyStore
	MaintenanceStore
	AssignmentStore
}
