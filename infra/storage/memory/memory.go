// Package memory provides an in-process implementation of the storage
// interfaces. One mutex guards all records, so the claim in Assign is a
// true compare-and-swap: the re-validation and the write happen under the
// same lock, held only for the duration of a single claim attempt.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/core/storage"
)

// Store holds all records in memory. The zero value is not usable; call New.
type Store struct {
	mu          sync.Mutex
	deliveries  map[string]model.Delivery
	requests    map[string]model.DeliveryRequest
	drones      map[string]model.Drone
	hubs        map[string]model.Hub
	hospitals   map[string]model.Hospital
	supplies    map[string]model.Supply
	maintenance map[string][]model.MaintenanceRecord
}

var _ storage.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		deliveries:  map[string]model.Delivery{},
		requests:    map[string]model.DeliveryRequest{},
		drones:      map[string]model.Drone{},
		hubs:        map[string]model.Hub{},
		hospitals:   map[string]model.Hospital{},
		supplies:    map[string]model.Supply{},
		maintenance: map[string][]model.MaintenanceRecord{},
	}
}

// PutDelivery inserts or replaces a delivery.
func (s *Store) PutDelivery(d model.Delivery) {
	s.mu.Lock()
	s.deliveries[d.ID] = d
	s.mu.Unlock()
}

// PutRequest inserts or replaces a delivery request.
func (s *Store) PutRequest(r model.DeliveryRequest) {
	s.mu.Lock()
	s.requests[r.ID] = r
	s.mu.Unlock()
}

// PutDrone inserts or replaces a drone.
func (s *Store) PutDrone(d model.Drone) {
	s.mu.Lock()
	s.drones[d.ID] = d
	s.mu.Unlock()
}

// PutHub inserts or replaces a hub.
func (s *Store) PutHub(h model.Hub) {
	s.mu.Lock()
	s.hubs[h.ID] = h
	s.mu.Unlock()
}

// PutHospital inserts or replaces a hospital.
func (s *Store) PutHospital(h model.Hospital) {
	s.mu.Lock()
	s.hospitals[h.ID] = h
	s.mu.Unlock()
}

// PutSupply inserts or replaces a supply.
func (s *Store) PutSupply(sp model.Supply) {
	s.mu.Lock()
	s.supplies[sp.ID] = sp
	s.mu.Unlock()
}

// AddMaintenance appends a maintenance record for its drone.
func (s *Store) AddMaintenance(r model.MaintenanceRecord) {
	s.mu.Lock()
	s.maintenance[r.DroneID] = append(s.maintenance[r.DroneID], r)
	s.mu.Unlock()
}

func (s *Store) ListPending(ctx context.Context) ([]model.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Delivery
	for _, d := range s.deliveries {
		if d.Unassigned() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetDelivery(ctx context.Context, id string) (model.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deliveries[id]
	if !ok {
		return model.Delivery{}, storage.ErrNotFound
	}
	return d, nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (model.DeliveryRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return model.DeliveryRequest{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListByHub(ctx context.Context, hubID string) ([]model.Drone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Drone
	for _, d := range s.drones {
		if d.HubID == hubID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListAvailable(ctx context.Context) ([]model.Drone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Drone
	for _, d := range s.drones {
		if d.Active && d.Status == model.DroneAvailable {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CountAvailable(ctx context.Context) (int, error) {
	drones, err := s.ListAvailable(ctx)
	return len(drones), err
}

func (s *Store) ListOperational(ctx context.Context) ([]model.Hub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Hub
	for _, h := range s.hubs {
		if h.Active && h.Operational {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetHospital(ctx context.Context, id string) (model.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hospitals[id]
	if !ok {
		return model.Hospital{}, storage.ErrNotFound
	}
	return h, nil
}

func (s *Store) GetSupply(ctx context.Context, id string) (model.Supply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.supplies[id]
	if !ok {
		return model.Supply{}, storage.ErrNotFound
	}
	return sp, nil
}

func (s *Store) RecentByDrone(ctx context.Context, droneID string, since time.Time) ([]model.MaintenanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MaintenanceRecord
	for _, r := range s.maintenance[droneID] {
		if !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Assign binds the drone to the delivery if and only if the delivery is
// still pending and the drone is still available. Both checks and both
// writes happen under one lock, so at most one claimant wins a drone.
func (s *Store) Assign(ctx context.Context, deliveryID, droneID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[deliveryID]
	if !ok {
		return storage.ErrNotFound
	}
	if d.Status != model.DeliveryPending || d.DroneID != "" {
		return storage.ErrDeliveryNotPending
	}
	dr, ok := s.drones[droneID]
	if !ok {
		return storage.ErrNotFound
	}
	if dr.Status != model.DroneAvailable || !dr.Active {
		return storage.ErrDroneUnavailable
	}

	d.Status = model.DeliveryAssigned
	d.DroneID = droneID
	d.AssignedAt = now
	dr.Status = model.DroneAssigned
	dr.CurrentDeliveryID = deliveryID
	s.deliveries[deliveryID] = d
	s.drones[droneID] = dr
	return nil
}
