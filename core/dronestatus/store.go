// Package dronestatus keeps a queryable snapshot of each drone's last known
// state and dispatch decision.
package dronestatus

import (
	"sort"
	"sync"
	"time"
)

// LastAssignment summarizes the most recent dispatch decision for a drone.
type LastAssignment struct {
	DeliveryID string    `json:"delivery_id"`
	CycleID    string    `json:"cycle_id"`
	Score      int       `json:"score"`
	Priority   string    `json:"priority"`
	Timestamp  time.Time `json:"timestamp"`
}

// Status captures the current known state of a drone.
type Status struct {
	DroneID        string         `json:"drone_id"`
	HubID          string         `json:"hub_id,omitempty"`
	CurrentStatus  string         `json:"current_status"`
	BatteryLevel   int            `json:"battery_level,omitempty"`
	LastAssignment LastAssignment `json:"last_assignment"`
}

// Filter restricts listings.
type Filter struct {
	HubID string
}

// Store keeps drone status snapshots.
type Store interface {
	Set(Status)
	List(Filter) []Status
	RecordAssignment(id string, a LastAssignment)
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

func (s *MemoryStore) Set(st Status) {
	s.mu.Lock()
	s.data[st.DroneID] = st
	s.mu.Unlock()
}

func (s *MemoryStore) RecordAssignment(id string, a LastAssignment) {
	s.mu.Lock()
	st := s.data[id]
	if st.DroneID == "" {
		st.DroneID = id
	}
	st.LastAssignment = a
	st.CurrentStatus = "assigned"
	s.data[id] = st
	s.mu.Unlock()
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.HubID != "" && st.HubID != f.HubID {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DroneID < res[j].DroneID })
	return res
}
