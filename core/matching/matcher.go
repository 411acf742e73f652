package matching

import (
	"context"
	"errors"
	"sort"

	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/core/storage"
	"github.com/medifleet/dispatch/internal/clock"
)

// ErrNoEligibleDrone is returned when no drone at the hub passes the hard
// constraints. Retryable on the next cycle.
var ErrNoEligibleDrone = errors.New("matching: no eligible drone")

const (
	// minBatteryLevel is the lowest charge a drone may launch with.
	minBatteryLevel = 30
	// defaultPayloadKg is assumed when a request does not state a weight.
	defaultPayloadKg = 5.0
	// maintenanceWindowDays is how far back critical findings disqualify a drone.
	maintenanceWindowDays = 7
)

// Candidate is a drone that passed all eligibility constraints, with its
// ranking score.
type Candidate struct {
	Drone model.Drone
	Rank  float64
}

// Matcher filters and ranks drones at a hub for one delivery.
type Matcher struct {
	drones      storage.DroneStore
	maintenance storage.MaintenanceStore
	clock       clock.Clock
}

// NewMatcher returns a Matcher backed by the given stores. A nil clock
// falls back to the wall clock.
func NewMatcher(drones storage.DroneStore, maintenance storage.MaintenanceStore, c clock.Clock) *Matcher {
	if c == nil {
		c = clock.Real{}
	}
	return &Matcher{drones: drones, maintenance: maintenance, clock: c}
}

// Candidates returns the eligible drones at the hub ranked best first. The
// full slice is returned so callers losing a claim race can fall through to
// the next candidate without re-running the search.
func (m *Matcher) Candidates(ctx context.Context, hubID string, weightKg float64) ([]Candidate, error) {
	if weightKg <= 0 {
		weightKg = defaultPayloadKg
	}
	drones, err := m.drones.ListByHub(ctx, hubID)
	if err != nil {
		return nil, err
	}

	since := m.clock.Now().AddDate(0, 0, -maintenanceWindowDays)
	var eligible []Candidate
	for _, d := range drones {
		if !Eligible(d, weightKg) {
			continue
		}
		records, err := m.maintenance.RecentByDrone(ctx, d.ID, since)
		if err != nil {
			return nil, err
		}
		if HasOpenCriticalMaintenance(records) {
			continue
		}
		eligible = append(eligible, Candidate{Drone: d, Rank: RankScore(d)})
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleDrone
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Rank > eligible[j].Rank
	})
	return eligible, nil
}

// Eligible applies the hard constraints that do not need maintenance data.
func Eligible(d model.Drone, weightKg float64) bool {
	return d.Status == model.DroneAvailable &&
		d.Active &&
		d.BatteryLevel >= minBatteryLevel &&
		d.MaxPayloadKg >= weightKg
}

// RankScore favors higher charge and lower cumulative wear.
func RankScore(d model.Drone) float64 {
	return float64(d.BatteryLevel)*10 - d.TotalFlightHours
}

// HasOpenCriticalMaintenance reports whether any record is critical and not
// completed. Callers pass records already restricted to the lookback
// window, keeping this predicate free of persistence concerns.
func HasOpenCriticalMaintenance(records []model.MaintenanceRecord) bool {
	for _, r := range records {
		if r.Severity == model.MaintenanceCritical && !r.Completed() {
			return true
		}
	}
	return false
}
