package geo

import (
	"context"
	"errors"

	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/core/storage"
)

// ErrNoOperationalHub is returned when no active, operational hub exists.
// The condition is retryable on the next dispatch cycle.
var ErrNoOperationalHub = errors.New("geo: no operational hub")

// HubLocator finds the nearest launch hub for a delivery.
type HubLocator struct {
	hubs      storage.HubStore
	hospitals storage.HospitalStore
}

// NewHubLocator returns a locator backed by the given stores.
func NewHubLocator(hubs storage.HubStore, hospitals storage.HospitalStore) *HubLocator {
	return &HubLocator{hubs: hubs, hospitals: hospitals}
}

// Nearest returns the operational hub closest to the delivery's pickup
// point by great-circle distance. When the pickup coordinate is unset the
// destination hospital's coordinate is used instead.
func (l *HubLocator) Nearest(ctx context.Context, delivery model.Delivery, req model.DeliveryRequest) (model.Hub, error) {
	origin := delivery.Pickup
	if origin.IsZero() {
		hosp, err := l.hospitals.GetHospital(ctx, req.HospitalID)
		if err != nil {
			return model.Hub{}, err
		}
		origin = hosp.Location
	}

	hubs, err := l.hubs.ListOperational(ctx)
	if err != nil {
		return model.Hub{}, err
	}
	if len(hubs) == 0 {
		return model.Hub{}, ErrNoOperationalHub
	}

	best := hubs[0]
	bestDist := Haversine(origin, best.Location)
	for _, h := range hubs[1:] {
		if d := Haversine(origin, h.Location); d < bestDist {
			best = h
			bestDist = d
		}
	}
	return best, nil
}
