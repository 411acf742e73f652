package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medifleet/dispatch/core/model"
)

type fakeHubStore struct {
	hubs []model.Hub
	err  error
}

func (f fakeHubStore) ListOperational(ctx context.Context) ([]model.Hub, error) {
	return f.hubs, f.err
}

type fakeHospitalStore struct {
	hospitals map[string]model.Hospital
}

func (f fakeHospitalStore) GetHospital(ctx context.Context, id string) (model.Hospital, error) {
	h, ok := f.hospitals[id]
	if !ok {
		return model.Hospital{}, assert.AnError
	}
	return h, nil
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	a := model.Coordinate{Lat: 0, Lon: 0}
	b := model.Coordinate{Lat: 1, Lon: 0}
	assert.InDelta(t, 111.19, Haversine(a, b), 0.01)
}

func TestHaversine_ZeroDistance(t *testing.T) {
	p := model.Coordinate{Lat: 48.8566, Lon: 2.3522}
	assert.Zero(t, Haversine(p, p))
}

func TestNearest_PicksGeometricallyCloserHub(t *testing.T) {
	near := model.Hub{ID: "hub-near", Location: model.Coordinate{Lat: 0.5, Lon: 0}, Active: true, Operational: true}
	far := model.Hub{ID: "hub-far", Location: model.Coordinate{Lat: 5, Lon: 0}, Active: true, Operational: true}
	l := NewHubLocator(fakeHubStore{hubs: []model.Hub{far, near}}, fakeHospitalStore{})

	delivery := model.Delivery{ID: "d1", Pickup: model.Coordinate{Lat: 0, Lon: 0.1}}
	hub, err := l.Nearest(context.Background(), delivery, model.DeliveryRequest{})
	require.NoError(t, err)
	assert.Equal(t, "hub-near", hub.ID)
}

func TestNearest_FallsBackToHospitalCoordinate(t *testing.T) {
	hub := model.Hub{ID: "hub-1", Location: model.Coordinate{Lat: 10, Lon: 10}, Active: true, Operational: true}
	hospitals := fakeHospitalStore{hospitals: map[string]model.Hospital{
		"hosp-1": {ID: "hosp-1", Location: model.Coordinate{Lat: 10.1, Lon: 10}},
	}}
	l := NewHubLocator(fakeHubStore{hubs: []model.Hub{hub}}, hospitals)

	delivery := model.Delivery{ID: "d1"} // no pickup coordinate
	req := model.DeliveryRequest{HospitalID: "hosp-1"}
	got, err := l.Nearest(context.Background(), delivery, req)
	require.NoError(t, err)
	assert.Equal(t, "hub-1", got.ID)
}

func TestNearest_NoOperationalHub(t *testing.T) {
	l := NewHubLocator(fakeHubStore{}, fakeHospitalStore{})
	delivery := model.Delivery{ID: "d1", Pickup: model.Coordinate{Lat: 1, Lon: 1}}
	_, err := l.Nearest(context.Background(), delivery, model.DeliveryRequest{})
	assert.ErrorIs(t, err, ErrNoOperationalHub)
}
