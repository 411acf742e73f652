package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/core/scoring"
	"github.com/medifleet/dispatch/core/storage"
	"github.com/medifleet/dispatch/internal/clock"
)

var queueNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	deliveries []model.Delivery
	requests   map[string]model.DeliveryRequest
	hospitals  map[string]model.Hospital
	supplies   map[string]model.Supply
	available  []model.Drone
}

func (f *fakeStore) ListPending(ctx context.Context) ([]model.Delivery, error) {
	var out []model.Delivery
	for _, d := range f.deliveries {
		if d.Unassigned() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) GetDelivery(ctx context.Context, id string) (model.Delivery, error) {
	for _, d := range f.deliveries {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Delivery{}, storage.ErrNotFound
}

func (f *fakeStore) GetRequest(ctx context.Context, id string) (model.DeliveryRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return model.DeliveryRequest{}, storage.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) GetHospital(ctx context.Context, id string) (model.Hospital, error) {
	h, ok := f.hospitals[id]
	if !ok {
		return model.Hospital{}, storage.ErrNotFound
	}
	return h, nil
}

func (f *fakeStore) GetSupply(ctx context.Context, id string) (model.Supply, error) {
	s, ok := f.supplies[id]
	if !ok {
		return model.Supply{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) ListAvailable(ctx context.Context) ([]model.Drone, error) {
	return f.available, nil
}

func (f *fakeStore) CountAvailable(ctx context.Context) (int, error) {
	return len(f.available), nil
}

func (f *fakeStore) ListByHub(ctx context.Context, hubID string) ([]model.Drone, error) {
	var out []model.Drone
	for _, d := range f.available {
		if d.HubID == hubID {
			out = append(out, d)
		}
	}
	return out, nil
}

func pendingDelivery(id, reqID string, createdAt time.Time) model.Delivery {
	return model.Delivery{ID: id, RequestID: reqID, Status: model.DeliveryPending, CreatedAt: createdAt}
}

func TestPending_SortsByScoreDescending(t *testing.T) {
	store := &fakeStore{
		deliveries: []model.Delivery{
			pendingDelivery("d-normal", "r-normal", queueNow.Add(-time.Minute)),
			pendingDelivery("d-emergency", "r-emergency", queueNow.Add(-time.Minute)),
		},
		requests: map[string]model.DeliveryRequest{
			"r-normal":    {ID: "r-normal", Priority: model.PriorityNormal},
			"r-emergency": {ID: "r-emergency", Priority: model.PriorityEmergency},
		},
	}
	p := NewProvider(store, store, store, scoring.NewScorer(clock.NewFake(queueNow)))

	items, err := p.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "d-emergency", items[0].Delivery.ID)
	assert.Equal(t, "d-normal", items[1].Delivery.ID)
	assert.Greater(t, items[0].Score, items[1].Score)
}

func TestPending_StableTieBreakOnCreation(t *testing.T) {
	store := &fakeStore{
		deliveries: []model.Delivery{
			pendingDelivery("d-later", "r-1", queueNow.Add(-time.Second)),
			pendingDelivery("d-earlier", "r-1", queueNow.Add(-2*time.Second)),
		},
		requests: map[string]model.DeliveryRequest{
			"r-1": {ID: "r-1", Priority: model.PriorityNormal},
		},
	}
	p := NewProvider(store, store, store, scoring.NewScorer(clock.NewFake(queueNow)))

	items, err := p.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "d-earlier", items[0].Delivery.ID)
	assert.Equal(t, "d-later", items[1].Delivery.ID)
}

func TestPending_SkipsAssignedDeliveries(t *testing.T) {
	assigned := pendingDelivery("d-bound", "r-1", queueNow)
	assigned.DroneID = "dr-1"
	store := &fakeStore{
		deliveries: []model.Delivery{assigned, pendingDelivery("d-free", "r-1", queueNow)},
		requests:   map[string]model.DeliveryRequest{"r-1": {ID: "r-1", Priority: model.PriorityLow}},
	}
	p := NewProvider(store, store, store, scoring.NewScorer(clock.NewFake(queueNow)))

	items, err := p.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "d-free", items[0].Delivery.ID)
}

func TestPending_AnnotatesSupplyAndHospital(t *testing.T) {
	store := &fakeStore{
		deliveries: []model.Delivery{pendingDelivery("d-1", "r-1", queueNow)},
		requests: map[string]model.DeliveryRequest{
			"r-1": {ID: "r-1", Priority: model.PriorityHigh, HospitalID: "h-1", SupplyID: "s-1"},
		},
		hospitals: map[string]model.Hospital{"h-1": {ID: "h-1", HighPriority: true}},
		supplies:  map[string]model.Supply{"s-1": {ID: "s-1", Category: "blood"}},
	}
	p := NewProvider(store, store, store, scoring.NewScorer(clock.NewFake(queueNow)))

	items, err := p.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	// 50 * 2.0 + 0 + 10 = 110
	assert.Equal(t, 110, items[0].Score)
}

func TestSnapshot_Status(t *testing.T) {
	store := &fakeStore{
		deliveries: []model.Delivery{
			pendingDelivery("d-1", "r-em", queueNow.Add(-30*time.Minute)),
			pendingDelivery("d-2", "r-no", queueNow.Add(-10*time.Minute)),
		},
		requests: map[string]model.DeliveryRequest{
			"r-em": {ID: "r-em", Priority: model.PriorityEmergency},
			"r-no": {ID: "r-no", Priority: model.PriorityNormal},
		},
		available: []model.Drone{
			{ID: "dr-1", Status: model.DroneAvailable, Active: true, BatteryLevel: 80},
			{ID: "dr-2", Status: model.DroneAvailable, Active: true, BatteryLevel: 60},
		},
	}
	fc := clock.NewFake(queueNow)
	p := NewProvider(store, store, store, scoring.NewScorer(fc))
	r := NewStatusReporter(p, store, fc)

	st, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalPending)
	assert.Equal(t, map[string]int{"emergency": 1, "normal": 1}, st.ByPriority)
	assert.Equal(t, 30, st.OldestWaitMinutes)
	assert.InDelta(t, 20, st.MeanWaitMinutes, 0.01)
	assert.Equal(t, 2, st.AvailableDrones)
	assert.InDelta(t, 70, st.MeanBatteryLevel, 0.01)
}
