package queue

import (
	"context"
	"fmt"
	"sort"

	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/core/scoring"
	"github.com/medifleet/dispatch/core/storage"
)

// Item is a pending delivery annotated with its urgency score.
type Item struct {
	Delivery model.Delivery        `json:"delivery"`
	Request  model.DeliveryRequest `json:"request"`
	Score    int                   `json:"score"`
	Priority model.Priority        `json:"priority"`
}

// Provider builds the priority-sorted dispatch queue. It is strictly
// read-only over the stores.
type Provider struct {
	deliveries storage.DeliveryStore
	hospitals  storage.HospitalStore
	supplies   storage.SupplyStore
	scorer     *scoring.Scorer
}

// NewProvider returns a Provider using scorer for urgency ranking.
func NewProvider(deliveries storage.DeliveryStore, hospitals storage.HospitalStore, supplies storage.SupplyStore, scorer *scoring.Scorer) *Provider {
	return &Provider{deliveries: deliveries, hospitals: hospitals, supplies: supplies, scorer: scorer}
}

// Pending returns every unassigned pending delivery sorted by score
// descending. Ties keep creation order, earlier deliveries first, so the
// queue is deterministic and fair.
func (p *Provider) Pending(ctx context.Context) ([]Item, error) {
	deliveries, err := p.deliveries.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending deliveries: %w", err)
	}

	items := make([]Item, 0, len(deliveries))
	for _, d := range deliveries {
		if !d.Unassigned() {
			continue
		}
		item, err := p.annotate(ctx, d)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Delivery.CreatedAt.Before(items[j].Delivery.CreatedAt)
	})
	return items, nil
}

func (p *Provider) annotate(ctx context.Context, d model.Delivery) (Item, error) {
	req, err := p.deliveries.GetRequest(ctx, d.RequestID)
	if err != nil {
		return Item{}, fmt.Errorf("request %s: %w", d.RequestID, err)
	}
	in := scoring.Input{
		Priority:  req.Priority,
		CreatedAt: d.CreatedAt,
	}
	if supply, err := p.supplies.GetSupply(ctx, req.SupplyID); err == nil {
		in.SupplyCategory = supply.Category
	}
	if hosp, err := p.hospitals.GetHospital(ctx, req.HospitalID); err == nil {
		in.HospitalHighPriority = hosp.HighPriority
	}
	return Item{
		Delivery: d,
		Request:  req,
		Score:    p.scorer.Score(in),
		Priority: req.Priority,
	}, nil
}
