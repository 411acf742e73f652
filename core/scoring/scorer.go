package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/medifleet/dispatch/core/model"
	"github.com/medifleet/dispatch/internal/clock"
)

const (
	// ageCap bounds the staleness contribution so wait time alone cannot
	// outrank an explicit priority tier.
	ageCap          = 20.0
	agePerHour      = 2.0
	hospitalBonus   = 10.0
	defaultCategory = 1.0
)

// categoryMultipliers weights the urgency score by how critical the
// requested supply is.
var categoryMultipliers = map[string]float64{
	"blood":              2.0,
	"plasma":             2.0,
	"emergency_medicine": 1.8,
	"vaccine":            1.5,
	"surgical_supplies":  1.3,
}

// Input carries everything the scorer needs about one delivery.
type Input struct {
	Priority             model.Priority
	SupplyCategory       string
	CreatedAt            time.Time
	HospitalHighPriority bool
}

// Scorer computes urgency scores. It is a pure function over Input and the
// injected clock and holds no other state.
type Scorer struct {
	clock clock.Clock
}

// NewScorer returns a Scorer using c for the current time. A nil clock
// falls back to the wall clock.
func NewScorer(c clock.Clock) *Scorer {
	if c == nil {
		c = clock.Real{}
	}
	return &Scorer{clock: c}
}

// Score returns the integer urgency score for one delivery:
// round(base * category multiplier + age factor + hospital bonus).
func (s *Scorer) Score(in Input) int {
	base := in.Priority.BaseScore()
	mult := CategoryMultiplier(in.SupplyCategory)

	age := s.clock.Now().Sub(in.CreatedAt)
	ageFactor := age.Hours() * agePerHour
	if ageFactor < 0 {
		ageFactor = 0
	}
	if ageFactor > ageCap {
		ageFactor = ageCap
	}

	bonus := 0.0
	if in.HospitalHighPriority {
		bonus = hospitalBonus
	}
	return int(math.Round(base*mult + ageFactor + bonus))
}

// CategoryMultiplier returns the score multiplier for a supply category.
// Unknown categories are neutral.
func CategoryMultiplier(category string) float64 {
	if m, ok := categoryMultipliers[strings.ToLower(strings.TrimSpace(category))]; ok {
		return m
	}
	return defaultCategory
}
