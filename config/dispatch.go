package config

import "fmt"

// Dispatch defines the cadence of the dispatch engine.
type Dispatch struct {
	// IntervalSeconds is the pause between dispatch cycles.
	IntervalSeconds int `json:"interval_seconds"`
	// SLAThresholdMinutes is the wait after which an unassigned emergency
	// delivery raises an alert.
	SLAThresholdMinutes int `json:"sla_threshold_minutes"`
	// SLAIntervalSeconds is the pause between SLA scans. Scans are cheap
	// reads so they run on a tighter cadence than dispatch cycles.
	SLAIntervalSeconds int `json:"sla_interval_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Dispatch) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 30
	}
	if c.SLAThresholdMinutes == 0 {
		c.SLAThresholdMinutes = 15
	}
	if c.SLAIntervalSeconds == 0 {
		c.SLAIntervalSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Dispatch) Validate() error {
	if c.IntervalSeconds < 0 {
		return fmt.Errorf("interval_seconds must be positive")
	}
	if c.SLAThresholdMinutes < 0 {
		return fmt.Errorf("sla_threshold_minutes must be positive")
	}
	return nil
}
