package metrics

import "github.com/medifleet/dispatch/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.BackendConfig `json:"sinks"`
}
