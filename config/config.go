// Package config loads the service configuration from YAML or JSON files
// with optional environment variable overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/medifleet/dispatch/core/metrics"
	"github.com/medifleet/dispatch/infra/monitoring"
	"github.com/medifleet/dispatch/infra/mqtt"
)

type Config struct {
	Dispatch Dispatch          `json:"dispatch"`
	Storage  Storage           `json:"storage"`
	Logging  Logging           `json:"logging"`
	Metrics  metrics.Config    `json:"metrics"`
	MQTT     MQTT              `json:"mqtt"`
	API      API               `json:"api"`
	Sentry   monitoring.Config `json:"sentry"`
}

// MQTT holds notifier settings. Enabled gates the connection so the engine
// can run without a broker.
type MQTT struct {
	Enabled bool        `json:"enabled"`
	Conn    mqtt.Config `json:"conn"`
}

// Load reads the configuration at path. Environment variables prefixed with
// MF_ override file values, with "__" standing in for the key separator
// (MF_DISPATCH__INTERVAL_SECONDS overrides dispatch.interval_seconds).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("MF_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "mf_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Dispatch.SetDefaults()
	cfg.Storage.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Dispatch.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
