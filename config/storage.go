package config

import "fmt"

// Storage selects the persistence backend for the dispatch stores.
type Storage struct {
	// Backend is "memory" or "postgres".
	Backend string `json:"backend"`
	// DSN is the PostgreSQL connection string, required for postgres.
	DSN string `json:"dsn"`
}

// SetDefaults applies sane defaults.
func (c *Storage) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
}

// Validate checks mandatory fields.
func (c Storage) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("dsn is required for postgres backend")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend %s", c.Backend)
	}
}
