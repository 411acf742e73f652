package config

// API defines the HTTP server settings.
type API struct {
	// Addr is the listen address of the operations API.
	Addr string `json:"addr"`
	// MetricsAddr is the listen address of the Prometheus endpoint. Empty
	// disables the endpoint.
	MetricsAddr string `json:"metrics_addr"`
}

// SetDefaults applies sane defaults.
func (c *API) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
