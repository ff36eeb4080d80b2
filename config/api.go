package config

import "fmt"

// APIConfig configures the HTTP surface of the service.
type APIConfig struct {
	Addr string `json:"addr"`
	// BearerToken protects the plan log endpoint when non-empty.
	BearerToken     string `json:"bearer_token"`
	ShutdownSeconds int    `json:"shutdown_seconds"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ShutdownSeconds == 0 {
		c.ShutdownSeconds = 10
	}
}

// Validate checks bounds.
func (c APIConfig) Validate() error {
	if c.ShutdownSeconds < 0 {
		return fmt.Errorf("shutdown_seconds must not be negative")
	}
	return nil
}
