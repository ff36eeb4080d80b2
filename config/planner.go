package config

import "fmt"

// PlannerConfig tunes the plan manager.
type PlannerConfig struct {
	// AckTimeoutSeconds bounds the wait for each worker's route
	// acknowledgment.
	AckTimeoutSeconds int `json:"ack_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *PlannerConfig) SetDefaults() {
	if c.AckTimeoutSeconds == 0 {
		c.AckTimeoutSeconds = 5
	}
}

// Validate checks bounds.
func (c PlannerConfig) Validate() error {
	if c.AckTimeoutSeconds < 0 {
		return fmt.Errorf("ack_timeout_seconds must not be negative")
	}
	return nil
}
