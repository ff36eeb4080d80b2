package config

import (
	"fmt"

	"github.com/uzazi-health/chwplan/core/factory"
)

// PlanLogConfig defines settings for plan log storage and rotation.
type PlanLogConfig struct {
	// Backend selects the store type: "jsonl", "rotating" or "sqlite".
	// Empty disables persistence.
	Backend string `json:"backend"`
	// Path is the file location of the log store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in
	// megabytes (rotating backend only).
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *PlanLogConfig) SetDefaults() {
	if c.Backend != "" && c.Path == "" {
		c.Path = "plans.jsonl"
	}
	if c.Backend == "rotating" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c PlanLogConfig) Validate() error {
	switch c.Backend {
	case "", "jsonl", "rotating", "sqlite":
	default:
		return fmt.Errorf("unknown planlog backend %s", c.Backend)
	}
	if c.Backend != "" && c.Path == "" {
		return fmt.Errorf("planlog path is required")
	}
	return nil
}

// Module expresses the section as a plugin config for the store factory.
func (c PlanLogConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{
		Type: c.Backend,
		Conf: map[string]any{
			"path":         c.Path,
			"max_size_mb":  c.MaxSizeMB,
			"max_backups":  c.MaxBackups,
			"max_age_days": c.MaxAgeDays,
		},
	}
}
