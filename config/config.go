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

	"github.com/uzazi-health/chwplan/core/factory"
	"github.com/uzazi-health/chwplan/core/metrics"
	"github.com/uzazi-health/chwplan/infra/mqtt"
)

// Config is the full service configuration. Each section belongs to the
// component that consumes it; Load fills defaults and validates before
// anything gets wired.
type Config struct {
	MQTT      mqtt.Config          `json:"mqtt"`
	Planner   PlannerConfig        `json:"planner"`
	Metrics   metrics.Config       `json:"metrics"`
	PlanLog   PlanLogConfig        `json:"planlog"`
	Registry  factory.ModuleConfig `json:"registry"`
	Notify    NotifyConfig         `json:"notify"`
	API       APIConfig            `json:"api"`
	Telemetry TelemetryConfig      `json:"telemetry"`
	Sentry    SentryConfig         `json:"sentry"`
}

// Load reads the file at path (yaml or json, by extension) and applies
// CHWPLAN_* environment overrides. "__" nests sections, so
// CHWPLAN_API__ADDR overrides api.addr.
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
	if err := k.Load(env.Provider("CHWPLAN_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "chwplan_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Planner.SetDefaults()
	cfg.PlanLog.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Notify.SetDefaults()
	cfg.Telemetry.SetDefaults()
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.PlanLog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.API.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
