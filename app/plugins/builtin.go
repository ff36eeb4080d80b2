// Package plugins registers the built-in plan log stores and cohort
// sources. Importing it (the app package does) makes every plugin
// available by name; metrics sinks register themselves through the
// blank imports below.
package plugins

import (
	"github.com/uzazi-health/chwplan/core/factory"
	"github.com/uzazi-health/chwplan/core/planner/planlog"
	"github.com/uzazi-health/chwplan/registry"
	"github.com/uzazi-health/chwplan/registry/csvsource"
	"github.com/uzazi-health/chwplan/registry/postgres"
	"github.com/uzazi-health/chwplan/registry/synthetic"

	// Sink registrations.
	_ "github.com/uzazi-health/chwplan/infra/kpi"
	_ "github.com/uzazi-health/chwplan/infra/metrics"
)

func init() {
	_ = planlog.RegisterStore("jsonl", func(conf map[string]any) (planlog.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return planlog.NewJSONLStore(c.Path)
	})
	_ = planlog.RegisterStore("rotating", func(conf map[string]any) (planlog.Store, error) {
		var c struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return planlog.NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	_ = planlog.RegisterStore("sqlite", func(conf map[string]any) (planlog.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return planlog.NewSQLiteStore(c.Path)
	})

	_ = registry.Register("csv", func(conf map[string]any) (registry.Source, error) {
		var c csvsource.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return csvsource.New(c)
	})
	_ = registry.Register("postgres", func(conf map[string]any) (registry.Source, error) {
		var c postgres.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return postgres.New(c)
	})
	_ = registry.Register("synthetic", func(conf map[string]any) (registry.Source, error) {
		var c synthetic.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return synthetic.New(c), nil
	})
}
