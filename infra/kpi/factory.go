package kpi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uzazi-health/chwplan/core/factory"
	coremetrics "github.com/uzazi-health/chwplan/core/metrics"
	"github.com/uzazi-health/chwplan/core/metrics/visitkpi"
)

// init registers the workload KPI sink. With a path it persists to
// SQLite, otherwise records live in memory for the process lifetime.
func init() {
	_ = coremetrics.RegisterSink("kpi", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		var store visitkpi.Store
		if c.Path != "" {
			s, err := NewSQLiteStore(c.Path)
			if err != nil {
				return nil, err
			}
			store = s
		} else {
			store = visitkpi.NewMemoryStore()
		}
		return NewWorkloadSink(store, prometheus.DefaultRegisterer), nil
	})
}
