package kpi

import (
	"github.com/prometheus/client_golang/prometheus"
	coremetrics "github.com/uzazi-health/chwplan/core/metrics"
	"github.com/uzazi-health/chwplan/core/metrics/visitkpi"
)

// WorkloadSink records per-route results as daily workload KPIs.
type WorkloadSink struct {
	store       visitkpi.Store
	visits      *prometheus.GaugeVec
	km          *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
}

// NewWorkloadSink creates a sink with Prometheus gauges registered on reg.
func NewWorkloadSink(store visitkpi.Store, reg prometheus.Registerer) *WorkloadSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	visits := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chw_visits_planned_day",
		Help: "Daily planned visits per worker",
	}, []string{"chw_id", "day"})
	km := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chw_km_planned_day",
		Help: "Daily planned distance per worker",
	}, []string{"chw_id", "day"})
	util := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chw_utilization_day",
		Help: "Daily ratio of planned visits to visit quota",
	}, []string{"chw_id", "day"})
	reg.MustRegister(visits, km, util)
	return &WorkloadSink{store: store, visits: visits, km: km, utilization: util}
}

// RecordPlan is a no-op; workload KPIs aggregate per route.
func (s *WorkloadSink) RecordPlan(coremetrics.PlanEvent) error { return nil }

// RecordRoute folds the route into the worker's daily record and refreshes
// the gauges from the aggregated value.
func (s *WorkloadSink) RecordRoute(ev coremetrics.RouteEvent) error {
	rec := visitkpi.Record{
		CHWID:    ev.VehicleID,
		Date:     ev.Time,
		Visits:   ev.Visits,
		Km:       ev.Km,
		Capacity: ev.Capacity,
	}
	if err := s.store.Add(rec); err != nil {
		return err
	}
	dayStr := visitkpi.Day(ev.Time).Format("2006-01-02")
	records, _ := s.store.Query(ev.VehicleID, ev.Time, ev.Time)
	if len(records) > 0 {
		rr := records[0]
		s.visits.WithLabelValues(ev.VehicleID, dayStr).Set(float64(rr.Visits))
		s.km.WithLabelValues(ev.VehicleID, dayStr).Set(rr.Km)
		s.utilization.WithLabelValues(ev.VehicleID, dayStr).Set(rr.Utilization())
	}
	return nil
}
