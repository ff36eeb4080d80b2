package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	coremetrics "github.com/uzazi-health/chwplan/core/metrics"
)

// PromSink records planning events in Prometheus metrics.
type PromSink struct {
	plans       prometheus.Counter
	unserved    prometheus.Gauge
	totalKm     prometheus.Gauge
	emergencies prometheus.Gauge
	routeVisits *prometheus.CounterVec
	routeKm     *prometheus.HistogramVec
	triaged     *prometheus.CounterVec
	overridden  prometheus.Counter
	acks        *prometheus.CounterVec
	ackLatency  *prometheus.HistogramVec
}

// NewPromSink registers planning metrics on the default Prometheus
// registerer. The Prometheus server is started separately by the service.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		plans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plans_built_total",
			Help: "Total number of visit plans built",
		}),
		unserved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_unserved_mothers",
			Help: "Mothers left unserved by the most recent plan",
		}),
		totalKm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_total_km",
			Help: "Total distance of the most recent plan",
		}),
		emergencies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_emergency_mothers",
			Help: "Mothers triaged EMERGENCY in the most recent plan",
		}),
		routeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "route_visits_planned_total",
			Help: "Visits planned per worker across all plans",
		}, []string{"chw_id"}),
		routeKm: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "route_km",
			Help:    "Route length distribution per worker",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"chw_id"}),
		triaged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_assessed_total",
			Help: "Mothers assessed per final tier",
		}, []string{"tier"}),
		overridden: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "triage_overridden_total",
			Help: "Mothers whose priority was pinned by a manual override",
		}),
		acks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "route_acks_total",
			Help: "Route notification acknowledgments",
		}, []string{"chw_id", "acknowledged"}),
		ackLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "route_ack_latency_seconds",
			Help:    "Time between route publish and acknowledgment",
			Buckets: prometheus.DefBuckets,
		}, []string{"chw_id", "acknowledged"}),
	}

	collectors := []prometheus.Collector{
		s.plans, s.unserved, s.totalKm, s.emergencies,
		s.routeVisits, s.routeKm, s.triaged, s.overridden,
		s.acks, s.ackLatency,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}
	s.plans = collectors[0].(prometheus.Counter)
	s.unserved = collectors[1].(prometheus.Gauge)
	s.totalKm = collectors[2].(prometheus.Gauge)
	s.emergencies = collectors[3].(prometheus.Gauge)
	s.routeVisits = collectors[4].(*prometheus.CounterVec)
	s.routeKm = collectors[5].(*prometheus.HistogramVec)
	s.triaged = collectors[6].(*prometheus.CounterVec)
	s.overridden = collectors[7].(prometheus.Counter)
	s.acks = collectors[8].(*prometheus.CounterVec)
	s.ackLatency = collectors[9].(*prometheus.HistogramVec)
	return s, nil
}

// RecordPlan updates the plan-level counters and gauges.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.plans.Inc()
	s.unserved.Set(float64(ev.Unserved))
	s.totalKm.Set(ev.TotalKm)
	s.emergencies.Set(float64(ev.Emergencies))
	return nil
}

// RecordRoute tracks per-worker load.
func (s *PromSink) RecordRoute(ev coremetrics.RouteEvent) error {
	s.routeVisits.WithLabelValues(ev.VehicleID).Add(float64(ev.Visits))
	s.routeKm.WithLabelValues(ev.VehicleID).Observe(ev.Km)
	return nil
}

// RecordTriage increments the per-tier counters.
func (s *PromSink) RecordTriage(ev coremetrics.TriageEvent) error {
	s.triaged.WithLabelValues("EMERGENCY").Add(float64(ev.Emergency))
	s.triaged.WithLabelValues("PRIORITY").Add(float64(ev.Priority))
	s.triaged.WithLabelValues("ROUTINE").Add(float64(ev.Routine))
	s.overridden.Add(float64(ev.Overridden))
	return nil
}

// RecordNotifyAck records one acknowledgment outcome.
func (s *PromSink) RecordNotifyAck(ev coremetrics.NotifyAckEvent) error {
	ack := strconv.FormatBool(ev.Acknowledged)
	s.acks.WithLabelValues(ev.VehicleID, ack).Inc()
	s.ackLatency.WithLabelValues(ev.VehicleID, ack).Observe(ev.Latency.Seconds())
	return nil
}
