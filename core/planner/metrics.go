package planner

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	notifyLatency   *prometheus.HistogramVec
	routesPublished *prometheus.CounterVec
	routeAckRate    prometheus.Gauge
	publishSuccess  prometheus.Counter
	publishFailure  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, prometheus.Gauge, prometheus.Counter, prometheus.Counter) {
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "route_notify_latency_seconds",
			Help:    "Latency of route notifications from publish to acknowledgment",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"transport"},
	)
	pub := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routes_published_total",
			Help: "Number of route notifications published to workers",
		},
		[]string{"transport"},
	)
	ack := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "route_ack_rate",
			Help: "Acknowledgment rate for route notifications",
		},
	)
	suc := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "route_publish_success_total",
			Help: "Number of successful route publish operations",
		},
	)
	fail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "route_publish_failure_total",
			Help: "Number of failed route publish operations",
		},
	)
	return lat, pub, ack, suc, fail
}

func init() {
	notifyLatency, routesPublished, routeAckRate, publishSuccess, publishFailure = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers planner metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(notifyLatency, routesPublished, routeAckRate, publishSuccess, publishFailure)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	notifyLatency, routesPublished, routeAckRate, publishSuccess, publishFailure = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
