// Package metrics defines the events and sink interfaces for collecting
// planning metrics. Sinks like the Prometheus and InfluxDB adapters in
// infra/metrics record plan, route, triage and notification events and
// can be combined with NewMultiSink. The factory helpers return a
// MultiSink automatically when several sinks are configured.
package metrics
