package metrics

import "time"

// PlanEvent summarizes one completed scheduling run.
type PlanEvent struct {
	PlanID      string
	Routes      int
	Served      int
	Unserved    int
	TotalKm     float64
	MeanRouteKm float64
	MaxRouteKm  float64
	Emergencies int // mothers whose final priority is EMERGENCY
	Time        time.Time
}

// Sink records plan events for observability purposes.
type Sink interface {
	RecordPlan(ev PlanEvent) error
}

// RouteEvent is the per-worker slice of a plan.
type RouteEvent struct {
	PlanID    string
	VehicleID string
	CHWName   string
	Visits    int
	Km        float64
	Capacity  int
	Time      time.Time
}

// RouteRecorder records per-route events.
type RouteRecorder interface {
	RecordRoute(ev RouteEvent) error
}

// TriageEvent tallies assessed tiers for one run.
type TriageEvent struct {
	Emergency  int
	Priority   int
	Routine    int
	Overridden int // records whose manual override pinned the final label
	Time       time.Time
}

// TriageRecorder records triage tallies.
type TriageRecorder interface {
	RecordTriage(ev TriageEvent) error
}

// NotifyAckEvent captures one route notification acknowledgment.
type NotifyAckEvent struct {
	PlanID       string
	VehicleID    string
	Acknowledged bool
	Latency      time.Duration
	Error        string
	Time         time.Time
}

// NotifyAckRecorder records notification acknowledgments.
type NotifyAckRecorder interface {
	RecordNotifyAck(ev NotifyAckEvent) error
}

// NopSink implements Sink and every optional recorder with no-ops.
type NopSink struct{}

func (NopSink) RecordPlan(PlanEvent) error           { return nil }
func (NopSink) RecordRoute(RouteEvent) error         { return nil }
func (NopSink) RecordTriage(TriageEvent) error       { return nil }
func (NopSink) RecordNotifyAck(NotifyAckEvent) error { return nil }
