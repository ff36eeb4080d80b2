package events

import "time"

// RouteAckEvent is published for each worker's route notification
// acknowledgment or failure.
type RouteAckEvent struct {
	PlanID       string
	VehicleID    string
	Acknowledged bool
	Err          error
	Latency      time.Duration
}
