// Package events defines the planning related events emitted on the
// event bus.
//
// Available event types:
//   - TriageEvent: batch of mothers assessed
//   - PlanEvent: new route plan built
//   - RouteAckEvent: worker notification acknowledgment result
package events
