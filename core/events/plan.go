package events

import (
	"time"

	"github.com/uzazi-health/chwplan/core/model"
)

// PlanEvent is published when a new route plan has been built.
type PlanEvent struct {
	PlanID      string
	Plan        model.RoutePlan
	GeneratedAt time.Time
}
