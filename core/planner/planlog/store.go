package planlog

import (
	"context"
	"time"

	"github.com/uzazi-health/chwplan/core/model"
)

// Record captures one planning run and its outcome.
type Record struct {
	Timestamp time.Time             `json:"timestamp"`
	PlanID    string                `json:"plan_id"`
	Triage    []model.TriagedMother `json:"triage"`
	Plan      model.RoutePlan       `json:"plan"`
	Summary   Summary               `json:"summary"`
	Acks      map[string]bool       `json:"acks,omitempty"`
}

// Summary mirrors planner.Summary for logging purposes.
type Summary struct {
	Routes      int     `json:"routes"`
	Served      int     `json:"served"`
	Unserved    int     `json:"unserved"`
	TotalKm     float64 `json:"total_km"`
	MeanRouteKm float64 `json:"mean_route_km"`
	StdDevKm    float64 `json:"stddev_km"`
	MaxRouteKm  float64 `json:"max_route_km"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start  time.Time
	End    time.Time
	PlanID string
	CHWID  string
	Risk   model.RiskLevel
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// matches reports whether rec satisfies the non-time filters of q.
// Time bounds are checked by each store before parsing where possible.
func matches(rec Record, q Query) bool {
	if q.PlanID != "" && rec.PlanID != q.PlanID {
		return false
	}
	if q.CHWID != "" {
		found := false
		for _, r := range rec.Plan.Routes {
			if r.VehicleID == q.CHWID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.Risk != "" {
		found := false
		for _, t := range rec.Triage {
			if t.PriorityFinal == string(q.Risk) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
