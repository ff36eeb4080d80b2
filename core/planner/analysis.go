package planner

import (
	"gonum.org/v1/gonum/stat"

	"github.com/uzazi-health/chwplan/core/model"
)

// Summary aggregates one plan for metrics sinks and operator output.
type Summary struct {
	Routes      int     `json:"routes"`
	Served      int     `json:"served"`
	Unserved    int     `json:"unserved"`
	TotalKm     float64 `json:"total_km"`
	MeanRouteKm float64 `json:"mean_route_km"`
	StdDevKm    float64 `json:"stddev_route_km"`
	MaxRouteKm  float64 `json:"max_route_km"`
}

// Analyze computes per-plan aggregates. A single-route plan reports a
// zero spread so the summary stays JSON-encodable.
func Analyze(plan model.RoutePlan) Summary {
	s := Summary{
		Routes:   len(plan.Routes),
		Served:   plan.Served(),
		Unserved: len(plan.Unserved),
	}
	if len(plan.Routes) == 0 {
		return s
	}

	kms := make([]float64, 0, len(plan.Routes))
	for _, r := range plan.Routes {
		kms = append(kms, r.Km)
		s.TotalKm += r.Km
		if r.Km > s.MaxRouteKm {
			s.MaxRouteKm = r.Km
		}
	}
	s.MeanRouteKm = stat.Mean(kms, nil)
	if len(kms) > 1 {
		s.StdDevKm = stat.StdDev(kms, nil)
	}
	return s
}
