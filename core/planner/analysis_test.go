package planner

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/uzazi-health/chwplan/core/model"
)

func TestAnalyzeEmptyPlan(t *testing.T) {
	s := Analyze(model.RoutePlan{})
	if s.Routes != 0 || s.Served != 0 || s.TotalKm != 0 || s.MeanRouteKm != 0 {
		t.Fatalf("empty plan summary not zeroed: %+v", s)
	}
}

func TestAnalyzeSingleRouteHasZeroSpread(t *testing.T) {
	plan := model.RoutePlan{Routes: []model.Route{
		{VehicleID: "c1", Sequence: []string{model.DepotID, "m1"}, Km: 4.2},
	}}
	s := Analyze(plan)
	if s.StdDevKm != 0 {
		t.Fatalf("single route stddev = %v, want 0", s.StdDevKm)
	}
	if s.MeanRouteKm != 4.2 || s.TotalKm != 4.2 || s.MaxRouteKm != 4.2 {
		t.Fatalf("summary = %+v, want mean/total/max 4.2", s)
	}
	// Summaries are logged and exported; they must stay encodable.
	if _, err := json.Marshal(s); err != nil {
		t.Fatalf("summary does not marshal: %v", err)
	}
}

func TestAnalyzeAggregates(t *testing.T) {
	plan := model.RoutePlan{
		Routes: []model.Route{
			{VehicleID: "c1", Sequence: []string{model.DepotID, "m1", "m2"}, Km: 2},
			{VehicleID: "c2", Sequence: []string{model.DepotID, "m3"}, Km: 6},
		},
		Unserved: []string{"m4"},
	}
	s := Analyze(plan)
	if s.Routes != 2 || s.Served != 3 || s.Unserved != 1 {
		t.Fatalf("counts = %+v, want 2 routes, 3 served, 1 unserved", s)
	}
	if s.TotalKm != 8 || s.MaxRouteKm != 6 {
		t.Fatalf("km = total %v max %v, want 8 and 6", s.TotalKm, s.MaxRouteKm)
	}
	if s.MeanRouteKm != 4 {
		t.Fatalf("mean = %v, want 4", s.MeanRouteKm)
	}
	// Sample standard deviation of {2, 6}.
	if math.Abs(s.StdDevKm-2.8284271247461903) > 1e-12 {
		t.Fatalf("stddev = %v, want ~2.8284", s.StdDevKm)
	}
}
