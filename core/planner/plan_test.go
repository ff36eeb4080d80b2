package planner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/uzazi-health/chwplan/core/geo"
	"github.com/uzazi-health/chwplan/core/model"
)

// tm builds a triaged mother at the given point. The planner only reads
// ID, Location and PriorityFinal.
func tm(id string, lat, lng float64, priority string) model.TriagedMother {
	return model.TriagedMother{
		Mother:        model.Mother{ID: id, Location: model.Coordinates{Lat: lat, Lng: lng}},
		PriorityFinal: priority,
	}
}

func chw(id, name string, lat, lng float64, capacity int) model.CHW {
	return model.CHW{
		ID: id, Name: name,
		Location:        model.Coordinates{Lat: lat, Lng: lng},
		MaxVisitsPerDay: capacity,
	}
}

// Three mothers due north of a depot at the equator, evenly spaced
// roughly one kilometer apart.
func lineFixture() ([]model.TriagedMother, []model.CHW) {
	mothers := []model.TriagedMother{
		tm("m1", 0.009, 0, "ROUTINE"),
		tm("m2", 0.018, 0, "ROUTINE"),
		tm("m3", 0.027, 0, "ROUTINE"),
	}
	chws := []model.CHW{chw("c1", "Alice", 0, 0, 2)}
	return mothers, chws
}

func TestBuildPlanGreedyNearestFirst(t *testing.T) {
	mothers, chws := lineFixture()
	plan, err := BuildPlan(mothers, chws, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Routes) != 1 {
		t.Fatalf("routes = %d, want 1", len(plan.Routes))
	}
	r := plan.Routes[0]
	want := []string{model.DepotID, "m1", "m2"}
	if !reflect.DeepEqual(r.Sequence, want) {
		t.Fatalf("sequence = %v, want %v", r.Sequence, want)
	}
	if !reflect.DeepEqual(plan.Unserved, []string{"m3"}) {
		t.Fatalf("unserved = %v, want [m3]", plan.Unserved)
	}
	if r.Km != 2.0 {
		t.Errorf("km = %v, want 2.00 (two ~1km legs, rounded)", r.Km)
	}
	if r.Capacity != 2 {
		t.Errorf("capacity = %d, want 2", r.Capacity)
	}
}

func TestBuildPlanBlockedDepotEdgeForcesDetour(t *testing.T) {
	mothers, chws := lineFixture()
	blocked := []model.BlockedEdge{{A: model.DepotID, B: "m1"}}
	plan, err := BuildPlan(mothers, chws, blocked, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := plan.Routes[0]
	if len(r.Sequence) != 3 {
		t.Fatalf("sequence = %v, want depot plus two visits", r.Sequence)
	}
	if r.Sequence[1] != "m2" {
		t.Fatalf("first visit = %s, want m2 (nearest unblocked)", r.Sequence[1])
	}
	if len(plan.Unserved) != 1 {
		t.Fatalf("unserved = %v, want exactly one", plan.Unserved)
	}
}

func TestBuildPlanBlockedEdgeIsOrderIndependent(t *testing.T) {
	mothers, chws := lineFixture()
	forward, err := BuildPlan(mothers, chws, []model.BlockedEdge{{A: model.DepotID, B: "m1"}}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reversed, err := BuildPlan(mothers, chws, []model.BlockedEdge{{A: "m1", B: model.DepotID}}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(forward, reversed) {
		t.Fatalf("plans differ by blocked pair order: %+v vs %+v", forward, reversed)
	}
}

func TestBuildPlanBlockedOnlyCandidateTruncatesRoute(t *testing.T) {
	mothers := []model.TriagedMother{tm("m1", 0.009, 0, "EMERGENCY")}
	chws := []model.CHW{chw("c1", "Alice", 0, 0, 3)}
	blocked := []model.BlockedEdge{{A: model.DepotID, B: "m1"}}

	plan, err := BuildPlan(mothers, chws, blocked, Options{})
	if err != nil {
		t.Fatalf("blocked candidates must not error: %v", err)
	}
	r := plan.Routes[0]
	if !reflect.DeepEqual(r.Sequence, []string{model.DepotID}) {
		t.Fatalf("sequence = %v, want depot only", r.Sequence)
	}
	if r.Km != 0 {
		t.Errorf("km = %v, want 0", r.Km)
	}
	if !reflect.DeepEqual(plan.Unserved, []string{"m1"}) {
		t.Fatalf("unserved = %v, want [m1]", plan.Unserved)
	}
}

func TestBuildPlanSelectionIsNearestNotHighestPriority(t *testing.T) {
	// Priority orders the candidate scan, it does not trump distance:
	// a nearer routine visit is taken before a farther emergency.
	mothers := []model.TriagedMother{
		tm("far-emergency", 0.027, 0, "EMERGENCY"),
		tm("near-routine", 0.009, 0, "ROUTINE"),
	}
	chws := []model.CHW{chw("c1", "Alice", 0, 0, 2)}

	plan, err := BuildPlan(mothers, chws, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{model.DepotID, "near-routine", "far-emergency"}
	if !reflect.DeepEqual(plan.Routes[0].Sequence, want) {
		t.Fatalf("sequence = %v, want %v", plan.Routes[0].Sequence, want)
	}
}

func TestBuildPlanDistanceTieGoesToHigherRank(t *testing.T) {
	// Identical coordinates make the tie exact; the emergency record is
	// scanned first and strict-minimum comparison keeps it.
	mothers := []model.TriagedMother{
		tm("routine", 0.009, 0, "ROUTINE"),
		tm("emergency", 0.009, 0, "EMERGENCY"),
	}
	chws := []model.CHW{chw("c1", "Alice", 0, 0, 1)}

	plan, err := BuildPlan(mothers, chws, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := plan.Routes[0].Sequence[1]; got != "emergency" {
		t.Fatalf("first visit = %s, want emergency", got)
	}
}

func TestBuildPlanDistanceTieWithinRankKeepsInputOrder(t *testing.T) {
	mothers := []model.TriagedMother{
		tm("listed-first", 0.009, 0, "ROUTINE"),
		tm("listed-second", 0.009, 0, "ROUTINE"),
	}
	chws := []model.CHW{chw("c1", "Alice", 0, 0, 1)}

	plan, err := BuildPlan(mothers, chws, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := plan.Routes[0].Sequence[1]; got != "listed-first" {
		t.Fatalf("first visit = %s, want listed-first", got)
	}
}

func TestBuildPlanUnknownOverrideLabelRanksLast(t *testing.T) {
	mothers := []model.TriagedMother{
		tm("deferred", 0.009, 0, "defer"),
		tm("routine", 0.009, 0, "ROUTINE"),
	}
	chws := []model.CHW{chw("c1", "Alice", 0, 0, 1)}

	plan, err := BuildPlan(mothers, chws, nil, Options{})
	if err != nil {
		t.Fatalf("unknown labels must not error: %v", err)
	}
	if got := plan.Routes[0].Sequence[1]; got != "routine" {
		t.Fatalf("first visit = %s, want routine (defer ranks last)", got)
	}
	if !reflect.DeepEqual(plan.Unserved, []string{"deferred"}) {
		t.Fatalf("unserved = %v, want [deferred]", plan.Unserved)
	}
}

func TestBuildPlanPoolIsExclusiveAcrossWorkers(t *testing.T) {
	mothers := []model.TriagedMother{tm("m1", 0.009, 0, "ROUTINE")}
	chws := []model.CHW{
		chw("c1", "Alice", 0, 0, 5),
		chw("c2", "Beatrice", 0.018, 0, 5),
	}

	plan, err := BuildPlan(mothers, chws, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := plan.Routes[0].Sequence; !reflect.DeepEqual(got, []string{model.DepotID, "m1"}) {
		t.Fatalf("first route = %v, want the only mother", got)
	}
	if got := plan.Routes[1].Sequence; !reflect.DeepEqual(got, []string{model.DepotID}) {
		t.Fatalf("second route = %v, want depot only (mother already claimed)", got)
	}
	if len(plan.Unserved) != 0 {
		t.Fatalf("unserved = %v, want none", plan.Unserved)
	}
}

func TestBuildPlanConservation(t *testing.T) {
	mothers := []model.TriagedMother{
		tm("m1", 0.009, 0, "EMERGENCY"),
		tm("m2", 0.018, 0, "ROUTINE"),
		tm("m3", 0.027, 0, "PRIORITY"),
		tm("m4", -0.009, 0, "ROUTINE"),
		tm("m5", -0.018, 0, "defer"),
	}
	chws := []model.CHW{
		chw("c1", "Alice", 0, 0, 2),
		chw("c2", "Beatrice", -0.027, 0, 1),
	}

	plan, err := BuildPlan(mothers, chws, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]int{}
	for _, r := range plan.Routes {
		if r.Visits() > r.Capacity {
			t.Errorf("route %s has %d visits over capacity %d", r.VehicleID, r.Visits(), r.Capacity)
		}
		if r.Sequence[0] != model.DepotID {
			t.Errorf("route %s does not start at the depot marker", r.VehicleID)
		}
		for _, id := range r.Sequence[1:] {
			seen[id]++
		}
	}
	for _, id := range plan.Unserved {
		seen[id]++
	}
	if len(seen) != len(mothers) {
		t.Fatalf("plan covers %d distinct mothers, want %d", len(seen), len(mothers))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("mother %s appears %d times, want exactly once", id, n)
		}
	}
}

func TestBuildPlanNoWorkers(t *testing.T) {
	mothers := []model.TriagedMother{
		tm("m2", 0.018, 0, "ROUTINE"),
		tm("m1", 0.009, 0, "ROUTINE"),
	}
	plan, err := BuildPlan(mothers, nil, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Routes) != 0 {
		t.Fatalf("routes = %v, want none", plan.Routes)
	}
	if !reflect.DeepEqual(plan.Unserved, []string{"m1", "m2"}) {
		t.Fatalf("unserved = %v, want ascending [m1 m2]", plan.Unserved)
	}
}

func TestBuildPlanNoMothers(t *testing.T) {
	plan, err := BuildPlan(nil, []model.CHW{chw("c1", "Alice", 0, 0, 4)}, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := plan.Routes[0]
	if !reflect.DeepEqual(r.Sequence, []string{model.DepotID}) {
		t.Fatalf("sequence = %v, want depot only", r.Sequence)
	}
	if r.Km != 0 {
		t.Errorf("km = %v, want 0", r.Km)
	}
	if len(plan.Unserved) != 0 {
		t.Errorf("unserved = %v, want none", plan.Unserved)
	}
}

func TestBuildPlanZeroCapacityIsValid(t *testing.T) {
	mothers := []model.TriagedMother{tm("m1", 0.009, 0, "EMERGENCY")}
	plan, err := BuildPlan(mothers, []model.CHW{chw("c1", "Alice", 0, 0, 0)}, nil, Options{})
	if err != nil {
		t.Fatalf("capacity zero must not error: %v", err)
	}
	if !reflect.DeepEqual(plan.Routes[0].Sequence, []string{model.DepotID}) {
		t.Fatalf("sequence = %v, want depot only", plan.Routes[0].Sequence)
	}
	if !reflect.DeepEqual(plan.Unserved, []string{"m1"}) {
		t.Fatalf("unserved = %v, want [m1]", plan.Unserved)
	}
}

func TestBuildPlanNegativeCapacityRejected(t *testing.T) {
	_, err := BuildPlan(nil, []model.CHW{chw("c1", "Alice", 0, 0, -1)}, nil, Options{})
	var cfg *ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
}

func TestBuildPlanNegativeOverrideRejected(t *testing.T) {
	override := -3
	_, err := BuildPlan(nil, []model.CHW{chw("c1", "Alice", 0, 0, 4)}, nil, Options{CapacityOverride: &override})
	var cfg *ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
}

func TestBuildPlanOverrideReplacesDeclaredCapacity(t *testing.T) {
	mothers, _ := lineFixture()
	override := 1
	plan, err := BuildPlan(mothers, []model.CHW{chw("c1", "Alice", 0, 0, 5)}, nil, Options{CapacityOverride: &override})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := plan.Routes[0]
	if r.Capacity != 1 {
		t.Errorf("reported capacity = %d, want the override 1", r.Capacity)
	}
	if r.Visits() != 1 {
		t.Errorf("visits = %d, want 1", r.Visits())
	}
	if len(plan.Unserved) != 2 {
		t.Errorf("unserved = %v, want two mothers", plan.Unserved)
	}
}

func TestBuildPlanOverrideZeroParksTheFleet(t *testing.T) {
	mothers, chws := lineFixture()
	override := 0
	plan, err := BuildPlan(mothers, chws, nil, Options{CapacityOverride: &override})
	if err != nil {
		t.Fatalf("override zero must not error: %v", err)
	}
	if plan.Served() != 0 {
		t.Fatalf("served = %d, want 0", plan.Served())
	}
	if len(plan.Unserved) != len(mothers) {
		t.Fatalf("unserved = %v, want all mothers", plan.Unserved)
	}
}

func TestBuildPlanBadMotherCoordinateAbortsWholeCall(t *testing.T) {
	mothers := []model.TriagedMother{
		tm("ok", 0.009, 0, "ROUTINE"),
		tm("broken", 91, 0, "ROUTINE"),
	}
	plan, err := BuildPlan(mothers, []model.CHW{chw("c1", "Alice", 0, 0, 5)}, nil, Options{})
	var geom *GeometryError
	if !errors.As(err, &geom) {
		t.Fatalf("error = %v, want GeometryError", err)
	}
	if geom.Entity != "broken" {
		t.Errorf("entity = %s, want broken", geom.Entity)
	}
	if !errors.Is(err, geo.ErrInvalidCoordinate) {
		t.Errorf("error does not wrap geo.ErrInvalidCoordinate: %v", err)
	}
	if len(plan.Routes) != 0 || len(plan.Unserved) != 0 {
		t.Errorf("partial plan returned alongside error: %+v", plan)
	}
}

func TestBuildPlanBadWorkerCoordinateAbortsWholeCall(t *testing.T) {
	chws := []model.CHW{chw("c1", "Alice", 0, 200, 5)}
	_, err := BuildPlan(nil, chws, nil, Options{})
	var geom *GeometryError
	if !errors.As(err, &geom) {
		t.Fatalf("error = %v, want GeometryError", err)
	}
	if geom.Entity != "c1" {
		t.Errorf("entity = %s, want c1", geom.Entity)
	}
}

func TestBuildPlanDuplicateIDsRejected(t *testing.T) {
	mothers := []model.TriagedMother{
		tm("m1", 0.009, 0, "ROUTINE"),
		tm("m1", 0.018, 0, "ROUTINE"),
	}
	_, err := BuildPlan(mothers, []model.CHW{chw("c1", "Alice", 0, 0, 2)}, nil, Options{})
	var cfg *ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}

	chws := []model.CHW{chw("c1", "Alice", 0, 0, 2), chw("c1", "Beatrice", 0.018, 0, 2)}
	_, err = BuildPlan(nil, chws, nil, Options{})
	if !errors.As(err, &cfg) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
}

func TestBuildPlanMissingIDRejected(t *testing.T) {
	_, err := BuildPlan([]model.TriagedMother{tm("", 0.009, 0, "ROUTINE")}, nil, nil, Options{})
	var cfg *ConfigurationError
	if !errors.As(err, &cfg) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
}

func TestBuildPlanDeterminism(t *testing.T) {
	mothers := []model.TriagedMother{
		tm("m1", 0.009, 0.002, "PRIORITY"),
		tm("m2", 0.018, -0.004, "ROUTINE"),
		tm("m3", 0.027, 0.001, "EMERGENCY"),
		tm("m4", -0.012, 0.003, "ROUTINE"),
	}
	chws := []model.CHW{
		chw("c1", "Alice", 0, 0, 2),
		chw("c2", "Beatrice", 0.02, 0, 2),
	}
	blocked := []model.BlockedEdge{{A: "m1", B: "m2"}}

	first, err := BuildPlan(mothers, chws, blocked, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := BuildPlan(mothers, chws, blocked, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("plans differ across identical runs:\n%+v\n%+v", first, second)
	}
}

func TestBuildPlanDoesNotMutateInputs(t *testing.T) {
	mothers := []model.TriagedMother{
		tm("m2", 0.018, 0, "ROUTINE"),
		tm("m1", 0.009, 0, "EMERGENCY"),
	}
	orig := make([]model.TriagedMother, len(mothers))
	copy(orig, mothers)

	if _, err := BuildPlan(mothers, []model.CHW{chw("c1", "Alice", 0, 0, 2)}, nil, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(mothers, orig) {
		t.Fatalf("input slice was reordered: %+v", mothers)
	}
}
