package scenarios

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	corelogger "github.com/uzazi-health/chwplan/core/logger"
	"github.com/uzazi-health/chwplan/core/model"
	"github.com/uzazi-health/chwplan/core/planner"
	inframetrics "github.com/uzazi-health/chwplan/infra/metrics"
	"github.com/uzazi-health/chwplan/infra/mqtt"
	"github.com/uzazi-health/chwplan/internal/eventbus"
)

// Report is the outcome of one scenario run. Mismatches is empty when
// every expectation held.
type Report struct {
	PlanID     string
	Mismatches []string
}

// Run executes the scenario through the full manager pipeline with a
// mock publisher and a private metrics registry, then checks the
// expected routes, unserved pool and acknowledgment count.
func Run(sc *Scenario) (Report, error) {
	sink, err := inframetrics.NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		return Report{}, fmt.Errorf("prom sink: %w", err)
	}

	pub := mqtt.NewMockPublisher()
	for _, id := range sc.FailCHWs {
		pub.FailIDs[id] = true
	}

	mgr := planner.NewPlanManager(pub, 10*time.Millisecond, sink, eventbus.New(), corelogger.NopLogger{})
	defer func() { _ = mgr.Close() }()

	req := planner.PlanRequest{
		Mothers: make([]model.Mother, len(sc.Mothers)),
		CHWs:    make([]model.CHW, len(sc.CHWs)),
		Blocked: make([]model.BlockedEdge, len(sc.Blocked)),
	}
	for i, m := range sc.Mothers {
		req.Mothers[i] = m.ToModel()
	}
	for i, c := range sc.CHWs {
		req.CHWs[i] = c.ToModel()
	}
	for i, e := range sc.Blocked {
		req.Blocked[i] = model.BlockedEdge{A: e.A, B: e.B}
	}
	if sc.Capacity != nil {
		req.Options.CapacityOverride = sc.Capacity
	}

	res, err := mgr.Plan(context.Background(), req)
	if err != nil {
		return Report{}, err
	}

	rep := Report{PlanID: res.PlanID}
	for id, want := range sc.Expected.Routes {
		route, ok := findRoute(res.Plan.Routes, id)
		if !ok {
			rep.Mismatches = append(rep.Mismatches, fmt.Sprintf("no route for %s", id))
			continue
		}
		got := route.Sequence[1:]
		if !equalSeq(got, want) {
			rep.Mismatches = append(rep.Mismatches, fmt.Sprintf("%s visits %v, want %v", id, got, want))
		}
	}
	if !equalSeq(res.Plan.Unserved, sc.Expected.Unserved) {
		rep.Mismatches = append(rep.Mismatches, fmt.Sprintf("unserved %v, want %v", res.Plan.Unserved, sc.Expected.Unserved))
	}
	if sc.Expected.Acked != nil {
		acked := 0
		for _, st := range res.Acks {
			if st.Acknowledged {
				acked++
			}
		}
		if acked != *sc.Expected.Acked {
			rep.Mismatches = append(rep.Mismatches, fmt.Sprintf("%d acked, want %d", acked, *sc.Expected.Acked))
		}
	}
	return rep, nil
}

func findRoute(routes []model.Route, id string) (model.Route, bool) {
	for _, r := range routes {
		if r.VehicleID == id {
			return r, true
		}
	}
	return model.Route{}, false
}

// equalSeq treats nil and empty as the same sequence.
func equalSeq(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
