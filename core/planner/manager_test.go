package planner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/uzazi-health/chwplan/core/events"
	"github.com/uzazi-health/chwplan/core/metrics"
	"github.com/uzazi-health/chwplan/core/model"
	"github.com/uzazi-health/chwplan/core/planner/planlog"
	"github.com/uzazi-health/chwplan/internal/eventbus"
)

// fakePublisher acknowledges every route unless the vehicle is listed in
// failSend or nacks.
type fakePublisher struct {
	mu       sync.Mutex
	sent     map[string]model.Route
	failSend map[string]bool
	nacks    map[string]bool
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{sent: make(map[string]model.Route)}
}

func (p *fakePublisher) SendRoute(chwID string, route model.Route) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSend[chwID] {
		return "", fmt.Errorf("broker unavailable for %s", chwID)
	}
	p.sent[chwID] = route
	return "delivery-" + chwID, nil
}

func (p *fakePublisher) WaitForAck(deliveryID string, timeout time.Duration) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	chwID := deliveryID[len("delivery-"):]
	if p.nacks[chwID] {
		return false, nil
	}
	return true, nil
}

func (p *fakePublisher) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

// countingSink records every event category it receives.
type countingSink struct {
	mu      sync.Mutex
	plans   []metrics.PlanEvent
	routes  []metrics.RouteEvent
	triages []metrics.TriageEvent
	acks    []metrics.NotifyAckEvent
}

func (s *countingSink) RecordPlan(ev metrics.PlanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = append(s.plans, ev)
	return nil
}

func (s *countingSink) RecordRoute(ev metrics.RouteEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = append(s.routes, ev)
	return nil
}

func (s *countingSink) RecordTriage(ev metrics.TriageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triages = append(s.triages, ev)
	return nil
}

func (s *countingSink) RecordNotifyAck(ev metrics.NotifyAckEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acks = append(s.acks, ev)
	return nil
}

// cohortRequest pairs an urgent and a routine mother with two workers.
func cohortRequest() PlanRequest {
	return PlanRequest{
		Mothers: []model.Mother{
			{ID: "m1", Name: "Amina", Location: model.Coordinates{Lat: 0.009, Lng: 0}, BleedingStatus: "heavy", TempC: 36.8, BabyFeedingOK: true, PriorityOverride: model.AutoPriority},
			{ID: "m2", Name: "Beatrice", Location: model.Coordinates{Lat: 0.018, Lng: 0}, BleedingStatus: "none", TempC: 36.5, BabyFeedingOK: true, PriorityOverride: model.AutoPriority},
		},
		CHWs: []model.CHW{
			{ID: "c1", Name: "Grace", Location: model.Coordinates{Lat: 0, Lng: 0}, MaxVisitsPerDay: 1, Transport: "bicycle"},
			{ID: "c2", Name: "Joy", Location: model.Coordinates{Lat: 0.027, Lng: 0}, MaxVisitsPerDay: 1, Transport: "walk"},
		},
	}
}

func TestPlanManager_PlanPublishesAndPersists(t *testing.T) {
	pub := newFakePublisher()
	sink := &countingSink{}
	mgr := NewPlanManager(pub, time.Second, sink, nil, nil)
	store, err := planlog.NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	mgr.SetLogStore(store)

	res, err := mgr.Plan(context.Background(), cohortRequest())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if res.PlanID == "" {
		t.Fatalf("expected a plan id")
	}
	if res.Summary.Served != 2 || res.Summary.Unserved != 0 {
		t.Fatalf("summary off: %+v", res.Summary)
	}
	if got := pub.sentCount(); got != 2 {
		t.Fatalf("expected 2 published routes, got %d", got)
	}
	for _, id := range []string{"c1", "c2"} {
		st, ok := res.Acks[id]
		if !ok || !st.Acknowledged {
			t.Errorf("expected ack for %s, got %+v", id, st)
		}
	}

	recs, err := mgr.Logs(context.Background(), planlog.Query{PlanID: res.PlanID})
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(recs))
	}
	if !recs[0].Acks["c1"] || !recs[0].Acks["c2"] {
		t.Fatalf("persisted acks wrong: %+v", recs[0].Acks)
	}

	if len(sink.plans) != 1 || len(sink.routes) != 2 || len(sink.triages) != 1 || len(sink.acks) != 2 {
		t.Fatalf("sink counts wrong: plans=%d routes=%d triages=%d acks=%d",
			len(sink.plans), len(sink.routes), len(sink.triages), len(sink.acks))
	}
	if sink.plans[0].Emergencies != 1 {
		t.Fatalf("expected 1 emergency in plan event, got %d", sink.plans[0].Emergencies)
	}
	if sink.triages[0].Emergency != 1 || sink.triages[0].Routine != 1 {
		t.Fatalf("triage tally wrong: %+v", sink.triages[0])
	}
}

func TestPlanManager_EmptyRouteNotNotified(t *testing.T) {
	pub := newFakePublisher()
	mgr := NewPlanManager(pub, time.Second, nil, nil, nil)

	req := cohortRequest()
	req.CHWs[1].MaxVisitsPerDay = 0
	req.CHWs[0].MaxVisitsPerDay = 2

	res, err := mgr.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if got := pub.sentCount(); got != 1 {
		t.Fatalf("expected only the loaded route to publish, got %d", got)
	}
	if _, ok := res.Acks["c2"]; ok {
		t.Fatalf("idle worker should have no ack entry: %+v", res.Acks)
	}
}

func TestPlanManager_PublishFailureRecordedNotFatal(t *testing.T) {
	pub := newFakePublisher()
	pub.failSend = map[string]bool{"c2": true}
	mgr := NewPlanManager(pub, time.Second, nil, nil, nil)

	res, err := mgr.Plan(context.Background(), cohortRequest())
	if err != nil {
		t.Fatalf("plan should survive a failed publish: %v", err)
	}
	st := res.Acks["c2"]
	if st.Acknowledged || st.Error == "" {
		t.Fatalf("expected failed ack with error, got %+v", st)
	}
	if !res.Acks["c1"].Acknowledged {
		t.Fatalf("unrelated worker should still ack: %+v", res.Acks["c1"])
	}
}

func TestPlanManager_NackedDelivery(t *testing.T) {
	pub := newFakePublisher()
	pub.nacks = map[string]bool{"c1": true}
	mgr := NewPlanManager(pub, time.Second, nil, nil, nil)

	res, err := mgr.Plan(context.Background(), cohortRequest())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	st := res.Acks["c1"]
	if st.Acknowledged {
		t.Fatalf("expected nack for c1, got %+v", st)
	}
	if st.Error != "" {
		t.Fatalf("nack is not an error: %+v", st)
	}
}

func TestPlanManager_NilPublisherSkipsDelivery(t *testing.T) {
	mgr := NewPlanManager(nil, 0, nil, nil, nil)
	res, err := mgr.Plan(context.Background(), cohortRequest())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if res.Acks != nil {
		t.Fatalf("expected no acks without a publisher, got %+v", res.Acks)
	}
	if res.Summary.Served != 2 {
		t.Fatalf("plan should still be built: %+v", res.Summary)
	}
}

func TestPlanManager_SchedulerErrorAborts(t *testing.T) {
	pub := newFakePublisher()
	mgr := NewPlanManager(pub, time.Second, nil, nil, nil)
	store, err := planlog.NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	mgr.SetLogStore(store)

	req := cohortRequest()
	req.Mothers[0].Location.Lat = 95 // off the globe

	_, err = mgr.Plan(context.Background(), req)
	var gerr *GeometryError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected geometry error, got %v", err)
	}
	if got := pub.sentCount(); got != 0 {
		t.Fatalf("nothing should publish on abort, got %d", got)
	}
	recs, err := mgr.Logs(context.Background(), planlog.Query{})
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("nothing should persist on abort, got %d records", len(recs))
	}
}

func TestPlanManager_BusReceivesLifecycleEvents(t *testing.T) {
	bus := eventbus.New()
	sub := bus.Subscribe()
	mgr := NewPlanManager(newFakePublisher(), time.Second, nil, bus, nil)
	defer func() { _ = mgr.Close() }()

	if _, err := mgr.Plan(context.Background(), cohortRequest()); err != nil {
		t.Fatalf("plan: %v", err)
	}

	var triages, plans, acks int
	for i := 0; i < 4; i++ {
		select {
		case ev := <-sub:
			switch ev.(type) {
			case events.TriageEvent:
				triages++
			case events.PlanEvent:
				plans++
			case events.RouteAckEvent:
				acks++
			default:
				t.Fatalf("unexpected event type %T", ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
	if triages != 1 || plans != 1 || acks != 2 {
		t.Fatalf("event mix wrong: triage=%d plan=%d acks=%d", triages, plans, acks)
	}
}

func TestPlanManager_Compare(t *testing.T) {
	mgr := NewPlanManager(nil, 0, nil, nil, nil)
	req := cohortRequest()
	req.CHWs = req.CHWs[:1] // one worker, capacity 1

	cmp, err := mgr.Compare(context.Background(), req, Scenario{VisitsPerCHW: 2})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.ServedDelta != 1 {
		t.Fatalf("uniform capacity bump should serve one more, got %+v", cmp)
	}
}

func TestPlanManager_LogsWithoutStore(t *testing.T) {
	mgr := NewPlanManager(nil, 0, nil, nil, nil)
	recs, err := mgr.Logs(context.Background(), planlog.Query{})
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no records without a store, got %d", len(recs))
	}
}
