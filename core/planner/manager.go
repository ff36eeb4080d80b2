package planner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uzazi-health/chwplan/core/events"
	"github.com/uzazi-health/chwplan/core/logger"
	"github.com/uzazi-health/chwplan/core/metrics"
	"github.com/uzazi-health/chwplan/core/model"
	"github.com/uzazi-health/chwplan/core/monitoring"
	"github.com/uzazi-health/chwplan/core/notify"
	"github.com/uzazi-health/chwplan/core/planner/planlog"
	"github.com/uzazi-health/chwplan/core/triage"
	"github.com/uzazi-health/chwplan/internal/eventbus"
)

// PlanRequest carries one cohort through triage and scheduling.
type PlanRequest struct {
	Mothers []model.Mother      `json:"mothers"`
	CHWs    []model.CHW         `json:"chws"`
	Blocked []model.BlockedEdge `json:"blocked_edges,omitempty"`
	Options Options             `json:"options"`
}

// AckStatus reports the delivery outcome for one worker's route.
type AckStatus struct {
	Acknowledged bool          `json:"acknowledged"`
	Latency      time.Duration `json:"latency"`
	Error        string        `json:"error,omitempty"`
}

// PlanResult is the full outcome of one planning run.
type PlanResult struct {
	PlanID      string                `json:"plan_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Triage      []model.TriagedMother `json:"triage"`
	Plan        model.RoutePlan       `json:"plan"`
	Summary     Summary               `json:"summary"`
	Acks        map[string]AckStatus  `json:"acks,omitempty"`
}

// PlanManager orchestrates a planning run end to end: triage, route
// construction, route delivery, metrics and persistence.
type PlanManager struct {
	publisher  notify.RoutePublisher
	ackTimeout time.Duration
	logger     logger.Logger
	metrics    metrics.Sink
	bus        *eventbus.Bus
	store      planlog.Store
	mu         sync.Mutex
}

// NewPlanManager creates a manager. publisher may be nil when routes are
// not delivered anywhere, bus may be nil when nothing consumes live
// events. If ackTimeout is zero, a default of five seconds is used.
func NewPlanManager(publisher notify.RoutePublisher, ackTimeout time.Duration, sink metrics.Sink, bus *eventbus.Bus, log logger.Logger) *PlanManager {
	if ackTimeout <= 0 {
		ackTimeout = 5 * time.Second
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &PlanManager{
		publisher:  publisher,
		ackTimeout: ackTimeout,
		logger:     log,
		metrics:    sink,
		bus:        bus,
	}
}

// SetLogStore configures the store used to persist plan records.
func (m *PlanManager) SetLogStore(store planlog.Store) {
	m.mu.Lock()
	m.store = store
	m.mu.Unlock()
}

// Close releases resources held by the manager.
func (m *PlanManager) Close() error {
	if m.bus != nil {
		m.bus.Close()
	}
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store != nil {
		_ = store.Close()
	}
	return nil
}

// Triage assesses the cohort without scheduling anything.
func (m *PlanManager) Triage(mothers []model.Mother) []model.TriagedMother {
	assessed := triage.Apply(mothers)
	m.recordTriage(assessed)
	return assessed
}

// Plan runs the full pipeline for one cohort. Triage happens first so
// scheduling sees final priorities; a scheduling error aborts the run
// with no partial result.
func (m *PlanManager) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	triaged := m.Triage(req.Mothers)

	plan, err := BuildPlan(triaged, req.CHWs, req.Blocked, req.Options)
	if err != nil {
		return PlanResult{}, err
	}

	res := PlanResult{
		PlanID:      uuid.NewString(),
		GeneratedAt: time.Now(),
		Triage:      triaged,
		Plan:        plan,
		Summary:     Analyze(plan),
	}
	m.logger.Infof("plan %s: %d routes, %d served, %d unserved",
		res.PlanID, res.Summary.Routes, res.Summary.Served, res.Summary.Unserved)
	if m.bus != nil {
		m.bus.Publish(events.PlanEvent{PlanID: res.PlanID, Plan: plan, GeneratedAt: res.GeneratedAt})
	}

	if m.publisher != nil {
		res.Acks = m.publishRoutes(res.PlanID, plan.Routes, transportIndex(req.CHWs))
	}

	m.recordPlan(res)
	m.appendLog(ctx, res)
	return res, nil
}

// Compare triages the cohort once and evaluates the staffing scenario
// against the baseline fleet. Nothing is published or persisted; the
// comparison is advisory.
func (m *PlanManager) Compare(ctx context.Context, req PlanRequest, sc Scenario) (Comparison, error) {
	_ = ctx
	triaged := triage.Apply(req.Mothers)
	return WhatIf(triaged, req.CHWs, req.Blocked, sc)
}

// Logs returns persisted plan records matching q. Without a configured
// store the result is empty.
func (m *PlanManager) Logs(ctx context.Context, q planlog.Query) ([]planlog.Record, error) {
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		return nil, nil
	}
	return store.Query(ctx, q)
}

// sendAndWait publishes one route and waits for its acknowledgment while
// measuring the latency.
func (m *PlanManager) sendAndWait(r model.Route) (bool, time.Duration, error) {
	start := time.Now()
	deliveryID, err := m.publisher.SendRoute(r.VehicleID, r)
	if err != nil {
		publishFailure.Inc()
		return false, time.Since(start), err
	}
	publishSuccess.Inc()
	ack, err := m.publisher.WaitForAck(deliveryID, m.ackTimeout)
	return ack, time.Since(start), err
}

// publishRoutes delivers the routes concurrently and collects the
// acknowledgments. Workers whose route has no visits are not notified.
func (m *PlanManager) publishRoutes(planID string, routes []model.Route, transports map[string]string) map[string]AckStatus {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ackCount int
		sent     int
	)
	acks := make(map[string]AckStatus, len(routes))
	update := func(r model.Route, ack bool, err error, dur time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		st := AckStatus{Acknowledged: err == nil && ack, Latency: dur}
		if err != nil {
			st.Error = err.Error()
			monitoring.CaptureException(err, map[string]string{
				"chw_id": r.VehicleID,
				"module": "plan_manager",
			})
		}
		acks[r.VehicleID] = st
		label := transports[r.VehicleID]
		routesPublished.WithLabelValues(label).Inc()
		notifyLatency.WithLabelValues(label).Observe(dur.Seconds())
		if m.bus != nil {
			m.bus.Publish(events.RouteAckEvent{
				PlanID:       planID,
				VehicleID:    r.VehicleID,
				Acknowledged: st.Acknowledged,
				Err:          err,
				Latency:      dur,
			})
		}
		if ar, ok := m.metrics.(metrics.NotifyAckRecorder); ok {
			ev := metrics.NotifyAckEvent{
				PlanID:       planID,
				VehicleID:    r.VehicleID,
				Acknowledged: st.Acknowledged,
				Latency:      dur,
				Error:        st.Error,
				Time:         time.Now(),
			}
			if rerr := ar.RecordNotifyAck(ev); rerr != nil {
				m.logger.Errorf("ack metrics error: %v", rerr)
			}
		}
		if st.Acknowledged {
			ackCount++
		}
	}
	for _, r := range routes {
		if r.Visits() == 0 {
			continue
		}
		sent++
		wg.Add(1)
		go func(r model.Route) {
			defer wg.Done()
			ack, dur, err := m.sendAndWait(r)
			update(r, ack, err, dur)
		}(r)
	}
	wg.Wait()
	if sent > 0 {
		routeAckRate.Set(float64(ackCount) / float64(sent))
	}
	return acks
}

// recordTriage tallies assessed tiers and publishes the live event.
func (m *PlanManager) recordTriage(assessed []model.TriagedMother) {
	if m.bus != nil {
		m.bus.Publish(events.TriageEvent{Assessed: assessed, Time: time.Now()})
	}
	tr, ok := m.metrics.(metrics.TriageRecorder)
	if !ok {
		return
	}
	ev := metrics.TriageEvent{Time: time.Now()}
	for _, t := range assessed {
		switch model.RiskLevel(t.PriorityFinal) {
		case model.RiskEmergency:
			ev.Emergency++
		case model.RiskPriority:
			ev.Priority++
		case model.RiskRoutine:
			ev.Routine++
		}
		if t.PriorityOverride != model.AutoPriority {
			ev.Overridden++
		}
	}
	if err := tr.RecordTriage(ev); err != nil {
		m.logger.Errorf("triage metrics error: %v", err)
	}
}

// recordPlan persists plan metrics through the configured sink.
func (m *PlanManager) recordPlan(res PlanResult) {
	emergencies := 0
	for _, t := range res.Triage {
		if t.PriorityFinal == string(model.RiskEmergency) {
			emergencies++
		}
	}
	ev := metrics.PlanEvent{
		PlanID:      res.PlanID,
		Routes:      res.Summary.Routes,
		Served:      res.Summary.Served,
		Unserved:    res.Summary.Unserved,
		TotalKm:     res.Summary.TotalKm,
		MeanRouteKm: res.Summary.MeanRouteKm,
		MaxRouteKm:  res.Summary.MaxRouteKm,
		Emergencies: emergencies,
		Time:        res.GeneratedAt,
	}
	if err := m.metrics.RecordPlan(ev); err != nil {
		m.logger.Errorf("plan metrics error: %v", err)
	}
	rr, ok := m.metrics.(metrics.RouteRecorder)
	if !ok {
		return
	}
	for _, r := range res.Plan.Routes {
		rev := metrics.RouteEvent{
			PlanID:    res.PlanID,
			VehicleID: r.VehicleID,
			CHWName:   r.CHWName,
			Visits:    r.Visits(),
			Km:        r.Km,
			Capacity:  r.Capacity,
			Time:      res.GeneratedAt,
		}
		if err := rr.RecordRoute(rev); err != nil {
			m.logger.Errorf("route metrics error: %v", err)
		}
	}
}

// appendLog persists the run to the plan log. Failures are logged, not
// returned, so a storage outage never loses the plan itself.
func (m *PlanManager) appendLog(ctx context.Context, res PlanResult) {
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		return
	}
	rec := planlog.Record{
		Timestamp: res.GeneratedAt,
		PlanID:    res.PlanID,
		Triage:    res.Triage,
		Plan:      res.Plan,
		Summary: planlog.Summary{
			Routes:      res.Summary.Routes,
			Served:      res.Summary.Served,
			Unserved:    res.Summary.Unserved,
			TotalKm:     res.Summary.TotalKm,
			MeanRouteKm: res.Summary.MeanRouteKm,
			StdDevKm:    res.Summary.StdDevKm,
			MaxRouteKm:  res.Summary.MaxRouteKm,
		},
	}
	if len(res.Acks) > 0 {
		rec.Acks = make(map[string]bool, len(res.Acks))
		for id, st := range res.Acks {
			rec.Acks[id] = st.Acknowledged
		}
	}
	if err := store.Append(ctx, rec); err != nil {
		m.logger.Errorf("plan log append error: %v", err)
		monitoring.CaptureException(err, map[string]string{"module": "plan_log"})
	}
}

// transportIndex maps worker IDs to their transport mode for metric labels.
func transportIndex(chws []model.CHW) map[string]string {
	idx := make(map[string]string, len(chws))
	for _, c := range chws {
		t := c.Transport
		if t == "" {
			t = "unspecified"
		}
		idx[c.ID] = t
	}
	return idx
}
