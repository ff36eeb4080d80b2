package kpi

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	coremetrics "github.com/uzazi-health/chwplan/core/metrics"
	"github.com/uzazi-health/chwplan/core/metrics/visitkpi"
)

func TestWorkloadSink_AggregatesPerDay(t *testing.T) {
	store := visitkpi.NewMemoryStore()
	sink := NewWorkloadSink(store, prometheus.NewRegistry())

	now := time.Now()
	for _, ev := range []coremetrics.RouteEvent{
		{PlanID: "p1", VehicleID: "c1", Visits: 2, Km: 3.5, Capacity: 6, Time: now},
		{PlanID: "p2", VehicleID: "c1", Visits: 1, Km: 1.5, Capacity: 6, Time: now.Add(time.Hour)},
	} {
		if err := sink.RecordRoute(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recs, err := store.Query("c1", now, now)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].Visits != 3 || recs[0].Km != 5 {
		t.Fatalf("aggregation wrong: %+v", recs[0])
	}
	if recs[0].Utilization() != 0.5 {
		t.Fatalf("utilization = %v, want 0.5", recs[0].Utilization())
	}
}

func TestSQLiteStore_Upsert(t *testing.T) {
	store, err := NewSQLiteStore("file:kpi_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	d := visitkpi.Day(time.Now())
	if err := store.Add(visitkpi.Record{CHWID: "c1", Date: d, Visits: 2, Km: 4, Capacity: 6}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(visitkpi.Record{CHWID: "c1", Date: d.Add(3 * time.Hour), Visits: 1, Km: 2, Capacity: 6}); err != nil {
		t.Fatalf("add2: %v", err)
	}

	recs, err := store.Query("c1", d, d)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected one aggregated row, got %d", len(recs))
	}
	if recs[0].Visits != 3 || recs[0].Km != 6 || recs[0].Capacity != 6 {
		t.Fatalf("upsert wrong: %+v", recs[0])
	}
}
