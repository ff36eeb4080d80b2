package visitkpi

import (
	"testing"
	"time"
)

func TestMemoryStore_Aggregation(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Now())
	if err := s.Add(Record{CHWID: "c1", Date: d, Visits: 2, Km: 4.5, Capacity: 6}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{CHWID: "c1", Date: d.Add(2 * time.Hour), Visits: 1, Km: 1.5, Capacity: 6}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	if err := s.Add(Record{CHWID: "c1", Date: d.Add(4 * time.Hour), Completed: 2}); err != nil {
		t.Fatalf("add report: %v", err)
	}
	recs, err := s.Query("c1", d, d)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].Visits != 3 || recs[0].Km != 6 {
		t.Fatalf("expected 3 visits over 6 km, got %+v", recs[0])
	}
	if recs[0].Completed != 2 {
		t.Fatalf("expected 2 completions, got %+v", recs[0])
	}
	if recs[0].Capacity != 6 {
		t.Fatalf("capacity must keep the planned value: %+v", recs[0])
	}
}

func TestRecordCalculations(t *testing.T) {
	r := Record{Visits: 4, Completed: 3, Km: 10, Capacity: 8}
	if r.KmPerVisit() != 2.5 {
		t.Fatalf("km per visit")
	}
	if r.Utilization() != 0.5 {
		t.Fatalf("utilization")
	}
	if r.CompletionRate() != 0.75 {
		t.Fatalf("completion rate")
	}
	zero := Record{}
	if zero.KmPerVisit() != 0 || zero.Utilization() != 0 || zero.CompletionRate() != 0 {
		t.Fatalf("zero record must not divide by zero")
	}
}
