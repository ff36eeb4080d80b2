package visitkpi

import "time"

// Record aggregates workload KPIs for a worker and day. Visits counts
// planned stops; Completed counts the visit reports devices sent back.
type Record struct {
	CHWID     string
	Date      time.Time
	Visits    int
	Completed int
	Km        float64
	Capacity  int
}

// KmPerVisit returns the average leg cost of the day's workload.
func (r Record) KmPerVisit() float64 {
	if r.Visits == 0 {
		return 0
	}
	return r.Km / float64(r.Visits)
}

// Utilization returns the share of the daily visit quota that was used.
func (r Record) Utilization() float64 {
	if r.Capacity == 0 {
		if r.Visits == 0 {
			return 0
		}
		return float64(r.Visits)
	}
	return float64(r.Visits) / float64(r.Capacity)
}

// CompletionRate returns the share of planned visits reported done.
func (r Record) CompletionRate() float64 {
	if r.Visits == 0 {
		return 0
	}
	return float64(r.Completed) / float64(r.Visits)
}
