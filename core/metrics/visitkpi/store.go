package visitkpi

import "time"

// Store persists per-worker workload KPI records.
type Store interface {
	Add(Record) error
	Query(chwID string, start, end time.Time) ([]Record, error)
}

// Day aligns time to start of day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
