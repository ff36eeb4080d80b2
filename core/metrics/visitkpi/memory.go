package visitkpi

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore stores records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add inserts or updates the record aggregated by day and worker. Visits
// and distance accumulate; capacity reflects the latest plan of the day.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.CHWID] == nil {
		s.data[r.CHWID] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[r.CHWID][d]
	if rec == nil {
		rec = &Record{CHWID: r.CHWID, Date: d}
		s.data[r.CHWID][d] = rec
	}
	rec.Visits += r.Visits
	rec.Completed += r.Completed
	rec.Km += r.Km
	if r.Capacity != 0 {
		rec.Capacity = r.Capacity
	}
	return nil
}

// Query returns records between start and end inclusive.
func (s *MemoryStore) Query(chwID string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = Day(start)
	end = Day(end)
	var res []Record
	m := s.data[chwID]
	for d, r := range m {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
