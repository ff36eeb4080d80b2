package visitkpi

import (
	core "github.com/uzazi-health/chwplan/core/metrics/visitkpi"
	"github.com/uzazi-health/chwplan/core/planner/planlog"
)

// Backfill replays historical plan records and populates the store.
func Backfill(store core.Store, history []planlog.Record) error {
	for _, h := range history {
		for _, r := range h.Plan.Routes {
			if r.Visits() == 0 {
				continue
			}
			rec := core.Record{
				CHWID:    r.VehicleID,
				Date:     core.Day(h.Timestamp),
				Visits:   r.Visits(),
				Km:       r.Km,
				Capacity: r.Capacity,
			}
			if err := store.Add(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
