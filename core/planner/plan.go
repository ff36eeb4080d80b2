// Package planner builds the daily visit plan: a greedy multi-vehicle
// scheduler over geodesic distances under capacity, blocked-edge and
// reachability constraints. BuildPlan is pure and deterministic; the
// surrounding PlanManager adds publishing, metrics and persistence.
package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/uzazi-health/chwplan/core/geo"
	"github.com/uzazi-health/chwplan/core/model"
)

const (
	// BlockedPenaltyKm is added to a leg whose endpoints form a blocked
	// pair. Blocked legs stay traversable as a last resort, and a chosen
	// penalized leg keeps its penalty in the route total: the figure is
	// realized route cost, detour included.
	BlockedPenaltyKm = 1_000_000.0

	// ReachableLimitKm ends a route when even the best candidate leg
	// exceeds it. Real geodesic legs top out near 20,015 km, so only
	// penalized legs can cross the limit.
	ReachableLimitKm = 100_000.0
)

// Options tunes a single BuildPlan invocation.
type Options struct {
	// CapacityOverride, when set, replaces every worker's
	// MaxVisitsPerDay for this run and is reported as each route's
	// capacity. Used for what-if runs.
	CapacityOverride *int `json:"capacity_override,omitempty"`
}

type edgeKey [2]string

type blockedSet map[edgeKey]struct{}

func newBlockedSet(edges []model.BlockedEdge) blockedSet {
	set := make(blockedSet, len(edges))
	for _, e := range edges {
		a, b := e.Normalized()
		set[edgeKey{a, b}] = struct{}{}
	}
	return set
}

func (s blockedSet) has(a, b string) bool {
	if a > b {
		a, b = b, a
	}
	_, ok := s[edgeKey{a, b}]
	return ok
}

// BuildPlan assigns mothers to one route per worker. Workers are served
// in caller order; each repeatedly takes the nearest still-unserved
// mother, scanning candidates in priority-rank order so that equal
// distances resolve toward the more urgent (then earlier-listed) record.
// Mothers no worker can reach are returned in Unserved, never as an
// error.
func BuildPlan(mothers []model.TriagedMother, chws []model.CHW, blocked []model.BlockedEdge, opts Options) (model.RoutePlan, error) {
	if err := validateInput(mothers, chws, opts); err != nil {
		return model.RoutePlan{}, err
	}

	// Candidate scan order: rank ascending, stable within a rank so
	// ties keep caller order. The reference behavior left same-rank
	// order undefined; stability is the documented deterministic choice.
	sorted := make([]model.TriagedMother, len(mothers))
	copy(sorted, mothers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return model.PriorityRank(sorted[i].PriorityFinal) < model.PriorityRank(sorted[j].PriorityFinal)
	})

	// The pool is owned by this call; concurrent invocations never
	// share it.
	pool := make(map[string]struct{}, len(sorted))
	for _, m := range sorted {
		pool[m.ID] = struct{}{}
	}
	blockedPairs := newBlockedSet(blocked)

	routes := make([]model.Route, 0, len(chws))
	for _, c := range chws {
		capacity := c.MaxVisitsPerDay
		if opts.CapacityOverride != nil {
			capacity = *opts.CapacityOverride
		}

		seq := []string{model.DepotID}
		marker := model.DepotID
		pos := c.Location
		remaining := capacity
		var km float64

		for remaining > 0 && len(pool) > 0 {
			var best *model.TriagedMother
			var bestD float64
			for i := range sorted {
				m := &sorted[i]
				if _, open := pool[m.ID]; !open {
					continue
				}
				d, err := geo.Distance(pos, m.Location)
				if err != nil {
					return model.RoutePlan{}, &GeometryError{Entity: m.ID, Err: err}
				}
				if blockedPairs.has(marker, m.ID) {
					d += BlockedPenaltyKm
				}
				if best == nil || d < bestD {
					best, bestD = m, d
				}
			}
			if best == nil || bestD > ReachableLimitKm {
				break
			}
			seq = append(seq, best.ID)
			km += bestD
			marker = best.ID
			pos = best.Location
			delete(pool, best.ID)
			remaining--
		}

		routes = append(routes, model.Route{
			VehicleID: c.ID,
			CHWName:   c.Name,
			Sequence:  seq,
			Km:        math.Round(km*100) / 100,
			Capacity:  capacity,
		})
	}

	unserved := make([]string, 0, len(pool))
	for id := range pool {
		unserved = append(unserved, id)
	}
	sort.Strings(unserved)

	return model.RoutePlan{Routes: routes, Unserved: unserved}, nil
}

// validateInput rejects the whole call before any assignment happens.
// Coordinates are checked eagerly for every record so that a bad point
// fails the run even when capacity would have kept it off any route.
func validateInput(mothers []model.TriagedMother, chws []model.CHW, opts Options) error {
	if opts.CapacityOverride != nil && *opts.CapacityOverride < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("capacity override %d is negative", *opts.CapacityOverride)}
	}

	motherIDs := make(map[string]struct{}, len(mothers))
	for _, m := range mothers {
		if err := m.Validate(); err != nil {
			return &ConfigurationError{Reason: err.Error()}
		}
		if _, dup := motherIDs[m.ID]; dup {
			return &ConfigurationError{Reason: fmt.Sprintf("duplicate mother id %q", m.ID)}
		}
		motherIDs[m.ID] = struct{}{}
		if !m.Location.Valid() {
			return &GeometryError{
				Entity: m.ID,
				Err:    fmt.Errorf("%w: lat=%v lng=%v", geo.ErrInvalidCoordinate, m.Location.Lat, m.Location.Lng),
			}
		}
	}

	chwIDs := make(map[string]struct{}, len(chws))
	for _, c := range chws {
		if err := c.Validate(); err != nil {
			return &ConfigurationError{Reason: err.Error()}
		}
		if _, dup := chwIDs[c.ID]; dup {
			return &ConfigurationError{Reason: fmt.Sprintf("duplicate chw id %q", c.ID)}
		}
		chwIDs[c.ID] = struct{}{}
		capacity := c.MaxVisitsPerDay
		if opts.CapacityOverride != nil {
			capacity = *opts.CapacityOverride
		}
		if capacity < 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("chw %q has negative capacity %d", c.ID, capacity)}
		}
		if !c.Location.Valid() {
			return &GeometryError{
				Entity: c.ID,
				Err:    fmt.Errorf("%w: lat=%v lng=%v", geo.ErrInvalidCoordinate, c.Location.Lat, c.Location.Lng),
			}
		}
	}
	return nil
}
