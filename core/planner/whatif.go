package planner

import (
	"fmt"
	"math"

	"github.com/uzazi-health/chwplan/core/model"
)

// Scenario describes a what-if run: temporary workers cloned from the
// first CHW, or a uniform visits-per-day cap when no workers are added.
type Scenario struct {
	// ExtraCHWs clones of the first worker join the fleet, each with
	// VisitsPerCHW capacity. The base fleet keeps its own capacities.
	ExtraCHWs int `json:"extra_chws"`

	// VisitsPerCHW caps the added workers, or the whole fleet when
	// ExtraCHWs is zero.
	VisitsPerCHW int `json:"visits_per_chw"`
}

// Comparison holds a baseline plan next to its what-if variant.
type Comparison struct {
	Baseline      model.RoutePlan `json:"baseline"`
	Scenario      model.RoutePlan `json:"scenario"`
	ServedDelta   int             `json:"served_delta"`
	UnservedDelta int             `json:"unserved_delta"`
	KmDelta       float64         `json:"km_delta"`
}

// WhatIf rebuilds the plan under the scenario and reports deltas against
// the unmodified baseline.
func WhatIf(mothers []model.TriagedMother, chws []model.CHW, blocked []model.BlockedEdge, s Scenario) (Comparison, error) {
	if s.ExtraCHWs < 0 {
		return Comparison{}, &ConfigurationError{Reason: fmt.Sprintf("extra chw count %d is negative", s.ExtraCHWs)}
	}

	baseline, err := BuildPlan(mothers, chws, blocked, Options{})
	if err != nil {
		return Comparison{}, err
	}

	fleet := chws
	var opts Options
	if s.ExtraCHWs > 0 {
		if len(chws) == 0 {
			return Comparison{}, &ConfigurationError{Reason: "cannot clone workers from an empty fleet"}
		}
		base := chws[0]
		fleet = make([]model.CHW, len(chws), len(chws)+s.ExtraCHWs)
		copy(fleet, chws)
		for k := 1; k <= s.ExtraCHWs; k++ {
			fleet = append(fleet, model.CHW{
				ID:              fmt.Sprintf("chwX%d", k),
				Name:            fmt.Sprintf("Temp CHW %d", k),
				Location:        base.Location,
				MaxVisitsPerDay: s.VisitsPerCHW,
				Transport:       base.Transport,
				Phone:           "000",
			})
		}
	} else {
		visits := s.VisitsPerCHW
		opts.CapacityOverride = &visits
	}

	variant, err := BuildPlan(mothers, fleet, blocked, opts)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Baseline:      baseline,
		Scenario:      variant,
		ServedDelta:   variant.Served() - baseline.Served(),
		UnservedDelta: len(variant.Unserved) - len(baseline.Unserved),
		KmDelta:       math.Round((totalKm(variant)-totalKm(baseline))*100) / 100,
	}, nil
}

func totalKm(p model.RoutePlan) float64 {
	var km float64
	for _, r := range p.Routes {
		km += r.Km
	}
	return km
}
