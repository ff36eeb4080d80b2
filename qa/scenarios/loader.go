// Package scenarios loads and runs YAML planning scenarios: a cohort, a
// roster, closures, and the routes the plan must produce. The files in
// this directory double as executable documentation of the scheduler's
// tie-break and blocking behavior.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/uzazi-health/chwplan/core/model"
)

type MotherDef struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Lat            float64 `yaml:"lat"`
	Lng            float64 `yaml:"lng"`
	Bleeding       string  `yaml:"bleeding"`
	TempC          float64 `yaml:"temp_c"`
	Headache       bool    `yaml:"headache"`
	VisionBlur     bool    `yaml:"vision_blur"`
	FeedingOK      *bool   `yaml:"baby_feeding_ok"`
	DaysPostpartum int     `yaml:"days_postpartum"`
	Priority       string  `yaml:"priority"`
}

func (m MotherDef) ToModel() model.Mother {
	feeding := true
	if m.FeedingOK != nil {
		feeding = *m.FeedingOK
	}
	bleeding := m.Bleeding
	if bleeding == "" {
		bleeding = "none"
	}
	priority := m.Priority
	if priority == "" {
		priority = model.AutoPriority
	}
	return model.Mother{
		ID:               m.ID,
		Name:             m.Name,
		Location:         model.Coordinates{Lat: m.Lat, Lng: m.Lng},
		BleedingStatus:   bleeding,
		TempC:            m.TempC,
		Headache:         m.Headache,
		VisionBlur:       m.VisionBlur,
		BabyFeedingOK:    feeding,
		DaysPostpartum:   m.DaysPostpartum,
		PriorityOverride: priority,
	}
}

type CHWDef struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Lat       float64 `yaml:"lat"`
	Lng       float64 `yaml:"lng"`
	MaxVisits int     `yaml:"max_visits_day"`
	Transport string  `yaml:"transport"`
	Phone     string  `yaml:"phone"`
}

func (c CHWDef) ToModel() model.CHW {
	return model.CHW{
		ID:              c.ID,
		Name:            c.Name,
		Location:        model.Coordinates{Lat: c.Lat, Lng: c.Lng},
		MaxVisitsPerDay: c.MaxVisits,
		Transport:       c.Transport,
		Phone:           c.Phone,
	}
}

type EdgeDef struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// Expected lists the assertions for a scenario. Routes maps a worker id
// to the visit order (depot excluded). A nil Acked skips the ack check.
type Expected struct {
	Routes   map[string][]string `yaml:"routes"`
	Unserved []string            `yaml:"unserved"`
	Acked    *int                `yaml:"acked"`
}

type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Mothers     []MotherDef `yaml:"mothers"`
	CHWs        []CHWDef    `yaml:"chws"`
	Blocked     []EdgeDef   `yaml:"blocked,omitempty"`
	Capacity    *int        `yaml:"capacity,omitempty"`
	FailCHWs    []string    `yaml:"fail_chws,omitempty"`
	Expected    Expected    `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
