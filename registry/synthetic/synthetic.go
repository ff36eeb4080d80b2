// Package synthetic generates a reproducible demo cohort: mothers
// scattered around a program site with a controlled share of danger
// signs, plus a small CHW roster. Used by the gen command and anywhere a
// registry source is needed without real data.
package synthetic

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/uzazi-health/chwplan/core/model"
)

// Config controls cohort generation. The same seed always produces the
// same cohort.
type Config struct {
	Seed    int64 `json:"seed"`
	Mothers int   `json:"mothers"`
	CHWs    int   `json:"chws"`

	// Center of the program site; records scatter within RadiusKm.
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	RadiusKm  float64 `json:"radius_km"`

	// DangerPct of mothers get an emergency-grade signal (heavy
	// bleeding, fever or a feeding problem). OverridePct get a manual
	// priority label instead of "auto".
	DangerPct   float64 `json:"danger_pct"`
	OverridePct float64 `json:"override_pct"`

	VisitsPerCHW int `json:"visits_per_chw"`
}

// SetDefaults fills a usable demo site (Kigali-ish coordinates).
func (c *Config) SetDefaults() {
	if c.Mothers <= 0 {
		c.Mothers = 12
	}
	if c.CHWs <= 0 {
		c.CHWs = 3
	}
	if c.CenterLat == 0 && c.CenterLng == 0 {
		c.CenterLat, c.CenterLng = -1.9536, 30.0606
	}
	if c.RadiusKm <= 0 {
		c.RadiusKm = 5
	}
	if c.DangerPct <= 0 {
		c.DangerPct = 0.25
	}
	if c.VisitsPerCHW <= 0 {
		c.VisitsPerCHW = 6
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

var motherNames = []string{
	"Amina", "Beatrice", "Chantal", "Divine", "Esther", "Florence",
	"Grace", "Honorine", "Immaculee", "Josiane", "Claudine", "Louise",
}

var chwNames = []string{"Uwase", "Mukamana", "Ingabire", "Nyira", "Keza", "Mutesi"}

var transports = []string{"foot", "bicycle", "moto"}

// Source holds a generated cohort. Generation happens once in New; the
// accessors hand out copies so callers can mutate freely.
type Source struct {
	mothers []model.Mother
	chws    []model.CHW
}

// New generates the cohort described by cfg.
func New(cfg Config) *Source {
	cfg.SetDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	mothers := make([]model.Mother, cfg.Mothers)
	for i := range mothers {
		m := model.Mother{
			ID:               fmt.Sprintf("m%03d", i+1),
			Name:             motherNames[i%len(motherNames)],
			Location:         scatter(rng, cfg.CenterLat, cfg.CenterLng, cfg.RadiusKm),
			BleedingStatus:   "none",
			TempC:            36.2 + rng.Float64()*1.2,
			BabyFeedingOK:    true,
			DaysPostpartum:   1 + rng.Intn(42),
			PriorityOverride: model.AutoPriority,
		}
		if rng.Float64() < cfg.DangerPct {
			switch rng.Intn(4) {
			case 0:
				m.BleedingStatus = "heavy"
			case 1:
				m.TempC = 38.0 + rng.Float64()*2
			case 2:
				m.Headache, m.VisionBlur = true, true
			default:
				m.BabyFeedingOK = false
			}
		} else if rng.Float64() < cfg.OverridePct {
			m.PriorityOverride = string(model.RiskPriority)
		}
		mothers[i] = m
	}

	chws := make([]model.CHW, cfg.CHWs)
	for i := range chws {
		chws[i] = model.CHW{
			ID:              fmt.Sprintf("chw%02d", i+1),
			Name:            chwNames[i%len(chwNames)],
			Location:        scatter(rng, cfg.CenterLat, cfg.CenterLng, cfg.RadiusKm),
			MaxVisitsPerDay: cfg.VisitsPerCHW,
			Transport:       transports[i%len(transports)],
			Phone:           fmt.Sprintf("+2507800000%02d", i+1),
		}
	}

	return &Source{mothers: mothers, chws: chws}
}

// scatter picks a uniform point inside the radius. One degree of
// latitude is close to 111 km; longitude shrinks with latitude.
func scatter(rng *rand.Rand, lat, lng, radiusKm float64) model.Coordinates {
	r := radiusKm * math.Sqrt(rng.Float64())
	theta := rng.Float64() * 2 * math.Pi
	dLat := (r * math.Cos(theta)) / 111.0
	dLng := (r * math.Sin(theta)) / (111.0 * math.Cos(lat*math.Pi/180))
	return model.Coordinates{Lat: lat + dLat, Lng: lng + dLng}
}

// Mothers returns a copy of the generated cohort.
func (s *Source) Mothers(ctx context.Context) ([]model.Mother, error) {
	_ = ctx
	out := make([]model.Mother, len(s.mothers))
	copy(out, s.mothers)
	return out, nil
}

// CHWs returns a copy of the generated roster.
func (s *Source) CHWs(ctx context.Context) ([]model.CHW, error) {
	_ = ctx
	out := make([]model.CHW, len(s.chws))
	copy(out, s.chws)
	return out, nil
}

// BlockedEdges always returns none; closures are a per-run input.
func (s *Source) BlockedEdges(ctx context.Context) ([]model.BlockedEdge, error) {
	_ = ctx
	return nil, nil
}

// Close is a no-op.
func (s *Source) Close() error { return nil }
