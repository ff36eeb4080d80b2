// Package export renders plans, triage tables and cohort fixtures for
// CLI output and file interchange.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/uzazi-health/chwplan/core/model"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WritePlanCSV writes one row per mother: her assignment when served,
// empty assignment columns when unserved.
func WritePlanCSV(w io.Writer, plan model.RoutePlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"mother_id", "vehicle_id", "chw_name", "stop", "route_km"}); err != nil {
		return err
	}
	for _, r := range plan.Routes {
		km := strconv.FormatFloat(r.Km, 'f', 2, 64)
		for i, id := range r.Sequence {
			if i == 0 {
				continue // depot marker
			}
			if err := cw.Write([]string{id, r.VehicleID, r.CHWName, strconv.Itoa(i), km}); err != nil {
				return err
			}
		}
	}
	for _, id := range plan.Unserved {
		if err := cw.Write([]string{id, "", "", "", ""}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTriageCSV writes the assessment table. Flags are joined with "|".
func WriteTriageCSV(w io.Writer, assessed []model.TriagedMother) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "risk", "flags", "sla_hours", "priority_final"}); err != nil {
		return err
	}
	for _, t := range assessed {
		rec := []string{
			t.ID,
			t.Name,
			string(t.Risk),
			strings.Join(t.Flags, "|"),
			strconv.Itoa(t.SLAHours),
			t.PriorityFinal,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMothersCSV writes a cohort in the registry CSV layout so generated
// fixtures read back through the csv source unchanged.
func WriteMothersCSV(w io.Writer, mothers []model.Mother) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "name", "lat", "lng", "days_postpartum", "bleeding", "temp_c", "headache", "vision_blur", "baby_feeding", "priority"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range mothers {
		feeding := "yes"
		if !m.BabyFeedingOK {
			feeding = "no"
		}
		rec := []string{
			m.ID,
			m.Name,
			formatFloat(m.Location.Lat),
			formatFloat(m.Location.Lng),
			strconv.Itoa(m.DaysPostpartum),
			m.BleedingStatus,
			formatFloat(m.TempC),
			strconv.FormatBool(m.Headache),
			strconv.FormatBool(m.VisionBlur),
			feeding,
			m.PriorityOverride,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCHWsCSV writes a roster in the registry CSV layout.
func WriteCHWsCSV(w io.Writer, chws []model.CHW) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "phone", "base_lat", "base_lng", "max_visits_day", "transport"}); err != nil {
		return err
	}
	for _, c := range chws {
		rec := []string{
			c.ID,
			c.Name,
			c.Phone,
			formatFloat(c.Location.Lat),
			formatFloat(c.Location.Lng),
			strconv.Itoa(c.MaxVisitsPerDay),
			c.Transport,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
