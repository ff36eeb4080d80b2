// Package triage implements the rule-based postpartum danger-sign
// assessment and the manual priority override resolution. Assessment is
// pure and total: a record with missing signals classifies as benign
// rather than failing, so triage itself never returns an error.
package triage

import (
	"strings"

	"github.com/uzazi-health/chwplan/core/model"
)

// FeverThresholdC is the body temperature at or above which the fever
// rule fires.
const FeverThresholdC = 38.0

// emergencyFlags forces the EMERGENCY tier when any member is present.
// SepsisFlag has no rule below; it enters through referral feeds.
// NewbornFeedFlag is deliberately both a generic flag and an emergency
// member, so a feeding issue alone is an emergency. That mirrors the
// field protocol and must not be treated as an inconsistency.
var emergencyFlags = map[string]struct{}{
	model.PPHFlag:          {},
	model.FeverHighFlag:    {},
	model.PreeclampsiaFlag: {},
	model.SepsisFlag:       {},
	model.NewbornFeedFlag:  {},
}

// Assess classifies one mother. The rules fire independently, so a
// record can accumulate several flags; flag order follows rule order.
func Assess(m model.Mother) model.TriageResult {
	flags := make([]string, 0, 4)
	if strings.EqualFold(m.BleedingStatus, "heavy") {
		flags = append(flags, model.PPHFlag)
	}
	if m.TempC >= FeverThresholdC {
		flags = append(flags, model.FeverHighFlag)
	}
	if m.Headache && m.VisionBlur {
		flags = append(flags, model.PreeclampsiaFlag)
	}
	if !m.BabyFeedingOK {
		flags = append(flags, model.NewbornFeedFlag)
	}

	risk := model.RiskRoutine
	if len(flags) > 0 {
		risk = model.RiskPriority
	}
	for _, f := range flags {
		if _, ok := emergencyFlags[f]; ok {
			risk = model.RiskEmergency
			break
		}
	}
	return model.TriageResult{Risk: risk, Flags: flags, SLAHours: risk.SLAHours()}
}

// Resolve returns the priority label the scheduler ranks by: the
// override verbatim unless it equals model.AutoPriority, in which case
// the assessed tier stands. Override values are not validated; an
// arbitrary label flows downstream unchanged.
func Resolve(override string, assessed model.RiskLevel) string {
	if override == model.AutoPriority {
		return string(assessed)
	}
	return override
}

// Apply assesses every mother and resolves her final priority.
// Input order is preserved.
func Apply(mothers []model.Mother) []model.TriagedMother {
	out := make([]model.TriagedMother, 0, len(mothers))
	for _, m := range mothers {
		res := Assess(m)
		out = append(out, model.TriagedMother{
			Mother:        m,
			TriageResult:  res,
			PriorityFinal: Resolve(m.PriorityOverride, res.Risk),
		})
	}
	return out
}
