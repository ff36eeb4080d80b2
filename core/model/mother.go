package model

import "fmt"

// AutoPriority is the override sentinel meaning "use the assessed tier".
// Any other override value, including the empty string, is kept verbatim.
const AutoPriority = "auto"

// Mother represents a registered postpartum mother due for a home visit.
// Records are immutable for the duration of one planning cycle.
type Mother struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Location Coordinates `json:"location"`

	// Self-reported clinical signals. Absent signals default benign at
	// the data boundary: no bleeding, 0 degrees C, flags false,
	// feeding ok.
	BleedingStatus string  `json:"bleeding_status"` // "none", "light" or "heavy"
	TempC          float64 `json:"temp_c"`
	Headache       bool    `json:"headache"`
	VisionBlur     bool    `json:"vision_blur"`
	BabyFeedingOK  bool    `json:"baby_feeding_ok"`
	DaysPostpartum int     `json:"days_postpartum"`

	// PriorityOverride pins the scheduling priority when it is anything
	// other than AutoPriority. The value is free text and flows through
	// unvalidated so operators can force any label.
	PriorityOverride string `json:"priority_override"`
}

// Validate checks that the record can be scheduled at all.
func (m Mother) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("mother record is missing an id")
	}
	return nil
}

// TriageResult is the outcome of the rule-based assessment for one mother.
type TriageResult struct {
	Risk     RiskLevel `json:"risk"`
	Flags    []string  `json:"flags"`
	SLAHours int       `json:"sla_hours"`
}

// TriagedMother is a Mother enriched with her triage outcome and the
// final priority label the scheduler ranks by.
type TriagedMother struct {
	Mother
	TriageResult

	// PriorityFinal is the assessed tier, or the override verbatim when
	// one is set.
	PriorityFinal string `json:"priority_final"`
}
