package model

// RiskLevel is the triage tier assigned to a mother.
type RiskLevel string

const (
	RiskEmergency RiskLevel = "EMERGENCY"
	RiskPriority  RiskLevel = "PRIORITY"
	RiskRoutine   RiskLevel = "ROUTINE"
)

// Symptom flags attached by the triage rules. SepsisFlag belongs to the
// emergency set for ranking purposes but no rule currently emits it;
// it enters the system through upstream referral feeds.
const (
	PPHFlag          = "PPH"
	FeverHighFlag    = "FEVER_HIGH"
	PreeclampsiaFlag = "PREECLAMPSIA"
	SepsisFlag       = "SEPSIS"
	NewbornFeedFlag  = "NB_FEED_ISSUE"
)

// SLAHours returns the visit deadline for the tier.
func (r RiskLevel) SLAHours() int {
	switch r {
	case RiskEmergency:
		return 4
	case RiskPriority:
		return 24
	default:
		return 72
	}
}

// PriorityRank orders final priority labels for scheduling. Lower ranks
// are served first. Labels that match no tier, such as local overrides,
// rank after ROUTINE rather than failing.
func PriorityRank(priority string) int {
	switch RiskLevel(priority) {
	case RiskEmergency:
		return 0
	case RiskPriority:
		return 1
	case RiskRoutine:
		return 2
	default:
		return 3
	}
}
