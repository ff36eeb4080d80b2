package events

import (
	"time"

	"github.com/uzazi-health/chwplan/core/model"
)

// TriageEvent is published after a batch of mothers has been assessed.
type TriageEvent struct {
	Assessed []model.TriagedMother
	Time     time.Time
}
