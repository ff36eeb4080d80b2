package metrics

// MultiSink fans events out to several sinks. Optional recorder
// interfaces are forwarded only to the sinks that implement them; the
// first error stops the fan-out.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink over the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordPlan(ev PlanEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordPlan(ev); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordRoute(ev RouteEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RouteRecorder); ok {
			if err := rec.RecordRoute(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordTriage(ev TriageEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TriageRecorder); ok {
			if err := rec.RecordTriage(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MultiSink) RecordNotifyAck(ev NotifyAckEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(NotifyAckRecorder); ok {
			if err := rec.RecordNotifyAck(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
