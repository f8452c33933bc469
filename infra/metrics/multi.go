package metrics

import coremetrics "github.com/pmarg/reseat/core/metrics"

// MultiSink fans reassignment events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordReassignments forwards the events to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordReassignments(evs []coremetrics.ReassignmentEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordReassignments(evs); err != nil {
			return err
		}
	}
	return nil
}

// RecordAllocation forwards the summary to sinks that support it.
func (m *MultiSink) RecordAllocation(ev coremetrics.AllocationEvent) error {
	for _, s := range m.Sinks {
		if ar, ok := s.(coremetrics.AllocationRecorder); ok {
			if err := ar.RecordAllocation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
