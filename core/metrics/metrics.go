package metrics

import (
	"time"

	"github.com/pmarg/reseat/core/model"
)

// ReassignmentEvent represents one committed (or reverted) student move to
// be recorded.
type ReassignmentEvent struct {
	StudentID string
	FromBusID string
	ToBusID   string
	Shift     model.Shift
	ActorID   string
	Reverted  bool
	Time      time.Time
}

// Sink records reassignment events for observability purposes.
type Sink interface {
	RecordReassignments(events []ReassignmentEvent) error
}

// AllocationEvent summarizes one allocator pass.
type AllocationEvent struct {
	Assigned      int
	Unassigned    int
	BalanceStdDev float64
	Time          time.Time
}

// AllocationRecorder records allocation summaries when the sink supports it.
type AllocationRecorder interface {
	RecordAllocation(ev AllocationEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordReassignments([]ReassignmentEvent) error { return nil }
func (NopSink) RecordAllocation(AllocationEvent) error        { return nil }
