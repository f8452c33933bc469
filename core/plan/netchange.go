// Package plan reduces a staged operation set to its minimal real effect and
// validates that effect against live constraints before commit. Both passes
// are pure over the snapshot and safe to call repeatedly for a live preview.
package plan

import (
	"sort"

	"github.com/pmarg/reseat/core/model"
	"github.com/pmarg/reseat/core/staging"
)

// BusChange is the net membership change of one bus.
type BusChange struct {
	BusID   string
	Added   []string
	Removed []string
}

// NoOp records a staged operation that resolved back to the student's
// current bus and was dropped.
type NoOp struct {
	OperationID string
	StudentID   string
	BusID       string
}

// Result is the reduced effect of a staged operation set.
type Result struct {
	// Changes maps bus ID to its net change. Empty after reduction means
	// there is nothing to commit even if operations were staged.
	Changes map[string]*BusChange
	NoOps   []NoOp
}

// HasChanges reports whether any real membership change remains.
func (r Result) HasChanges() bool { return len(r.Changes) > 0 }

// RemovedNoOpCount returns how many staged operations were dropped as no-ops.
func (r Result) RemovedNoOpCount() int { return len(r.NoOps) }

// BusIDs returns the affected bus IDs in sorted order for deterministic
// iteration.
func (r Result) BusIDs() []string {
	ids := make([]string, 0, len(r.Changes))
	for id := range r.Changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ComputeNetChanges resolves each staged operation against the snapshot's
// ground truth, never against an earlier staged operation. An operation whose
// target equals the student's current bus is dropped and recorded as a no-op.
// Operations for students missing from the snapshot are ignored; the
// validator reports them when the bus-level changes reference unknown records.
func ComputeNetChanges(ops []staging.Operation, snap *model.Snapshot) Result {
	res := Result{Changes: make(map[string]*BusChange)}
	for _, op := range ops {
		st, ok := snap.Student(op.StudentID)
		if !ok {
			continue
		}
		if op.ToBusID == st.BusID {
			res.NoOps = append(res.NoOps, NoOp{
				OperationID: op.ID,
				StudentID:   op.StudentID,
				BusID:       op.ToBusID,
			})
			continue
		}
		if op.ToBusID != "" {
			res.change(op.ToBusID).Added = append(res.change(op.ToBusID).Added, st.ID)
		}
		if st.BusID != "" {
			res.change(st.BusID).Removed = append(res.change(st.BusID).Removed, st.ID)
		}
	}
	return res
}

func (r *Result) change(busID string) *BusChange {
	c, ok := r.Changes[busID]
	if !ok {
		c = &BusChange{BusID: busID}
		r.Changes[busID] = c
	}
	return c
}
