package plan

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pmarg/reseat/core/model"
)

var errWarnRatio = errors.New("plan: warn_ratio must not exceed 1")

// Code identifies a validation finding for machine handling; Message carries
// the operator-facing text.
type Code string

const (
	CodeUnknownBus       Code = "unknown_bus"
	CodeUnknownStudent   Code = "unknown_student"
	CodeBusInactive      Code = "bus_inactive"
	CodeBusOnTrip        Code = "bus_on_trip"
	CodeStudentLocked    Code = "student_locked"
	CodeCapacityExceeded Code = "capacity_exceeded"
	CodeDuplicateTarget  Code = "duplicate_target"
	CodeNearCapacity     Code = "near_capacity"
	CodeNoSeatsLeft      Code = "no_seats_left"
)

// Issue is one validation finding.
type Issue struct {
	Code      Code
	BusID     string
	StudentID string
	Message   string
}

// Validation classifies findings into blocking errors and advisory warnings.
type Validation struct {
	Errors   []Issue
	Warnings []Issue
}

// IsValid reports whether the commit may proceed.
func (v Validation) IsValid() bool { return len(v.Errors) == 0 }

// Messages flattens the findings into operator-facing strings, errors first.
func (v Validation) Messages() []string {
	out := make([]string, 0, len(v.Errors)+len(v.Warnings))
	for _, is := range v.Errors {
		out = append(out, is.Message)
	}
	for _, is := range v.Warnings {
		out = append(out, is.Message)
	}
	return out
}

// Validate checks the net-change set against the live snapshot. State may
// have drifted since staging began, so every check runs against the snapshot
// passed here, not anything cached at staging time. Capacity, lock and
// availability violations block the commit; near-capacity and
// zero-seats-left are advisory. The capacity math here is advisory relative
// to the committer, which re-reads and re-checks inside its transaction.
func Validate(res Result, snap *model.Snapshot, cfg Config) Validation {
	cfg.SetDefaults()
	var v Validation

	seenTarget := make(map[string]string)
	for _, busID := range res.BusIDs() {
		ch := res.Changes[busID]
		bus, busKnown := snap.Bus(busID)
		switch {
		case !busKnown:
			v.fail(Issue{Code: CodeUnknownBus, BusID: busID,
				Message: fmt.Sprintf("bus %s no longer exists", busID)})
			continue
		case bus.OnTrip:
			v.fail(Issue{Code: CodeBusOnTrip, BusID: busID,
				Message: fmt.Sprintf("bus %s has an active trip", busID)})
			continue
		case len(ch.Added) > 0 && !bus.Active:
			v.fail(Issue{Code: CodeBusInactive, BusID: busID,
				Message: fmt.Sprintf("bus %s is inactive", busID)})
			continue
		}

		projected := bus.CloneLoads()
		for _, id := range ch.Removed {
			st, ok := snap.Student(id)
			if !ok {
				v.fail(Issue{Code: CodeUnknownStudent, BusID: busID, StudentID: id,
					Message: fmt.Sprintf("student %s no longer exists", id)})
				continue
			}
			v.checkLock(st)
			if projected[st.Shift] > 0 {
				projected[st.Shift]--
			}
		}
		for _, id := range ch.Added {
			st, ok := snap.Student(id)
			if !ok {
				v.fail(Issue{Code: CodeUnknownStudent, BusID: busID, StudentID: id,
					Message: fmt.Sprintf("student %s no longer exists", id)})
				continue
			}
			v.checkLock(st)
			if prev, dup := seenTarget[id]; dup {
				v.fail(Issue{Code: CodeDuplicateTarget, BusID: busID, StudentID: id,
					Message: fmt.Sprintf("student %s targets both bus %s and bus %s", id, prev, busID)})
				continue
			}
			seenTarget[id] = busID
			projected[st.Shift]++
		}

		v.checkCapacity(bus, projected, cfg)
	}
	return v
}

func (v *Validation) checkLock(st model.Student) {
	if st.Locked {
		v.fail(Issue{Code: CodeStudentLocked, StudentID: st.ID,
			Message: fmt.Sprintf("student %s is locked by another operation", st.ID)})
	}
}

// checkCapacity applies the authoritative per-shift seat math to the
// projected loads of one bus.
func (v *Validation) checkCapacity(bus model.Bus, projected map[model.Shift]int, cfg Config) {
	shifts := make([]model.Shift, 0, len(projected))
	for s := range projected {
		shifts = append(shifts, s)
	}
	sort.Slice(shifts, func(i, j int) bool { return shifts[i] < shifts[j] })

	for _, shift := range shifts {
		load := projected[shift]
		switch {
		case load > bus.Capacity:
			v.fail(Issue{Code: CodeCapacityExceeded, BusID: bus.ID,
				Message: fmt.Sprintf("bus %s over capacity for shift %s: %d/%d", bus.ID, shift, load, bus.Capacity)})
		case load == bus.Capacity && load > 0:
			v.warn(Issue{Code: CodeNoSeatsLeft, BusID: bus.ID,
				Message: fmt.Sprintf("bus %s has no seats left for shift %s: %d/%d", bus.ID, shift, load, bus.Capacity)})
		case bus.Capacity > 0 && float64(load)/float64(bus.Capacity) >= cfg.WarnRatio:
			v.warn(Issue{Code: CodeNearCapacity, BusID: bus.ID,
				Message: fmt.Sprintf("bus %s near capacity for shift %s: %d/%d", bus.ID, shift, load, bus.Capacity)})
		}
	}
}

func (v *Validation) fail(is Issue) { v.Errors = append(v.Errors, is) }
func (v *Validation) warn(is Issue) { v.Warnings = append(v.Warnings, is) }
