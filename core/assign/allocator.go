package assign

import (
	"sort"

	"github.com/pmarg/reseat/core/model"
)

// Reason explains why a student could not be placed.
type Reason string

const (
	// ReasonNoAlternateBus means no other bus serves the student's stop.
	ReasonNoAlternateBus Reason = "no_alternate_bus"
	// ReasonNoShiftCompatibleBus means buses serve the stop but none runs a
	// compatible schedule.
	ReasonNoShiftCompatibleBus Reason = "no_shift_compatible_bus"
	// ReasonAllBusesFull means eligible buses exist but none has a seat left.
	ReasonAllBusesFull Reason = "all_buses_full"
)

// Unassigned is a student the allocator could not place.
type Unassigned struct {
	StudentID string
	Reason    Reason
}

// Result holds the outcome of an allocation pass.
type Result struct {
	// Assignments maps student ID to the chosen bus ID.
	Assignments map[string]string
	Unassigned  []Unassigned
	Balance     BalanceReport
}

// Allocator places students on buses minimizing peak relative load. The
// heuristic is greedy and order dependent: earlier students in the input see
// emptier buses. Given identical input order and snapshot the output is
// identical across runs.
type Allocator struct{}

// shiftBatches fixes the processing order of shift groups.
var shiftBatches = []model.Shift{model.ShiftA, model.ShiftB, model.ShiftBoth}

// Allocate assigns each student to the eligible bus with the lowest relative
// load that still has a seat for the student's shift. Ties resolve to the
// lowest bus ID. Locked students are skipped entirely. The input slices are
// not modified; simulated seat counts live in a working copy.
func (Allocator) Allocate(students []model.Student, buses []model.Bus) Result {
	res := Result{Assignments: make(map[string]string)}

	sorted := make([]model.Bus, len(buses))
	copy(sorted, buses)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	sim := make(map[string]map[model.Shift]int, len(sorted))
	for _, b := range sorted {
		sim[b.ID] = b.CloneLoads()
	}

	for _, shift := range shiftBatches {
		for _, st := range students {
			if st.Shift != shift || st.Locked {
				continue
			}
			busID, ok := pickBus(st, sorted, sim)
			if !ok {
				res.Unassigned = append(res.Unassigned, Unassigned{
					StudentID: st.ID,
					Reason:    diagnose(st, sorted, sim),
				})
				continue
			}
			res.Assignments[st.ID] = busID
			sim[busID][st.Shift]++
		}
	}

	res.Balance = buildBalanceReport(sorted, sim)
	return res
}

// pickBus returns the eligible bus with the lowest simulated relative load
// and remaining headroom. Buses are scanned in ID order so equal ratios
// resolve to the lowest ID.
func pickBus(st model.Student, buses []model.Bus, sim map[string]map[model.Shift]int) (string, bool) {
	best := ""
	bestRatio := 0.0
	for _, b := range buses {
		if !Eligible(st, b, Options{}) {
			continue
		}
		load := sim[b.ID][st.Shift]
		if b.Capacity <= 0 || load >= b.Capacity {
			continue
		}
		ratio := float64(load) / float64(b.Capacity)
		if best == "" || ratio < bestRatio {
			best = b.ID
			bestRatio = ratio
		}
	}
	return best, best != ""
}

// diagnose re-runs relaxed checks to produce a human-diagnosable reason for
// an unplaced student.
func diagnose(st model.Student, buses []model.Bus, sim map[string]map[model.Shift]int) Reason {
	coverage := false
	compatible := false
	for _, b := range buses {
		if b.ID == st.BusID || !b.Active || b.OnTrip {
			continue
		}
		if !st.Reserved && !b.ServesStop(st.StopID) {
			continue
		}
		coverage = true
		if st.Shift.CompatibleWith(b.Shift) {
			compatible = true
			break
		}
	}
	switch {
	case !coverage:
		return ReasonNoAlternateBus
	case !compatible:
		return ReasonNoShiftCompatibleBus
	default:
		return ReasonAllBusesFull
	}
}
