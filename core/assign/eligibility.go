package assign

import "github.com/pmarg/reseat/core/model"

// Options controls eligibility edge cases.
type Options struct {
	// AllowCurrent permits the student's current bus as a target. Manual
	// staging uses this so an operator can cancel a staged move by re-picking
	// the original bus; the net-change pass later drops it as a no-op. The
	// allocator never allows it.
	AllowCurrent bool
}

// Eligible reports whether the student may be placed on the bus. The rules
// run in a fixed order: current-bus exclusion, bus availability, student
// lock, schedule compatibility, stop coverage. Reserved riders skip the
// coverage check. The predicate has no side effects.
func Eligible(st model.Student, b model.Bus, opts Options) bool {
	if !opts.AllowCurrent && st.BusID == b.ID {
		return false
	}
	if !b.Active || b.OnTrip {
		return false
	}
	if st.Locked {
		return false
	}
	if !st.Shift.CompatibleWith(b.Shift) {
		return false
	}
	if !st.Reserved && !b.ServesStop(st.StopID) {
		return false
	}
	return true
}
