// Package assign implements eligibility resolution and load-balanced seat
// allocation for the fleet.
//
// Eligibility is a pure predicate over a student/bus pair: schedule
// compatibility, stop coverage, lock state and bus availability. The
// allocator places students on eligible buses using a greedy
// ascending-relative-load heuristic over a working copy of the per-shift
// seat counters, so the canonical snapshot is never mutated and repeated
// runs over the same input produce identical results.
//
// Students that cannot be placed are never an error: they are returned in a
// side list with a structured reason so the operator can act on each case.
package assign
