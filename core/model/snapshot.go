package model

import "sort"

// Snapshot is a read-only view of the fleet handed to the planning layers.
// Staleness is tolerated until commit time, where the committer re-reads the
// affected records inside its transaction.
type Snapshot struct {
	Students map[string]Student
	Buses    map[string]Bus
}

// NewSnapshot builds a snapshot from bulk-fetched records.
func NewSnapshot(students []Student, buses []Bus) *Snapshot {
	snap := &Snapshot{
		Students: make(map[string]Student, len(students)),
		Buses:    make(map[string]Bus, len(buses)),
	}
	for _, s := range students {
		snap.Students[s.ID] = s
	}
	for _, b := range buses {
		snap.Buses[b.ID] = b
	}
	return snap
}

// Student looks up a student by ID.
func (s *Snapshot) Student(id string) (Student, bool) {
	st, ok := s.Students[id]
	return st, ok
}

// Bus looks up a bus by ID.
func (s *Snapshot) Bus(id string) (Bus, bool) {
	b, ok := s.Buses[id]
	return b, ok
}

// StudentList returns all students ordered by ID.
func (s *Snapshot) StudentList() []Student {
	out := make([]Student, 0, len(s.Students))
	for _, st := range s.Students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BusList returns all buses ordered by ID.
func (s *Snapshot) BusList() []Bus {
	out := make([]Bus, 0, len(s.Buses))
	for _, b := range s.Buses {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
