package model

// Bus is a capacity-bounded route vehicle. Seats are tracked per shift: a
// seat occupied on the morning run is free again on the afternoon run, so
// every capacity check in the engine is per shift.
type Bus struct {
	ID       string        `json:"id"`
	Name     string        `json:"name,omitempty"`
	Shift    Shift         `json:"shift"`
	Capacity int           `json:"capacity"`
	Loads    map[Shift]int `json:"loads,omitempty"`
	Stops    []string      `json:"stops,omitempty"`
	Active   bool          `json:"active"`
	// OnTrip blocks all reassignment into or out of the bus while a trip runs.
	OnTrip bool `json:"on_trip,omitempty"`
}

// Load returns the seat count currently occupied for the given shift.
func (b Bus) Load(s Shift) int {
	if b.Loads == nil {
		return 0
	}
	return b.Loads[s]
}

// LoadRatio returns the relative load for the given shift. A bus without
// capacity is reported as fully loaded.
func (b Bus) LoadRatio(s Shift) float64 {
	if b.Capacity <= 0 {
		return 1
	}
	return float64(b.Load(s)) / float64(b.Capacity)
}

// ServesStop reports whether the bus covers the given stop, compared under
// NormalizeStopKey.
func (b Bus) ServesStop(stopID string) bool {
	want := NormalizeStopKey(stopID)
	if want == "" {
		return false
	}
	for _, s := range b.Stops {
		if NormalizeStopKey(s) == want {
			return true
		}
	}
	return false
}

// CloneLoads returns a mutable copy of the per-shift seat counters. Planning
// passes work on the copy and never touch the canonical snapshot.
func (b Bus) CloneLoads() map[Shift]int {
	loads := make(map[Shift]int, len(b.Loads))
	for k, v := range b.Loads {
		loads[k] = v
	}
	return loads
}
