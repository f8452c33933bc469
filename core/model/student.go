package model

import (
	"fmt"
	"strings"
	"unicode"
)

// Shift identifies the school run a student rides or the schedule a bus runs.
type Shift int

const (
	ShiftA    Shift = iota // morning run
	ShiftB                 // afternoon run
	ShiftBoth              // all-day
)

// String returns the canonical tag used in config files and stored records.
func (s Shift) String() string {
	switch s {
	case ShiftA:
		return "A"
	case ShiftB:
		return "B"
	case ShiftBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseShift converts a tag back into a Shift.
func ParseShift(s string) (Shift, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return ShiftA, nil
	case "b":
		return ShiftB, nil
	case "both":
		return ShiftBoth, nil
	default:
		return 0, fmt.Errorf("model: unknown shift %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so shifts serialize as their
// tag, including when used as map keys.
func (s Shift) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shift) UnmarshalText(b []byte) error {
	parsed, err := ParseShift(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CompatibleWith reports whether a student on shift s may ride a bus running
// schedule b. Morning riders fit a morning or all-day bus. Afternoon riders
// need an all-day bus: the fleet carries no afternoon-only schedule, so a bus
// tagged B is a placeholder that satisfies nobody. All-day riders fit any bus.
func (s Shift) CompatibleWith(b Shift) bool {
	switch s {
	case ShiftA:
		return b == ShiftA || b == ShiftBoth
	case ShiftB:
		return b == ShiftBoth
	case ShiftBoth:
		return true
	default:
		return false
	}
}

// Student is a rider assigned to at most one bus. Students are read-only
// inputs to the planning layers; only a committed transaction mutates them.
type Student struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	BusID  string `json:"bus_id,omitempty"` // empty when unassigned
	Shift  Shift  `json:"shift"`
	StopID string `json:"stop_id"`
	// Reserved riders use private transport and need no stop coverage.
	Reserved bool `json:"reserved,omitempty"`
	// Locked is set while the student is mid-operation and must not move.
	Locked bool `json:"locked,omitempty"`
}

// Assigned reports whether the student currently has a bus.
func (s Student) Assigned() bool { return s.BusID != "" }

// NormalizeStopKey reduces a stop identifier to lowercase letters and digits
// so "Main St. #4" and "main st 4" compare equal.
func NormalizeStopKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
