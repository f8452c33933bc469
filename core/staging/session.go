// Package staging holds the pending reassignments of one operator session.
// The session is an explicit in-memory object decoupled from any
// presentation layer; it is discarded on commit or cancellation and nothing
// in it touches the store.
package staging

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pmarg/reseat/core/model"
)

// ErrStudentLocked rejects staging a student that is mid-operation.
var ErrStudentLocked = errors.New("staging: student is locked")

// Operation is one pending reassignment. The target may equal the student's
// current bus; the net-change pass drops such entries as no-ops.
type Operation struct {
	ID        string
	StudentID string
	FromBusID string
	ToBusID   string
	StagedAt  time.Time
}

// Session is an ordered set of pending operations with at most one entry per
// student. Staging a second target for the same student replaces the first.
// Beyond the lock check no validation happens here; consistency is checked
// once, at preview time.
type Session struct {
	mu  sync.Mutex
	ops []Operation
	now func() time.Time
}

// NewSession creates an empty staging session.
func NewSession() *Session {
	return &Session{now: time.Now}
}

// Stage records a pending move of the student to the given bus, superseding
// any earlier operation for the same student.
func (s *Session) Stage(st model.Student, toBusID string) (Operation, error) {
	if st.Locked {
		return Operation{}, ErrStudentLocked
	}
	op := Operation{
		ID:        uuid.NewString(),
		StudentID: st.ID,
		FromBusID: st.BusID,
		ToBusID:   toBusID,
		StagedAt:  s.now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ops {
		if s.ops[i].StudentID == st.ID {
			s.ops = append(s.ops[:i], s.ops[i+1:]...)
			break
		}
	}
	s.ops = append(s.ops, op)
	return op, nil
}

// Unstage removes the operation with the given ID and reports whether it
// existed.
func (s *Session) Unstage(operationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.ops {
		if s.ops[i].ID == operationID {
			s.ops = append(s.ops[:i], s.ops[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every pending operation and returns how many were dropped.
func (s *Session) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.ops)
	s.ops = nil
	return n
}

// List returns the pending operations in staging order. The slice is a copy.
func (s *Session) List() []Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

// Len returns the number of pending operations.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ops)
}
