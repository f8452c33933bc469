// Package commit applies a net-change set to the persistent store as one
// atomic transaction and offers a time-boxed undo of the result. It is the
// only part of the engine that touches I/O.
package commit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"context"

	"github.com/google/uuid"

	"github.com/pmarg/reseat/core/events"
	"github.com/pmarg/reseat/core/logger"
	"github.com/pmarg/reseat/core/metrics"
	"github.com/pmarg/reseat/core/model"
	"github.com/pmarg/reseat/core/plan"
	"github.com/pmarg/reseat/internal/eventbus"
)

// Move is one applied reassignment. FromBusID or ToBusID may be empty when
// a student leaves or enters the unassigned pool.
type Move struct {
	StudentID string
	FromBusID string
	ToBusID   string
	Shift     model.Shift
}

// Result reports a successful commit.
type Result struct {
	AuditID string
	Moves   []Move
	// UpdatedBuses holds the post-commit state of every affected bus.
	UpdatedBuses map[string]model.Bus
}

// ConflictDetail describes one bus that failed the in-transaction seat
// check.
type ConflictDetail struct {
	BusID     string
	Shift     model.Shift
	Projected int
	Capacity  int
}

// ConflictError aborts a commit when a concurrent writer consumed the seats
// the preview promised. The caller may re-stage and retry; state is
// untouched.
type ConflictError struct {
	Details []ConflictDetail
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		ids = append(ids, fmt.Sprintf("%s[%s] %d/%d", d.BusID, d.Shift, d.Projected, d.Capacity))
	}
	return "commit: capacity conflict on " + strings.Join(ids, ", ")
}

// BusIDs returns the conflicting bus IDs.
func (e *ConflictError) BusIDs() []string {
	ids := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		ids = append(ids, d.BusID)
	}
	return ids
}

// Committer applies net-change sets against a TransactionalStore.
type Committer struct {
	store TransactionalStore
	log   logger.Logger
	sink  metrics.Sink
	bus   eventbus.EventBus
	now   func() time.Time
}

// NewCommitter creates a Committer. Sink and bus may be nil when no
// observability is wired; log may be nil for silence.
func NewCommitter(store TransactionalStore, log logger.Logger, sink metrics.Sink, bus eventbus.EventBus) (*Committer, error) {
	if store == nil {
		return nil, fmt.Errorf("commit: nil store provided to NewCommitter")
	}
	if log == nil {
		log = nopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Committer{store: store, log: log, sink: sink, bus: bus, now: time.Now}, nil
}

// Commit applies the net-change set in a single all-or-nothing transaction.
// Every affected record is re-read inside the transaction and the per-shift
// seat check from the validator is recomputed against that fresh state; if
// any bus now violates capacity the whole transaction aborts with a
// *ConflictError and nothing is written. On success one audit entry
// enumerates every individual move.
func (c *Committer) Commit(ctx context.Context, changes plan.Result, actor Actor) (*Result, error) {
	return c.apply(ctx, targetsOf(changes), actor, false)
}

// targetsOf flattens a net-change set into per-student targets. A student
// present only on the removal side moves to the unassigned pool.
func targetsOf(changes plan.Result) map[string]string {
	targets := make(map[string]string)
	for _, ch := range changes.Changes {
		for _, id := range ch.Removed {
			if _, ok := targets[id]; !ok {
				targets[id] = ""
			}
		}
	}
	for busID, ch := range changes.Changes {
		for _, id := range ch.Added {
			targets[id] = busID
		}
	}
	return targets
}

func (c *Committer) apply(ctx context.Context, targets map[string]string, actor Actor, reverted bool) (*Result, error) {
	if len(targets) == 0 {
		return &Result{UpdatedBuses: map[string]model.Bus{}}, nil
	}

	studentIDs := make([]string, 0, len(targets))
	for id := range targets {
		studentIDs = append(studentIDs, id)
	}
	sort.Strings(studentIDs)

	res := &Result{UpdatedBuses: make(map[string]model.Bus)}
	err := c.store.RunInTransaction(ctx, func(tx Tx) error {
		res.Moves = res.Moves[:0]
		type delta struct {
			shift model.Shift
			n     int
		}
		deltas := make(map[string][]delta)
		students := make(map[string]model.Student, len(studentIDs))

		for _, id := range studentIDs {
			st, err := tx.Student(id)
			if err != nil {
				return err
			}
			to := targets[id]
			if st.BusID == to {
				// Became a no-op since preview; nothing to write.
				continue
			}
			if st.BusID != "" {
				deltas[st.BusID] = append(deltas[st.BusID], delta{st.Shift, -1})
			}
			if to != "" {
				deltas[to] = append(deltas[to], delta{st.Shift, +1})
			}
			res.Moves = append(res.Moves, Move{StudentID: id, FromBusID: st.BusID, ToBusID: to, Shift: st.Shift})
			st.BusID = to
			students[id] = st
		}
		if len(res.Moves) == 0 {
			return nil
		}

		busIDs := make([]string, 0, len(deltas))
		for id := range deltas {
			busIDs = append(busIDs, id)
		}
		sort.Strings(busIDs)

		var conflict ConflictError
		updated := make(map[string]model.Bus, len(busIDs))
		for _, id := range busIDs {
			b, err := tx.Bus(id)
			if err != nil {
				return err
			}
			loads := b.CloneLoads()
			for _, d := range deltas[id] {
				loads[d.shift] += d.n
				// Zero counters are pruned so a reverted bus compares equal
				// to its pre-commit record.
				if loads[d.shift] <= 0 {
					delete(loads, d.shift)
				}
			}
			// Same seat check as the validator, now against the
			// transaction's view.
			for shift, load := range loads {
				if load > b.Capacity {
					conflict.Details = append(conflict.Details, ConflictDetail{
						BusID: id, Shift: shift, Projected: load, Capacity: b.Capacity,
					})
				}
			}
			b.Loads = loads
			updated[id] = b
		}
		if len(conflict.Details) > 0 {
			sort.Slice(conflict.Details, func(i, j int) bool {
				return conflict.Details[i].BusID < conflict.Details[j].BusID
			})
			return &conflict
		}

		for _, id := range busIDs {
			if err := tx.PutBus(updated[id]); err != nil {
				return err
			}
		}
		for _, id := range studentIDs {
			st, ok := students[id]
			if !ok {
				continue
			}
			if err := tx.PutStudent(st); err != nil {
				return err
			}
		}

		entry := AuditEntry{
			ID:            uuid.NewString(),
			ActorID:       actor.ID,
			ActorMetadata: actor.Metadata,
			Reverted:      reverted,
			CreatedAt:     c.now(),
		}
		for _, m := range res.Moves {
			entry.Moves = append(entry.Moves, AuditMove{
				StudentID: m.StudentID, FromBusID: m.FromBusID, ToBusID: m.ToBusID, Shift: m.Shift,
			})
		}
		if err := tx.AppendAudit(entry); err != nil {
			return err
		}
		res.AuditID = entry.ID
		res.UpdatedBuses = updated
		return nil
	})
	if err != nil {
		if ce, ok := err.(*ConflictError); ok {
			c.log.Warnf("commit conflict: %v", ce)
			if c.bus != nil {
				c.bus.Publish(events.ConflictEvent{ActorID: actor.ID, BusIDs: ce.BusIDs(), Time: c.now()})
			}
		}
		return nil, err
	}

	c.log.Infof("committed %d moves (audit %s)", len(res.Moves), res.AuditID)
	c.record(res, actor, reverted)
	return res, nil
}

func (c *Committer) record(res *Result, actor Actor, reverted bool) {
	if len(res.Moves) == 0 {
		return
	}
	evs := make([]metrics.ReassignmentEvent, 0, len(res.Moves))
	for _, m := range res.Moves {
		evs = append(evs, metrics.ReassignmentEvent{
			StudentID: m.StudentID,
			FromBusID: m.FromBusID,
			ToBusID:   m.ToBusID,
			Shift:     m.Shift,
			ActorID:   actor.ID,
			Reverted:  reverted,
			Time:      c.now(),
		})
	}
	if err := c.sink.RecordReassignments(evs); err != nil {
		c.log.Errorf("metrics sink error: %v", err)
	}
	if c.bus != nil && !reverted {
		c.bus.Publish(events.CommitEvent{ActorID: actor.ID, AuditID: res.AuditID, Moves: len(res.Moves), Time: c.now()})
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
