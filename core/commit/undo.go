package commit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pmarg/reseat/core/events"
)

// DefaultUndoWindow bounds how long a commit stays reversible.
const DefaultUndoWindow = 120 * time.Second

// ErrUndoExpired is returned when the token's window elapsed or the token
// was never issued; the move is permanent either way.
var ErrUndoExpired = errors.New("commit: undo window expired")

// RevertBlockedError reports a revert stopped by the capacity re-check: the
// original source bus filled up in the interim. The operator must free
// seats manually before retrying; this is deliberately distinct from a
// plain commit conflict.
type RevertBlockedError struct {
	Conflict *ConflictError
}

func (e *RevertBlockedError) Error() string {
	return fmt.Sprintf("commit: revert blocked, source seats taken: %v", e.Conflict)
}

func (e *RevertBlockedError) Unwrap() error { return e.Conflict }

type undoRecord struct {
	moves      []Move
	capturedAt time.Time
}

// UndoBuffer keeps the reverse deltas of recent commits for a fixed window.
// It is a dead-man's-switch: once the window elapses the token silently
// becomes useless and the commit is permanent.
type UndoBuffer struct {
	mu        sync.Mutex
	committer *Committer
	window    time.Duration
	records   map[string]undoRecord
	now       func() time.Time
}

// NewUndoBuffer creates an UndoBuffer re-entering the given committer. A
// non-positive window falls back to DefaultUndoWindow.
func NewUndoBuffer(c *Committer, window time.Duration) *UndoBuffer {
	if window <= 0 {
		window = DefaultUndoWindow
	}
	return &UndoBuffer{
		committer: c,
		window:    window,
		records:   make(map[string]undoRecord),
		now:       time.Now,
	}
}

// Capture stores the applied moves of a commit and returns the undo token.
func (u *UndoBuffer) Capture(moves []Move) string {
	token := uuid.NewString()
	cp := make([]Move, len(moves))
	copy(cp, moves)
	u.mu.Lock()
	u.records[token] = undoRecord{moves: cp, capturedAt: u.now()}
	u.mu.Unlock()
	return token
}

// Revert applies the exact reverse of the captured moves through the
// committer, under the same in-transaction capacity validation. The token
// is one-shot: it is consumed on success and stays usable after a blocked
// revert so the operator can free seats and retry within the window.
func (u *UndoBuffer) Revert(ctx context.Context, token string, actor Actor) (*Result, error) {
	u.mu.Lock()
	rec, ok := u.records[token]
	if ok && u.now().Sub(rec.capturedAt) > u.window {
		delete(u.records, token)
		ok = false
	}
	u.mu.Unlock()
	if !ok {
		return nil, ErrUndoExpired
	}

	targets := make(map[string]string, len(rec.moves))
	for _, m := range rec.moves {
		targets[m.StudentID] = m.FromBusID
	}
	res, err := u.committer.apply(ctx, targets, actor, true)
	if err != nil {
		var ce *ConflictError
		if errors.As(err, &ce) {
			return nil, &RevertBlockedError{Conflict: ce}
		}
		return nil, err
	}

	u.mu.Lock()
	delete(u.records, token)
	u.mu.Unlock()
	if u.committer.bus != nil {
		u.committer.bus.Publish(events.RevertEvent{ActorID: actor.ID, Token: token, Moves: len(res.Moves), Time: u.committer.now()})
	}
	return res, nil
}

// Expire discards the token immediately, making the commit permanent.
func (u *UndoBuffer) Expire(token string) {
	u.mu.Lock()
	delete(u.records, token)
	u.mu.Unlock()
}

// Window returns the configured undo window.
func (u *UndoBuffer) Window() time.Duration { return u.window }
