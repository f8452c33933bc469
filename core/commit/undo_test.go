package commit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pmarg/reseat/core/model"
)

func TestRevertRestoresExactState(t *testing.T) {
	store := testStore()
	c, err := NewCommitter(store, nil, nil, nil)
	require.NoError(t, err)

	before, err := store.Snapshot(context.Background())
	require.NoError(t, err)

	res, err := c.Commit(context.Background(), moveChangeSet("bA", "bB", "s1"), Actor{ID: "op1"})
	require.NoError(t, err)

	u := NewUndoBuffer(c, time.Minute)
	token := u.Capture(res.Moves)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	require.NoError(t, err)

	after, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, before.Students, after.Students)
	require.Equal(t, before.Buses, after.Buses)
}

func TestRevertOfAllocationReturnsStudentToUnassigned(t *testing.T) {
	store := testStore()
	c, err := NewCommitter(store, nil, nil, nil)
	require.NoError(t, err)

	// s2 starts unassigned; committing it onto bB and reverting must empty
	// its bus reference again.
	res, err := c.Commit(context.Background(), changeSet("bB", []string{"s2"}, nil), Actor{ID: "op1"})
	require.NoError(t, err)
	require.Equal(t, "bB", store.student("s2").BusID)

	u := NewUndoBuffer(c, time.Minute)
	token := u.Capture(res.Moves)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	require.NoError(t, err)
	require.Equal(t, "", store.student("s2").BusID)
	require.Equal(t, 0, store.bus("bB").Load(model.ShiftA))
}

func TestRevertWritesRevertAuditEntry(t *testing.T) {
	store := testStore()
	c, err := NewCommitter(store, nil, nil, nil)
	require.NoError(t, err)

	res, err := c.Commit(context.Background(), moveChangeSet("bA", "bB", "s1"), Actor{ID: "op1"})
	require.NoError(t, err)

	u := NewUndoBuffer(c, time.Minute)
	token := u.Capture(res.Moves)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	require.NoError(t, err)

	require.Len(t, store.audit, 2)
	require.True(t, store.audit[1].Reverted)
}

func TestRevertTokenIsOneShot(t *testing.T) {
	store := testStore()
	c, err := NewCommitter(store, nil, nil, nil)
	require.NoError(t, err)

	res, err := c.Commit(context.Background(), moveChangeSet("bA", "bB", "s1"), Actor{ID: "op1"})
	require.NoError(t, err)

	u := NewUndoBuffer(c, time.Minute)
	token := u.Capture(res.Moves)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	require.NoError(t, err)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	require.ErrorIs(t, err, ErrUndoExpired)
}

func TestRevertAfterWindowExpires(t *testing.T) {
	store := testStore()
	c, err := NewCommitter(store, nil, nil, nil)
	require.NoError(t, err)

	res, err := c.Commit(context.Background(), moveChangeSet("bA", "bB", "s1"), Actor{ID: "op1"})
	require.NoError(t, err)

	u := NewUndoBuffer(c, 30*time.Second)
	now := time.Now()
	u.now = func() time.Time { return now }
	token := u.Capture(res.Moves)

	now = now.Add(31 * time.Second)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	require.ErrorIs(t, err, ErrUndoExpired)
	require.Equal(t, "bB", store.student("s1").BusID)
}

func TestRevertBlockedByCapacityIsDistinct(t *testing.T) {
	store := testStore()
	c, err := NewCommitter(store, nil, nil, nil)
	require.NoError(t, err)

	res, err := c.Commit(context.Background(), moveChangeSet("bA", "bB", "s1"), Actor{ID: "op1"})
	require.NoError(t, err)

	u := NewUndoBuffer(c, time.Minute)
	token := u.Capture(res.Moves)

	// The source bus fills up in the interim; reverting would overflow it.
	store.setBusLoad("bA", model.ShiftA, 10)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	var blocked *RevertBlockedError
	require.ErrorAs(t, err, &blocked)
	require.Equal(t, []string{"bA"}, blocked.Conflict.BusIDs())

	// The token survives a blocked revert: free a seat and retry.
	store.setBusLoad("bA", model.ShiftA, 5)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	require.NoError(t, err)
	require.Equal(t, "bA", store.student("s1").BusID)
}

func TestExpireDiscardsToken(t *testing.T) {
	store := testStore()
	c, err := NewCommitter(store, nil, nil, nil)
	require.NoError(t, err)

	res, err := c.Commit(context.Background(), moveChangeSet("bA", "bB", "s1"), Actor{ID: "op1"})
	require.NoError(t, err)

	u := NewUndoBuffer(c, time.Minute)
	token := u.Capture(res.Moves)
	u.Expire(token)
	_, err = u.Revert(context.Background(), token, Actor{ID: "op1"})
	require.ErrorIs(t, err, ErrUndoExpired)
}

func TestUndoWindowDefault(t *testing.T) {
	c, err := NewCommitter(testStore(), nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultUndoWindow, NewUndoBuffer(c, 0).Window())
}
