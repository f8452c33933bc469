package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pmarg/reseat/core/commit"
	"github.com/pmarg/reseat/core/model"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reseat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSnapshotRoundtrip(t *testing.T) {
	s := openTestStore(t)

	st := model.Student{ID: "s1", Name: "Ada", Shift: model.ShiftA, StopID: "main", BusID: "b1"}
	b := model.Bus{
		ID: "b1", Name: "North", Shift: model.ShiftBoth, Capacity: 30,
		Loads: map[model.Shift]int{model.ShiftA: 1},
		Stops: []string{"main"}, Active: true,
	}
	require.NoError(t, s.PutStudent(st))
	require.NoError(t, s.PutBus(b))

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)

	got, ok := snap.Student("s1")
	require.True(t, ok)
	require.Equal(t, st, got)

	gotBus, ok := snap.Bus("b1")
	require.True(t, ok)
	require.Equal(t, b, gotBus)
}

func TestRunInTransactionCommits(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutStudent(model.Student{ID: "s1", Shift: model.ShiftA, StopID: "main"}))

	err := s.RunInTransaction(context.Background(), func(tx commit.Tx) error {
		st, err := tx.Student("s1")
		if err != nil {
			return err
		}
		st.BusID = "b1"
		return tx.PutStudent(st)
	})
	require.NoError(t, err)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	st, _ := snap.Student("s1")
	require.Equal(t, "b1", st.BusID)
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutStudent(model.Student{ID: "s1", Shift: model.ShiftA, StopID: "main"}))

	boom := errors.New("boom")
	err := s.RunInTransaction(context.Background(), func(tx commit.Tx) error {
		st, err := tx.Student("s1")
		if err != nil {
			return err
		}
		st.BusID = "b1"
		if err := tx.PutStudent(st); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	st, _ := snap.Student("s1")
	require.Equal(t, "", st.BusID)
}

func TestTransactionLookupErrors(t *testing.T) {
	s := openTestStore(t)

	err := s.RunInTransaction(context.Background(), func(tx commit.Tx) error {
		_, err := tx.Student("ghost")
		return err
	})
	require.ErrorContains(t, err, "student not found")

	err = s.RunInTransaction(context.Background(), func(tx commit.Tx) error {
		_, err := tx.Bus("ghost")
		return err
	})
	require.ErrorContains(t, err, "bus not found")
}

func TestListAuditNewestFirst(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		entry := commit.AuditEntry{
			ID:        id,
			ActorID:   "op1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Moves: []commit.AuditMove{
				{StudentID: "s1", FromBusID: "b1", ToBusID: "b2", Shift: model.ShiftA},
			},
		}
		require.NoError(t, s.RunInTransaction(context.Background(), func(tx commit.Tx) error {
			return tx.AppendAudit(entry)
		}))
	}

	entries, err := s.ListAudit(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "third", entries[0].ID)
	require.Equal(t, "first", entries[2].ID)

	limited, err := s.ListAudit(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, "third", limited[0].ID)
}

func TestSnapshotHonorsContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
