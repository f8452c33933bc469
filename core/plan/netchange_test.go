package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmarg/reseat/core/model"
	"github.com/pmarg/reseat/core/staging"
)

func snapshotForPlan() *model.Snapshot {
	return model.NewSnapshot(
		[]model.Student{
			{ID: "s1", Shift: model.ShiftA, StopID: "main", BusID: "bA"},
			{ID: "s2", Shift: model.ShiftA, StopID: "main", BusID: "bA"},
			{ID: "s3", Shift: model.ShiftB, StopID: "main"},
		},
		[]model.Bus{
			{ID: "bA", Shift: model.ShiftBoth, Capacity: 10, Loads: map[model.Shift]int{model.ShiftA: 2}, Stops: []string{"main"}, Active: true},
			{ID: "bB", Shift: model.ShiftBoth, Capacity: 10, Stops: []string{"main"}, Active: true},
		},
	)
}

func stageAll(t *testing.T, snap *model.Snapshot, moves map[string]string) []staging.Operation {
	t.Helper()
	s := staging.NewSession()
	for id, to := range moves {
		st, ok := snap.Student(id)
		require.True(t, ok)
		_, err := s.Stage(st, to)
		require.NoError(t, err)
	}
	return s.List()
}

func TestNoOpIsDropped(t *testing.T) {
	snap := snapshotForPlan()
	ops := stageAll(t, snap, map[string]string{"s1": "bA"})

	res := ComputeNetChanges(ops, snap)
	require.False(t, res.HasChanges())
	require.Equal(t, 1, res.RemovedNoOpCount())
	require.Equal(t, "s1", res.NoOps[0].StudentID)
}

func TestStageThenStageBackCancelsOut(t *testing.T) {
	snap := snapshotForPlan()
	s := staging.NewSession()
	st, _ := snap.Student("s1")

	_, err := s.Stage(st, "bB")
	require.NoError(t, err)
	_, err = s.Stage(st, "bA") // back to the original bus
	require.NoError(t, err)

	res := ComputeNetChanges(s.List(), snap)
	require.False(t, res.HasChanges())
	require.Equal(t, 1, res.RemovedNoOpCount())
}

func TestNetChangesGroupByBus(t *testing.T) {
	snap := snapshotForPlan()
	ops := stageAll(t, snap, map[string]string{"s1": "bB", "s2": "bB"})

	res := ComputeNetChanges(ops, snap)
	require.True(t, res.HasChanges())
	require.Equal(t, []string{"bA", "bB"}, res.BusIDs())
	require.ElementsMatch(t, []string{"s1", "s2"}, res.Changes["bB"].Added)
	require.ElementsMatch(t, []string{"s1", "s2"}, res.Changes["bA"].Removed)
	require.Empty(t, res.Changes["bA"].Added)
}

func TestNetChangesUnassignedStudentHasNoRemoval(t *testing.T) {
	snap := snapshotForPlan()
	ops := stageAll(t, snap, map[string]string{"s3": "bB"})

	res := ComputeNetChanges(ops, snap)
	require.Equal(t, []string{"bB"}, res.BusIDs())
	require.Equal(t, []string{"s3"}, res.Changes["bB"].Added)
}

func TestNetChangesResolveAgainstSnapshotNotStagedState(t *testing.T) {
	snap := snapshotForPlan()
	// s1 currently rides bA per snapshot; a stale FromBusID must not matter.
	ops := []staging.Operation{{ID: "op1", StudentID: "s1", FromBusID: "bogus", ToBusID: "bB"}}

	res := ComputeNetChanges(ops, snap)
	require.ElementsMatch(t, []string{"s1"}, res.Changes["bA"].Removed)
}

func TestNetChangesIgnoreUnknownStudents(t *testing.T) {
	snap := snapshotForPlan()
	ops := []staging.Operation{{ID: "op1", StudentID: "ghost", ToBusID: "bB"}}
	res := ComputeNetChanges(ops, snap)
	require.False(t, res.HasChanges())
	require.Zero(t, res.RemovedNoOpCount())
}
