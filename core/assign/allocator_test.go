package assign

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmarg/reseat/core/model"
)

func fleet() []model.Bus {
	return []model.Bus{
		{ID: "b1", Shift: model.ShiftBoth, Capacity: 10, Stops: []string{"main"}, Active: true},
		{ID: "b2", Shift: model.ShiftBoth, Capacity: 10, Stops: []string{"main"}, Active: true},
	}
}

func riders(n int) []model.Student {
	out := make([]model.Student, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Student{ID: fmt.Sprintf("s%02d", i), Shift: model.ShiftA, StopID: "main"})
	}
	return out
}

func TestAllocateBalancesLoad(t *testing.T) {
	var a Allocator
	res := a.Allocate(riders(6), fleet())

	require.Empty(t, res.Unassigned)
	require.Len(t, res.Assignments, 6)
	counts := map[string]int{}
	for _, busID := range res.Assignments {
		counts[busID]++
	}
	require.Equal(t, 3, counts["b1"])
	require.Equal(t, 3, counts["b2"])
}

func TestAllocateTieBreaksLowestID(t *testing.T) {
	var a Allocator
	res := a.Allocate(riders(1), fleet())
	require.Equal(t, "b1", res.Assignments["s00"])
}

func TestAllocatePrefersEmptierBus(t *testing.T) {
	buses := fleet()
	buses[0].Loads = map[model.Shift]int{model.ShiftA: 8}

	var a Allocator
	res := a.Allocate(riders(3), buses)
	for id, busID := range res.Assignments {
		require.Equal(t, "b2", busID, "student %s", id)
	}
}

func TestAllocateDeterministic(t *testing.T) {
	students := riders(20)
	var a Allocator
	first := a.Allocate(students, fleet())
	for i := 0; i < 5; i++ {
		again := a.Allocate(students, fleet())
		require.Equal(t, first.Assignments, again.Assignments)
		require.Equal(t, first.Unassigned, again.Unassigned)
	}
}

func TestAllocateDoesNotMutateSnapshot(t *testing.T) {
	buses := fleet()
	var a Allocator
	a.Allocate(riders(6), buses)
	require.Equal(t, 0, buses[0].Load(model.ShiftA))
	require.Equal(t, 0, buses[1].Load(model.ShiftA))
}

func TestAllocateSkipsLockedStudents(t *testing.T) {
	students := riders(2)
	students[0].Locked = true

	var a Allocator
	res := a.Allocate(students, fleet())
	require.NotContains(t, res.Assignments, "s00")
	require.Contains(t, res.Assignments, "s01")
	require.Empty(t, res.Unassigned)
}

func TestAllocateReasonAllBusesFull(t *testing.T) {
	buses := fleet()
	buses[0].Loads = map[model.Shift]int{model.ShiftA: 10}
	buses[1].Loads = map[model.Shift]int{model.ShiftA: 10}

	var a Allocator
	res := a.Allocate(riders(1), buses)
	require.Empty(t, res.Assignments)
	require.Len(t, res.Unassigned, 1)
	require.Equal(t, ReasonAllBusesFull, res.Unassigned[0].Reason)
}

func TestAllocateReasonNoAlternateBus(t *testing.T) {
	students := []model.Student{{ID: "s1", Shift: model.ShiftA, StopID: "nowhere"}}
	var a Allocator
	res := a.Allocate(students, fleet())
	require.Len(t, res.Unassigned, 1)
	require.Equal(t, ReasonNoAlternateBus, res.Unassigned[0].Reason)
}

func TestAllocateReasonNoShiftCompatibleBus(t *testing.T) {
	buses := fleet()
	buses[0].Shift = model.ShiftA
	buses[1].Shift = model.ShiftA
	students := []model.Student{{ID: "s1", Shift: model.ShiftB, StopID: "main"}}

	var a Allocator
	res := a.Allocate(students, buses)
	require.Len(t, res.Unassigned, 1)
	require.Equal(t, ReasonNoShiftCompatibleBus, res.Unassigned[0].Reason)
}

func TestAllocateOrderDependence(t *testing.T) {
	// One seat left on the emptier bus: the first student in input order
	// takes it, later students see the updated simulated load.
	buses := []model.Bus{
		{ID: "b1", Shift: model.ShiftBoth, Capacity: 2, Loads: map[model.Shift]int{model.ShiftA: 1}, Stops: []string{"main"}, Active: true},
		{ID: "b2", Shift: model.ShiftBoth, Capacity: 2, Loads: map[model.Shift]int{model.ShiftA: 1}, Stops: []string{"main"}, Active: true},
	}
	var a Allocator
	res := a.Allocate(riders(2), buses)
	require.Equal(t, "b1", res.Assignments["s00"])
	require.Equal(t, "b2", res.Assignments["s01"])
}

func TestBalanceReport(t *testing.T) {
	var a Allocator
	res := a.Allocate(riders(10), fleet())
	require.InDelta(t, 0.5, res.Balance.Mean, 1e-9)
	require.InDelta(t, 0, res.Balance.StdDev, 1e-9)
	require.InDelta(t, 0.5, res.Balance.Peak, 1e-9)
}
