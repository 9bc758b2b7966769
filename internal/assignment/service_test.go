package assignment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/calendar"
	"github.com/appointly/appointment-backend/internal/employee"
)

type fakeDirectory struct {
	employees  []*employee.Employee
	increments map[string]int
}

func (f *fakeDirectory) FindCapable(context.Context, string) ([]*employee.Employee, error) {
	return f.employees, nil
}

func (f *fakeDirectory) IncrementAssignmentCount(_ context.Context, id string) error {
	if f.increments == nil {
		f.increments = map[string]int{}
	}
	f.increments[id]++
	return nil
}

// fakeChecker marks (employee, slot key) pairs as already reserved.
type fakeChecker struct {
	reserved map[string]bool
}

func (f *fakeChecker) ValidateAvailability(_ context.Context, slot time.Time, _, employeeID string) (bool, error) {
	return !f.reserved[employeeID+"|"+calendar.SlotKey(slot)], nil
}

func reservedPair(employeeID string, slot time.Time) string {
	return employeeID + "|" + calendar.SlotKey(slot)
}

func scheduled(id string, count int) *employee.Employee {
	return &employee.Employee{
		ID:              id,
		Name:            "Staff " + id,
		AssignmentCount: count,
		Schedule: employee.WorkSchedule{
			"monday": {{StartMinutes: 9 * 60, EndMinutes: 17 * 60}},
		},
	}
}

var (
	monday10 = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) // Monday
	monday11 = time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC)
	monday20 = time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC)
)

func newTestService(dir *fakeDirectory, checker ConflictChecker) Service {
	return NewService(dir, checker, calendar.Disabled{}, zap.NewNop())
}

func TestAssign_PrefersSingleEmployeeForAllSlots(t *testing.T) {
	dir := &fakeDirectory{employees: []*employee.Employee{
		scheduled("e1", 3),
		scheduled("e2", 5),
	}}
	svc := newTestService(dir, &fakeChecker{})

	assignments, err := svc.Assign(context.Background(), "svc-1", []time.Time{monday10, monday11})
	require.NoError(t, err)

	require.Len(t, assignments, 1)
	assert.Equal(t, "e1", assignments[0].Employee.ID)
	assert.Equal(t, []time.Time{monday10, monday11}, assignments[0].Slots)
	assert.Equal(t, 1, dir.increments["e1"], "whole-booking assignment counts once")
}

func TestAssign_LeastLoadedWins(t *testing.T) {
	dir := &fakeDirectory{employees: []*employee.Employee{
		scheduled("e1", 9),
		scheduled("e2", 2),
	}}
	svc := newTestService(dir, &fakeChecker{})

	assignments, err := svc.Assign(context.Background(), "svc-1", []time.Time{monday10})
	require.NoError(t, err)

	require.Len(t, assignments, 1)
	assert.Equal(t, "e2", assignments[0].Employee.ID)
}

func TestAssign_TieBreaksByDirectoryOrder(t *testing.T) {
	dir := &fakeDirectory{employees: []*employee.Employee{
		scheduled("e1", 4),
		scheduled("e2", 4),
	}}
	svc := newTestService(dir, &fakeChecker{})

	assignments, err := svc.Assign(context.Background(), "svc-1", []time.Time{monday10})
	require.NoError(t, err)
	assert.Equal(t, "e1", assignments[0].Employee.ID)
}

func TestAssign_FallsBackToPerSlotAssignment(t *testing.T) {
	// e1 is least loaded but already reserved at 11:00, so no single
	// employee covers both slots.
	dir := &fakeDirectory{employees: []*employee.Employee{
		scheduled("e1", 0),
		scheduled("e2", 1),
	}}
	checker := &fakeChecker{reserved: map[string]bool{
		reservedPair("e1", monday11): true,
		reservedPair("e2", monday10): true,
	}}
	svc := newTestService(dir, checker)

	assignments, err := svc.Assign(context.Background(), "svc-1", []time.Time{monday10, monday11})
	require.NoError(t, err)

	require.Len(t, assignments, 2)
	bySlot := map[time.Time]string{}
	for _, a := range assignments {
		for _, s := range a.Slots {
			bySlot[s] = a.Employee.ID
		}
	}
	assert.Equal(t, "e1", bySlot[monday10])
	assert.Equal(t, "e2", bySlot[monday11])
	assert.Equal(t, 1, dir.increments["e1"])
	assert.Equal(t, 1, dir.increments["e2"])
}

func TestAssign_FairnessCyclesEqualCounters(t *testing.T) {
	// Both start equal; after e1 takes a booking the next one goes to e2.
	dir := &fakeDirectory{employees: []*employee.Employee{
		scheduled("e1", 0),
		scheduled("e2", 0),
	}}
	svc := newTestService(dir, &fakeChecker{reserved: map[string]bool{}})

	first, err := svc.Assign(context.Background(), "svc-1", []time.Time{monday10})
	require.NoError(t, err)
	assert.Equal(t, "e1", first[0].Employee.ID)

	second, err := svc.Assign(context.Background(), "svc-1", []time.Time{monday11})
	require.NoError(t, err)
	assert.Equal(t, "e2", second[0].Employee.ID)
}

func TestAssign_UnassignableSlotReported(t *testing.T) {
	dir := &fakeDirectory{employees: []*employee.Employee{scheduled("e1", 0)}}
	checker := &fakeChecker{reserved: map[string]bool{
		reservedPair("e1", monday11): true,
	}}
	svc := newTestService(dir, checker)

	_, err := svc.Assign(context.Background(), "svc-1", []time.Time{monday10, monday11})

	var unassignable *UnassignableSlotsError
	require.ErrorAs(t, err, &unassignable)
	assert.Equal(t, []time.Time{monday11}, unassignable.Slots)
}

func TestAssign_NoOneOnShift(t *testing.T) {
	dir := &fakeDirectory{employees: []*employee.Employee{scheduled("e1", 0)}}
	svc := newTestService(dir, &fakeChecker{})

	_, err := svc.Assign(context.Background(), "svc-1", []time.Time{monday20})
	assert.ErrorIs(t, err, ErrNoCapableEmployees)
}

func TestAssign_NoSlots(t *testing.T) {
	svc := newTestService(&fakeDirectory{}, &fakeChecker{})
	_, err := svc.Assign(context.Background(), "svc-1", nil)
	assert.ErrorIs(t, err, ErrNoSlots)
}

func TestPlan_DoesNotTouchCounters(t *testing.T) {
	dir := &fakeDirectory{employees: []*employee.Employee{
		scheduled("e1", 0),
		scheduled("e2", 0),
	}}
	svc := newTestService(dir, &fakeChecker{})

	assignments, err := svc.Plan(context.Background(), "svc-1", []time.Time{monday10, monday11})
	require.NoError(t, err)

	require.Len(t, assignments, 1)
	assert.Equal(t, "e1", assignments[0].Employee.ID)
	assert.Empty(t, dir.increments, "preview must not advance round-robin state")
}
