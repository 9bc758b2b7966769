package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/assignment"
	"github.com/appointly/appointment-backend/internal/employee"
	"github.com/appointly/appointment-backend/internal/reservation"
)

type fakeAssigner struct {
	assignments []assignment.Assignment
	err         error
}

func (f *fakeAssigner) Assign(context.Context, string, []time.Time) ([]assignment.Assignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assignments, nil
}

func (f *fakeAssigner) Plan(ctx context.Context, serviceID string, slots []time.Time) ([]assignment.Assignment, error) {
	return f.Assign(ctx, serviceID, slots)
}

type fakeReservations struct {
	reservation.Service

	result    *reservation.ReserveResult
	gotItems  []reservation.ReserveItem
	gotTTL    int
	customers []string
}

func (f *fakeReservations) Reserve(_ context.Context, customerID string, items []reservation.ReserveItem, ttlMinutes int) (*reservation.ReserveResult, error) {
	f.customers = append(f.customers, customerID)
	f.gotItems = items
	f.gotTTL = ttlMinutes
	return f.result, nil
}

var (
	slotA = time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	slotB = time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC)
)

func TestBook_PairsSlotsWithAssignedEmployees(t *testing.T) {
	assigner := &fakeAssigner{assignments: []assignment.Assignment{
		{Employee: &employee.Employee{ID: "e1"}, Slots: []time.Time{slotA}},
		{Employee: &employee.Employee{ID: "e2"}, Slots: []time.Time{slotB}},
	}}
	order := &reservation.Order{ID: "o1", Status: reservation.StatusReserved}
	reservations := &fakeReservations{result: &reservation.ReserveResult{Valid: true, Order: order}}

	svc := NewService(assigner, reservations, zap.NewNop())
	result, err := svc.Book(context.Background(), "cust-1", []Item{{ServiceID: "svc-1", Slots: []time.Time{slotA, slotB}}}, 15)
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, order, result.Order)
	assert.Equal(t, 15, reservations.gotTTL)

	require.Len(t, reservations.gotItems, 1)
	item := reservations.gotItems[0]
	assert.Equal(t, "svc-1", item.ServiceID)
	assert.Equal(t, []time.Time{slotA, slotB}, item.Slots)
	assert.Equal(t, []string{"e1", "e2"}, item.EmployeeIDs)
}

func TestBook_ConflictReturnsInvalidResult(t *testing.T) {
	assigner := &fakeAssigner{assignments: []assignment.Assignment{
		{Employee: &employee.Employee{ID: "e1"}, Slots: []time.Time{slotA}},
	}}
	reservations := &fakeReservations{result: &reservation.ReserveResult{
		Valid:            false,
		ConflictingSlots: []time.Time{slotA},
	}}

	svc := NewService(assigner, reservations, zap.NewNop())
	result, err := svc.Book(context.Background(), "cust-1", []Item{{ServiceID: "svc-1", Slots: []time.Time{slotA}}}, 0)
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, []time.Time{slotA}, result.ConflictingSlots)
	assert.Nil(t, result.Order)
}

func TestBook_AssignmentFailureAborts(t *testing.T) {
	assigner := &fakeAssigner{err: &assignment.UnassignableSlotsError{Slots: []time.Time{slotB}}}
	reservations := &fakeReservations{}

	svc := NewService(assigner, reservations, zap.NewNop())
	_, err := svc.Book(context.Background(), "cust-1", []Item{{ServiceID: "svc-1", Slots: []time.Time{slotA, slotB}}}, 0)

	var unassignable *assignment.UnassignableSlotsError
	require.ErrorAs(t, err, &unassignable)
	assert.Equal(t, []time.Time{slotB}, unassignable.Slots)
	assert.Empty(t, reservations.customers, "no hold may be placed when assignment fails")
}

func TestBook_NoItems(t *testing.T) {
	svc := NewService(&fakeAssigner{}, &fakeReservations{}, zap.NewNop())
	_, err := svc.Book(context.Background(), "cust-1", nil, 0)
	assert.ErrorIs(t, err, ErrNoItems)
}
