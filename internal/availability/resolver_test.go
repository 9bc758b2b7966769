package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/calendar"
	"github.com/appointly/appointment-backend/internal/catalog"
	"github.com/appointly/appointment-backend/internal/employee"
	"github.com/appointly/appointment-backend/internal/reservation"
)

type fakeCatalog struct {
	services map[string]*catalog.Service
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (*catalog.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return svc, nil
}

type fakeDirectory struct {
	employees []*employee.Employee
}

func (f *fakeDirectory) FindCapable(context.Context, string) ([]*employee.Employee, error) {
	return f.employees, nil
}

type fakeReservations struct {
	byKey map[string][]reservation.SlotReservation
	calls int
}

func (f *fakeReservations) ReservationsInRange(context.Context, time.Time, time.Time, string) (map[string][]reservation.SlotReservation, error) {
	f.calls++
	return f.byKey, nil
}

type fakeCalendar struct {
	booked map[string][]calendar.Entry
	err    error
}

func (f *fakeCalendar) GetBookedSlots(context.Context, time.Time, time.Time, []*employee.Employee) (map[string][]calendar.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.booked, nil
}

func (f *fakeCalendar) GetAvailableEmployeesAtTime(context.Context, time.Time, []*employee.Employee) ([]*employee.Employee, error) {
	return nil, f.err
}

func weekdayEmployee(id string) *employee.Employee {
	return &employee.Employee{
		ID:    id,
		Name:  "Staff " + id,
		Email: id + "@example.com",
		Schedule: employee.WorkSchedule{
			"wednesday": {{StartMinutes: 9 * 60, EndMinutes: 17 * 60}},
		},
	}
}

func newTestResolver(cat Catalog, dir Directory, res ReservationSource, cal calendar.Calendar, now time.Time) *resolver {
	return &resolver{
		services:     cat,
		directory:    dir,
		reservations: res,
		calendar:     cal,
		defaultGrace: DefaultGraceHours,
		logger:       zap.NewNop(),
		now:          func() time.Time { return now },
	}
}

var (
	testDate = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC) // Wednesday
	testNow  = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
)

func standardService() *catalog.Service {
	return &catalog.Service{
		ID:              "svc-1",
		Name:            "Consultation",
		DurationMinutes: 60,
		Strategy:        catalog.StrategyStandard,
		Active:          true,
	}
}

func TestGetAvailableSlots_WorkingHoursOnly(t *testing.T) {
	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1")}},
		&fakeReservations{},
		&fakeCalendar{booked: map[string][]calendar.Entry{}},
		testNow,
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	assert.Len(t, result.AvailableSlots, 8)
	assert.Empty(t, result.BookedSlots)
	assert.Empty(t, result.Warning)
	assert.Equal(t, 60, result.SlotDurationMinutes)
	assert.Equal(t, testDate.Add(9*time.Hour), result.AvailableSlots[0])
	assert.Equal(t, testDate.Add(16*time.Hour), result.AvailableSlots[7])
}

func TestGetAvailableSlots_Idempotent(t *testing.T) {
	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1")}},
		&fakeReservations{},
		&fakeCalendar{booked: map[string][]calendar.Entry{}},
		testNow,
	)

	first, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)
	second, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetAvailableSlots_BookedVersusAbsent(t *testing.T) {
	bookedAt := testDate.Add(10 * time.Hour)
	reservations := &fakeReservations{byKey: map[string][]reservation.SlotReservation{
		calendar.SlotKey(bookedAt): {{EmployeeID: "e1", Status: reservation.StatusReserved}},
	}}

	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1")}},
		reservations,
		&fakeCalendar{booked: map[string][]calendar.Entry{}},
		testNow,
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	// 10:00 had staffing but everyone is held, so it shows as booked.
	assert.Equal(t, []time.Time{bookedAt}, result.BookedSlots)
	assert.NotContains(t, result.AvailableSlots, bookedAt)

	// 20:00 has no staffing at all and appears in neither list.
	offShift := testDate.Add(20 * time.Hour)
	assert.NotContains(t, result.AvailableSlots, offShift)
	assert.NotContains(t, result.BookedSlots, offShift)
}

func TestGetAvailableSlots_SecondEmployeeKeepsSlotOpen(t *testing.T) {
	bookedAt := testDate.Add(10 * time.Hour)
	reservations := &fakeReservations{byKey: map[string][]reservation.SlotReservation{
		calendar.SlotKey(bookedAt): {{EmployeeID: "e1", Status: reservation.StatusReserved}},
	}}

	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1"), weekdayEmployee("e2")}},
		reservations,
		&fakeCalendar{booked: map[string][]calendar.Entry{}},
		testNow,
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	assert.Contains(t, result.AvailableSlots, bookedAt)
	assert.Empty(t, result.BookedSlots)
}

func TestGetAvailableSlots_CalendarDegraded(t *testing.T) {
	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1")}},
		&fakeReservations{},
		&fakeCalendar{err: calendar.ErrUnavailable},
		testNow,
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	assert.Len(t, result.AvailableSlots, 8)
	assert.Contains(t, result.Warning, "external calendar unavailable")
}

func TestGetAvailableSlots_ExternalBusyBlocksSlot(t *testing.T) {
	busyAt := testDate.Add(11 * time.Hour)
	cal := &fakeCalendar{booked: map[string][]calendar.Entry{
		calendar.SlotKey(busyAt): {{EmployeeID: "e1", EventID: "evt-1"}},
	}}

	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1")}},
		&fakeReservations{},
		cal,
		testNow,
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	assert.NotContains(t, result.AvailableSlots, busyAt)
	assert.Contains(t, result.BookedSlots, busyAt)
}

func TestGetAvailableSlots_PastDate(t *testing.T) {
	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1")}},
		&fakeReservations{},
		&fakeCalendar{},
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	assert.Empty(t, result.AvailableSlots)
	assert.Empty(t, result.BookedSlots)
	assert.Contains(t, result.Warning, "past")
}

func TestGetAvailableSlots_NoCapableEmployees(t *testing.T) {
	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{},
		&fakeReservations{},
		&fakeCalendar{},
		testNow,
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	assert.Empty(t, result.AvailableSlots)
	assert.Contains(t, result.Warning, "no employees")
}

func TestGetAvailableSlots_GraceCutsSameDaySlots(t *testing.T) {
	// 08:30 on the requested day with a two hour lead time leaves 11:00 as
	// the first bookable slot.
	now := testDate.Add(8*time.Hour + 30*time.Minute)
	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": standardService()}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1")}},
		&fakeReservations{},
		&fakeCalendar{booked: map[string][]calendar.Entry{}},
		now,
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 2)
	require.NoError(t, err)

	require.NotEmpty(t, result.AvailableSlots)
	assert.Equal(t, testDate.Add(11*time.Hour), result.AvailableSlots[0])
}

func TestGetAvailableSlots_ExternalStrategySkipsInternalStore(t *testing.T) {
	svc := standardService()
	svc.Strategy = catalog.StrategyExternal

	busyAt := testDate.Add(10 * time.Hour)
	reservations := &fakeReservations{byKey: map[string][]reservation.SlotReservation{
		calendar.SlotKey(busyAt): {{EmployeeID: "e1", Status: reservation.StatusReserved}},
	}}

	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{"svc-1": svc}},
		&fakeDirectory{employees: []*employee.Employee{weekdayEmployee("e1")}},
		reservations,
		&fakeCalendar{booked: map[string][]calendar.Entry{}},
		testNow,
	)

	result, err := r.GetAvailableSlots(context.Background(), testDate, "svc-1", 0)
	require.NoError(t, err)

	assert.Zero(t, reservations.calls)
	assert.Contains(t, result.AvailableSlots, busyAt)
}

func TestGetAvailableSlots_UnknownService(t *testing.T) {
	r := newTestResolver(
		&fakeCatalog{services: map[string]*catalog.Service{}},
		&fakeDirectory{},
		&fakeReservations{},
		&fakeCalendar{},
		testNow,
	)

	_, err := r.GetAvailableSlots(context.Background(), testDate, "missing", 0)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
