package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/appointly/appointment-backend/internal/employee"
)

// ErrUnavailable indicates the external calendar could not be consulted.
// Callers must degrade to a local-only availability view instead of failing
// the request.
var ErrUnavailable = errors.New("external calendar unavailable")

// Entry is one busy marker from the external calendar.
type Entry struct {
	EmployeeID    string
	EmployeeEmail string
	EventID       string
}

// Calendar is the read-side port to the external calendar. Both methods are
// best-effort: implementations report failures as errors and never panic into
// the booking path.
type Calendar interface {
	// GetBookedSlots returns busy entries between from and to for the given
	// employees, keyed by the slot's RFC3339 UTC timestamp.
	GetBookedSlots(ctx context.Context, from, to time.Time, employees []*employee.Employee) (map[string][]Entry, error)

	// GetAvailableEmployeesAtTime filters the given employees down to those
	// the external calendar reports free at the slot.
	GetAvailableEmployeesAtTime(ctx context.Context, slot time.Time, employees []*employee.Employee) ([]*employee.Employee, error)
}

// SlotKey renders a slot timestamp the way calendar maps are keyed.
func SlotKey(slot time.Time) string {
	return slot.UTC().Format(time.RFC3339)
}

// Disabled is the Calendar used when no external calendar is configured.
// Every call reports ErrUnavailable so resolvers fall back to the
// working-hours-only view.
type Disabled struct{}

func (Disabled) GetBookedSlots(context.Context, time.Time, time.Time, []*employee.Employee) (map[string][]Entry, error) {
	return nil, ErrUnavailable
}

func (Disabled) GetAvailableEmployeesAtTime(context.Context, time.Time, []*employee.Employee) ([]*employee.Employee, error) {
	return nil, ErrUnavailable
}
