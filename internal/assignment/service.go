package assignment

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/calendar"
	"github.com/appointly/appointment-backend/internal/employee"
	"github.com/appointly/appointment-backend/internal/pkg/apperror"
)

var (
	ErrNoSlots            = apperror.New(http.StatusBadRequest, "assignment requires at least one slot")
	ErrNoCapableEmployees = apperror.New(http.StatusConflict, "no employee is on shift for any requested slot")
)

// UnassignableSlotsError reports the slots no employee could cover. The
// whole booking attempt must be rejected when this is returned; partial
// assignments are never persisted.
type UnassignableSlotsError struct {
	Slots []time.Time
}

func (e *UnassignableSlotsError) Error() string {
	return fmt.Sprintf("no employee available for %d of the requested slots", len(e.Slots))
}

// Assignment pairs an employee with the slots they will cover.
type Assignment struct {
	Employee *employee.Employee
	Slots    []time.Time
}

// Directory is the slice of the employee service the assigner needs.
type Directory interface {
	FindCapable(ctx context.Context, serviceID string) ([]*employee.Employee, error)
	IncrementAssignmentCount(ctx context.Context, id string) error
}

// ConflictChecker answers whether a (slot, employee) pair is free of
// internal reservations. Implemented by the reservation service.
type ConflictChecker interface {
	ValidateAvailability(ctx context.Context, slot time.Time, serviceID, employeeID string) (bool, error)
}

type Service interface {
	// Assign selects employees for the requested slots of a service.
	// A single employee covering every slot is preferred; otherwise slots
	// are assigned one by one to the least-loaded available employee.
	Assign(ctx context.Context, serviceID string, slots []time.Time) ([]Assignment, error)

	// Plan runs the same selection without touching assignment counters.
	// Used to preview who would be assigned before a booking is placed.
	Plan(ctx context.Context, serviceID string, slots []time.Time) ([]Assignment, error)
}

type service struct {
	directory Directory
	checker   ConflictChecker
	calendar  calendar.Calendar
	logger    *zap.Logger
}

func NewService(directory Directory, checker ConflictChecker, cal calendar.Calendar, logger *zap.Logger) Service {
	return &service{
		directory: directory,
		checker:   checker,
		calendar:  cal,
		logger:    logger,
	}
}

func (s *service) Assign(ctx context.Context, serviceID string, slots []time.Time) ([]Assignment, error) {
	return s.plan(ctx, serviceID, slots, true)
}

func (s *service) Plan(ctx context.Context, serviceID string, slots []time.Time) ([]Assignment, error) {
	return s.plan(ctx, serviceID, slots, false)
}

func (s *service) plan(ctx context.Context, serviceID string, slots []time.Time, commit bool) ([]Assignment, error) {
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}

	capable, err := s.directory.FindCapable(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	// Only employees on shift for at least one requested slot are candidates.
	candidates := make([]*employee.Employee, 0, len(capable))
	for _, e := range capable {
		for _, slot := range slots {
			if e.IsAvailableAt(slot) {
				candidates = append(candidates, e)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCapableEmployees
	}

	// Fewest-assigned-first; the stable sort keeps directory order on ties so
	// equal counters cycle deterministically.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AssignmentCount < candidates[j].AssignmentCount
	})

	// The external calendar is consulted once for the whole slot range. A
	// failure here is soft: assignment proceeds on local data only.
	busy := s.fetchCalendarBusy(ctx, slots, candidates)

	// Preferred path: one employee takes every slot, so a multi-session
	// booking stays with one person.
	for _, e := range candidates {
		coversAll := true
		for _, slot := range slots {
			free, err := s.pairAvailable(ctx, serviceID, e, slot, busy)
			if err != nil {
				return nil, err
			}
			if !free {
				coversAll = false
				break
			}
		}
		if coversAll {
			if commit {
				if err := s.directory.IncrementAssignmentCount(ctx, e.ID); err != nil {
					return nil, err
				}
			}
			e.AssignmentCount++
			s.logger.Debug("assigned all slots to one employee",
				zap.String("employee_id", e.ID),
				zap.Int("slots", len(slots)))
			return []Assignment{{Employee: e, Slots: slots}}, nil
		}
	}

	// Fallback: slot-by-slot, least-loaded available employee per slot.
	assigned := make(map[string]*Assignment)
	var order []string
	var unassignable []time.Time

	for _, slot := range slots {
		var picked *employee.Employee
		for _, e := range candidates {
			free, err := s.pairAvailable(ctx, serviceID, e, slot, busy)
			if err != nil {
				return nil, err
			}
			if free {
				picked = e
				break
			}
		}
		if picked == nil {
			unassignable = append(unassignable, slot)
			continue
		}

		if commit {
			if err := s.directory.IncrementAssignmentCount(ctx, picked.ID); err != nil {
				return nil, err
			}
		}
		// The in-memory bump feeds the re-rank below even for a dry run.
		picked.AssignmentCount++

		if a, ok := assigned[picked.ID]; ok {
			a.Slots = append(a.Slots, slot)
		} else {
			assigned[picked.ID] = &Assignment{Employee: picked, Slots: []time.Time{slot}}
			order = append(order, picked.ID)
		}

		// Re-rank so the next slot sees the updated load.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].AssignmentCount < candidates[j].AssignmentCount
		})
	}

	if len(unassignable) > 0 {
		return nil, &UnassignableSlotsError{Slots: unassignable}
	}

	result := make([]Assignment, len(order))
	for i, id := range order {
		result[i] = *assigned[id]
	}
	return result, nil
}

// fetchCalendarBusy returns external busy pairs keyed by slot key then
// employee id. Nil means the calendar could not be consulted.
func (s *service) fetchCalendarBusy(ctx context.Context, slots []time.Time, candidates []*employee.Employee) map[string]map[string]struct{} {
	from, to := slots[0], slots[0]
	for _, slot := range slots[1:] {
		if slot.Before(from) {
			from = slot
		}
		if slot.After(to) {
			to = slot
		}
	}

	booked, err := s.calendar.GetBookedSlots(ctx, from, to, candidates)
	if err != nil {
		s.logger.Warn("external calendar unavailable during assignment, using local data only",
			zap.Error(err))
		return nil
	}

	busy := make(map[string]map[string]struct{}, len(booked))
	for key, entries := range booked {
		set := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			set[entry.EmployeeID] = struct{}{}
		}
		busy[key] = set
	}
	return busy
}

// pairAvailable combines the working-hours predicate (hard), the external
// calendar view (soft) and the reservation store (hard, authoritative).
func (s *service) pairAvailable(ctx context.Context, serviceID string, e *employee.Employee, slot time.Time, busy map[string]map[string]struct{}) (bool, error) {
	if !e.IsAvailableAt(slot) {
		return false, nil
	}
	if set, ok := busy[calendar.SlotKey(slot)]; ok {
		if _, isBusy := set[e.ID]; isBusy {
			return false, nil
		}
	}
	return s.checker.ValidateAvailability(ctx, slot, serviceID, e.ID)
}
