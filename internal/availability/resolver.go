package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/calendar"
	"github.com/appointly/appointment-backend/internal/catalog"
	"github.com/appointly/appointment-backend/internal/employee"
	"github.com/appointly/appointment-backend/internal/reservation"
	"github.com/appointly/appointment-backend/internal/slot"
)

const DefaultGraceHours = 24

// Result is the public availability view for one date and service.
// AvailableSlots keep slot-generation order; BookedSlots are sorted
// ascending. Slots with no on-shift staff appear in neither list.
type Result struct {
	AvailableSlots      []time.Time
	BookedSlots         []time.Time
	SlotDurationMinutes int
	Warning             string
}

// Directory is the slice of the employee service the resolver needs.
type Directory interface {
	FindCapable(ctx context.Context, serviceID string) ([]*employee.Employee, error)
}

// Catalog resolves service definitions.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*catalog.Service, error)
}

// ReservationSource is the reservation store's range lookup.
type ReservationSource interface {
	ReservationsInRange(ctx context.Context, from, to time.Time, serviceID string) (map[string][]reservation.SlotReservation, error)
}

type Resolver interface {
	// GetAvailableSlots resolves the bookable view for the date. graceHours
	// <= 0 selects the default minimum lead time.
	GetAvailableSlots(ctx context.Context, date time.Time, serviceID string, graceHours int) (*Result, error)
}

type resolver struct {
	services     Catalog
	directory    Directory
	reservations ReservationSource
	calendar     calendar.Calendar
	defaultGrace int
	logger       *zap.Logger
	now          func() time.Time
}

// NewResolver builds the availability resolver. defaultGraceHours <= 0
// selects the package default.
func NewResolver(services Catalog, directory Directory, reservations ReservationSource, cal calendar.Calendar, defaultGraceHours int, logger *zap.Logger) Resolver {
	if defaultGraceHours <= 0 {
		defaultGraceHours = DefaultGraceHours
	}
	return &resolver{
		services:     services,
		directory:    directory,
		reservations: reservations,
		calendar:     cal,
		defaultGrace: defaultGraceHours,
		logger:       logger,
		now:          time.Now,
	}
}

func (r *resolver) GetAvailableSlots(ctx context.Context, date time.Time, serviceID string, graceHours int) (*Result, error) {
	svc, err := r.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	return strategyFor(r, svc).Resolve(ctx, date, svc, graceHours)
}

// resolveCommon carries the shared slot/candidate plumbing; the strategies
// differ only in which busy sources they consult.
func (r *resolver) resolveCommon(ctx context.Context, date time.Time, svc *catalog.Service, graceHours int, useInternal bool) (*Result, error) {
	result := &Result{
		AvailableSlots:      []time.Time{},
		BookedSlots:         []time.Time{},
		SlotDurationMinutes: svc.DurationMinutes,
	}

	now := r.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	// Past dates produce an empty result with a warning, never an error.
	if dayStart.Before(today) {
		result.Warning = "requested date is in the past"
		return result, nil
	}

	candidates, err := r.directory.FindCapable(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		result.Warning = fmt.Sprintf("no employees can fulfill service %s", svc.ID)
		return result, nil
	}

	allSlots, err := slot.Generate(dayStart, svc.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if graceHours <= 0 {
		graceHours = r.defaultGrace
	}
	cutoff := now.Add(time.Duration(graceHours) * time.Hour)
	slots := slot.FilterBookable(allSlots, cutoff)

	dayEnd := dayStart.AddDate(0, 0, 1)

	externalBusy, degraded := r.fetchExternalBusy(ctx, dayStart, dayEnd, candidates)
	if degraded {
		result.Warning = "external calendar unavailable; availability reflects working hours and internal reservations only"
	}

	var internalBusy map[string][]reservation.SlotReservation
	if useInternal {
		internalBusy, err = r.reservations.ReservationsInRange(ctx, dayStart, dayEnd, svc.ID)
		if err != nil {
			return nil, err
		}
	}

	for _, s := range slots {
		key := calendar.SlotKey(s)

		var onShift, free int
		for _, e := range candidates {
			if !e.IsAvailableAt(s) {
				continue
			}
			onShift++
			if r.employeeBusy(e.ID, key, externalBusy, internalBusy) {
				continue
			}
			free++
		}

		switch {
		case onShift == 0:
			// No staffing at all: the slot is absent from both lists. Only
			// slots where staffing existed are reported as booked.
		case free > 0:
			result.AvailableSlots = append(result.AvailableSlots, s)
		default:
			result.BookedSlots = append(result.BookedSlots, s)
		}
	}

	sort.Slice(result.BookedSlots, func(i, j int) bool {
		return result.BookedSlots[i].Before(result.BookedSlots[j])
	})

	return result, nil
}

func (r *resolver) fetchExternalBusy(ctx context.Context, from, to time.Time, candidates []*employee.Employee) (map[string]map[string]struct{}, bool) {
	booked, err := r.calendar.GetBookedSlots(ctx, from, to, candidates)
	if err != nil {
		if !errors.Is(err, calendar.ErrUnavailable) {
			r.logger.Warn("external calendar lookup failed", zap.Error(err))
		}
		return nil, true
	}

	busy := make(map[string]map[string]struct{}, len(booked))
	for key, entries := range booked {
		set := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			set[entry.EmployeeID] = struct{}{}
		}
		busy[key] = set
	}
	return busy, false
}

func (r *resolver) employeeBusy(employeeID, slotKey string, externalBusy map[string]map[string]struct{}, internalBusy map[string][]reservation.SlotReservation) bool {
	if set, ok := externalBusy[slotKey]; ok {
		if _, busy := set[employeeID]; busy {
			return true
		}
	}
	for _, sr := range internalBusy[slotKey] {
		if sr.EmployeeID == employeeID {
			return true
		}
	}
	return false
}
