package booking

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/appointly/appointment-backend/internal/assignment"
	"github.com/appointly/appointment-backend/internal/pkg/apperror"
	"github.com/appointly/appointment-backend/internal/reservation"
)

var ErrNoItems = apperror.New(http.StatusBadRequest, "booking requires at least one item")

// Item is one service with the slots the customer wants.
type Item struct {
	ServiceID string
	Slots     []time.Time
}

// Result reports one booking attempt. When Valid is false the slots in
// ConflictingSlots were claimed between assignment and reservation and
// nothing was persisted.
type Result struct {
	Valid            bool
	Order            *reservation.Order
	Assignments      map[string][]assignment.Assignment
	ConflictingSlots []time.Time
}

type Service interface {
	// Book assigns an employee to every requested slot, then places a
	// time-boxed hold on the whole set. Assignment and hold succeed or fail
	// together per attempt.
	Book(ctx context.Context, customerID string, items []Item, ttlMinutes int) (*Result, error)
}

type service struct {
	assigner     assignment.Service
	reservations reservation.Service
	logger       *zap.Logger
}

func NewService(assigner assignment.Service, reservations reservation.Service, logger *zap.Logger) Service {
	return &service{
		assigner:     assigner,
		reservations: reservations,
		logger:       logger,
	}
}

func (s *service) Book(ctx context.Context, customerID string, items []Item, ttlMinutes int) (*Result, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	reserveItems := make([]reservation.ReserveItem, 0, len(items))
	assignments := make(map[string][]assignment.Assignment, len(items))

	for _, item := range items {
		assigned, err := s.assigner.Assign(ctx, item.ServiceID, item.Slots)
		if err != nil {
			return nil, err
		}
		assignments[item.ServiceID] = assigned

		ri := reservation.ReserveItem{ServiceID: item.ServiceID}
		for _, a := range assigned {
			for _, slot := range a.Slots {
				ri.Slots = append(ri.Slots, slot)
				ri.EmployeeIDs = append(ri.EmployeeIDs, a.Employee.ID)
			}
		}
		reserveItems = append(reserveItems, ri)
	}

	reserved, err := s.reservations.Reserve(ctx, customerID, reserveItems, ttlMinutes)
	if err != nil {
		return nil, err
	}

	if !reserved.Valid {
		s.logger.Info("booking lost race for slots",
			zap.String("customer_id", customerID),
			zap.Int("conflicting_slots", len(reserved.ConflictingSlots)),
		)
		return &Result{Valid: false, ConflictingSlots: reserved.ConflictingSlots}, nil
	}

	return &Result{
		Valid:       true,
		Order:       reserved.Order,
		Assignments: assignments,
	}, nil
}
