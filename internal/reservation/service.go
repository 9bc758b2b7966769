package reservation

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
)

const DefaultTTLMinutes = 30

type ReserveItem struct {
	ServiceID   string
	Slots       []time.Time
	EmployeeIDs []string
}

// ReserveResult reports the outcome of a booking attempt. When Valid is
// false nothing was written and ConflictingSlots lists the claims that were
// already taken.
type ReserveResult struct {
	Valid            bool
	Order            *Order
	ConflictingSlots []time.Time
}

type Service interface {
	// ValidateAvailability reports whether the (slot, employee) pair is free
	// of confirmed reservations and live holds. Used by the resolver and as
	// the final re-check before payment.
	ValidateAvailability(ctx context.Context, slot time.Time, serviceID, employeeID string) (bool, error)

	// Reserve places a time-boxed hold on every (slot, employee) pair across
	// all items, all-or-nothing. ttlMinutes <= 0 selects the default TTL.
	Reserve(ctx context.Context, customerID string, items []ReserveItem, ttlMinutes int) (*ReserveResult, error)

	// Confirm promotes a live hold; the payment collaborator calls this once
	// the order is finalized.
	Confirm(ctx context.Context, id string) (*Order, error)

	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter Filter) ([]*Order, int, error)

	// ReservationsInRange is the resolver's lookup over live claims.
	ReservationsInRange(ctx context.Context, from, to time.Time, serviceID string) (map[string][]SlotReservation, error)

	// ExpireStale sweeps overdue holds, returning the count and order ids.
	ExpireStale(ctx context.Context) (int, []string, error)

	Stats(ctx context.Context) (Stats, error)
}

type service struct {
	repo       Repository
	defaultTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(repo Repository, defaultTTL time.Duration, logger *zap.Logger) Service {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTLMinutes * time.Minute
	}
	return &service{
		repo:       repo,
		defaultTTL: defaultTTL,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *service) ValidateAvailability(ctx context.Context, slot time.Time, serviceID, employeeID string) (bool, error) {
	pair := Pair{ServiceID: serviceID, EmployeeID: employeeID, Slot: slot.UTC()}
	conflicts, err := s.repo.FindConflicts(ctx, []Pair{pair}, "", s.now().UTC())
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

func (s *service) Reserve(ctx context.Context, customerID string, items []ReserveItem, ttlMinutes int) (*ReserveResult, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	order := &Order{
		CustomerID: customerID,
		Status:     StatusReserved,
	}
	for _, item := range items {
		order.Items = append(order.Items, Item{
			ServiceID:   item.ServiceID,
			Slots:       item.Slots,
			EmployeeIDs: item.EmployeeIDs,
		})
	}

	pairs, err := order.Pairs()
	if err != nil {
		return nil, err
	}

	// A duplicate pair inside the request conflicts with itself.
	if dup := duplicatePairs(pairs); len(dup) > 0 {
		return &ReserveResult{Valid: false, ConflictingSlots: uniqueSlots(dup)}, nil
	}

	now := s.now().UTC()
	conflicts, err := s.repo.FindConflicts(ctx, pairs, customerID, now)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		s.logger.Info("reservation rejected, slots already claimed",
			zap.String("customer_id", customerID),
			zap.Int("conflicts", len(conflicts)))
		return &ReserveResult{Valid: false, ConflictingSlots: uniqueSlots(conflicts)}, nil
	}

	ttl := s.defaultTTL
	if ttlMinutes > 0 {
		ttl = time.Duration(ttlMinutes) * time.Minute
	}
	expiresAt := now.Add(ttl)
	order.ExpiresAt = &expiresAt

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, ErrSlotConflict) {
			// Lost a race with a concurrent booking; the unique index caught
			// what the pre-check missed. Report the winner's claims.
			conflicts, findErr := s.repo.FindConflicts(ctx, pairs, customerID, s.now().UTC())
			if findErr != nil || len(conflicts) == 0 {
				conflicts = pairs
			}
			s.logger.Info("reservation lost slot race",
				zap.String("customer_id", customerID),
				zap.Int("conflicts", len(conflicts)))
			return &ReserveResult{Valid: false, ConflictingSlots: uniqueSlots(conflicts)}, nil
		}
		return nil, err
	}

	s.logger.Info("reservation placed",
		zap.String("order_id", order.ID),
		zap.String("customer_id", customerID),
		zap.Int("pairs", len(pairs)),
		zap.Time("expires_at", expiresAt))

	return &ReserveResult{Valid: true, Order: order}, nil
}

func duplicatePairs(pairs []Pair) []Pair {
	type key struct {
		employeeID string
		slot       time.Time
	}
	seen := make(map[key]struct{}, len(pairs))
	var dup []Pair
	for _, p := range pairs {
		k := key{employeeID: p.EmployeeID, slot: p.Slot}
		if _, ok := seen[k]; ok {
			dup = append(dup, p)
			continue
		}
		seen[k] = struct{}{}
	}
	return dup
}

func uniqueSlots(pairs []Pair) []time.Time {
	seen := make(map[time.Time]struct{}, len(pairs))
	var slots []time.Time
	for _, p := range pairs {
		if _, ok := seen[p.Slot]; ok {
			continue
		}
		seen[p.Slot] = struct{}{}
		slots = append(slots, p.Slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}

func (s *service) Confirm(ctx context.Context, id string) (*Order, error) {
	order, err := s.repo.Confirm(ctx, id, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation confirmed", zap.String("order_id", id))
	return order, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Order, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ReservationsInRange(ctx context.Context, from, to time.Time, serviceID string) (map[string][]SlotReservation, error) {
	return s.repo.GetReservationsInRange(ctx, from, to, serviceID, s.now().UTC())
}

func (s *service) ExpireStale(ctx context.Context) (int, []string, error) {
	ids, err := s.repo.ExpireStale(ctx, s.now().UTC())
	if err != nil {
		return 0, nil, err
	}
	return len(ids), ids, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.CountByStatus(ctx)
}
