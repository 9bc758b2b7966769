package reservation

import (
	"fmt"
	"net/http"
	"time"

	"github.com/appointly/appointment-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "reservation order not found")
	ErrNoItems         = apperror.New(http.StatusBadRequest, "reservation must contain at least one item")
	ErrMismatchedPairs = apperror.New(http.StatusBadRequest, "item slot and employee lists must have equal length")
	ErrSlotConflict    = apperror.New(http.StatusConflict, "slot already reserved for employee")
	ErrNotReserved     = apperror.New(http.StatusConflict, "order is not in reserved state")
	ErrHoldExpired     = apperror.New(http.StatusConflict, "reservation hold has expired")
)

// Status is the reservation lifecycle state of an order. Reserved holds are
// time-boxed; cleanup moves stale ones to expired, which is terminal and kept
// for audit.
type Status string

const (
	StatusReserved  Status = "reserved"
	StatusConfirmed Status = "confirmed"
	StatusExpired   Status = "expired"
)

// Item is one line of an order: a service plus parallel slot/employee lists,
// where EmployeeIDs[i] covers Slots[i].
type Item struct {
	ServiceID   string
	Slots       []time.Time
	EmployeeIDs []string
}

// Pair is one decomposed (slot, employee) claim from an item.
type Pair struct {
	ServiceID  string
	EmployeeID string
	Slot       time.Time
}

// Pairs decomposes the item's parallel arrays into individual claims.
func (i Item) Pairs() ([]Pair, error) {
	if len(i.Slots) != len(i.EmployeeIDs) {
		return nil, fmt.Errorf("%w: %d slots, %d employees", ErrMismatchedPairs, len(i.Slots), len(i.EmployeeIDs))
	}
	pairs := make([]Pair, len(i.Slots))
	for idx, s := range i.Slots {
		pairs[idx] = Pair{
			ServiceID:  i.ServiceID,
			EmployeeID: i.EmployeeIDs[idx],
			Slot:       s.UTC(),
		}
	}
	return pairs, nil
}

// Order is a booking attempt with its reservation state. ExpiresAt is set
// only while the order is reserved.
type Order struct {
	ID         string
	CustomerID string
	Items      []Item
	Status     Status
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Pairs decomposes every item of the order.
func (o *Order) Pairs() ([]Pair, error) {
	if len(o.Items) == 0 {
		return nil, ErrNoItems
	}
	var pairs []Pair
	for _, item := range o.Items {
		p, err := item.Pairs()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p...)
	}
	return pairs, nil
}

// SlotReservation is the resolver-facing view of one live claim.
type SlotReservation struct {
	EmployeeID string
	Status     Status
	ExpiresAt  *time.Time
}

// Stats aggregates order counts by reservation status.
type Stats struct {
	Total     int `json:"total"`
	Reserved  int `json:"reserved"`
	Confirmed int `json:"confirmed"`
	Expired   int `json:"expired"`
}

// Filter defines parameters for listing orders.
type Filter struct {
	CustomerID string
	Status     string
	Page       int
	PageSize   int
}
