package http

import (
	"time"

	"github.com/appointly/appointment-backend/internal/assignment"
	"github.com/appointly/appointment-backend/internal/booking"
	reservationHttp "github.com/appointly/appointment-backend/internal/reservation/http"
)

type ItemBody struct {
	ServiceID string      `json:"service_id" binding:"required,uuid"`
	Slots     []time.Time `json:"slots" binding:"required,min=1"`
}

type BookRequest struct {
	CustomerID string     `json:"customer_id" binding:"required,uuid"`
	Items      []ItemBody `json:"items" binding:"required,min=1,dive"`
	TTLMinutes int        `json:"ttl_minutes" binding:"omitempty,min=1,max=1440"`
}

type AssignmentResponse struct {
	EmployeeID   string      `json:"employee_id"`
	EmployeeName string      `json:"employee_name"`
	Slots        []time.Time `json:"slots"`
}

type BookResponse struct {
	Valid            bool                             `json:"valid"`
	Order            *reservationHttp.OrderResponse   `json:"order,omitempty"`
	Assignments      map[string][]AssignmentResponse  `json:"assignments,omitempty"`
	ConflictingSlots []time.Time                      `json:"conflicting_slots,omitempty"`
	UnassignedSlots  []time.Time                      `json:"unassigned_slots,omitempty"`
}

func NewBookResponse(result *booking.Result) BookResponse {
	resp := BookResponse{
		Valid:            result.Valid,
		ConflictingSlots: result.ConflictingSlots,
	}
	if result.Order != nil {
		order := reservationHttp.NewOrderResponse(result.Order)
		resp.Order = &order
	}
	if len(result.Assignments) > 0 {
		resp.Assignments = make(map[string][]AssignmentResponse, len(result.Assignments))
		for serviceID, assigned := range result.Assignments {
			out := make([]AssignmentResponse, len(assigned))
			for i, a := range assigned {
				out[i] = AssignmentResponse{
					EmployeeID:   a.Employee.ID,
					EmployeeName: a.Employee.Name,
					Slots:        a.Slots,
				}
			}
			resp.Assignments[serviceID] = out
		}
	}
	return resp
}

func toItems(bodies []ItemBody) []booking.Item {
	items := make([]booking.Item, len(bodies))
	for i, b := range bodies {
		items[i] = booking.Item{ServiceID: b.ServiceID, Slots: b.Slots}
	}
	return items
}

func newUnassignableResponse(err *assignment.UnassignableSlotsError) BookResponse {
	return BookResponse{Valid: false, UnassignedSlots: err.Slots}
}
