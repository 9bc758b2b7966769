package http

import (
	"time"

	"github.com/appointly/appointment-backend/internal/pkg/request"
	"github.com/appointly/appointment-backend/internal/reservation"
)

type ItemBody struct {
	ServiceID   string      `json:"service_id" binding:"required,uuid"`
	Slots       []time.Time `json:"slots" binding:"required,min=1"`
	EmployeeIDs []string    `json:"employee_ids" binding:"required,min=1,dive,uuid"`
}

type ReserveBody struct {
	CustomerID string     `json:"customer_id" binding:"required,uuid"`
	Items      []ItemBody `json:"items" binding:"required,min=1,dive"`
	TTLMinutes int        `json:"ttl_minutes" binding:"omitempty,min=1,max=1440"`
}

type ValidateQuery struct {
	Slot       time.Time `form:"slot" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ServiceID  string    `form:"service_id" binding:"required,uuid"`
	EmployeeID string    `form:"employee_id" binding:"required,uuid"`
}

// ListOrdersRequest defines query parameters for listing reservation orders.
type ListOrdersRequest struct {
	request.ListParams
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=reserved confirmed expired"`
}

type ItemResponse struct {
	ServiceID   string      `json:"service_id"`
	Slots       []time.Time `json:"slots"`
	EmployeeIDs []string    `json:"employee_ids"`
}

type OrderResponse struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customer_id"`
	Items      []ItemResponse `json:"items"`
	Status     string         `json:"status"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func NewOrderResponse(o *reservation.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemResponse{
			ServiceID:   item.ServiceID,
			Slots:       item.Slots,
			EmployeeIDs: item.EmployeeIDs,
		}
	}
	return OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Items:      items,
		Status:     string(o.Status),
		ExpiresAt:  o.ExpiresAt,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

type ReserveResponse struct {
	Valid            bool           `json:"valid"`
	Order            *OrderResponse `json:"order,omitempty"`
	ConflictingSlots []time.Time    `json:"conflicting_slots,omitempty"`
}

func NewReserveResponse(result *reservation.ReserveResult) ReserveResponse {
	resp := ReserveResponse{
		Valid:            result.Valid,
		ConflictingSlots: result.ConflictingSlots,
	}
	if result.Order != nil {
		order := NewOrderResponse(result.Order)
		resp.Order = &order
	}
	return resp
}

type ValidateResponse struct {
	Available bool `json:"available"`
}
