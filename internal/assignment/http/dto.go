package http

import (
	"time"

	"github.com/appointly/appointment-backend/internal/assignment"
)

type PlanRequest struct {
	ServiceID string      `json:"service_id" binding:"required,uuid"`
	Slots     []time.Time `json:"slots" binding:"required,min=1"`
}

type AssignmentResponse struct {
	EmployeeID   string      `json:"employee_id"`
	EmployeeName string      `json:"employee_name"`
	Slots        []time.Time `json:"slots"`
}

type PlanResponse struct {
	Valid             bool                 `json:"valid"`
	Assignments       []AssignmentResponse `json:"assignments,omitempty"`
	UnassignableSlots []time.Time          `json:"unassignable_slots,omitempty"`
}

func NewPlanResponse(assigned []assignment.Assignment) PlanResponse {
	out := make([]AssignmentResponse, len(assigned))
	for i, a := range assigned {
		out[i] = AssignmentResponse{
			EmployeeID:   a.Employee.ID,
			EmployeeName: a.Employee.Name,
			Slots:        a.Slots,
		}
	}
	return PlanResponse{Valid: true, Assignments: out}
}
