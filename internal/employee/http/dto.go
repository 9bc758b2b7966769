package http

import (
	"time"

	"github.com/appointly/appointment-backend/internal/employee"
	"github.com/appointly/appointment-backend/internal/pkg/request"
)

// ListEmployeesRequest defines query parameters for listing employees.
type ListEmployeesRequest struct {
	request.ListParams
	ServiceID string `form:"service_id" binding:"omitempty,uuid"`
}

// Validate performs custom validation for ListEmployeesRequest.
func (r *ListEmployeesRequest) Validate() error {
	return nil
}

type EmployeeResponse struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	ServiceIDs      []string            `json:"service_ids"`
	Schedule        map[string][]string `json:"work_schedule"`
	AssignmentCount int                 `json:"assignment_count"`
	CreatedAt       time.Time           `json:"created_at"`
}

func NewResponse(e *employee.Employee) EmployeeResponse {
	schedule := make(map[string][]string, len(e.Schedule))
	for day, ranges := range e.Schedule {
		strs := make([]string, len(ranges))
		for i, r := range ranges {
			strs[i] = r.String()
		}
		schedule[day] = strs
	}

	serviceIDs := e.ServiceIDs
	if serviceIDs == nil {
		serviceIDs = []string{}
	}

	return EmployeeResponse{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		ServiceIDs:      serviceIDs,
		Schedule:        schedule,
		AssignmentCount: e.AssignmentCount,
		CreatedAt:       e.CreatedAt,
	}
}

type CreateRequest struct {
	Name       string              `json:"name" binding:"required,min=1,max=100"`
	Email      string              `json:"email" binding:"required,email"`
	ServiceIDs []string            `json:"service_ids" binding:"omitempty,dive,uuid"`
	Schedule   map[string][]string `json:"work_schedule"`
}

// ParseSchedule converts the wire schedule ("HH:MM-HH:MM" strings) into the
// domain representation.
func ParseSchedule(raw map[string][]string) (employee.WorkSchedule, error) {
	if raw == nil {
		return employee.WorkSchedule{}, nil
	}
	ws := make(employee.WorkSchedule, len(raw))
	for day, ranges := range raw {
		parsed := make([]employee.TimeRange, len(ranges))
		for i, s := range ranges {
			r, err := employee.ParseTimeRange(s)
			if err != nil {
				return nil, err
			}
			parsed[i] = r
		}
		ws[day] = parsed
	}
	return ws, nil
}

type UpdateRequest struct {
	Name       *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Email      *string              `json:"email" binding:"omitempty,email"`
	ServiceIDs *[]string            `json:"service_ids" binding:"omitempty,dive,uuid"`
	Schedule   *map[string][]string `json:"work_schedule"`
}
