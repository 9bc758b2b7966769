package http

import (
	"time"

	"github.com/appointly/appointment-backend/internal/catalog"
	"github.com/appointly/appointment-backend/internal/pkg/request"
)

// ListServicesRequest defines query parameters for listing services.
type ListServicesRequest struct {
	request.ListParams
	Active *bool `form:"active"`
}

// Validate performs custom validation for ListServicesRequest.
func (r *ListServicesRequest) Validate() error {
	return nil
}

type ServiceResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Strategy        string    `json:"strategy"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewResponse(svc *catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:              svc.ID,
		Name:            svc.Name,
		Description:     svc.Description,
		DurationMinutes: svc.DurationMinutes,
		Strategy:        string(svc.Strategy),
		Active:          svc.Active,
		CreatedAt:       svc.CreatedAt,
	}
}

type CreateRequest struct {
	Name            string `json:"name" binding:"required,min=1,max=100"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"omitempty,min=1,max=60"`
	Strategy        string `json:"strategy" binding:"omitempty,oneof=standard external"`
}

// Validate performs custom validation for CreateRequest.
func (r *CreateRequest) Validate() error {
	return nil
}

type UpdateRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description     *string `json:"description"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=1,max=60"`
	Strategy        *string `json:"strategy" binding:"omitempty,oneof=standard external"`
	Active          *bool   `json:"active"`
}

// Validate performs custom validation for UpdateRequest.
func (r *UpdateRequest) Validate() error {
	return nil
}
