package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appointly/appointment-backend/internal/assignment"
	"github.com/appointly/appointment-backend/internal/pkg/response"
)

type Handler struct {
	service assignment.Service
}

func NewHandler(service assignment.Service) *Handler {
	return &Handler{service: service}
}

// Plan previews which employees would cover the requested slots without
// placing a hold or advancing the round-robin counters.
func (h *Handler) Plan(c *gin.Context) {
	var body PlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	assigned, err := h.service.Plan(c.Request.Context(), body.ServiceID, body.Slots)
	if err != nil {
		var unassignable *assignment.UnassignableSlotsError
		if errors.As(err, &unassignable) {
			c.JSON(http.StatusConflict, PlanResponse{Valid: false, UnassignableSlots: unassignable.Slots})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPlanResponse(assigned))
}
