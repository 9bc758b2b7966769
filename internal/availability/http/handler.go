package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appointly/appointment-backend/internal/availability"
	"github.com/appointly/appointment-backend/internal/pkg/response"
)

type Handler struct {
	resolver availability.Resolver
}

func NewHandler(resolver availability.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) GetAvailability(c *gin.Context) {
	var query GetAvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	result, err := h.resolver.GetAvailableSlots(c.Request.Context(), query.Date, query.ServiceID, query.GraceHours)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ToAvailabilityResponse(query.Date, query.ServiceID, result))
}
