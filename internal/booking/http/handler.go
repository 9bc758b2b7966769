package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appointly/appointment-backend/internal/assignment"
	"github.com/appointly/appointment-backend/internal/booking"
	"github.com/appointly/appointment-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Book(c *gin.Context) {
	var body BookRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	result, err := h.service.Book(c.Request.Context(), body.CustomerID, toItems(body.Items), body.TTLMinutes)
	if err != nil {
		var unassignable *assignment.UnassignableSlotsError
		switch {
		case errors.As(err, &unassignable):
			c.JSON(http.StatusConflict, newUnassignableResponse(unassignable))
		case errors.Is(err, assignment.ErrNoCapableEmployees):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, assignment.ErrNoSlots), errors.Is(err, booking.ErrNoItems):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			response.Error(c, err)
		}
		return
	}

	if !result.Valid {
		c.JSON(http.StatusConflict, NewBookResponse(result))
		return
	}

	c.JSON(http.StatusCreated, NewBookResponse(result))
}
