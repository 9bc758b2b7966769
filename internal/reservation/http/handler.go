package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appointly/appointment-backend/internal/pkg/request"
	"github.com/appointly/appointment-backend/internal/pkg/response"
	"github.com/appointly/appointment-backend/internal/reservation"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Reserve(c *gin.Context) {
	var body ReserveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	items := make([]reservation.ReserveItem, len(body.Items))
	for i, item := range body.Items {
		items[i] = reservation.ReserveItem{
			ServiceID:   item.ServiceID,
			Slots:       item.Slots,
			EmployeeIDs: item.EmployeeIDs,
		}
	}

	result, err := h.service.Reserve(c.Request.Context(), body.CustomerID, items, body.TTLMinutes)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrNoItems), errors.Is(err, reservation.ErrMismatchedPairs):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			response.Error(c, err)
		}
		return
	}

	if !result.Valid {
		c.JSON(http.StatusConflict, NewReserveResponse(result))
		return
	}
	c.JSON(http.StatusCreated, NewReserveResponse(result))
}

func (h *Handler) Validate(c *gin.Context) {
	var query ValidateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	available, err := h.service.ValidateAvailability(c.Request.Context(), query.Slot, query.ServiceID, query.EmployeeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{Available: available})
}

func (h *Handler) Confirm(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	order, err := h.service.Confirm(c.Request.Context(), req.ID)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, reservation.ErrHoldExpired), errors.Is(err, reservation.ErrNotReserved):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			response.Error(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, NewOrderResponse(order))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewOrderResponse(order))
}

func (h *Handler) List(c *gin.Context) {
	var req ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := reservation.Filter{
		CustomerID: req.CustomerID,
		Status:     req.Status,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	orders, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = NewOrderResponse(o)
	}

	resp := response.NewPageResponse(items, req.Page, req.PageSize, total)
	c.JSON(http.StatusOK, resp)
}
