package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appointly/appointment-backend/internal/cleanup"
	"github.com/appointly/appointment-backend/internal/pkg/response"
)

type Handler struct {
	worker *cleanup.Worker
	store  cleanup.Store
}

func NewHandler(worker *cleanup.Worker, store cleanup.Store) *Handler {
	return &Handler{worker: worker, store: store}
}

func (h *Handler) RunSweep(c *gin.Context) {
	result, err := h.worker.RunNow(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SweepResponse{
		ExpiredCount: result.ExpiredCount,
		OrderIDs:     result.OrderIDs,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Total:     stats.Total,
		Reserved:  stats.Reserved,
		Confirmed: stats.Confirmed,
		Expired:   stats.Expired,
	})
}
