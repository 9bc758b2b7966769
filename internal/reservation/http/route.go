package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers reservation routes. The validate endpoint is the
// final re-check the payment flow performs before capturing funds.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/reservations")

	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/validate", h.Validate)
		group.GET("/:id", h.Get)
		group.POST("", h.Reserve)
		group.POST("/:id/confirm", h.Confirm)
	}
}
