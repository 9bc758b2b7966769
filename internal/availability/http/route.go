package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the public availability endpoint.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/availability", h.GetAvailability)
}
