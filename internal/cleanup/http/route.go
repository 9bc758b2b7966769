package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the operational endpoints. All of them require
// system admin.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, sysAdminMiddleware gin.HandlerFunc) {
	admin := g.Group("/admin")

	admin.Use(authMiddleware, sysAdminMiddleware)
	{
		admin.POST("/cleanup/run", h.RunSweep)
		admin.GET("/reservations/stats", h.GetStats)
	}
}
