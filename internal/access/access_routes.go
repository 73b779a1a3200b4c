package access

import "github.com/gin-gonic/gin"

// RegisterRoutes expects r to already carry authentication and actor
// resolution.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.POST("/access/check", handler.Check)
}
