package scope

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/accounts/:id/scope", handler.GetScope)
}
