package employment

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/accounts/:id/employment", handler.Get)
	r.PUT("/accounts/:id/employment", handler.Assign)
	r.GET("/branches/:id/employments", handler.ListByBranch)
}
