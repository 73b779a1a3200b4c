package branch

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	branches := r.Group("/branches")
	{
		branches.GET("", handler.GetOptions)
		branches.GET("/:id", handler.GetByID)
	}
}
