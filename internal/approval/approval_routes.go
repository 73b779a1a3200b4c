package approval

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	requests := r.Group("/requests")
	{
		requests.GET("", handler.List)
		requests.POST("", handler.Submit)
		requests.GET("/:id", handler.GetByID)
		requests.GET("/:id/history", handler.History)
		requests.POST("/:id/branch-approve", handler.BranchApprove)
		requests.POST("/:id/admin-approve", handler.AdminApprove)
		requests.POST("/:id/reject", handler.Reject)
	}
}
