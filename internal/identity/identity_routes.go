package identity

import "github.com/gin-gonic/gin"

// RegisterRoutes expects r to already carry authentication and actor
// resolution.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/me", handler.Me)

	accounts := r.Group("/accounts")
	{
		accounts.GET("/:id/roles", handler.GetRoles)
		accounts.PUT("/:id/roles", handler.SetRoles)
		accounts.POST("/:id/block", handler.Block)
		accounts.PUT("/:id/profile", handler.UpdateProfile)
	}
}
