package routes

import (
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup, h handlers) {
	admin := router.Group("/admin")
	admin.Use(h.requireAuth, h.requireAdmin)
	{
		// Affiliate program
		affiliates := admin.Group("/affiliates")
		{
			affiliates.GET("", h.adminAffiliate.List)
			affiliates.PUT("/:id/status", h.adminAffiliate.UpdateStatus)
			affiliates.GET("/settings", h.adminAffiliate.GetSettings)
			affiliates.PUT("/settings", h.adminAffiliate.UpdateSettings)
			affiliates.GET("/stats", h.adminAffiliate.Stats)

			// Payouts
			affiliates.POST("/payouts", h.payouts.Create)
			affiliates.GET("/payouts", h.payouts.List)
			affiliates.GET("/payouts/export", h.payouts.Export)
			affiliates.PUT("/payouts/:id/status", h.payouts.UpdateStatus)
			affiliates.GET("/payouts/:id/statement", h.payouts.Statement)
		}

		// Promo codes
		promoCodes := admin.Group("/promo-codes")
		{
			promoCodes.POST("", h.promoCodes.Create)
			promoCodes.GET("", h.promoCodes.List)
			promoCodes.PUT("/:id", h.promoCodes.Update)
			promoCodes.DELETE("/:id", h.promoCodes.Delete)
			promoCodes.GET("/:id/usages", h.promoCodes.ListUsages)
		}
	}
}
