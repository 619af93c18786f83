package routes

import (
	"github.com/gin-gonic/gin"
)

// initUserRoutes initializes the public and restaurant-owner routes
func initUserRoutes(router *gin.RouterGroup, h handlers) {
	// Public routes
	router.POST("/auth/register", h.auth.Register)
	router.POST("/auth/login", h.auth.Login)
	router.GET("/plans", h.subscriptions.ListPlans)
	router.GET("/promo-codes/validate/:code", h.optionalAuth, h.promoCodes.Validate)

	// Protected routes
	user := router.Group("")
	user.Use(h.requireAuth)
	{
		affiliates := user.Group("/affiliates")
		{
			affiliates.POST("/apply", h.affiliates.Apply)
			affiliates.GET("/me", h.affiliates.GetMine)
			affiliates.GET("/me/link", h.affiliates.GetLink)
			affiliates.GET("/me/referrals", h.affiliates.ListReferrals)
			affiliates.GET("/me/commissions", h.affiliates.ListCommissions)
			affiliates.PUT("/me/bank-info", h.affiliates.UpdateBankInfo)
		}

		promoCodes := user.Group("/promo-codes")
		{
			promoCodes.POST("/apply", h.promoCodes.Apply)
			promoCodes.GET("/my-usages", h.promoCodes.MyUsages)
		}

		subscriptions := user.Group("/subscriptions")
		{
			subscriptions.GET("", h.subscriptions.ListMine)
			subscriptions.POST("/checkout", h.subscriptions.Checkout)
			subscriptions.POST("/verify", h.subscriptions.Verify)
			subscriptions.POST("/:id/cancel", h.subscriptions.Cancel)
		}
	}
}
