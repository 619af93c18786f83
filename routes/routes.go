package routes

import (
	"net/http"
	"time"

	"github.com/Govind-619/MenuSphere/config"
	"github.com/Govind-619/MenuSphere/controllers"
	"github.com/Govind-619/MenuSphere/middleware"
	"github.com/Govind-619/MenuSphere/services"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// Services is everything the HTTP layer calls into
type Services struct {
	Auth          *services.AuthService
	Settings      *services.SettingsService
	Affiliates    *services.AffiliateService
	Referrals     *services.ReferralService
	Payouts       *services.PayoutService
	PromoCodes    *services.PromoCodeService
	Subscriptions *services.SubscriptionService
	GoogleOAuth   *oauth2.Config
}

type handlers struct {
	auth           *controllers.AuthController
	affiliates     *controllers.AffiliateController
	adminAffiliate *controllers.AdminAffiliateController
	payouts        *controllers.PayoutController
	promoCodes     *controllers.PromoCodeController
	subscriptions  *controllers.SubscriptionController

	requireAuth  gin.HandlerFunc
	optionalAuth gin.HandlerFunc
	requireAdmin gin.HandlerFunc
}

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(cfg *config.Config, db *gorm.DB, svc Services) *gin.Engine {
	router := gin.New()
	secure := !cfg.IsDevelopment()

	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		MaxAge:   10 * 60,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("menusphere", store))

	// Any landing request carrying ?ref= installs the attribution cookie
	router.Use(middleware.TrackReferral(svc.Referrals, secure))

	h := handlers{
		auth:           controllers.NewAuthController(svc.Auth, svc.Referrals, svc.GoogleOAuth, cfg.FrontendURL, secure),
		affiliates:     controllers.NewAffiliateController(svc.Affiliates, cfg.FrontendURL),
		adminAffiliate: controllers.NewAdminAffiliateController(svc.Affiliates, svc.Settings),
		payouts:        controllers.NewPayoutController(svc.Payouts, cfg.Currency),
		promoCodes:     controllers.NewPromoCodeController(svc.PromoCodes),
		subscriptions:  controllers.NewSubscriptionController(svc.Subscriptions),
		requireAuth:    middleware.AuthMiddleware(db, cfg.JWTSecret),
		optionalAuth:   middleware.OptionalAuthMiddleware(db, cfg.JWTSecret),
		requireAdmin:   middleware.AdminMiddleware(),
	}

	router.GET("/health", func(c *gin.Context) {
		utils.Success(c, "OK", gin.H{"app": utils.AppName, "version": utils.APIVersion})
	})

	// Auth routes (for OAuth)
	auth := router.Group("/auth")
	{
		auth.GET("/google/login", h.auth.GoogleLogin)
		auth.GET("/google/callback", h.auth.GoogleCallback)
	}

	// API version group
	api := router.Group("/" + utils.APIVersion)
	{
		initUserRoutes(api, h)
		initAdminRoutes(api, h)
	}

	return router
}
