package main

import (
	"context"
	"log"
	"time"

	"github.com/Govind-619/MenuSphere/config"
	"github.com/Govind-619/MenuSphere/routes"
	"github.com/Govind-619/MenuSphere/services"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {
	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	// Initialize logger
	if err := utils.InitLogger(cfg.LogDir); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		utils.LogError("Failed to connect to database: %v", err)
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.SeedAdmin(db, cfg); err != nil {
		log.Fatal("Failed to seed admin:", err)
	}
	if err := config.SeedPlans(db); err != nil {
		log.Fatal("Failed to seed plans:", err)
	}

	// Settings cache is optional
	var cache services.SettingsCache
	if cfg.RedisURL != "" {
		client, err := config.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			utils.LogError("Redis unavailable, settings will not be cached: %v", err)
		} else {
			defer client.Close()
			cache = services.NewRedisSettingsCache(client, 5*time.Minute)
			utils.LogInfo("Settings cache connected")
		}
	}

	mailer := utils.NewMailer(utils.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	notifier := services.NewEmailNotifier(mailer, cfg.FrontendURL)

	var gateway services.PaymentGateway
	if cfg.RazorpayKey != "" && cfg.RazorpaySecret != "" {
		gateway = services.NewRazorpayGateway(cfg.RazorpayKey, cfg.RazorpaySecret)
	} else {
		utils.LogInfo("Razorpay keys not set, paid checkouts are disabled")
	}

	settings := services.NewSettingsService(db, cache)
	promoCodes := services.NewPromoCodeService(db)
	commissions := services.NewCommissionService(db, settings)
	subscriptions := services.NewSubscriptionService(db, promoCodes, commissions, gateway, cfg.Currency)
	go sweepSubscriptions(subscriptions, cfg.SubscriptionSweep, cfg.PendingCheckoutTTL)

	router := routes.SetupRouter(cfg, db, routes.Services{
		Auth:          services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry),
		Settings:      settings,
		Affiliates:    services.NewAffiliateService(db, settings, notifier),
		Referrals:     services.NewReferralService(db, settings),
		Payouts:       services.NewPayoutService(db, notifier),
		PromoCodes:    promoCodes,
		Subscriptions: subscriptions,
		GoogleOAuth:   config.InitGoogleOAuth(cfg),
	})

	utils.LogInfo("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}

// sweepSubscriptions expires abandoned checkouts and lapsed subscriptions
func sweepSubscriptions(subscriptions *services.SubscriptionService, every, pendingTTL time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		if _, err := subscriptions.ExpireStale(context.Background(), pendingTTL); err != nil {
			utils.LogError("Subscription sweep failed: %v", err)
		}
	}
}
