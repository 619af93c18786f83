package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/MenuSphere/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Config holds all configuration for the application
type Config struct {
	Env  string
	Port string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret     string
	JWTExpiry     time.Duration
	SessionSecret string
	FrontendURL   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	RazorpayKey    string
	RazorpaySecret string
	Currency       string

	PendingCheckoutTTL time.Duration
	SubscriptionSweep  time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	RedisURL string

	AdminEmail    string
	AdminPassword string

	LogDir string
}

// LoadConfig loads configuration from the environment, with .env as an
// optional source
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file loaded: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", utils.DefaultPort)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "menusphere")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "menusphere.db")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("CURRENCY", "INR")
	v.SetDefault("PENDING_CHECKOUT_TTL", "24h")
	v.SetDefault("SUBSCRIPTION_SWEEP_INTERVAL", "15m")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("LOG_DIR", "logs")

	config := &Config{
		Env:                v.GetString("ENV"),
		Port:               v.GetString("PORT"),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSLMODE"),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTExpiry:          v.GetDuration("JWT_EXPIRY"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		FrontendURL:        strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  v.GetString("GOOGLE_CALLBACK_URL"),
		RazorpayKey:        v.GetString("RAZORPAY_KEY"),
		RazorpaySecret:     v.GetString("RAZORPAY_SECRET"),
		Currency:           strings.ToUpper(v.GetString("CURRENCY")),
		PendingCheckoutTTL: v.GetDuration("PENDING_CHECKOUT_TTL"),
		SubscriptionSweep:  v.GetDuration("SUBSCRIPTION_SWEEP_INTERVAL"),
		SMTPHost:           v.GetString("SMTP_HOST"),
		SMTPPort:           v.GetInt("SMTP_PORT"),
		SMTPUsername:       v.GetString("SMTP_USERNAME"),
		SMTPPassword:       v.GetString("SMTP_PASSWORD"),
		SMTPFrom:           v.GetString("SMTP_FROM"),
		RedisURL:           v.GetString("REDIS_URL"),
		AdminEmail:         v.GetString("ADMIN_EMAIL"),
		AdminPassword:      v.GetString("ADMIN_PASSWORD"),
		LogDir:             v.GetString("LOG_DIR"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.PendingCheckoutTTL <= 0 || c.SubscriptionSweep <= 0 {
		return fmt.Errorf("PENDING_CHECKOUT_TTL and SUBSCRIPTION_SWEEP_INTERVAL must be positive")
	}
	if c.SessionSecret == "" {
		c.SessionSecret = c.JWTSecret
	}
	return nil
}

// IsDevelopment reports whether the server runs locally
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "local"
}
