package config

import (
	"strings"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPlans are the plans created on first start
var DefaultPlans = []models.Plan{
	{ID: "starter-monthly", Name: "Starter", Description: "One menu, one location", Price: decimal.NewFromInt(499), IntervalMonths: 1, IsActive: true},
	{ID: "pro-monthly", Name: "Pro", Description: "Unlimited menus and QR codes", Price: decimal.NewFromInt(999), IntervalMonths: 1, IsActive: true},
	{ID: "pro-yearly", Name: "Pro (yearly)", Description: "Unlimited menus and QR codes, billed yearly", Price: decimal.NewFromInt(9990), IntervalMonths: 12, IsActive: true},
}

// SeedAdmin creates the admin user from configuration if it does not exist
func SeedAdmin(db *gorm.DB, config *Config) error {
	if config.AdminEmail == "" || config.AdminPassword == "" {
		utils.LogInfo("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hashedPassword, err := utils.HashPassword(config.AdminPassword)
	if err != nil {
		utils.LogError("Failed to hash admin password: %v", err)
		return err
	}

	admin := models.User{
		Email:    strings.ToLower(strings.TrimSpace(config.AdminEmail)),
		Password: hashedPassword,
		FullName: "Administrator",
		Role:     models.RoleAdmin,
	}
	if err := db.Where(models.User{Email: admin.Email}).Attrs(admin).FirstOrCreate(&admin).Error; err != nil {
		utils.LogError("Failed to create admin: %v", err)
		return err
	}
	utils.LogInfo("Admin user ready: %s", admin.Email)
	return nil
}

// SeedPlans inserts the default plans that are missing
func SeedPlans(db *gorm.DB) error {
	for _, plan := range DefaultPlans {
		p := plan
		if err := db.Where(models.Plan{ID: p.ID}).Attrs(p).FirstOrCreate(&p).Error; err != nil {
			utils.LogError("Failed to seed plan %s: %v", plan.ID, err)
			return err
		}
	}
	return nil
}
