package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Promo code discount types
const (
	PromoTypePercentage = "PERCENTAGE"
	PromoTypeFixed      = "FIXED"
	PromoTypeFreeTrial  = "FREE_TRIAL"
)

// PromoCode is a subscription discount code. Code is stored upper-cased.
type PromoCode struct {
	ID              uint                        `gorm:"primaryKey" json:"id"`
	Code            string                      `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Type            string                      `gorm:"size:20;not null" json:"type"`
	DiscountValue   decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	Description     string                      `gorm:"size:500" json:"description"`
	ValidFrom       time.Time                   `gorm:"not null" json:"valid_from"`
	ValidUntil      *time.Time                  `json:"valid_until"`
	MaxUses         *int                        `json:"max_uses"`
	UsedCount       int                         `gorm:"not null;default:0" json:"used_count"`
	ApplicablePlans datatypes.JSONSlice[string] `json:"applicable_plans"`
	IsActive        bool                        `gorm:"not null;index" json:"is_active"`
	CreatedBy       *uint                       `json:"created_by"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// RestrictsPlans reports whether the code carries a plan allow-list
func (p PromoCode) RestrictsPlans() bool {
	return len(p.ApplicablePlans) > 0
}

// AllowsPlan reports whether planID is covered by the code
func (p PromoCode) AllowsPlan(planID string) bool {
	if !p.RestrictsPlans() {
		return true
	}
	for _, id := range p.ApplicablePlans {
		if id == planID {
			return true
		}
	}
	return false
}

// PromoCodeUsage records one redemption of a code by a user
type PromoCodeUsage struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	PromoCodeID    uint            `gorm:"not null;uniqueIndex:idx_promo_usage_code_user" json:"promo_code_id"`
	PromoCode      *PromoCode      `gorm:"foreignKey:PromoCodeID" json:"promo_code,omitempty"`
	UserID         uint            `gorm:"not null;uniqueIndex:idx_promo_usage_code_user;index" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SubscriptionID *uint           `json:"subscription_id"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_amount"`
	UsedAt         time.Time       `json:"used_at"`
}
