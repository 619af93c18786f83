package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription statuses
const (
	SubscriptionStatusPending   = "PENDING"
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusCancelled = "CANCELLED"
	SubscriptionStatusExpired   = "EXPIRED"
)

// Plan is a subscription tier. ID is a stable slug such as "pro-monthly".
type Plan struct {
	ID             string          `gorm:"primaryKey;size:50" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IntervalMonths int             `gorm:"not null;default:1" json:"interval_months"`
	IsActive       bool            `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Subscription is a restaurant owner's purchase of a plan
type Subscription struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	PlanID            string          `gorm:"size:50;not null" json:"plan_id"`
	Plan              Plan            `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status            string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	OriginalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"original_amount"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	FinalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_amount"`
	Currency          string          `gorm:"size:3;not null" json:"currency"`
	PromoCodeID       *uint           `json:"promo_code_id"`
	TrialDays         int             `gorm:"not null;default:0" json:"trial_days"`
	RazorpayOrderID   *string         `gorm:"index" json:"razorpay_order_id"`
	RazorpayPaymentID *string         `json:"razorpay_payment_id"`
	StartsAt          *time.Time      `json:"starts_at"`
	EndsAt            *time.Time      `json:"ends_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
