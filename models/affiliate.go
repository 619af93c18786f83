package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Affiliate partner statuses
const (
	AffiliateStatusPending   = "PENDING"
	AffiliateStatusActive    = "ACTIVE"
	AffiliateStatusSuspended = "SUSPENDED"
	AffiliateStatusBanned    = "BANNED"
)

// Payout statuses
const (
	PayoutStatusPending    = "PENDING"
	PayoutStatusProcessing = "PROCESSING"
	PayoutStatusCompleted  = "COMPLETED"
	PayoutStatusFailed     = "FAILED"
	PayoutStatusCancelled  = "CANCELLED"
)

// Payout methods
const (
	PayoutMethodBankTransfer = "BANK_TRANSFER"
	PayoutMethodPaypal       = "PAYPAL"
	PayoutMethodOther        = "OTHER"
)

// AffiliatePartner is the affiliate account of a user.
// TotalEarnings always equals PendingEarnings + PaidEarnings.
type AffiliatePartner struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ReferralCode    string          `gorm:"size:16;not null;uniqueIndex" json:"referral_code"`
	Status          string          `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	BankName        *string         `json:"bank_name"`
	AccountHolder   *string         `json:"account_holder"`
	IBAN            *string         `gorm:"column:iban" json:"iban"`
	TotalReferrals  int             `gorm:"not null;default:0" json:"total_referrals"`
	TotalEarnings   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_earnings"`
	PendingEarnings decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"pending_earnings"`
	PaidEarnings    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"paid_earnings"`
	ApprovedBy      *uint           `json:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AffiliateCommission is one credited subscription event. Amount and Percentage
// are frozen at creation time.
type AffiliateCommission struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	AffiliateID        uint            `gorm:"not null;index" json:"affiliate_id"`
	ReferredUserID     uint            `gorm:"not null;index" json:"referred_user_id"`
	SubscriptionID     uint            `gorm:"not null;uniqueIndex" json:"subscription_id"`
	SubscriptionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subscription_amount"`
	Percentage         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Amount             decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	IsPaid             bool            `gorm:"not null;default:false;index" json:"is_paid"`
	PaidAt             *time.Time      `json:"paid_at"`
	PayoutID           *uint           `gorm:"index" json:"payout_id"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// AffiliatePayout settles a batch of commissions for one affiliate
type AffiliatePayout struct {
	ID            uint                      `gorm:"primaryKey" json:"id"`
	AffiliateID   uint                      `gorm:"not null;index" json:"affiliate_id"`
	Affiliate     AffiliatePartner          `gorm:"foreignKey:AffiliateID" json:"affiliate,omitempty"`
	Amount        decimal.Decimal           `gorm:"type:decimal(12,2);not null" json:"amount"`
	CommissionIDs datatypes.JSONSlice[uint] `json:"commission_ids"`
	Method        string                    `gorm:"size:20;not null" json:"method"`
	Status        string                    `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	BankName      *string                   `json:"bank_name"`
	AccountHolder *string                   `json:"account_holder"`
	IBAN          *string                   `gorm:"column:iban" json:"iban"`
	TransactionID *string                   `json:"transaction_id"`
	Notes         string                    `json:"notes"`
	CreatedBy     uint                      `json:"created_by"`
	ProcessedBy   *uint                     `json:"processed_by"`
	ProcessedAt   *time.Time                `json:"processed_at"`
	Commissions   []AffiliateCommission     `gorm:"foreignKey:PayoutID" json:"commissions,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// AffiliateSettings holds the program-wide toggles. Only one row exists.
type AffiliateSettings struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	IsEnabled       bool            `gorm:"not null" json:"is_enabled"`
	CommissionRate  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:10" json:"commission_rate"`
	MinimumPayout   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:100" json:"minimum_payout"`
	CookieDuration  int             `gorm:"not null;default:30" json:"cookie_duration"`
	RequireApproval bool            `gorm:"not null" json:"require_approval"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DefaultAffiliateSettings returns the settings used when none are stored yet
func DefaultAffiliateSettings() AffiliateSettings {
	return AffiliateSettings{
		IsEnabled:       true,
		CommissionRate:  decimal.NewFromInt(10),
		MinimumPayout:   decimal.NewFromInt(100),
		CookieDuration:  30,
		RequireApproval: true,
	}
}
