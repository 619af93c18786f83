package models

import (
	"time"
)

// Referral links an affiliate partner to a user who registered through its code.
// A user can be attributed to a given affiliate only once.
type Referral struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	AffiliateID       uint       `gorm:"not null;uniqueIndex:idx_referrals_affiliate_user" json:"affiliate_id"`
	ReferredUserID    uint       `gorm:"not null;uniqueIndex:idx_referrals_affiliate_user;index" json:"referred_user_id"`
	ReferredUser      User       `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
	IPAddress         string     `json:"ip_address,omitempty"`
	UserAgent         string     `json:"user_agent,omitempty"`
	HasSubscribed     bool       `gorm:"not null;default:false" json:"has_subscribed"`
	FirstSubscription *time.Time `json:"first_subscription,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
