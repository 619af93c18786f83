package services

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errCommissionExists = errors.New("commission already recorded")

// CommissionService credits affiliates for subscriptions of referred users
type CommissionService struct {
	db       *gorm.DB
	settings *SettingsService
	now      func() time.Time
}

// NewCommissionService creates a CommissionService
func NewCommissionService(db *gorm.DB, settings *SettingsService) *CommissionService {
	return &CommissionService{db: db, settings: settings, now: time.Now}
}

// OnSubscriptionCreated records the commission owed for subscriptionID.
// It returns nil, nil when no commission applies. A repeated call for the same
// subscription returns the existing commission without crediting again.
func (s *CommissionService) OnSubscriptionCreated(ctx context.Context, userID, subscriptionID uint, amount decimal.Decimal) (*models.AffiliateCommission, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.IsEnabled {
		return nil, nil
	}

	db := s.db.WithContext(ctx)
	if existing, err := s.findBySubscription(db, subscriptionID); err == nil {
		return existing, nil
	} else if !utils.IsRecordNotFound(err) {
		return nil, err
	}

	// first touch: the earliest attribution owns the user
	var referral models.Referral
	if err := db.Where("referred_user_id = ?", userID).Order("created_at ASC, id ASC").First(&referral).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var partner models.AffiliatePartner
	if err := db.First(&partner, referral.AffiliateID).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if partner.Status != models.AffiliateStatusActive {
		utils.LogInfo("No commission for subscription %d: affiliate %d is %s", subscriptionID, partner.ID, partner.Status)
		return nil, nil
	}

	amount = utils.Round2(amount)
	if !amount.IsPositive() {
		return nil, nil
	}

	commission := models.AffiliateCommission{
		AffiliateID:        partner.ID,
		ReferredUserID:     userID,
		SubscriptionID:     subscriptionID,
		SubscriptionAmount: amount,
		Percentage:         settings.CommissionRate,
		Amount:             utils.Percent(amount, settings.CommissionRate),
	}
	now := s.now()

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&commission).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				return errCommissionExists
			}
			return err
		}

		if err := tx.Model(&models.Referral{}).
			Where("id = ? AND has_subscribed = ?", referral.ID, false).
			Updates(map[string]interface{}{"has_subscribed": true, "first_subscription": now}).Error; err != nil {
			return err
		}

		return tx.Model(&models.AffiliatePartner{}).
			Where("id = ?", partner.ID).
			UpdateColumns(map[string]interface{}{
				"total_earnings":   gorm.Expr("total_earnings + ?", commission.Amount),
				"pending_earnings": gorm.Expr("pending_earnings + ?", commission.Amount),
			}).Error
	})
	if err != nil {
		if errors.Is(err, errCommissionExists) {
			return s.findBySubscription(db, subscriptionID)
		}
		return nil, utils.WrapError(err, "record commission")
	}

	utils.LogInfo("Commission %s (%s%%) credited to affiliate %d for subscription %d",
		commission.Amount.StringFixed(2), commission.Percentage.String(), partner.ID, subscriptionID)
	return &commission, nil
}

func (s *CommissionService) findBySubscription(db *gorm.DB, subscriptionID uint) (*models.AffiliateCommission, error) {
	var commission models.AffiliateCommission
	if err := db.Where("subscription_id = ?", subscriptionID).First(&commission).Error; err != nil {
		return nil, err
	}
	return &commission, nil
}

// RecordCommission is the fail-soft form of OnSubscriptionCreated
func (s *CommissionService) RecordCommission(ctx context.Context, userID, subscriptionID uint, amount decimal.Decimal) *models.AffiliateCommission {
	commission, err := s.OnSubscriptionCreated(ctx, userID, subscriptionID, amount)
	if err != nil {
		utils.LogError("Commission for subscription %d of user %d failed: %v", subscriptionID, userID, err)
		return nil
	}
	return commission
}
