package services

import (
	"context"
	"errors"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"gorm.io/gorm"
)

// ReferralService attributes new users to affiliates
type ReferralService struct {
	db       *gorm.DB
	settings *SettingsService
}

// NewReferralService creates a ReferralService
func NewReferralService(db *gorm.DB, settings *SettingsService) *ReferralService {
	return &ReferralService{db: db, settings: settings}
}

// ResolveTrackable normalises code and reports whether it belongs to an active
// affiliate while the program is enabled, along with the cookie lifetime in days
func (s *ReferralService) ResolveTrackable(ctx context.Context, code string) (string, int, bool) {
	code = utils.NormalizeCode(code)
	if code == "" {
		return "", 0, false
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		utils.LogError("Referral tracking skipped, settings unavailable: %v", err)
		return "", 0, false
	}
	if !settings.IsEnabled {
		return "", 0, false
	}

	if _, err := s.activeAffiliate(s.db.WithContext(ctx), code); err != nil {
		if !errors.Is(err, ErrInvalidReferralCode) {
			utils.LogError("Referral tracking lookup failed for %s: %v", code, err)
		}
		return "", 0, false
	}
	return code, settings.CookieDuration, true
}

func (s *ReferralService) activeAffiliate(db *gorm.DB, code string) (*models.AffiliatePartner, error) {
	var partner models.AffiliatePartner
	err := db.Where("referral_code = ? AND status = ?", code, models.AffiliateStatusActive).First(&partner).Error
	if err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrInvalidReferralCode
		}
		return nil, err
	}
	return &partner, nil
}

// CreateReferral attributes userID to the affiliate owning code. Calling it
// again for the same pair returns the existing referral.
func (s *ReferralService) CreateReferral(ctx context.Context, code string, userID uint, ip, userAgent string) (*models.Referral, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.IsEnabled {
		return nil, ErrProgramDisabled
	}

	code = utils.NormalizeCode(code)
	if code == "" {
		return nil, ErrInvalidReferralCode
	}

	db := s.db.WithContext(ctx)
	partner, err := s.activeAffiliate(db, code)
	if err != nil {
		return nil, err
	}
	if partner.UserID == userID {
		return nil, ErrSelfReferral
	}

	if existing, err := s.find(db, partner.ID, userID); err == nil {
		return existing, nil
	} else if !utils.IsRecordNotFound(err) {
		return nil, err
	}

	referral := models.Referral{
		AffiliateID:    partner.ID,
		ReferredUserID: userID,
		IPAddress:      ip,
		UserAgent:      userAgent,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&referral).Error; err != nil {
			return err
		}
		return tx.Model(&models.AffiliatePartner{}).
			Where("id = ?", partner.ID).
			UpdateColumn("total_referrals", gorm.Expr("total_referrals + ?", 1)).Error
	})
	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			// a concurrent request created the pair first
			return s.find(db, partner.ID, userID)
		}
		return nil, utils.WrapError(err, "create referral")
	}

	utils.LogInfo("Referral created: affiliate=%d user=%d", partner.ID, userID)
	return &referral, nil
}

func (s *ReferralService) find(db *gorm.DB, affiliateID, userID uint) (*models.Referral, error) {
	var referral models.Referral
	if err := db.Where("affiliate_id = ? AND referred_user_id = ?", affiliateID, userID).First(&referral).Error; err != nil {
		return nil, err
	}
	return &referral, nil
}

// Consume is the fail-soft form of CreateReferral used after registration.
// It never returns an error; nil means no referral was recorded.
func (s *ReferralService) Consume(ctx context.Context, code string, userID uint, ip, userAgent string) *models.Referral {
	if utils.NormalizeCode(code) == "" {
		return nil
	}
	referral, err := s.CreateReferral(ctx, code, userID, ip, userAgent)
	if err != nil {
		if utils.IsAppError(err) {
			utils.LogInfo("Referral %s not recorded for user %d: %v", code, userID, err)
		} else {
			utils.LogError("Referral %s failed for user %d: %v", code, userID, err)
		}
		return nil
	}
	return referral
}
