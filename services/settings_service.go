package services

import (
	"context"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettingsCache stores the affiliate settings row between requests.
// Get returns nil, nil on a miss.
type SettingsCache interface {
	Get(ctx context.Context) (*models.AffiliateSettings, error)
	Set(ctx context.Context, settings *models.AffiliateSettings) error
	Invalidate(ctx context.Context) error
}

// SettingsService loads and updates the affiliate program settings
type SettingsService struct {
	db    *gorm.DB
	cache SettingsCache
}

// NewSettingsService creates a SettingsService. cache may be nil.
func NewSettingsService(db *gorm.DB, cache SettingsCache) *SettingsService {
	return &SettingsService{db: db, cache: cache}
}

// UpdateSettingsInput is a partial settings update
type UpdateSettingsInput struct {
	IsEnabled       *bool            `json:"is_enabled"`
	CommissionRate  *decimal.Decimal `json:"commission_rate"`
	MinimumPayout   *decimal.Decimal `json:"minimum_payout"`
	CookieDuration  *int             `json:"cookie_duration"`
	RequireApproval *bool            `json:"require_approval"`
}

// Validate checks the provided fields
func (in UpdateSettingsInput) Validate() error {
	var errs utils.FieldValidationErrors
	if in.CommissionRate != nil && (in.CommissionRate.IsNegative() || in.CommissionRate.GreaterThan(decimal.NewFromInt(100))) {
		errs.Add("commission_rate", "must be between 0 and 100")
	}
	if in.MinimumPayout != nil && in.MinimumPayout.IsNegative() {
		errs.Add("minimum_payout", "must not be negative")
	}
	if in.CookieDuration != nil && (*in.CookieDuration < 1 || *in.CookieDuration > 365) {
		errs.Add("cookie_duration", "must be between 1 and 365 days")
	}
	return errs.Err()
}

// Get returns the current settings, creating the row with defaults on first use
func (s *SettingsService) Get(ctx context.Context) (*models.AffiliateSettings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			utils.LogError("Settings cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	settings, err := s.load(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settings); err != nil {
			utils.LogError("Settings cache write failed: %v", err)
		}
	}
	return settings, nil
}

func (s *SettingsService) load(tx *gorm.DB) (*models.AffiliateSettings, error) {
	var settings models.AffiliateSettings
	defaults := models.DefaultAffiliateSettings()
	if err := tx.Order("id ASC").Attrs(defaults).FirstOrCreate(&settings).Error; err != nil {
		return nil, utils.WrapError(err, "load affiliate settings")
	}
	return &settings, nil
}

// Update applies a partial update and invalidates the cache
func (s *SettingsService) Update(ctx context.Context, input UpdateSettingsInput) (*models.AffiliateSettings, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var settings *models.AffiliateSettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if input.IsEnabled != nil {
			updates["is_enabled"] = *input.IsEnabled
		}
		if input.CommissionRate != nil {
			updates["commission_rate"] = utils.Round2(*input.CommissionRate)
		}
		if input.MinimumPayout != nil {
			updates["minimum_payout"] = utils.Round2(*input.MinimumPayout)
		}
		if input.CookieDuration != nil {
			updates["cookie_duration"] = *input.CookieDuration
		}
		if input.RequireApproval != nil {
			updates["require_approval"] = *input.RequireApproval
		}

		if len(updates) > 0 {
			if err := tx.Model(current).Updates(updates).Error; err != nil {
				return err
			}
		}
		settings, err = s.load(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			utils.LogError("Settings cache invalidation failed: %v", err)
		}
	}
	utils.LogInfo("Affiliate settings updated: enabled=%v rate=%s min_payout=%s cookie_days=%d approval=%v",
		settings.IsEnabled, settings.CommissionRate, settings.MinimumPayout, settings.CookieDuration, settings.RequireApproval)
	return settings, nil
}
