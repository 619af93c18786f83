package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var promoCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

// PromoCodeService manages discount codes and their redemption
type PromoCodeService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPromoCodeService creates a PromoCodeService
func NewPromoCodeService(db *gorm.DB) *PromoCodeService {
	return &PromoCodeService{db: db, now: time.Now}
}

// CreatePromoCodeInput describes a new promo code
type CreatePromoCodeInput struct {
	Code            string          `json:"code" binding:"required"`
	Type            string          `json:"type" binding:"required,oneof=PERCENTAGE FIXED FREE_TRIAL"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	Description     string          `json:"description" binding:"max=500"`
	MaxUses         *int            `json:"max_uses"`
	ValidFrom       *time.Time      `json:"valid_from"`
	ValidUntil      *time.Time      `json:"valid_until"`
	ApplicablePlans []string        `json:"applicable_plans"`
	IsActive        *bool           `json:"is_active"`
}

// UpdatePromoCodeInput is a partial promo code update
type UpdatePromoCodeInput struct {
	Code            *string          `json:"code"`
	Type            *string          `json:"type" binding:"omitempty,oneof=PERCENTAGE FIXED FREE_TRIAL"`
	DiscountValue   *decimal.Decimal `json:"discount_value"`
	Description     *string          `json:"description" binding:"omitempty,max=500"`
	MaxUses         *int             `json:"max_uses"`
	ClearMaxUses    bool             `json:"clear_max_uses"`
	ValidFrom       *time.Time       `json:"valid_from"`
	ValidUntil      *time.Time       `json:"valid_until"`
	ClearValidUntil bool             `json:"clear_valid_until"`
	ApplicablePlans *[]string        `json:"applicable_plans"`
	IsActive        *bool            `json:"is_active"`
}

// validatePromoCode checks the fields of a complete promo code
func validatePromoCode(p *models.PromoCode) error {
	var errs utils.FieldValidationErrors
	if !promoCodePattern.MatchString(p.Code) {
		errs.Add("code", "must be 3-50 letters, digits, '-' or '_'")
	}
	switch p.Type {
	case models.PromoTypePercentage:
		if p.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			errs.Add("discount_value", "must not exceed 100 for PERCENTAGE codes")
		}
	case models.PromoTypeFixed:
	case models.PromoTypeFreeTrial:
		if !p.DiscountValue.Equal(p.DiscountValue.Truncate(0)) {
			errs.Add("discount_value", "must be a whole number of trial days")
		}
	default:
		errs.Add("type", "must be one of PERCENTAGE, FIXED, FREE_TRIAL")
	}
	if p.DiscountValue.IsNegative() {
		errs.Add("discount_value", "must not be negative")
	}
	if p.MaxUses != nil && *p.MaxUses < 1 {
		errs.Add("max_uses", "must be at least 1")
	}
	if p.ValidUntil != nil && !p.ValidUntil.After(p.ValidFrom) {
		errs.Add("valid_until", "must be after valid_from")
	}
	if len(p.Description) > 500 {
		errs.Add("description", "must not exceed 500 characters")
	}
	for _, plan := range p.ApplicablePlans {
		if strings.TrimSpace(plan) == "" {
			errs.Add("applicable_plans", "must not contain empty plan ids")
			break
		}
	}
	return errs.Err()
}

func (s *PromoCodeService) codeTaken(db *gorm.DB, code string, excludeID uint) (bool, error) {
	var count int64
	query := db.Model(&models.PromoCode{}).Where("UPPER(code) = ?", code)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create adds a promo code. The code is stored upper-cased.
func (s *PromoCodeService) Create(ctx context.Context, adminID uint, input CreatePromoCodeInput) (*models.PromoCode, error) {
	promo := models.PromoCode{
		Code:            utils.NormalizeCode(input.Code),
		Type:            strings.ToUpper(strings.TrimSpace(input.Type)),
		DiscountValue:   utils.Round2(input.DiscountValue),
		Description:     strings.TrimSpace(input.Description),
		MaxUses:         input.MaxUses,
		ValidFrom:       s.now(),
		ValidUntil:      input.ValidUntil,
		ApplicablePlans: input.ApplicablePlans,
		IsActive:        true,
		CreatedBy:       &adminID,
	}
	if input.ValidFrom != nil {
		promo.ValidFrom = *input.ValidFrom
	}
	if input.IsActive != nil {
		promo.IsActive = *input.IsActive
	}
	if err := validatePromoCode(&promo); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	taken, err := s.codeTaken(db, promo.Code, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicatePromoCode
	}

	if err := db.Create(&promo).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, ErrDuplicatePromoCode
		}
		return nil, utils.WrapError(err, "create promo code")
	}
	utils.LogInfo("Promo code %s (%s %s) created by admin %d", promo.Code, promo.Type, promo.DiscountValue, adminID)
	return &promo, nil
}

// Get returns a promo code by id
func (s *PromoCodeService) Get(ctx context.Context, id uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := s.db.WithContext(ctx).First(&promo, id).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}
	return &promo, nil
}

// Update applies a partial update
func (s *PromoCodeService) Update(ctx context.Context, id uint, input UpdatePromoCodeInput) (*models.PromoCode, error) {
	promo, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		promo.Code = utils.NormalizeCode(*input.Code)
	}
	if input.Type != nil {
		promo.Type = strings.ToUpper(strings.TrimSpace(*input.Type))
	}
	if input.DiscountValue != nil {
		promo.DiscountValue = utils.Round2(*input.DiscountValue)
	}
	if input.Description != nil {
		promo.Description = strings.TrimSpace(*input.Description)
	}
	if input.ClearMaxUses {
		promo.MaxUses = nil
	} else if input.MaxUses != nil {
		promo.MaxUses = input.MaxUses
	}
	if input.ValidFrom != nil {
		promo.ValidFrom = *input.ValidFrom
	}
	if input.ClearValidUntil {
		promo.ValidUntil = nil
	} else if input.ValidUntil != nil {
		promo.ValidUntil = input.ValidUntil
	}
	if input.ApplicablePlans != nil {
		promo.ApplicablePlans = *input.ApplicablePlans
	}
	if input.IsActive != nil {
		promo.IsActive = *input.IsActive
	}
	if err := validatePromoCode(promo); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	taken, err := s.codeTaken(db, promo.Code, promo.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicatePromoCode
	}

	err = db.Model(&models.PromoCode{}).Where("id = ?", promo.ID).Updates(map[string]interface{}{
		"code":             promo.Code,
		"type":             promo.Type,
		"discount_value":   promo.DiscountValue,
		"description":      promo.Description,
		"max_uses":         promo.MaxUses,
		"valid_from":       promo.ValidFrom,
		"valid_until":      promo.ValidUntil,
		"applicable_plans": promo.ApplicablePlans,
		"is_active":        promo.IsActive,
	}).Error
	if err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, ErrDuplicatePromoCode
		}
		return nil, utils.WrapError(err, "update promo code")
	}
	utils.LogInfo("Promo code %d updated", promo.ID)
	return s.Get(ctx, promo.ID)
}

// Delete removes a promo code and its usage history
func (s *PromoCodeService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promo_code_id = ?", id).Delete(&models.PromoCodeUsage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.PromoCode{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPromoNotFound
		}
		utils.LogInfo("Promo code %d deleted", id)
		return nil
	})
}

// PromoCodeFilter narrows promo code listings
type PromoCodeFilter struct {
	IsActive *bool
	Type     string
}

// PromoCodeListItem is a promo code with its redemption count
type PromoCodeListItem struct {
	models.PromoCode
	UsageCount int64 `json:"usage_count"`
}

// List returns promo codes newest first with usage counts
func (s *PromoCodeService) List(ctx context.Context, filter PromoCodeFilter, page *utils.Pagination) ([]PromoCodeListItem, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&models.PromoCode{})
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", strings.ToUpper(filter.Type))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	page.SetTotal(total)

	var promos []models.PromoCode
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset).Limit(page.Limit).Find(&promos).Error; err != nil {
		return nil, err
	}

	items := make([]PromoCodeListItem, 0, len(promos))
	if len(promos) == 0 {
		return items, nil
	}
	ids := make([]uint, 0, len(promos))
	for _, p := range promos {
		ids = append(ids, p.ID)
	}

	var counts []struct {
		PromoCodeID uint
		Count       int64
	}
	if err := db.Model(&models.PromoCodeUsage{}).
		Select("promo_code_id, COUNT(*) AS count").
		Where("promo_code_id IN ?", ids).
		Group("promo_code_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byID[c.PromoCodeID] = c.Count
	}

	for _, p := range promos {
		items = append(items, PromoCodeListItem{PromoCode: p, UsageCount: byID[p.ID]})
	}
	return items, nil
}

// ListUsages returns the redemptions of a promo code, newest first
func (s *PromoCodeService) ListUsages(ctx context.Context, id uint, page *utils.Pagination) ([]models.PromoCodeUsage, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Model(&models.PromoCodeUsage{}).Where("promo_code_id = ?", id)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	page.SetTotal(total)

	usages := []models.PromoCodeUsage{}
	err := query.Preload("User").
		Order("used_at DESC, id DESC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&usages).Error
	return usages, err
}

// ListMyUsages returns the caller's redemptions, newest first
func (s *PromoCodeService) ListMyUsages(ctx context.Context, userID uint) ([]models.PromoCodeUsage, error) {
	usages := []models.PromoCodeUsage{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("PromoCode").
		Order("used_at DESC, id DESC").
		Find(&usages).Error
	return usages, err
}

// PromoCodeSummary is the public view of a valid promo code
type PromoCodeSummary struct {
	ID              uint            `json:"id"`
	Code            string          `json:"code"`
	Type            string          `json:"type"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	Description     string          `json:"description"`
	ValidUntil      *time.Time      `json:"valid_until"`
	ApplicablePlans []string        `json:"applicable_plans,omitempty"`
	TrialDays       int             `json:"trial_days,omitempty"`
}

func summarize(p *models.PromoCode) *PromoCodeSummary {
	summary := &PromoCodeSummary{
		ID:              p.ID,
		Code:            p.Code,
		Type:            p.Type,
		DiscountValue:   p.DiscountValue,
		Description:     p.Description,
		ValidUntil:      p.ValidUntil,
		ApplicablePlans: p.ApplicablePlans,
	}
	if p.Type == models.PromoTypeFreeTrial {
		summary.TrialDays = int(p.DiscountValue.IntPart())
	}
	return summary
}

// check runs the ordered promo code checks; the first failing one wins.
// The per-user check only runs when userID is set.
func (s *PromoCodeService) check(db *gorm.DB, code string, userID *uint, planID string) (*models.PromoCode, error) {
	code = utils.NormalizeCode(code)
	if code == "" {
		return nil, ErrPromoNotFound
	}

	var promo models.PromoCode
	if err := lockForUpdate(db).Where("code = ?", code).First(&promo).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}

	now := s.now()
	switch {
	case !promo.IsActive:
		return nil, ErrPromoInactive
	case now.Before(promo.ValidFrom):
		return nil, ErrPromoNotYetValid
	case promo.ValidUntil != nil && now.After(*promo.ValidUntil):
		return nil, ErrPromoExpired
	case promo.MaxUses != nil && promo.UsedCount >= *promo.MaxUses:
		return nil, ErrPromoUsageLimit
	case planID != "" && !promo.AllowsPlan(planID):
		return nil, ErrPromoPlanMismatch
	}

	if userID != nil {
		var used int64
		if err := db.Model(&models.PromoCodeUsage{}).
			Where("promo_code_id = ? AND user_id = ?", promo.ID, *userID).
			Count(&used).Error; err != nil {
			return nil, err
		}
		if used > 0 {
			return nil, ErrPromoAlreadyUsed
		}
	}
	return &promo, nil
}

// Validate reports whether code can currently be redeemed
func (s *PromoCodeService) Validate(ctx context.Context, code string, userID *uint, planID string) (*PromoCodeSummary, error) {
	promo, err := s.check(s.db.WithContext(ctx), code, userID, planID)
	if err != nil {
		return nil, err
	}
	return summarize(promo), nil
}

// DiscountQuote is the price of a subscription after a promo code
type DiscountQuote struct {
	PromoCodeID    uint            `json:"promo_code_id"`
	Code           string          `json:"code"`
	Type           string          `json:"type"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
	TrialDays      int             `json:"trial_days,omitempty"`
}

// ComputeDiscount prices amount under promo. The discount never exceeds amount.
func ComputeDiscount(promo *models.PromoCode, amount decimal.Decimal) DiscountQuote {
	amount = utils.Round2(amount)
	quote := DiscountQuote{
		PromoCodeID:    promo.ID,
		Code:           promo.Code,
		Type:           promo.Type,
		OriginalAmount: amount,
	}

	var discount decimal.Decimal
	switch promo.Type {
	case models.PromoTypePercentage:
		discount = utils.Percent(amount, promo.DiscountValue)
	case models.PromoTypeFixed:
		discount = utils.Round2(promo.DiscountValue)
	case models.PromoTypeFreeTrial:
		// A trial waives the first period's charge in full and extends the
		// subscription by DiscountValue days on activation.
		discount = amount
		quote.TrialDays = int(promo.DiscountValue.IntPart())
	}
	if discount.GreaterThan(amount) {
		discount = amount
	}

	quote.DiscountAmount = discount
	quote.FinalAmount = decimal.Max(decimal.Zero, amount.Sub(discount))
	return quote
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		var errs utils.FieldValidationErrors
		errs.Add("amount", "must not be negative")
		return errs.Err()
	}
	return nil
}

// Preview prices amount with code without recording anything
func (s *PromoCodeService) Preview(ctx context.Context, code string, amount decimal.Decimal, planID string) (*DiscountQuote, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	promo, err := s.check(s.db.WithContext(ctx), code, nil, planID)
	if err != nil {
		return nil, err
	}
	quote := ComputeDiscount(promo, amount)
	return &quote, nil
}

// Quote prices amount with code for userID without recording a use. The
// per-user check runs, so a code the user already redeemed is rejected.
func (s *PromoCodeService) Quote(ctx context.Context, code string, userID uint, planID string, amount decimal.Decimal) (*DiscountQuote, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	promo, err := s.check(s.db.WithContext(ctx), code, &userID, planID)
	if err != nil {
		return nil, err
	}
	quote := ComputeDiscount(promo, amount)
	return &quote, nil
}

// ApplyPromoCodeInput redeems a promo code for a subscription
type ApplyPromoCodeInput struct {
	Code           string
	UserID         uint
	PlanID         string
	Amount         decimal.Decimal
	SubscriptionID *uint
}

// ApplyToAmount redeems a promo code inside tx: it runs every check, records
// the usage and increments the code's used count. tx may be nil, in which case
// the redemption runs in its own transaction.
func (s *PromoCodeService) ApplyToAmount(ctx context.Context, tx *gorm.DB, input ApplyPromoCodeInput) (*DiscountQuote, error) {
	if tx == nil {
		var quote *DiscountQuote
		err := s.db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
			var err error
			quote, err = s.ApplyToAmount(ctx, inner, input)
			return err
		})
		return quote, err
	}

	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}

	userID := input.UserID
	promo, err := s.check(tx, input.Code, &userID, input.PlanID)
	if err != nil {
		return nil, err
	}
	quote := ComputeDiscount(promo, input.Amount)

	if err := s.insertUsage(tx, promo.ID, userID, input.SubscriptionID, quote.DiscountAmount); err != nil {
		return nil, err
	}
	res := tx.Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", promo.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrPromoUsageLimit
	}

	utils.LogInfo("Promo code %s applied for user %d: %s -> %s",
		promo.Code, userID, quote.OriginalAmount.StringFixed(2), quote.FinalAmount.StringFixed(2))
	return &quote, nil
}

// RecordUsageInput books the use of a code quoted at checkout
type RecordUsageInput struct {
	PromoCodeID    uint
	UserID         uint
	SubscriptionID uint
	DiscountAmount decimal.Decimal
}

// RecordUsage books a quoted redemption inside tx once its payment has been
// captured. The quoted discount stands even if the code ran out of uses
// after the quote, so used_count may pass max_uses.
func (s *PromoCodeService) RecordUsage(tx *gorm.DB, input RecordUsageInput) error {
	subID := input.SubscriptionID
	if err := s.insertUsage(tx, input.PromoCodeID, input.UserID, &subID, input.DiscountAmount); err != nil {
		return err
	}

	var promo models.PromoCode
	if err := lockForUpdate(tx).First(&promo, input.PromoCodeID).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return ErrPromoNotFound
		}
		return err
	}
	if err := tx.Model(&models.PromoCode{}).Where("id = ?", promo.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1)).Error; err != nil {
		return err
	}
	if promo.MaxUses != nil && promo.UsedCount >= *promo.MaxUses {
		utils.LogInfo("Promo code %s redeemed past its limit by subscription %d", promo.Code, subID)
	}
	utils.LogInfo("Promo code %s used by user %d for subscription %d", promo.Code, input.UserID, subID)
	return nil
}

func (s *PromoCodeService) insertUsage(tx *gorm.DB, promoID, userID uint, subID *uint, discount decimal.Decimal) error {
	usage := models.PromoCodeUsage{
		PromoCodeID:    promoID,
		UserID:         userID,
		SubscriptionID: subID,
		DiscountAmount: discount,
		UsedAt:         s.now(),
	}
	if err := tx.Create(&usage).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return ErrPromoAlreadyUsed
		}
		return utils.WrapError(err, "record promo code usage")
	}
	return nil
}
