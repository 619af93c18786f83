package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxReferralCodeAttempts = 5

// AffiliateService owns affiliate partner records
type AffiliateService struct {
	db           *gorm.DB
	settings     *SettingsService
	notifier     Notifier
	generateCode func() (string, error)
	now          func() time.Time
}

// NewAffiliateService creates an AffiliateService. notifier may be nil.
func NewAffiliateService(db *gorm.DB, settings *SettingsService, notifier Notifier) *AffiliateService {
	return &AffiliateService{
		db:           db,
		settings:     settings,
		notifier:     notifier,
		generateCode: utils.GenerateReferralCode,
		now:          time.Now,
	}
}

// BankInfoInput carries payout destination details. Nil fields are left unchanged.
type BankInfoInput struct {
	BankName      *string `json:"bank_name" binding:"omitempty,max=100"`
	AccountHolder *string `json:"account_holder" binding:"omitempty,max=100"`
	IBAN          *string `json:"iban" binding:"omitempty,max=42"`
}

// Normalize trims the fields and canonicalizes the IBAN, then validates them
func (in BankInfoInput) Normalize() (BankInfoInput, error) {
	var errs utils.FieldValidationErrors
	out := BankInfoInput{}

	if in.BankName != nil {
		v := strings.TrimSpace(*in.BankName)
		if len(v) > 100 {
			errs.Add("bank_name", "must not exceed 100 characters")
		}
		out.BankName = &v
	}
	if in.AccountHolder != nil {
		v := strings.TrimSpace(*in.AccountHolder)
		if len(v) > 100 {
			errs.Add("account_holder", "must not exceed 100 characters")
		}
		out.AccountHolder = &v
	}
	if in.IBAN != nil {
		v := utils.NormalizeIBAN(*in.IBAN)
		if v != "" {
			if ok, msg := utils.ValidateIBAN(v); !ok {
				errs.Add("iban", msg)
			}
		}
		out.IBAN = &v
	}
	return out, errs.Err()
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Apply enrolls userID in the affiliate program
func (s *AffiliateService) Apply(ctx context.Context, userID uint, input BankInfoInput) (*models.AffiliatePartner, error) {
	bank, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if existing, err := s.findByUser(db, userID); err == nil {
		return nil, ErrAlreadyApplied.WithData(existing)
	} else if !errors.Is(err, ErrAffiliateNotFound) {
		return nil, err
	}

	var user models.User
	if err := db.Select("id").First(&user, userID).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// applications always wait for an admin decision
	partner := models.AffiliatePartner{
		UserID:        userID,
		Status:        models.AffiliateStatusPending,
		BankName:      nilIfEmpty(bank.BankName),
		AccountHolder: nilIfEmpty(bank.AccountHolder),
		IBAN:          nilIfEmpty(bank.IBAN),
	}

	for attempt := 1; attempt <= maxReferralCodeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, utils.WrapError(err, "generate referral code")
		}
		partner.ReferralCode = code

		err = db.Create(&partner).Error
		if err == nil {
			utils.LogInfo("Affiliate application created: user=%d code=%s status=%s", userID, code, partner.Status)
			return &partner, nil
		}
		if !utils.IsDuplicateKeyError(err) {
			return nil, utils.WrapError(err, "create affiliate partner")
		}

		// the unique index on user_id fires when two applications race
		if existing, findErr := s.findByUser(db, userID); findErr == nil {
			return nil, ErrAlreadyApplied.WithData(existing)
		}
		utils.LogDebug("Referral code %s already taken, attempt %d/%d", code, attempt, maxReferralCodeAttempts)
	}

	utils.LogError("Referral code generation exhausted for user %d", userID)
	return nil, ErrReferralCodeExhausted
}

func (s *AffiliateService) findByUser(db *gorm.DB, userID uint) (*models.AffiliatePartner, error) {
	var partner models.AffiliatePartner
	if err := db.Where("user_id = ?", userID).First(&partner).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrAffiliateNotFound
		}
		return nil, err
	}
	return &partner, nil
}

// UpdateStatus moves an affiliate through its lifecycle
func (s *AffiliateService) UpdateStatus(ctx context.Context, id uint, newStatus string, adminID uint) (*models.AffiliatePartner, error) {
	newStatus = strings.ToUpper(strings.TrimSpace(newStatus))
	if !affiliateTransitions.known(newStatus) {
		var errs utils.FieldValidationErrors
		errs.Add("status", "must be one of PENDING, ACTIVE, SUSPENDED, BANNED")
		return nil, errs.Err()
	}

	var partner models.AffiliatePartner
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&partner, id).Error; err != nil {
			if utils.IsRecordNotFound(err) {
				return ErrAffiliateNotFound
			}
			return err
		}

		from := partner.Status
		if !CanTransitionAffiliate(from, newStatus) {
			return ErrInvalidStatusTransition.WithData(map[string]string{"from": from, "to": newStatus})
		}

		updates := map[string]interface{}{
			"status":      newStatus,
			"approved_by": nil,
			"approved_at": nil,
		}
		if newStatus == models.AffiliateStatusActive {
			updates["approved_by"] = adminID
			updates["approved_at"] = s.now()
		}

		res := tx.Model(&models.AffiliatePartner{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidStatusTransition.WithData(map[string]string{"from": from, "to": newStatus})
		}

		return tx.Preload("User").First(&partner, id).Error
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Affiliate %d status changed to %s by admin %d", id, newStatus, adminID)
	if s.notifier != nil {
		s.notifier.AffiliateStatusChanged(ctx, partner.User, partner)
	}
	return &partner, nil
}

// UpdateBankInfo changes the payout destination of the caller's affiliate account
func (s *AffiliateService) UpdateBankInfo(ctx context.Context, userID uint, input BankInfoInput) (*models.AffiliatePartner, error) {
	bank, err := input.Normalize()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	partner, err := s.findByUser(db, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if bank.BankName != nil {
		updates["bank_name"] = nilIfEmpty(bank.BankName)
	}
	if bank.AccountHolder != nil {
		updates["account_holder"] = nilIfEmpty(bank.AccountHolder)
	}
	if bank.IBAN != nil {
		updates["iban"] = nilIfEmpty(bank.IBAN)
	}
	if len(updates) == 0 {
		return partner, nil
	}

	if err := db.Model(partner).Updates(updates).Error; err != nil {
		return nil, utils.WrapError(err, "update bank info")
	}
	if err := db.First(partner, partner.ID).Error; err != nil {
		return nil, err
	}
	utils.LogInfo("Affiliate %d updated bank info", partner.ID)
	return partner, nil
}

// AffiliateStats summarises an affiliate's activity
type AffiliateStats struct {
	TotalReferrals    int             `json:"total_referrals"`
	ActiveReferrals   int64           `json:"active_referrals"`
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
	PendingEarnings   decimal.Decimal `json:"pending_earnings"`
	PaidEarnings      decimal.Decimal `json:"paid_earnings"`
	UnpaidCommissions int64           `json:"unpaid_commissions"`
	MinimumPayout     decimal.Decimal `json:"minimum_payout"`
	EligibleForPayout bool            `json:"eligible_for_payout"`
}

// AffiliateOverview is the caller's affiliate record with stats
type AffiliateOverview struct {
	Affiliate models.AffiliatePartner `json:"affiliate"`
	Stats     AffiliateStats          `json:"stats"`
}

// GetMine returns the caller's affiliate account
func (s *AffiliateService) GetMine(ctx context.Context, userID uint) (*AffiliateOverview, error) {
	db := s.db.WithContext(ctx)
	partner, err := s.findByUser(db, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	stats := AffiliateStats{
		TotalReferrals:  partner.TotalReferrals,
		TotalEarnings:   partner.TotalEarnings,
		PendingEarnings: partner.PendingEarnings,
		PaidEarnings:    partner.PaidEarnings,
		MinimumPayout:   settings.MinimumPayout,
	}
	if err := db.Model(&models.Referral{}).
		Where("affiliate_id = ? AND has_subscribed = ?", partner.ID, true).
		Count(&stats.ActiveReferrals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.AffiliateCommission{}).
		Where("affiliate_id = ? AND is_paid = ?", partner.ID, false).
		Count(&stats.UnpaidCommissions).Error; err != nil {
		return nil, err
	}
	stats.EligibleForPayout = partner.Status == models.AffiliateStatusActive &&
		stats.UnpaidCommissions > 0 &&
		partner.PendingEarnings.GreaterThanOrEqual(settings.MinimumPayout)

	return &AffiliateOverview{Affiliate: *partner, Stats: stats}, nil
}

// ReferralLink is the shareable registration link of an affiliate
type ReferralLink struct {
	ReferralCode string `json:"referral_code"`
	Link         string `json:"link"`
}

// GetReferralLink builds the caller's registration link
func (s *AffiliateService) GetReferralLink(ctx context.Context, userID uint, frontendURL string) (*ReferralLink, error) {
	partner, err := s.findByUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	if partner.Status != models.AffiliateStatusActive {
		return nil, ErrAffiliateNotActive.WithData(map[string]string{"status": partner.Status})
	}
	return &ReferralLink{
		ReferralCode: partner.ReferralCode,
		Link:         fmt.Sprintf("%s/auth/register?%s=%s", strings.TrimRight(frontendURL, "/"), utils.ReferralQueryParam, partner.ReferralCode),
	}, nil
}

// ListMyReferrals returns the users the caller referred, newest first
func (s *AffiliateService) ListMyReferrals(ctx context.Context, userID uint, page *utils.Pagination) ([]models.Referral, error) {
	db := s.db.WithContext(ctx)
	partner, err := s.findByUser(db, userID)
	if err != nil {
		return nil, err
	}

	query := db.Model(&models.Referral{}).Where("affiliate_id = ?", partner.ID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	page.SetTotal(total)

	referrals := []models.Referral{}
	err = query.Preload("ReferredUser").
		Order("created_at DESC, id DESC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&referrals).Error
	return referrals, err
}

// ListMyCommissions returns the caller's commissions, optionally filtered by paid state
func (s *AffiliateService) ListMyCommissions(ctx context.Context, userID uint, isPaid *bool, page *utils.Pagination) ([]models.AffiliateCommission, error) {
	db := s.db.WithContext(ctx)
	partner, err := s.findByUser(db, userID)
	if err != nil {
		return nil, err
	}

	query := db.Model(&models.AffiliateCommission{}).Where("affiliate_id = ?", partner.ID)
	if isPaid != nil {
		query = query.Where("is_paid = ?", *isPaid)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	page.SetTotal(total)

	commissions := []models.AffiliateCommission{}
	err = query.Order("created_at DESC, id DESC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&commissions).Error
	return commissions, err
}

// List returns all affiliates, optionally filtered by status
func (s *AffiliateService) List(ctx context.Context, status string, page *utils.Pagination) ([]models.AffiliatePartner, error) {
	query := s.db.WithContext(ctx).Model(&models.AffiliatePartner{})
	if status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	page.SetTotal(total)

	partners := []models.AffiliatePartner{}
	err := query.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&partners).Error
	return partners, err
}

// ProgramStats is the admin overview of the affiliate program
type ProgramStats struct {
	TotalAffiliates   int64           `json:"total_affiliates"`
	ActiveAffiliates  int64           `json:"active_affiliates"`
	PendingAffiliates int64           `json:"pending_affiliates"`
	TotalReferrals    int64           `json:"total_referrals"`
	TotalCommissions  int64           `json:"total_commissions"`
	UnpaidCommissions int64           `json:"unpaid_commissions"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
	PendingPayouts    int64           `json:"pending_payouts"`
}

// Stats aggregates program-wide counters
func (s *AffiliateService) Stats(ctx context.Context) (*ProgramStats, error) {
	db := s.db.WithContext(ctx)
	stats := &ProgramStats{}

	counts := []struct {
		model interface{}
		where string
		args  []interface{}
		dest  *int64
	}{
		{&models.AffiliatePartner{}, "", nil, &stats.TotalAffiliates},
		{&models.AffiliatePartner{}, "status = ?", []interface{}{models.AffiliateStatusActive}, &stats.ActiveAffiliates},
		{&models.AffiliatePartner{}, "status = ?", []interface{}{models.AffiliateStatusPending}, &stats.PendingAffiliates},
		{&models.Referral{}, "", nil, &stats.TotalReferrals},
		{&models.AffiliateCommission{}, "", nil, &stats.TotalCommissions},
		{&models.AffiliateCommission{}, "is_paid = ?", []interface{}{false}, &stats.UnpaidCommissions},
		{&models.AffiliatePayout{}, "status IN ?", []interface{}{[]string{models.PayoutStatusPending, models.PayoutStatusProcessing}}, &stats.PendingPayouts},
	}
	for _, c := range counts {
		query := db.Model(c.model)
		if c.where != "" {
			query = query.Where(c.where, c.args...)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var sum decimal.NullDecimal
	if err := db.Model(&models.AffiliateCommission{}).Select("SUM(amount)").Row().Scan(&sum); err != nil {
		return nil, err
	}
	stats.CommissionAmount = utils.Round2(sum.Decimal)
	return stats, nil
}
