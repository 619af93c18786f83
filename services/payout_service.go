package services

import (
	"context"
	"strings"
	"time"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutService settles affiliate commissions
type PayoutService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// NewPayoutService creates a PayoutService. notifier may be nil.
func NewPayoutService(db *gorm.DB, notifier Notifier) *PayoutService {
	return &PayoutService{db: db, notifier: notifier, now: time.Now}
}

// CreatePayoutInput selects the commissions to settle
type CreatePayoutInput struct {
	AffiliateID   uint   `json:"affiliate_id" binding:"required"`
	CommissionIDs []uint `json:"commission_ids" binding:"required,min=1"`
	Method        string `json:"method" binding:"required,oneof=BANK_TRANSFER PAYPAL OTHER"`
	Notes         string `json:"notes" binding:"max=1000"`
}

// Validate checks the input
func (in CreatePayoutInput) Validate() error {
	var errs utils.FieldValidationErrors
	if in.AffiliateID == 0 {
		errs.Add("affiliate_id", "is required")
	}
	if len(in.CommissionIDs) == 0 {
		errs.Add("commission_ids", "must contain at least one id")
	}
	switch in.Method {
	case models.PayoutMethodBankTransfer, models.PayoutMethodPaypal, models.PayoutMethodOther:
	default:
		errs.Add("method", "must be one of BANK_TRANSFER, PAYPAL, OTHER")
	}
	if len(in.Notes) > 1000 {
		errs.Add("notes", "must not exceed 1000 characters")
	}
	return errs.Err()
}

// UpdatePayoutStatusInput moves a payout to a new status
type UpdatePayoutStatusInput struct {
	Status        string  `json:"status" binding:"required,oneof=PROCESSING COMPLETED FAILED CANCELLED"`
	TransactionID *string `json:"transaction_id" binding:"omitempty,max=100"`
	Notes         *string `json:"notes" binding:"omitempty,max=1000"`
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CreatePayout settles the unpaid commissions among input.CommissionIDs that
// belong to input.AffiliateID. Ids that do not qualify are skipped.
func (s *PayoutService) CreatePayout(ctx context.Context, adminID uint, input CreatePayoutInput) (*models.AffiliatePayout, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var payout models.AffiliatePayout
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var partner models.AffiliatePartner
		if err := lockForUpdate(tx).First(&partner, input.AffiliateID).Error; err != nil {
			if utils.IsRecordNotFound(err) {
				return ErrAffiliateNotFound
			}
			return err
		}

		var eligible []models.AffiliateCommission
		if err := lockForUpdate(tx).
			Where("id IN ? AND affiliate_id = ? AND is_paid = ?", input.CommissionIDs, partner.ID, false).
			Order("id ASC").
			Find(&eligible).Error; err != nil {
			return err
		}
		if len(eligible) == 0 {
			return ErrNoEligibleCommissions
		}

		amount := decimal.Zero
		ids := make([]uint, 0, len(eligible))
		for _, c := range eligible {
			amount = amount.Add(c.Amount)
			ids = append(ids, c.ID)
		}
		amount = utils.Round2(amount)

		payout = models.AffiliatePayout{
			AffiliateID:   partner.ID,
			Amount:        amount,
			CommissionIDs: ids,
			Method:        input.Method,
			Status:        models.PayoutStatusPending,
			BankName:      partner.BankName,
			AccountHolder: partner.AccountHolder,
			IBAN:          partner.IBAN,
			Notes:         strings.TrimSpace(input.Notes),
			CreatedBy:     adminID,
		}
		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		res := tx.Model(&models.AffiliateCommission{}).
			Where("id IN ? AND is_paid = ?", ids, false).
			Updates(map[string]interface{}{
				"is_paid":   true,
				"paid_at":   s.now(),
				"payout_id": payout.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(ids)) {
			return ErrPayoutConflict
		}

		return tx.Model(&models.AffiliatePartner{}).
			Where("id = ?", partner.ID).
			UpdateColumns(map[string]interface{}{
				"pending_earnings": gorm.Expr("pending_earnings - ?", amount),
				"paid_earnings":    gorm.Expr("paid_earnings + ?", amount),
			}).Error
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Payout %d created by admin %d: affiliate=%d amount=%s commissions=%v",
		payout.ID, adminID, payout.AffiliateID, payout.Amount.StringFixed(2), []uint(payout.CommissionIDs))
	return s.Get(ctx, payout.ID)
}

// UpdatePayoutStatus moves a payout through its lifecycle. Entering FAILED or
// CANCELLED returns the settled commissions to the affiliate's pending balance.
func (s *PayoutService) UpdatePayoutStatus(ctx context.Context, id, adminID uint, input UpdatePayoutStatusInput) (*models.AffiliatePayout, error) {
	status := strings.ToUpper(strings.TrimSpace(input.Status))
	if !payoutTransitions.known(status) {
		var errs utils.FieldValidationErrors
		errs.Add("status", "must be one of PROCESSING, COMPLETED, FAILED, CANCELLED")
		return nil, errs.Err()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payout models.AffiliatePayout
		if err := lockForUpdate(tx).First(&payout, id).Error; err != nil {
			if utils.IsRecordNotFound(err) {
				return ErrPayoutNotFound
			}
			return err
		}

		from := payout.Status
		if !CanTransitionPayout(from, status) {
			return ErrInvalidStatusTransition.WithData(map[string]string{"from": from, "to": status})
		}

		updates := map[string]interface{}{
			"status":       status,
			"processed_by": adminID,
			"processed_at": s.now(),
		}
		if input.TransactionID != nil {
			updates["transaction_id"] = nilIfEmpty(input.TransactionID)
		}
		if input.Notes != nil {
			updates["notes"] = strings.TrimSpace(*input.Notes)
		}

		res := tx.Model(&models.AffiliatePayout{}).Where("id = ? AND status = ?", id, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidStatusTransition.WithData(map[string]string{"from": from, "to": status})
		}

		if reversesPayout(status) {
			return s.reverse(tx, &payout)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payout, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Payout %d moved to %s by admin %d", id, status, adminID)
	if s.notifier != nil {
		s.notifier.PayoutStatusChanged(ctx, payout.Affiliate.User, *payout)
	}
	return payout, nil
}

// reverse un-settles the commissions of payout and moves its amount back to pending
func (s *PayoutService) reverse(tx *gorm.DB, payout *models.AffiliatePayout) error {
	var commissions []models.AffiliateCommission
	if err := tx.Where("payout_id = ?", payout.ID).Find(&commissions).Error; err != nil {
		return err
	}

	amount := decimal.Zero
	for _, c := range commissions {
		amount = amount.Add(c.Amount)
	}

	if err := tx.Model(&models.AffiliateCommission{}).
		Where("payout_id = ?", payout.ID).
		Updates(map[string]interface{}{
			"is_paid":   false,
			"paid_at":   nil,
			"payout_id": nil,
		}).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.AffiliatePartner{}).
		Where("id = ?", payout.AffiliateID).
		UpdateColumns(map[string]interface{}{
			"pending_earnings": gorm.Expr("pending_earnings + ?", amount),
			"paid_earnings":    gorm.Expr("paid_earnings - ?", amount),
		}).Error; err != nil {
		return err
	}

	utils.LogInfo("Payout %d reversed: %s returned to affiliate %d", payout.ID, amount.StringFixed(2), payout.AffiliateID)
	return nil
}

// Get returns a payout with its affiliate and commissions
func (s *PayoutService) Get(ctx context.Context, id uint) (*models.AffiliatePayout, error) {
	var payout models.AffiliatePayout
	err := s.db.WithContext(ctx).
		Preload("Affiliate.User").
		Preload("Commissions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&payout, id).Error
	if err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	return &payout, nil
}

// PayoutFilter narrows payout listings
type PayoutFilter struct {
	Status      string
	AffiliateID uint
}

func (f PayoutFilter) apply(query *gorm.DB) *gorm.DB {
	if f.Status != "" {
		query = query.Where("status = ?", strings.ToUpper(f.Status))
	}
	if f.AffiliateID != 0 {
		query = query.Where("affiliate_id = ?", f.AffiliateID)
	}
	return query
}

// List returns payouts newest first
func (s *PayoutService) List(ctx context.Context, filter PayoutFilter, page *utils.Pagination) ([]models.AffiliatePayout, error) {
	query := filter.apply(s.db.WithContext(ctx).Model(&models.AffiliatePayout{}))
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	page.SetTotal(total)

	payouts := []models.AffiliatePayout{}
	err := query.Preload("Affiliate.User").
		Order("created_at DESC, id DESC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&payouts).Error
	return payouts, err
}

// ListAll returns every payout matching filter, used by exports
func (s *PayoutService) ListAll(ctx context.Context, filter PayoutFilter) ([]models.AffiliatePayout, error) {
	payouts := []models.AffiliatePayout{}
	err := filter.apply(s.db.WithContext(ctx).Model(&models.AffiliatePayout{})).
		Preload("Affiliate.User").
		Order("created_at DESC, id DESC").
		Find(&payouts).Error
	return payouts, err
}
