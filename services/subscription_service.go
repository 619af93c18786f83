package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"gorm.io/gorm"
)

// SubscriptionService sells plans to restaurant owners
type SubscriptionService struct {
	db          *gorm.DB
	promos      *PromoCodeService
	commissions *CommissionService
	gateway     PaymentGateway
	currency    string
	now         func() time.Time
}

// NewSubscriptionService creates a SubscriptionService. gateway may be nil, in
// which case only fully discounted checkouts succeed.
func NewSubscriptionService(db *gorm.DB, promos *PromoCodeService, commissions *CommissionService, gateway PaymentGateway, currency string) *SubscriptionService {
	if currency == "" {
		currency = "INR"
	}
	return &SubscriptionService{
		db:          db,
		promos:      promos,
		commissions: commissions,
		gateway:     gateway,
		currency:    currency,
		now:         time.Now,
	}
}

// CheckoutInput starts a subscription purchase
type CheckoutInput struct {
	PlanID    string `json:"plan_id" binding:"required,max=50"`
	PromoCode string `json:"promo_code" binding:"omitempty,max=50"`
}

// ConfirmPaymentInput carries the Razorpay checkout callback
type ConfirmPaymentInput struct {
	SubscriptionID    uint   `json:"subscription_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// CheckoutResult is the outcome of a checkout
type CheckoutResult struct {
	Subscription models.Subscription `json:"subscription"`
	Discount     *DiscountQuote      `json:"discount,omitempty"`
	Payment      *PaymentOrder       `json:"payment,omitempty"`
}

// ListPlans returns the active plans, cheapest first
func (s *SubscriptionService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	plans := []models.Plan{}
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("price ASC, id ASC").Find(&plans).Error
	return plans, err
}

// ListMine returns the caller's subscriptions, newest first
func (s *SubscriptionService) ListMine(ctx context.Context, userID uint) ([]models.Subscription, error) {
	subs := []models.Subscription{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Plan").
		Order("created_at DESC, id DESC").
		Find(&subs).Error
	return subs, err
}

// Checkout creates a subscription for input.PlanID priced with
// input.PromoCode when set. A subscription that costs nothing is activated
// and its promo use recorded immediately. Otherwise the subscription stays
// PENDING behind a payment order and ConfirmPayment completes the purchase.
// A checkout cancels the caller's earlier pending subscriptions.
func (s *SubscriptionService) Checkout(ctx context.Context, userID uint, input CheckoutInput) (*CheckoutResult, error) {
	db := s.db.WithContext(ctx)

	var plan models.Plan
	if err := db.Where("id = ? AND is_active = ?", strings.TrimSpace(input.PlanID), true).First(&plan).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	amount := utils.Round2(plan.Price)
	sub := models.Subscription{
		UserID:         userID,
		PlanID:         plan.ID,
		Status:         models.SubscriptionStatusPending,
		OriginalAmount: amount,
		FinalAmount:    amount,
		Currency:       s.currency,
	}
	result := &CheckoutResult{}

	code := strings.TrimSpace(input.PromoCode)
	if code != "" {
		quote, err := s.promos.Quote(ctx, code, userID, plan.ID, amount)
		if err != nil {
			return nil, err
		}
		applyQuote(&sub, quote)
		result.Discount = quote
	}

	if !sub.FinalAmount.IsPositive() {
		return s.checkoutFree(ctx, &plan, sub, code, result)
	}
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.cancelPending(tx, userID); err != nil {
			return err
		}
		return tx.Create(&sub).Error
	})
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, sub.FinalAmount, sub.Currency, fmt.Sprintf("sub_rcpt_%d", sub.ID))
	if err != nil {
		if cerr := s.markClosed(context.WithoutCancel(ctx), sub.ID, models.SubscriptionStatusCancelled); cerr != nil {
			utils.LogError("Failed to cancel subscription %d after order error: %v", sub.ID, cerr)
		}
		return nil, utils.ServiceUnavailableError("Failed to create payment order", err)
	}
	if err := db.Model(&sub).Update("razorpay_order_id", order.ID).Error; err != nil {
		return nil, utils.WrapError(err, "save payment order")
	}
	result.Payment = order

	if err := db.Preload("Plan").First(&result.Subscription, sub.ID).Error; err != nil {
		return nil, err
	}
	utils.LogInfo("Checkout for user %d: subscription %d plan %s final %s %s order %s",
		userID, sub.ID, plan.ID, sub.FinalAmount.StringFixed(2), sub.Currency, order.ID)
	return result, nil
}

// checkoutFree activates a subscription that needs no payment, redeeming code
// in the same transaction.
func (s *SubscriptionService) checkoutFree(ctx context.Context, plan *models.Plan, sub models.Subscription, code string, result *CheckoutResult) (*CheckoutResult, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.cancelPending(tx, sub.UserID); err != nil {
			return err
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		if code != "" {
			quote, err := s.promos.ApplyToAmount(ctx, tx, ApplyPromoCodeInput{
				Code:           code,
				UserID:         sub.UserID,
				PlanID:         plan.ID,
				Amount:         sub.OriginalAmount,
				SubscriptionID: &sub.ID,
			})
			if err != nil {
				return err
			}
			if quote.FinalAmount.IsPositive() {
				return ErrPromoChanged
			}
			applyQuote(&sub, quote)
			result.Discount = quote
		}

		updates := map[string]interface{}{
			"discount_amount": sub.DiscountAmount,
			"final_amount":    sub.FinalAmount,
			"promo_code_id":   sub.PromoCodeID,
			"trial_days":      sub.TrialDays,
		}
		s.activationFields(plan, sub.TrialDays, updates)
		if err := tx.Model(&sub).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Preload("Plan").First(&result.Subscription, sub.ID).Error
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Checkout for user %d: subscription %d plan %s activated without payment",
		sub.UserID, sub.ID, plan.ID)
	s.commissions.RecordCommission(ctx, sub.UserID, sub.ID, result.Subscription.FinalAmount)
	return result, nil
}

func applyQuote(sub *models.Subscription, quote *DiscountQuote) {
	promoID := quote.PromoCodeID
	sub.DiscountAmount = quote.DiscountAmount
	sub.FinalAmount = quote.FinalAmount
	sub.PromoCodeID = &promoID
	sub.TrialDays = quote.TrialDays
}

func (s *SubscriptionService) cancelPending(tx *gorm.DB, userID uint) error {
	res := tx.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusPending).
		Update("status", models.SubscriptionStatusCancelled)
	if res.Error != nil {
		return utils.WrapError(res.Error, "cancel pending subscriptions")
	}
	if res.RowsAffected > 0 {
		utils.LogInfo("Cancelled %d pending subscription(s) of user %d", res.RowsAffected, userID)
	}
	return nil
}

func (s *SubscriptionService) markClosed(ctx context.Context, id uint, status string) error {
	return s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status = ?", id, models.SubscriptionStatusPending).
		Update("status", status).Error
}

func (s *SubscriptionService) activationFields(plan *models.Plan, trialDays int, updates map[string]interface{}) {
	start := s.now()
	end := start.AddDate(0, plan.IntervalMonths, trialDays)
	updates["status"] = models.SubscriptionStatusActive
	updates["starts_at"] = start
	updates["ends_at"] = end
}

func paidWith(sub *models.Subscription, paymentID string) bool {
	return sub.Status == models.SubscriptionStatusActive &&
		sub.RazorpayPaymentID != nil && *sub.RazorpayPaymentID == paymentID
}

// ConfirmPayment verifies the payment callback, activates the subscription and
// records its promo code use. Confirming an already activated payment again
// returns the subscription unchanged.
func (s *SubscriptionService) ConfirmPayment(ctx context.Context, userID uint, input ConfirmPaymentInput) (*models.Subscription, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	db := s.db.WithContext(ctx)
	var sub models.Subscription
	if err := db.Preload("Plan").Where("id = ? AND user_id = ?", input.SubscriptionID, userID).First(&sub).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	if sub.RazorpayOrderID == nil || *sub.RazorpayOrderID != input.RazorpayOrderID ||
		!s.gateway.VerifySignature(input.RazorpayOrderID, input.RazorpayPaymentID, input.RazorpaySignature) {
		utils.LogError("Payment verification failed for subscription %d, user %d", sub.ID, userID)
		return nil, ErrInvalidPaymentSignature
	}

	if paidWith(&sub, input.RazorpayPaymentID) {
		return &sub, nil
	}
	if sub.Status != models.SubscriptionStatusPending {
		return nil, ErrSubscriptionNotPending
	}

	updates := map[string]interface{}{"razorpay_payment_id": input.RazorpayPaymentID}
	s.activationFields(&sub.Plan, sub.TrialDays, updates)
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, models.SubscriptionStatusPending).
			Updates(updates)
		if res.Error != nil {
			return utils.WrapError(res.Error, "activate subscription")
		}
		if res.RowsAffected == 0 {
			return ErrSubscriptionNotPending
		}
		if sub.PromoCodeID == nil {
			return nil
		}
		return s.promos.RecordUsage(tx, RecordUsageInput{
			PromoCodeID:    *sub.PromoCodeID,
			UserID:         userID,
			SubscriptionID: sub.ID,
			DiscountAmount: sub.DiscountAmount,
		})
	})
	if errors.Is(err, ErrSubscriptionNotPending) {
		var current models.Subscription
		if rerr := db.Preload("Plan").First(&current, sub.ID).Error; rerr != nil {
			return nil, rerr
		}
		if paidWith(&current, input.RazorpayPaymentID) {
			return &current, nil
		}
		return nil, ErrSubscriptionNotPending
	}
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Payment verified for subscription %d, user %d", sub.ID, userID)
	s.commissions.RecordCommission(ctx, userID, sub.ID, sub.FinalAmount)

	if err := db.Preload("Plan").First(&sub, sub.ID).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Cancel abandons one of the caller's pending subscriptions
func (s *SubscriptionService) Cancel(ctx context.Context, userID, id uint) (*models.Subscription, error) {
	db := s.db.WithContext(ctx)
	var sub models.Subscription
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&sub).Error; err != nil {
		if utils.IsRecordNotFound(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	res := db.Model(&models.Subscription{}).
		Where("id = ? AND status = ?", sub.ID, models.SubscriptionStatusPending).
		Update("status", models.SubscriptionStatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrSubscriptionNotPending
	}
	utils.LogInfo("Subscription %d cancelled by user %d", sub.ID, userID)

	if err := db.Preload("Plan").First(&sub, sub.ID).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ExpireStale marks PENDING subscriptions older than pendingTTL and ACTIVE
// subscriptions past their end date as EXPIRED. It returns how many rows
// changed.
func (s *SubscriptionService) ExpireStale(ctx context.Context, pendingTTL time.Duration) (int64, error) {
	now := s.now()
	var expired int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Subscription{}).
			Where("status = ? AND created_at < ?", models.SubscriptionStatusPending, now.Add(-pendingTTL)).
			Update("status", models.SubscriptionStatusExpired)
		if res.Error != nil {
			return res.Error
		}
		expired += res.RowsAffected

		res = tx.Model(&models.Subscription{}).
			Where("status = ? AND ends_at < ?", models.SubscriptionStatusActive, now).
			Update("status", models.SubscriptionStatusExpired)
		if res.Error != nil {
			return res.Error
		}
		expired += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		utils.LogInfo("Expired %d subscription(s)", expired)
	}
	return expired, nil
}
