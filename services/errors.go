package services

import (
	"net/http"

	"github.com/Govind-619/MenuSphere/utils"
)

// Affiliate program errors
var (
	ErrAffiliateNotFound       = utils.Reasoned(http.StatusNotFound, "AFFILIATE_NOT_FOUND", "Affiliate partner not found")
	ErrAlreadyApplied          = utils.Reasoned(http.StatusBadRequest, "ALREADY_APPLIED", "You have already applied to the affiliate program")
	ErrAffiliateNotActive      = utils.Reasoned(http.StatusForbidden, "AFFILIATE_NOT_ACTIVE", "Your affiliate account is not active")
	ErrReferralCodeExhausted   = utils.Reasoned(http.StatusServiceUnavailable, "REFERRAL_CODE_EXHAUSTED", "Could not allocate a referral code, please retry")
	ErrInvalidStatusTransition = utils.InvalidStateError("INVALID_STATUS_TRANSITION", "Status transition is not allowed")
	ErrProgramDisabled         = utils.InvalidStateError("PROGRAM_DISABLED", "The affiliate program is disabled")
	ErrInvalidReferralCode     = utils.InvalidStateError("INVALID_REFERRAL_CODE", "Referral code is invalid or inactive")
	ErrSelfReferral            = utils.InvalidStateError("SELF_REFERRAL", "You cannot refer yourself")
	ErrUserNotFound            = utils.Reasoned(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
)

// Payout errors
var (
	ErrPayoutNotFound        = utils.Reasoned(http.StatusNotFound, "PAYOUT_NOT_FOUND", "Payout not found")
	ErrNoEligibleCommissions = utils.InvalidStateError("NO_ELIGIBLE_COMMISSIONS", "No unpaid commissions match this affiliate")
	ErrPayoutConflict        = utils.Reasoned(http.StatusConflict, "PAYOUT_CONFLICT", "Commissions were settled by another payout")
)

// Promo code errors, one per failed check
var (
	ErrPromoNotFound      = utils.Reasoned(http.StatusNotFound, "PROMO_NOT_FOUND", "Promo code not found")
	ErrPromoInactive      = utils.InvalidStateError("PROMO_INACTIVE", "Promo code is not active")
	ErrPromoNotYetValid   = utils.InvalidStateError("PROMO_NOT_YET_VALID", "Promo code is not valid yet")
	ErrPromoExpired       = utils.InvalidStateError("PROMO_EXPIRED", "Promo code has expired")
	ErrPromoUsageLimit    = utils.InvalidStateError("PROMO_USAGE_LIMIT", "Promo code usage limit reached")
	ErrPromoPlanMismatch  = utils.InvalidStateError("PROMO_PLAN_MISMATCH", "Promo code is not valid for this plan")
	ErrPromoAlreadyUsed   = utils.Reasoned(http.StatusConflict, "PROMO_ALREADY_USED", "You have already used this promo code")
	ErrDuplicatePromoCode = utils.Reasoned(http.StatusConflict, "DUPLICATE_CODE", "A promo code with this code already exists")
	ErrPromoChanged       = utils.Reasoned(http.StatusConflict, "PROMO_CHANGED", "Promo code changed during checkout, please retry")
)

// Subscription errors
var (
	ErrPlanNotFound            = utils.Reasoned(http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found")
	ErrSubscriptionNotFound    = utils.Reasoned(http.StatusNotFound, "SUBSCRIPTION_NOT_FOUND", "Subscription not found")
	ErrSubscriptionNotPending  = utils.InvalidStateError("SUBSCRIPTION_NOT_PENDING", "Subscription is not awaiting payment")
	ErrInvalidPaymentSignature = utils.InvalidStateError("INVALID_PAYMENT_SIGNATURE", "Payment signature verification failed")
	ErrPaymentUnavailable      = utils.Reasoned(http.StatusServiceUnavailable, "PAYMENT_UNAVAILABLE", "Payment gateway is not configured")
)

// Auth errors
var (
	ErrAccountExists         = utils.Reasoned(http.StatusConflict, "ACCOUNT_EXISTS", "Email or username is already registered")
	ErrInvalidCredentials    = utils.Reasoned(http.StatusUnauthorized, "INVALID_CREDENTIALS", utils.ErrInvalidCredentials)
	ErrUserBlocked           = utils.Reasoned(http.StatusForbidden, "USER_BLOCKED", utils.ErrUserBlocked)
	ErrGoogleEmailUnverified = utils.Reasoned(http.StatusForbidden, "GOOGLE_EMAIL_UNVERIFIED",
		"Verify your Google email before signing in to an existing account")
)
