package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCreatesPendingAffiliate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "owner@menusphere.test")
	env.affiliates.generateCode = func() (string, error) { return "AB12CD34", nil }

	iban := "gb82 west 1234 5698 7654 32"
	partner, err := env.affiliates.Apply(context.Background(), user.ID, BankInfoInput{IBAN: &iban})
	require.NoError(t, err)

	assert.Equal(t, "AB12CD34", partner.ReferralCode)
	assert.Equal(t, models.AffiliateStatusPending, partner.Status)
	assert.Nil(t, partner.ApprovedAt)
	require.NotNil(t, partner.IBAN)
	assert.Equal(t, "GB82WEST12345698765432", *partner.IBAN)
	assert.Nil(t, partner.BankName)
	assertMoney(t, "0.00", partner.TotalEarnings)
}

func TestApplyStaysPendingWithoutApprovalSetting(t *testing.T) {
	env := newTestEnv(t)
	env.setSettings(t, UpdateSettingsInput{RequireApproval: ptr(false)})
	user := env.createUser(t, "owner@menusphere.test")

	partner, err := env.affiliates.Apply(context.Background(), user.ID, BankInfoInput{})
	require.NoError(t, err)
	assert.Equal(t, models.AffiliateStatusPending, partner.Status)
	assert.Nil(t, partner.ApprovedAt)
	assert.Nil(t, partner.ApprovedBy)
	assert.Len(t, partner.ReferralCode, 8)

	// a pending partner's code does not attribute signups
	_, err = env.referrals.CreateReferral(context.Background(), partner.ReferralCode, 999, "", "")
	assert.True(t, errors.Is(err, ErrInvalidReferralCode))
}

func TestApplyUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.affiliates.Apply(context.Background(), 42, BankInfoInput{})
	assert.True(t, errors.Is(err, ErrUserNotFound))

	var count int64
	require.NoError(t, env.db.Model(&models.AffiliatePartner{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyTwiceReturnsExistingRecord(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "owner@menusphere.test")
	ctx := context.Background()

	first, err := env.affiliates.Apply(ctx, user.ID, BankInfoInput{})
	require.NoError(t, err)

	_, err = env.affiliates.Apply(ctx, user.ID, BankInfoInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyApplied))

	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.Code)
	existing, ok := appErr.Data.(*models.AffiliatePartner)
	require.True(t, ok)
	assert.Equal(t, first.ID, existing.ID)

	var count int64
	require.NoError(t, env.db.Model(&models.AffiliatePartner{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyRejectsInvalidIBAN(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "owner@menusphere.test")

	iban := "GB00 WEST 1234 5698 7654 32"
	_, err := env.affiliates.Apply(context.Background(), user.ID, BankInfoInput{IBAN: &iban})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))
}

func TestApplyRetriesReferralCodeCollisions(t *testing.T) {
	env := newTestEnv(t)
	env.activeAffiliate(t, "first@menusphere.test", "AAAA0000")
	user := env.createUser(t, "second@menusphere.test")

	codes := []string{"AAAA0000", "AAAA0000", "BBBB1111"}
	calls := 0
	env.affiliates.generateCode = func() (string, error) {
		code := codes[calls]
		calls++
		return code, nil
	}

	partner, err := env.affiliates.Apply(context.Background(), user.ID, BankInfoInput{})
	require.NoError(t, err)
	assert.Equal(t, "BBBB1111", partner.ReferralCode)
	assert.Equal(t, 3, calls)
}

func TestApplyGivesUpAfterRepeatedCollisions(t *testing.T) {
	env := newTestEnv(t)
	env.activeAffiliate(t, "first@menusphere.test", "AAAA0000")
	user := env.createUser(t, "second@menusphere.test")

	calls := 0
	env.affiliates.generateCode = func() (string, error) {
		calls++
		return "AAAA0000", nil
	}

	_, err := env.affiliates.Apply(context.Background(), user.ID, BankInfoInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReferralCodeExhausted))
	assert.Equal(t, maxReferralCodeAttempts, calls)

	_, err = env.affiliates.findByUser(env.db, user.ID)
	assert.True(t, errors.Is(err, ErrAffiliateNotFound))
}

func TestUpdateStatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	user := env.createUser(t, "owner@menusphere.test")
	ctx := context.Background()

	partner, err := env.affiliates.Apply(ctx, user.ID, BankInfoInput{})
	require.NoError(t, err)

	_, err = env.affiliates.UpdateStatus(ctx, partner.ID, models.AffiliateStatusSuspended, admin.ID)
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))

	approved, err := env.affiliates.UpdateStatus(ctx, partner.ID, "active", admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AffiliateStatusActive, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, admin.ID, *approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	_, err = env.affiliates.UpdateStatus(ctx, partner.ID, models.AffiliateStatusPending, admin.ID)
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))

	suspended, err := env.affiliates.UpdateStatus(ctx, partner.ID, models.AffiliateStatusSuspended, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, suspended.ApprovedBy)

	_, err = env.affiliates.UpdateStatus(ctx, partner.ID, models.AffiliateStatusBanned, admin.ID)
	require.NoError(t, err)

	_, err = env.affiliates.UpdateStatus(ctx, partner.ID, models.AffiliateStatusActive, admin.ID)
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))

	require.Len(t, env.notifier.calls, 3)
	assert.Equal(t, recordedNotification{kind: "affiliate", userID: user.ID, status: models.AffiliateStatusBanned}, env.notifier.calls[2])
}

func TestUpdateStatusValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.affiliates.UpdateStatus(ctx, 1, "RETIRED", 1)
	assert.True(t, utils.IsValidationError(err))

	_, err = env.affiliates.UpdateStatus(ctx, 999, models.AffiliateStatusActive, 1)
	assert.True(t, errors.Is(err, ErrAffiliateNotFound))
}

func TestAffiliateStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{models.AffiliateStatusPending, models.AffiliateStatusActive, true},
		{models.AffiliateStatusPending, models.AffiliateStatusBanned, true},
		{models.AffiliateStatusPending, models.AffiliateStatusSuspended, false},
		{models.AffiliateStatusActive, models.AffiliateStatusSuspended, true},
		{models.AffiliateStatusActive, models.AffiliateStatusPending, false},
		{models.AffiliateStatusSuspended, models.AffiliateStatusActive, true},
		{models.AffiliateStatusBanned, models.AffiliateStatusActive, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransitionAffiliate(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestReferralLinkRequiresActiveAffiliate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "owner@menusphere.test")
	ctx := context.Background()
	env.affiliates.generateCode = func() (string, error) { return "AB12CD34", nil }

	_, err := env.affiliates.GetReferralLink(ctx, user.ID, "https://app.menusphere.test")
	assert.True(t, errors.Is(err, ErrAffiliateNotFound))

	partner, err := env.affiliates.Apply(ctx, user.ID, BankInfoInput{})
	require.NoError(t, err)

	_, err = env.affiliates.GetReferralLink(ctx, user.ID, "https://app.menusphere.test")
	assert.True(t, errors.Is(err, ErrAffiliateNotActive))

	_, err = env.affiliates.UpdateStatus(ctx, partner.ID, models.AffiliateStatusActive, 1)
	require.NoError(t, err)

	link, err := env.affiliates.GetReferralLink(ctx, user.ID, "https://app.menusphere.test/")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34", link.ReferralCode)
	assert.Equal(t, "https://app.menusphere.test/auth/register?ref=AB12CD34", link.Link)
}

func TestUpdateBankInfo(t *testing.T) {
	env := newTestEnv(t)
	partner := env.activeAffiliate(t, "owner@menusphere.test", "AB12CD34")
	ctx := context.Background()

	iban := "DE89 3704 0044 0532 0130 00"
	updated, err := env.affiliates.UpdateBankInfo(ctx, partner.UserID, BankInfoInput{IBAN: &iban})
	require.NoError(t, err)
	require.NotNil(t, updated.IBAN)
	assert.Equal(t, "DE89370400440532013000", *updated.IBAN)
	require.NotNil(t, updated.BankName)
	assert.Equal(t, "West Bank", *updated.BankName)

	empty := ""
	updated, err = env.affiliates.UpdateBankInfo(ctx, partner.UserID, BankInfoInput{BankName: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.BankName)
}

func TestGetMineReportsPayoutEligibility(t *testing.T) {
	env := newTestEnv(t)
	partner := env.activeAffiliate(t, "affiliate@menusphere.test", "AB12CD34")
	referred := env.createUser(t, "referred@menusphere.test")
	ctx := context.Background()

	_, err := env.referrals.CreateReferral(ctx, "AB12CD34", referred.ID, "127.0.0.1", "test")
	require.NoError(t, err)
	_, err = env.commissions.OnSubscriptionCreated(ctx, referred.ID, 1, money("100"))
	require.NoError(t, err)

	overview, err := env.affiliates.GetMine(ctx, partner.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, overview.Stats.TotalReferrals)
	assert.Equal(t, int64(1), overview.Stats.ActiveReferrals)
	assert.Equal(t, int64(1), overview.Stats.UnpaidCommissions)
	assertMoney(t, "10.00", overview.Stats.PendingEarnings)
	assert.False(t, overview.Stats.EligibleForPayout)

	env.setSettings(t, UpdateSettingsInput{MinimumPayout: ptr(money("10"))})
	overview, err = env.affiliates.GetMine(ctx, partner.UserID)
	require.NoError(t, err)
	assert.True(t, overview.Stats.EligibleForPayout)
}

func TestListsAndProgramStats(t *testing.T) {
	env := newTestEnv(t)
	partner := env.activeAffiliate(t, "affiliate@menusphere.test", "AB12CD34")
	pending := env.createUser(t, "pending@menusphere.test")
	env.affiliates.generateCode = func() (string, error) { return "PEND0001", nil }
	_, err := env.affiliates.Apply(context.Background(), pending.ID, BankInfoInput{})
	require.NoError(t, err)

	ctx := context.Background()
	for i, email := range []string{"a@menusphere.test", "b@menusphere.test"} {
		user := env.createUser(t, email)
		_, err := env.referrals.CreateReferral(ctx, "AB12CD34", user.ID, "", "")
		require.NoError(t, err)
		_, err = env.commissions.OnSubscriptionCreated(ctx, user.ID, uint(i+1), money("49.99"))
		require.NoError(t, err)
	}

	page := utils.NewPage(1, 10)
	all, err := env.affiliates.List(ctx, "", page)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(2), page.Total)

	page = utils.NewPage(1, 10)
	active, err := env.affiliates.List(ctx, "active", page)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, partner.ID, active[0].ID)

	page = utils.NewPage(1, 1)
	referrals, err := env.affiliates.ListMyReferrals(ctx, partner.UserID, page)
	require.NoError(t, err)
	assert.Len(t, referrals, 1)
	assert.Equal(t, 2, page.LastPage)

	page = utils.NewPage(1, 10)
	unpaid, err := env.affiliates.ListMyCommissions(ctx, partner.UserID, ptr(false), page)
	require.NoError(t, err)
	assert.Len(t, unpaid, 2)

	stats, err := env.affiliates.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalAffiliates)
	assert.Equal(t, int64(1), stats.ActiveAffiliates)
	assert.Equal(t, int64(1), stats.PendingAffiliates)
	assert.Equal(t, int64(2), stats.TotalReferrals)
	assert.Equal(t, int64(2), stats.TotalCommissions)
	assert.Equal(t, int64(2), stats.UnpaidCommissions)
	assertMoney(t, "10.00", stats.CommissionAmount)
}
