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

// commissionFixture returns an active affiliate holding one 10.00 commission
func commissionFixture(t *testing.T, env *testEnv) (*models.AffiliatePartner, *models.AffiliateCommission) {
	t.Helper()
	ctx := context.Background()
	partner := env.activeAffiliate(t, "affiliate@menusphere.test", "AB12CD34")
	user := env.createUser(t, "referred@menusphere.test")
	require.NotNil(t, env.referrals.Consume(ctx, "AB12CD34", user.ID, "", ""))
	commission, err := env.commissions.OnSubscriptionCreated(ctx, user.ID, 1, money("100"))
	require.NoError(t, err)
	require.NotNil(t, commission)
	return partner, commission
}

func TestCreatePayoutSettlesCommissions(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createAdmin(t)
	partner, commission := commissionFixture(t, env)
	ctx := context.Background()

	payout, err := env.payouts.CreatePayout(ctx, admin.ID, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID},
		Method:        models.PayoutMethodBankTransfer,
		Notes:         "  March run ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, payout.Status)
	assertMoney(t, "10.00", payout.Amount)
	assert.Equal(t, []uint{commission.ID}, []uint(payout.CommissionIDs))
	assert.Equal(t, "March run", payout.Notes)
	assert.Equal(t, admin.ID, payout.CreatedBy)
	require.NotNil(t, payout.IBAN)
	assert.Equal(t, "GB82WEST12345698765432", *payout.IBAN)
	require.Len(t, payout.Commissions, 1)
	assert.Equal(t, "affiliate@menusphere.test", payout.Affiliate.User.Email)

	var stored models.AffiliateCommission
	require.NoError(t, env.db.First(&stored, commission.ID).Error)
	assert.True(t, stored.IsPaid)
	require.NotNil(t, stored.PayoutID)
	assert.Equal(t, payout.ID, *stored.PayoutID)
	require.NotNil(t, stored.PaidAt)

	reloaded := env.reloadAffiliate(t, partner.ID)
	assertMoney(t, "0.00", reloaded.PendingEarnings)
	assertMoney(t, "10.00", reloaded.PaidEarnings)
	assertMoney(t, "10.00", reloaded.TotalEarnings)
}

func TestCreatePayoutSkipsIneligibleCommissions(t *testing.T) {
	env := newTestEnv(t)
	partner, commission := commissionFixture(t, env)
	ctx := context.Background()

	other := env.activeAffiliate(t, "other@menusphere.test", "OTHER001")
	otherUser := env.createUser(t, "other-referred@menusphere.test")
	require.NotNil(t, env.referrals.Consume(ctx, "OTHER001", otherUser.ID, "", ""))
	foreign, err := env.commissions.OnSubscriptionCreated(ctx, otherUser.ID, 2, money("50"))
	require.NoError(t, err)

	payout, err := env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID, foreign.ID, 9999},
		Method:        models.PayoutMethodPaypal,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{commission.ID}, []uint(payout.CommissionIDs))
	assertMoney(t, "10.00", payout.Amount)

	assertMoney(t, "5.00", env.reloadAffiliate(t, other.ID).PendingEarnings)

	// already paid
	_, err = env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID},
		Method:        models.PayoutMethodPaypal,
	})
	assert.True(t, errors.Is(err, ErrNoEligibleCommissions))
}

func TestCreatePayoutValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{AffiliateID: 1, Method: "CASH"})
	require.Error(t, err)
	var fields utils.FieldValidationErrors
	require.ErrorAs(t, err, &fields)
	assert.Len(t, fields, 2)

	_, err = env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{
		AffiliateID:   404,
		CommissionIDs: []uint{1},
		Method:        models.PayoutMethodOther,
	})
	assert.True(t, errors.Is(err, ErrAffiliateNotFound))
}

func TestCancelledPayoutIsReversed(t *testing.T) {
	env := newTestEnv(t)
	partner, commission := commissionFixture(t, env)
	ctx := context.Background()

	payout, err := env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID},
		Method:        models.PayoutMethodBankTransfer,
	})
	require.NoError(t, err)

	cancelled, err := env.payouts.UpdatePayoutStatus(ctx, payout.ID, 1, UpdatePayoutStatusInput{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusCancelled, cancelled.Status)
	assert.Empty(t, cancelled.Commissions)

	var stored models.AffiliateCommission
	require.NoError(t, env.db.First(&stored, commission.ID).Error)
	assert.False(t, stored.IsPaid)
	assert.Nil(t, stored.PayoutID)
	assert.Nil(t, stored.PaidAt)

	reloaded := env.reloadAffiliate(t, partner.ID)
	assertMoney(t, "10.00", reloaded.PendingEarnings)
	assertMoney(t, "0.00", reloaded.PaidEarnings)

	// the released commission can be settled again
	again, err := env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID},
		Method:        models.PayoutMethodBankTransfer,
	})
	require.NoError(t, err)
	assertMoney(t, "10.00", again.Amount)
}

func TestPayoutLifecycle(t *testing.T) {
	env := newTestEnv(t)
	partner, commission := commissionFixture(t, env)
	ctx := context.Background()

	payout, err := env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID},
		Method:        models.PayoutMethodBankTransfer,
	})
	require.NoError(t, err)

	processing, err := env.payouts.UpdatePayoutStatus(ctx, payout.ID, 1, UpdatePayoutStatusInput{Status: models.PayoutStatusProcessing})
	require.NoError(t, err)
	require.NotNil(t, processing.ProcessedAt)

	_, err = env.payouts.UpdatePayoutStatus(ctx, payout.ID, 1, UpdatePayoutStatusInput{Status: models.PayoutStatusCancelled})
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))

	completed, err := env.payouts.UpdatePayoutStatus(ctx, payout.ID, 1, UpdatePayoutStatusInput{
		Status:        models.PayoutStatusCompleted,
		TransactionID: ptr("TXN-001"),
	})
	require.NoError(t, err)
	require.NotNil(t, completed.TransactionID)
	assert.Equal(t, "TXN-001", *completed.TransactionID)

	_, err = env.payouts.UpdatePayoutStatus(ctx, payout.ID, 1, UpdatePayoutStatusInput{Status: models.PayoutStatusFailed})
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))

	reloaded := env.reloadAffiliate(t, partner.ID)
	assertMoney(t, "0.00", reloaded.PendingEarnings)
	assertMoney(t, "10.00", reloaded.PaidEarnings)

	payoutNotifications := 0
	for _, call := range env.notifier.calls {
		if call.kind == "payout" {
			payoutNotifications++
			assert.Equal(t, partner.UserID, call.userID)
		}
	}
	assert.Equal(t, 2, payoutNotifications)
}

func TestFailedPayoutFromProcessingIsReversed(t *testing.T) {
	env := newTestEnv(t)
	partner, commission := commissionFixture(t, env)
	ctx := context.Background()

	payout, err := env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID},
		Method:        models.PayoutMethodBankTransfer,
	})
	require.NoError(t, err)
	_, err = env.payouts.UpdatePayoutStatus(ctx, payout.ID, 1, UpdatePayoutStatusInput{Status: models.PayoutStatusProcessing})
	require.NoError(t, err)
	_, err = env.payouts.UpdatePayoutStatus(ctx, payout.ID, 1, UpdatePayoutStatusInput{Status: models.PayoutStatusFailed, Notes: ptr("bank rejected")})
	require.NoError(t, err)

	reloaded := env.reloadAffiliate(t, partner.ID)
	assertMoney(t, "10.00", reloaded.PendingEarnings)
	assertMoney(t, "0.00", reloaded.PaidEarnings)
	assertMoney(t, "10.00", reloaded.TotalEarnings)
}

func TestUpdatePayoutStatusRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.payouts.UpdatePayoutStatus(ctx, 1, 1, UpdatePayoutStatusInput{Status: "SENT"})
	assert.True(t, utils.IsValidationError(err))

	_, err = env.payouts.UpdatePayoutStatus(ctx, 404, 1, UpdatePayoutStatusInput{Status: models.PayoutStatusCompleted})
	assert.True(t, errors.Is(err, ErrPayoutNotFound))
}

func TestListPayouts(t *testing.T) {
	env := newTestEnv(t)
	partner, commission := commissionFixture(t, env)
	ctx := context.Background()

	_, err := env.payouts.CreatePayout(ctx, 1, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID},
		Method:        models.PayoutMethodBankTransfer,
	})
	require.NoError(t, err)

	page := utils.NewPage(1, 10)
	payouts, err := env.payouts.List(ctx, PayoutFilter{Status: "pending"}, page)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(1), page.Total)

	payouts, err = env.payouts.ListAll(ctx, PayoutFilter{Status: models.PayoutStatusCompleted})
	require.NoError(t, err)
	assert.Empty(t, payouts)

	payouts, err = env.payouts.ListAll(ctx, PayoutFilter{AffiliateID: partner.ID})
	require.NoError(t, err)
	assert.Len(t, payouts, 1)
}
