package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errInjected = errors.New("injected write failure")

// failUpdatesOn makes every later UPDATE of table fail
func failUpdatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	name := "test:fail_update_" + table
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register(name, func(d *gorm.DB) {
		if d.Statement.Table == table {
			d.AddError(errInjected)
		}
	}))
}

func TestCreatePayoutRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	partner, commission := commissionFixture(t, env)
	failUpdatesOn(t, env.db, "affiliate_partners")

	_, err := env.payouts.CreatePayout(context.Background(), 1, CreatePayoutInput{
		AffiliateID:   partner.ID,
		CommissionIDs: []uint{commission.ID},
		Method:        models.PayoutMethodBankTransfer,
	})
	require.ErrorIs(t, err, errInjected)

	var payouts int64
	require.NoError(t, env.db.Model(&models.AffiliatePayout{}).Count(&payouts).Error)
	assert.Zero(t, payouts)

	var stored models.AffiliateCommission
	require.NoError(t, env.db.First(&stored, commission.ID).Error)
	assert.False(t, stored.IsPaid)
	assert.Nil(t, stored.PayoutID)
	assert.Nil(t, stored.PaidAt)

	reloaded := env.reloadAffiliate(t, partner.ID)
	assertMoney(t, "10.00", reloaded.PendingEarnings)
	assertMoney(t, "0.00", reloaded.PaidEarnings)
}

func TestOnSubscriptionCreatedRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	partner := env.activeAffiliate(t, "affiliate@menusphere.test", "AB12CD34")
	user := env.createUser(t, "referred@menusphere.test")
	referral := env.referrals.Consume(ctx, "AB12CD34", user.ID, "", "")
	require.NotNil(t, referral)
	failUpdatesOn(t, env.db, "affiliate_partners")

	_, err := env.commissions.OnSubscriptionCreated(ctx, user.ID, 1, money("100"))
	require.ErrorIs(t, err, errInjected)

	var commissions int64
	require.NoError(t, env.db.Model(&models.AffiliateCommission{}).Count(&commissions).Error)
	assert.Zero(t, commissions)

	var stored models.Referral
	require.NoError(t, env.db.First(&stored, referral.ID).Error)
	assert.False(t, stored.HasSubscribed)
	assert.Nil(t, stored.FirstSubscription)

	reloaded := env.reloadAffiliate(t, partner.ID)
	assertMoney(t, "0.00", reloaded.TotalEarnings)
	assertMoney(t, "0.00", reloaded.PendingEarnings)
}

func TestCreateReferralRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	partner := env.activeAffiliate(t, "affiliate@menusphere.test", "AB12CD34")
	user := env.createUser(t, "referred@menusphere.test")
	failUpdatesOn(t, env.db, "affiliate_partners")

	_, err := env.referrals.CreateReferral(ctx, "AB12CD34", user.ID, "10.0.0.1", "test-agent")
	require.ErrorIs(t, err, errInjected)

	var referrals int64
	require.NoError(t, env.db.Model(&models.Referral{}).Count(&referrals).Error)
	assert.Zero(t, referrals)
	assert.Zero(t, env.reloadAffiliate(t, partner.ID).TotalReferrals)
}

// race runs fn from n goroutines released at the same moment
func race(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func succeeded(errs []error) int {
	n := 0
	for _, err := range errs {
		if err == nil {
			n++
		}
	}
	return n
}

func TestConcurrentPayoutsSettleOnce(t *testing.T) {
	env := newTestEnvWithDB(t, newSharedTestDB(t))
	partner, commission := commissionFixture(t, env)

	errs := race(2, func(int) error {
		_, err := env.payouts.CreatePayout(context.Background(), 1, CreatePayoutInput{
			AffiliateID:   partner.ID,
			CommissionIDs: []uint{commission.ID},
			Method:        models.PayoutMethodBankTransfer,
		})
		return err
	})

	require.Equal(t, 1, succeeded(errs), "errors: %v", errs)
	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, ErrNoEligibleCommissions) || errors.Is(err, ErrPayoutConflict), "unexpected error: %v", err)
		}
	}

	var payouts int64
	require.NoError(t, env.db.Model(&models.AffiliatePayout{}).Count(&payouts).Error)
	assert.Equal(t, int64(1), payouts)

	reloaded := env.reloadAffiliate(t, partner.ID)
	assertMoney(t, "0.00", reloaded.PendingEarnings)
	assertMoney(t, "10.00", reloaded.PaidEarnings)
}

func TestConcurrentRedemptionsOfLastPromoUse(t *testing.T) {
	env := newTestEnvWithDB(t, newSharedTestDB(t))
	promo := createPromo(t, env, CreatePromoCodeInput{Code: "LAST1", Type: models.PromoTypeFixed, DiscountValue: money("5"), MaxUses: ptr(1)})

	users := make([]*models.User, 3)
	for i := range users {
		users[i] = env.createUser(t, fmt.Sprintf("owner%d@menusphere.test", i))
	}

	errs := race(len(users), func(i int) error {
		_, err := env.promos.ApplyToAmount(context.Background(), nil, ApplyPromoCodeInput{
			Code:   "LAST1",
			UserID: users[i].ID,
			Amount: money("50"),
		})
		return err
	})

	require.Equal(t, 1, succeeded(errs), "errors: %v", errs)
	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, ErrPromoUsageLimit), "unexpected error: %v", err)
		}
	}

	reloaded, err := env.promos.Get(context.Background(), promo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.UsedCount)

	var usages int64
	require.NoError(t, env.db.Model(&models.PromoCodeUsage{}).Count(&usages).Error)
	assert.Equal(t, int64(1), usages)
}

func TestConcurrentConsumeCountsReferralOnce(t *testing.T) {
	env := newTestEnvWithDB(t, newSharedTestDB(t))
	ctx := context.Background()
	partner := env.activeAffiliate(t, "affiliate@menusphere.test", "AB12CD34")
	user := env.createUser(t, "referred@menusphere.test")
	_, err := env.settings.Get(ctx)
	require.NoError(t, err)

	referrals := make([]*models.Referral, 2)
	race(len(referrals), func(i int) error {
		referrals[i] = env.referrals.Consume(ctx, "AB12CD34", user.ID, "", "")
		return nil
	})

	for _, referral := range referrals {
		require.NotNil(t, referral)
		assert.Equal(t, referrals[0].ID, referral.ID)
	}

	var count int64
	require.NoError(t, env.db.Model(&models.Referral{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, env.reloadAffiliate(t, partner.ID).TotalReferrals)
}
