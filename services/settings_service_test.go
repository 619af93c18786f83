package services

import (
	"context"
	"testing"

	"github.com/Govind-619/MenuSphere/models"
	"github.com/Govind-619/MenuSphere/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsCache struct {
	value       *models.AffiliateSettings
	sets        int
	invalidated int
}

func (c *fakeSettingsCache) Get(context.Context) (*models.AffiliateSettings, error) {
	if c.value == nil {
		return nil, nil
	}
	copied := *c.value
	return &copied, nil
}

func (c *fakeSettingsCache) Set(_ context.Context, settings *models.AffiliateSettings) error {
	copied := *settings
	c.value = &copied
	c.sets++
	return nil
}

func (c *fakeSettingsCache) Invalidate(context.Context) error {
	c.value = nil
	c.invalidated++
	return nil
}

func TestSettingsGetCreatesDefaultsOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db, nil)
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, first.IsEnabled)
	assertMoney(t, "10.00", first.CommissionRate)
	assertMoney(t, "100.00", first.MinimumPayout)
	assert.Equal(t, 30, first.CookieDuration)
	assert.True(t, first.RequireApproval)

	second, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.AffiliateSettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSettingsUpdatePartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db, nil)
	ctx := context.Background()

	updated, err := svc.Update(ctx, UpdateSettingsInput{
		CommissionRate:  ptr(money("12.5")),
		RequireApproval: ptr(false),
	})
	require.NoError(t, err)
	assertMoney(t, "12.50", updated.CommissionRate)
	assert.False(t, updated.RequireApproval)
	assert.True(t, updated.IsEnabled)
	assert.Equal(t, 30, updated.CookieDuration)

	updated, err = svc.Update(ctx, UpdateSettingsInput{IsEnabled: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsEnabled)
	assert.False(t, updated.RequireApproval)
	assertMoney(t, "12.50", updated.CommissionRate)
}

func TestSettingsUpdateRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name  string
		input UpdateSettingsInput
		field string
	}{
		{"negative rate", UpdateSettingsInput{CommissionRate: ptr(money("-1"))}, "commission_rate"},
		{"rate above 100", UpdateSettingsInput{CommissionRate: ptr(money("100.01"))}, "commission_rate"},
		{"negative minimum payout", UpdateSettingsInput{MinimumPayout: ptr(money("-0.01"))}, "minimum_payout"},
		{"zero cookie duration", UpdateSettingsInput{CookieDuration: ptr(0)}, "cookie_duration"},
		{"cookie duration above a year", UpdateSettingsInput{CookieDuration: ptr(366)}, "cookie_duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSettingsService(newTestDB(t), nil)
			_, err := svc.Update(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, utils.IsValidationError(err))

			var fields utils.FieldValidationErrors
			require.ErrorAs(t, err, &fields)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestSettingsCacheIsInvalidatedOnUpdate(t *testing.T) {
	db := newTestDB(t)
	cache := &fakeSettingsCache{}
	svc := NewSettingsService(db, cache)
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// served from cache
	_, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.Update(ctx, UpdateSettingsInput{CommissionRate: ptr(money("20"))})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)
	assert.Nil(t, cache.value)

	fresh, err := svc.Get(ctx)
	require.NoError(t, err)
	assertMoney(t, "20.00", fresh.CommissionRate)
	assert.Equal(t, 2, cache.sets)
}
