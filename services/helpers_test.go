package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/MenuSphere/config"
	"github.com/Govind-619/MenuSphere/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	return openTestDB(t, dsn, 1)
}

// newSharedTestDB opens a file database that several connections write to.
// Transactions take the write lock up front and wait for each other.
func newSharedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menusphere.db")
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=10000&_journal_mode=WAL", path)
	return openTestDB(t, dsn, 4)
}

func openTestDB(t *testing.T, dsn string, maxConns int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

type recordedNotification struct {
	kind   string
	userID uint
	status string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []recordedNotification
}

func (n *fakeNotifier) AffiliateStatusChanged(_ context.Context, user models.User, partner models.AffiliatePartner) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recordedNotification{kind: "affiliate", userID: user.ID, status: partner.Status})
}

func (n *fakeNotifier) PayoutStatusChanged(_ context.Context, user models.User, payout models.AffiliatePayout) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recordedNotification{kind: "payout", userID: user.ID, status: payout.Status})
}

type testEnv struct {
	db          *gorm.DB
	notifier    *fakeNotifier
	settings    *SettingsService
	affiliates  *AffiliateService
	referrals   *ReferralService
	commissions *CommissionService
	payouts     *PayoutService
	promos      *PromoCodeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, newTestDB(t))
}

func newTestEnvWithDB(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()
	notifier := &fakeNotifier{}
	settings := NewSettingsService(db, nil)

	env := &testEnv{
		db:          db,
		notifier:    notifier,
		settings:    settings,
		affiliates:  NewAffiliateService(db, settings, notifier),
		referrals:   NewReferralService(db, settings),
		commissions: NewCommissionService(db, settings),
		payouts:     NewPayoutService(db, notifier),
		promos:      NewPromoCodeService(db),
	}
	clock := func() time.Time { return testNow }
	env.affiliates.now = clock
	env.commissions.now = clock
	env.payouts.now = clock
	env.promos.now = clock
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, FullName: "Test User", Role: models.RoleRestaurantOwner}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createAdmin(t *testing.T) *models.User {
	t.Helper()
	admin := &models.User{Email: "admin@menusphere.test", FullName: "Admin", Role: models.RoleAdmin}
	require.NoError(t, e.db.Create(admin).Error)
	return admin
}

// activeAffiliate enrolls a new user with a fixed referral code and approves it
func (e *testEnv) activeAffiliate(t *testing.T, email, code string) *models.AffiliatePartner {
	t.Helper()
	user := e.createUser(t, email)
	e.affiliates.generateCode = func() (string, error) { return code, nil }

	iban := "GB82 WEST 1234 5698 7654 32"
	bank := "West Bank"
	holder := "Test Holder"
	partner, err := e.affiliates.Apply(context.Background(), user.ID, BankInfoInput{BankName: &bank, AccountHolder: &holder, IBAN: &iban})
	require.NoError(t, err)

	if partner.Status != models.AffiliateStatusActive {
		partner, err = e.affiliates.UpdateStatus(context.Background(), partner.ID, models.AffiliateStatusActive, 1)
		require.NoError(t, err)
	}
	return partner
}

func (e *testEnv) reloadAffiliate(t *testing.T, id uint) *models.AffiliatePartner {
	t.Helper()
	var partner models.AffiliatePartner
	require.NoError(t, e.db.First(&partner, id).Error)
	return &partner
}

func (e *testEnv) setSettings(t *testing.T, input UpdateSettingsInput) {
	t.Helper()
	_, err := e.settings.Update(context.Background(), input)
	require.NoError(t, err)
}

func ptr[T any](v T) *T {
	return &v
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}
