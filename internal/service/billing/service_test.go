package billing_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/myanmatch/backend/internal/app"
	"github.com/myanmatch/backend/internal/cache"
	"github.com/myanmatch/backend/internal/config"
	"github.com/myanmatch/backend/internal/db"
	"github.com/myanmatch/backend/internal/service/billing"
)

// setupService wires an in-memory SQLite DB and a miniredis into a billing
// Service with deterministic costs: plus = 10000, x = 20000, 30-day term.
func setupService(t *testing.T) (*billing.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, dbase.AutoMigrate(&db.Profile{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Billing.PlusCost = 10000
	cfg.Billing.XCost = 20000
	cfg.Billing.TermDays = 30

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	appCtx := app.New(dbase, redisCache, logger)
	return billing.NewService(appCtx, cfg), dbase
}

// TestPurchaseAtExactBalance checks the boundary: balance == cost succeeds
// and leaves zero coins.
func TestPurchaseAtExactBalance(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	require.NoError(t, dbase.Create(&db.Profile{
		UserID: 1, Username: "u1", Email: "u1@test.com", PasswordHash: "x",
		MembershipPlan: "free", Coin: 10000,
	}).Error)

	res, err := svc.Purchase(ctx, 1, "plus")
	require.NoError(t, err)
	assert.Equal(t, "plus", res.Plan)
	assert.Equal(t, int64(0), res.Coin)
	assert.Equal(t, "get", res.Action)

	wantExpiry := time.Now().UTC().Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, wantExpiry, time.UnixMilli(res.ExpiresAt), time.Minute)
}

// TestPurchaseInsufficientBalance checks that a short balance is rejected
// with a conflict and nothing on the row changes.
func TestPurchaseInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	require.NoError(t, dbase.Create(&db.Profile{
		UserID: 1, Username: "u1", Email: "u1@test.com", PasswordHash: "x",
		MembershipPlan: "free", Coin: 9999,
	}).Error)

	_, err := svc.Purchase(ctx, 1, "plus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough coins")

	var p db.Profile
	require.NoError(t, dbase.First(&p, "user_id = ?", 1).Error)
	assert.Equal(t, int64(9999), p.Coin)
	assert.Equal(t, "free", p.MembershipPlan)
	assert.Nil(t, p.MembershipExpiresAt)
}

func TestPurchaseRejectsUnknownPlan(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	require.NoError(t, dbase.Create(&db.Profile{
		UserID: 1, Username: "u1", Email: "u1@test.com", PasswordHash: "x",
		MembershipPlan: "free", Coin: 50000,
	}).Error)

	_, err := svc.Purchase(ctx, 1, "gold")
	assert.Error(t, err)

	_, err = svc.Purchase(ctx, 1, "free")
	assert.Error(t, err)
}

// TestUpgradeKeepsActiveExpiry checks plus→x while plus is active: the plan
// changes but the expiry window stays.
func TestUpgradeKeepsActiveExpiry(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	expiry := time.Now().UTC().Add(10 * 24 * time.Hour).Truncate(time.Millisecond)
	require.NoError(t, dbase.Create(&db.Profile{
		UserID: 1, Username: "u1", Email: "u1@test.com", PasswordHash: "x",
		MembershipPlan: "plus", MembershipExpiresAt: &expiry, Coin: 20000,
	}).Error)

	res, err := svc.Purchase(ctx, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", res.Plan)
	assert.Equal(t, "get", res.Action)
	assert.Equal(t, expiry.UnixMilli(), res.ExpiresAt)
}

// TestUpgradeFromExpiredPlusGrantsFreshTerm checks that an expired plus plan
// gives no credit toward x.
func TestUpgradeFromExpiredPlusGrantsFreshTerm(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, dbase.Create(&db.Profile{
		UserID: 1, Username: "u1", Email: "u1@test.com", PasswordHash: "x",
		MembershipPlan: "plus", MembershipExpiresAt: &past, Coin: 20000,
	}).Error)

	res, err := svc.Purchase(ctx, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", res.Plan)
	assert.Equal(t, "get", res.Action)

	wantExpiry := time.Now().UTC().Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, wantExpiry, time.UnixMilli(res.ExpiresAt), time.Minute)
}

// TestRenewLabeling checks that rebuying the current active plan is a
// "renew", while buying a different plan is a "get".
func TestRenewLabeling(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	expiry := time.Now().UTC().Add(5 * 24 * time.Hour)
	require.NoError(t, dbase.Create(&db.Profile{
		UserID: 1, Username: "u1", Email: "u1@test.com", PasswordHash: "x",
		MembershipPlan: "x", MembershipExpiresAt: &expiry, Coin: 40000,
	}).Error)

	res, err := svc.Purchase(ctx, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, "renew", res.Action)
	assert.Equal(t, int64(20000), res.Coin)
}

// TestMeReflectsLazyDowngrade checks that reading the snapshot of an expired
// paid user rewrites the row to free and reports it as inactive.
func TestMeReflectsLazyDowngrade(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, dbase.Create(&db.Profile{
		UserID: 1, Username: "u1", Email: "u1@test.com", PasswordHash: "x",
		MembershipPlan: "x", MembershipExpiresAt: &past, Coin: 123,
	}).Error)

	snap, err := svc.Me(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "free", snap.Plan)
	assert.False(t, snap.Active)
	assert.Nil(t, snap.ExpiresAt)
	assert.Equal(t, int64(123), snap.Coin)

	var p db.Profile
	require.NoError(t, dbase.First(&p, "user_id = ?", 1).Error)
	assert.Equal(t, "free", p.MembershipPlan)
	assert.Nil(t, p.MembershipExpiresAt)
}

func TestMeActiveSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, dbase := setupService(t)

	expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
	require.NoError(t, dbase.Create(&db.Profile{
		UserID: 1, Username: "u1", Email: "u1@test.com", PasswordHash: "x",
		MembershipPlan: "plus", MembershipExpiresAt: &expiry, Coin: 500,
	}).Error)

	snap, err := svc.Me(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "plus", snap.Plan)
	assert.True(t, snap.Active)
	require.NotNil(t, snap.ExpiresAt)
	assert.Equal(t, expiry.UnixMilli(), *snap.ExpiresAt)
}
