package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/myanmatch/backend/internal/db"
	"github.com/myanmatch/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchasePlanDebitsExactBalance(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	require.NoError(t, dbase.Create(&db.Profile{
		UserID:         1,
		Username:       "maya",
		MembershipPlan: "free",
		Coin:           10000,
	}).Error)

	expiry := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Millisecond)
	require.NoError(t, repo.PurchasePlan(ctx, 1, "plus", 10000, expiry, 0))

	p, err := repo.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Coin)
	assert.Equal(t, "plus", p.MembershipPlan)
	require.NotNil(t, p.MembershipExpiresAt)
	assert.WithinDuration(t, expiry, *p.MembershipExpiresAt, time.Second)
	assert.Equal(t, uint64(1), p.Version)
}

func TestPurchasePlanInsufficientBalanceLeavesRowUntouched(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	require.NoError(t, dbase.Create(&db.Profile{
		UserID:         1,
		Username:       "maya",
		MembershipPlan: "free",
		Coin:           9999,
	}).Error)

	err := repo.PurchasePlan(ctx, 1, "plus", 10000, time.Now().UTC().Add(time.Hour), 0)
	require.ErrorIs(t, err, repository.ErrNotEnoughCoins)

	p, getErr := repo.GetByUserID(ctx, 1)
	require.NoError(t, getErr)
	assert.Equal(t, int64(9999), p.Coin)
	assert.Equal(t, "free", p.MembershipPlan)
	assert.Nil(t, p.MembershipExpiresAt)
	assert.Equal(t, uint64(0), p.Version)
}

func TestPurchasePlanStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	require.NoError(t, dbase.Create(&db.Profile{
		UserID:         1,
		Username:       "maya",
		MembershipPlan: "free",
		Coin:           50000,
	}).Error)

	// a concurrent credit bumps the version between read and purchase
	require.NoError(t, repo.AddCoins(ctx, 1, 100))

	err := repo.PurchasePlan(ctx, 1, "plus", 10000, time.Now().UTC().Add(time.Hour), 0)
	require.ErrorIs(t, err, repository.ErrVersionConflict)

	// retry with the fresh version succeeds
	p, getErr := repo.GetByUserID(ctx, 1)
	require.NoError(t, getErr)
	require.NoError(t, repo.PurchasePlan(ctx, 1, "plus", 10000, time.Now().UTC().Add(time.Hour), p.Version))
}

func TestDowngradeIfExpired(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	require.NoError(t, dbase.Create(&[]db.Profile{
		{UserID: 1, Username: "expired", Email: "expired@example.com", MembershipPlan: "x", MembershipExpiresAt: &past},
		{UserID: 2, Username: "active", Email: "active@example.com", MembershipPlan: "plus", MembershipExpiresAt: &future},
		{UserID: 3, Username: "nilexpiry", Email: "nilexpiry@example.com", MembershipPlan: "plus"},
		{UserID: 4, Username: "freebie", Email: "freebie@example.com", MembershipPlan: "free"},
	}).Error)

	downgraded, err := repo.DowngradeIfExpired(ctx, 1, now)
	require.NoError(t, err)
	assert.True(t, downgraded)
	p, _ := repo.GetByUserID(ctx, 1)
	assert.Equal(t, "free", p.MembershipPlan)
	assert.Nil(t, p.MembershipExpiresAt)

	// active plans are untouched
	downgraded, err = repo.DowngradeIfExpired(ctx, 2, now)
	require.NoError(t, err)
	assert.False(t, downgraded)
	p, _ = repo.GetByUserID(ctx, 2)
	assert.Equal(t, "plus", p.MembershipPlan)

	// a paid plan with no expiry on record counts as expired
	downgraded, err = repo.DowngradeIfExpired(ctx, 3, now)
	require.NoError(t, err)
	assert.True(t, downgraded)
	p, _ = repo.GetByUserID(ctx, 3)
	assert.Equal(t, "free", p.MembershipPlan)

	// free rows are a no-op
	downgraded, err = repo.DowngradeIfExpired(ctx, 4, now)
	require.NoError(t, err)
	assert.False(t, downgraded)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	require.NoError(t, dbase.Create(&db.Profile{
		UserID:       1,
		Username:     "maya",
		Email:        "maya@example.com",
		PasswordHash: "old-hash",
	}).Error)

	require.NoError(t, repo.UpdatePassword(ctx, 1, "new-hash"))

	p, err := repo.GetByEmail(ctx, "maya@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", p.PasswordHash)
}

func TestGetByUserIDsSkipsQueryWhenEmpty(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	out, err := repo.GetByUserIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	require.NoError(t, dbase.Create(&[]db.Profile{
		{UserID: 1, Username: "a", Email: "a@example.com"},
		{UserID: 2, Username: "b", Email: "b@example.com"},
	}).Error)

	out, err = repo.GetByUserIDs(ctx, []uint64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[1].Username)
	assert.Equal(t, "b", out[2].Username)
}
