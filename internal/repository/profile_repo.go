package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/myanmatch/backend/internal/db"
)

var (
	// ErrNotEnoughCoins means the balance cannot cover the purchase.
	ErrNotEnoughCoins = errors.New("not enough coins")
	// ErrVersionConflict means another writer updated the row between
	// read and purchase; the caller may re-read and retry.
	ErrVersionConflict = errors.New("profile version conflict")
)

// ProfileRepository provides data access methods for the Profile model.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uint64) (*db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).First(&p, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserIDs fetches profiles for a set of ids, keyed by user id.
// An empty id set skips the query entirely. Missing rows are simply
// absent from the map; callers render placeholders for them.
func (r *ProfileRepository) GetByUserIDs(ctx context.Context, ids []uint64) (map[uint64]db.Profile, error) {
	out := make(map[uint64]db.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []db.Profile
	err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.UserID] = p
	}
	return out, nil
}

// UpdatePassword replaces the stored credential hash.
func (r *ProfileRepository) UpdatePassword(ctx context.Context, userID uint64, hash string) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		Update("password_hash", hash).Error
}

// DowngradeIfExpired lazily flips an expired paid plan to free/nil expiry.
//
// Behavior:
//   - No-op for free rows and still-active paid rows.
//   - Returns whether a downgrade happened so callers can log it.
//   - Gate reads call this first, which is what makes a subsequent plan
//     read reflect the downgrade.
func (r *ProfileRepository) DowngradeIfExpired(ctx context.Context, userID uint64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ? AND membership_plan <> ?", userID, "free").
		Where("membership_expires_at IS NULL OR membership_expires_at <= ?", now).
		Updates(map[string]any{
			"membership_plan":       "free",
			"membership_expires_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// PurchasePlan debits coins and writes the plan atomically.
//
// Behavior:
//   - Single conditional UPDATE guarded by balance and the optimistic
//     version column, so two concurrent purchases cannot both debit the
//     same coins.
//   - Zero rows affected is disambiguated by a re-read: insufficient
//     balance → ErrNotEnoughCoins, moved version → ErrVersionConflict.
//
// Example:
//
//	repo.PurchasePlan(ctx, 7, "plus", 10000, expiry, profile.Version)
func (r *ProfileRepository) PurchasePlan(
	ctx context.Context,
	userID uint64,
	plan string,
	cost int64,
	expiresAt time.Time,
	version uint64,
) error {
	res := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ? AND coin >= ? AND version = ?", userID, cost, version).
		Updates(map[string]any{
			"coin":                  gorm.Expr("coin - ?", cost),
			"membership_plan":       plan,
			"membership_expires_at": expiresAt,
			"version":               gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	p, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if p.Coin < cost {
		return ErrNotEnoughCoins
	}
	return ErrVersionConflict
}

// AddCoins credits the balance (admin/promo flows, seeding).
func (r *ProfileRepository) AddCoins(ctx context.Context, userID uint64, amount int64) error {
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"coin":    gorm.Expr("coin + ?", amount),
			"version": gorm.Expr("version + 1"),
		}).Error
}
