package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/myanmatch/backend/internal/db"
)

// PreferenceRepository persists the one-row-per-user discovery filters.
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new repository bound to the given DB connection.
func NewPreferenceRepository(database *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: database}
}

// Get returns the stored row, or nil when the user has never saved one.
func (r *PreferenceRepository) Get(ctx context.Context, userID uint64) (*db.Preference, error) {
	var p db.Preference
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert writes the row wholesale: the primary key conflict replaces
// every column, matching the save-everything shape of the client form.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *db.Preference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(pref).Error
}
