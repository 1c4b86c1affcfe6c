package db

import (
	"time"
)

// Like type values
const (
	LikeTypePlain     = "like"
	LikeTypeSuperlike = "superlike"
	LikeTypeGift      = "gift"
)

// Profile is the denormalized user row. Media columns are stored raw:
// the legacy writer persisted either a JSON array, a JSON-encoded string
// of an array, or a bare string, so parsing happens in internal/media.
type Profile struct {
	UserID       uint64 `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	Phone        string `gorm:"size:32"`
	PasswordHash string `gorm:"size:255;not null"`
	FirstName    string `gorm:"size:64"`

	AvatarPath string `gorm:"size:512"`
	AvatarURL  string `gorm:"size:512"`
	Media      string `gorm:"type:text"`
	MediaPaths string `gorm:"type:text"`

	MembershipPlan      string `gorm:"size:32;default:free"`
	MembershipExpiresAt *time.Time
	Coin                int64  `gorm:"not null;default:0"`
	Version             uint64 `gorm:"not null;default:0"`

	IsVerified bool      `gorm:"default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Like is a directed expression of interest from one user to another.
//
// Rows are never hard-deleted: a "skip" flips IsVisible to false so the
// sender's history survives. One row per (from, to) pair, enforced by the
// composite unique index and the repository's upsert.
//
// Indexes:
//   - idx_to_visible_created(to_user_id, is_visible, created_at DESC)
//     serves "who liked me" lists.
//   - uniq_from_to(from_user_id, to_user_id) gives O(1) like-back lookups
//     and the overwrite guarantee.
type Like struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	FromUserID uint64    `gorm:"not null;uniqueIndex:uniq_from_to,priority:1"`
	ToUserID   uint64    `gorm:"not null;uniqueIndex:uniq_from_to,priority:2;index:idx_to_visible_created,priority:1"`
	Type       string    `gorm:"size:16;not null;default:like"`
	Comment    string    `gorm:"size:512"`
	IsVisible  bool      `gorm:"not null;default:true;index:idx_to_visible_created,priority:2"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_to_visible_created,priority:3,sort:desc"`
}

// Preference is one row per user, upserted wholesale on save.
// Multi-value fields are JSON arrays in text columns.
type Preference struct {
	UserID         uint64    `gorm:"primaryKey"`
	AgeMin         int       `gorm:"not null;default:18"`
	AgeMax         int       `gorm:"not null;default:80"`
	Genders        string    `gorm:"type:text"`
	Relationship   string    `gorm:"type:text"`
	DistanceKM     int       `gorm:"not null;default:50"`
	Drinking       string    `gorm:"size:32"`
	Smoking        string    `gorm:"size:32"`
	Weed           string    `gorm:"size:32"`
	Drugs          string    `gorm:"size:32"`
	Religion       string    `gorm:"type:text"`
	Politics       string    `gorm:"type:text"`
	FamilyPlans    string    `gorm:"type:text"`
	Ethnicity      string    `gorm:"type:text"`
	EducationLevel string    `gorm:"size:64"`
	VerifiedOnly   bool      `gorm:"default:false"`
	HasVoice       bool      `gorm:"default:false"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}
