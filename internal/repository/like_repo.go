package repository

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/myanmatch/backend/internal/db"
	"github.com/myanmatch/backend/internal/utils/pagination"
)

// LikeRepository provides data access methods for the Like model.
// It encapsulates all queries related to likes, skips and match
// resolution between users.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// MatchRow is one resolved mutual match: the other user plus the
// viewer's own like timestamp, which orders the match list.
type MatchRow struct {
	UserID  uint64
	Type    string
	Comment string
	LikedAt time.Time
}

// CreateLike inserts or revives a like made by from -> to.
//
// Behavior:
//   - If the (from_user_id, to_user_id) pair exists → the row is updated:
//     visibility restored, type/comment replaced, timestamp refreshed.
//   - If it doesn't exist → a new row is inserted.
//   - Unique pair index ensures the overwrite guarantee; rows are never
//     duplicated for the same direction.
//
// Example:
//
//	repo.CreateLike(ctx, 1, 2, "superlike", "loved your profile")
func (r *LikeRepository) CreateLike(
	ctx context.Context,
	fromID, toID uint64,
	likeType, comment string,
) error {
	like := db.Like{
		FromUserID: fromID,
		ToUserID:   toID,
		Type:       likeType,
		Comment:    comment,
		IsVisible:  true,
		CreatedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_visible", "type", "comment", "created_at"}),
		}).
		Create(&like).Error
}

// HideLike soft-deletes the like from -> to by flipping is_visible.
//
// Behavior:
//   - Idempotent: hiding an already-hidden or absent row is not an error.
//   - The row persists; only visibility changes.
//
// Example:
//
//	repo.HideLike(ctx, 7, 42) // user 42 skipped user 7's like
func (r *LikeRepository) HideLike(ctx context.Context, fromID, toID uint64) error {
	return r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ?", fromID, toID).
		Update("is_visible", false).Error
}

// HasLiked checks whether from has a visible like toward to.
func (r *LikeRepository) HasLiked(ctx context.Context, fromID, toID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("from_user_id = ? AND to_user_id = ? AND is_visible = ?", fromID, toID, true).
		Count(&count).Error
	return count > 0, err
}

// MutualMatches resolves the viewer's mutual matches.
//
// Behavior:
//  1. Fetch the viewer's visible outgoing likes; with none, short-circuit
//     to an empty result without further queries.
//  2. Fetch visible likes back at the viewer from that target set.
//  3. Intersect: ids present in both directions are mutual matches.
//  4. Order by the viewer's own like timestamp descending; rows with a
//     zero timestamp sort last.
//
// The match set is derived, never stored, so it always reflects the
// current visible rows.
func (r *LikeRepository) MutualMatches(ctx context.Context, viewerID uint64) ([]MatchRow, error) {
	var outgoing []db.Like
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND is_visible = ?", viewerID, true).
		Find(&outgoing).Error
	if err != nil {
		return nil, err
	}
	if len(outgoing) == 0 {
		return nil, nil
	}

	targets := make([]uint64, 0, len(outgoing))
	byTarget := make(map[uint64]db.Like, len(outgoing))
	for _, l := range outgoing {
		targets = append(targets, l.ToUserID)
		byTarget[l.ToUserID] = l
	}

	var reciprocal []uint64
	err = r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("to_user_id = ? AND is_visible = ? AND from_user_id IN ?", viewerID, true, targets).
		Pluck("from_user_id", &reciprocal).Error
	if err != nil {
		return nil, err
	}

	matches := make([]MatchRow, 0, len(reciprocal))
	for _, id := range reciprocal {
		own := byTarget[id]
		matches = append(matches, MatchRow{
			UserID:  id,
			Type:    own.Type,
			Comment: own.Comment,
			LikedAt: own.CreatedAt,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].LikedAt.After(matches[j].LikedAt)
	})

	return matches, nil
}

// UnrequitedIncoming returns users who liked the viewer but have not been
// liked back.
//
// Behavior:
//   - Only visible rows directed at the viewer are considered.
//   - Excludes senders the viewer already has a visible like toward.
//   - Ordered by created_at DESC, from_user_id DESC.
//   - Supports cursor-based pagination.
//
// Example:
//
//	repo.UnrequitedIncoming(ctx, 42, nil, 20) // first 20 likes to unlock
func (r *LikeRepository) UnrequitedIncoming(
	ctx context.Context,
	viewerID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	var likes []db.Like

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ? AND l.is_visible = ?", viewerID, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l2
				WHERE l2.from_user_id = ?
				  AND l2.to_user_id = l.from_user_id
				  AND l2.is_visible = ?
			)`, viewerID, true).
		Order("l.created_at DESC, l.from_user_id DESC").
		Limit(limit + 1)

	if cursor.FromUserID > 0 && cursor.CreatedUnix > 0 {
		ts := time.UnixMilli(cursor.CreatedUnix)
		query = query.Where(
			"(l.created_at < ? OR (l.created_at = ? AND l.from_user_id < ?))",
			ts, ts, cursor.FromUserID,
		)
	}

	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			FromUserID:  last.FromUserID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountIncoming returns how many visible, not-yet-reciprocated likes the
// viewer has. Used with the Redis counter (DB is fallback).
func (r *LikeRepository) CountIncoming(ctx context.Context, viewerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ? AND l.is_visible = ?", viewerID, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l2
				WHERE l2.from_user_id = ?
				  AND l2.to_user_id = l.from_user_id
				  AND l2.is_visible = ?
			)`, viewerID, true).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
