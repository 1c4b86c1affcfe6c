package match

import (
	"context"
	"strconv"
	"time"

	"github.com/myanmatch/backend/internal/app"
	"github.com/myanmatch/backend/internal/db"
	"github.com/myanmatch/backend/internal/entitlement"
	svcErr "github.com/myanmatch/backend/internal/errors"
	"github.com/myanmatch/backend/internal/repository"
)

const (
	placeholderMatchName    = "Unknown"
	placeholderIncomingName = "Member"

	defaultIncomingPageSize = 20
)

// Service resolves matches and incoming likes for a viewer.
// It contains the business logic on top of repository and cache layers;
// the HTTP glue lives in handlers.go.
type Service struct {
	appCtx      *app.AppContext
	likeRepo    *repository.LikeRepository
	profileRepo *repository.ProfileRepository
	now         func() time.Time
}

// NewService creates the match service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		likeRepo:    repository.NewLikeRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		now:         time.Now,
	}
}

// MatchItem is one mutual match, enriched with profile data.
type MatchItem struct {
	UserID     uint64 `json:"user_id"`
	FirstName  string `json:"first_name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	IsVerified bool   `json:"is_verified,omitempty"`
	LikeType   string `json:"like_type"`
	LikedAt    int64  `json:"liked_at"`
}

// MatchList is the ordered mutual-match result. Blurred means the viewer
// is on the free tier and profile detail was withheld.
type MatchList struct {
	Blurred bool        `json:"blurred"`
	Matches []MatchItem `json:"matches"`
}

// IncomingItem is one not-yet-reciprocated incoming like.
type IncomingItem struct {
	FromUserID uint64 `json:"from_user_id"`
	FirstName  string `json:"first_name,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	IsVerified bool   `json:"is_verified,omitempty"`
	LikeType   string `json:"like_type"`
	Comment    string `json:"comment,omitempty"`
	LikedAt    int64  `json:"liked_at"`
}

// IncomingList is the "likes to unlock" result.
type IncomingList struct {
	Blurred             bool           `json:"blurred"`
	TotalCount          int64          `json:"total_count"`
	Likes               []IncomingItem `json:"likes"`
	NextPaginationToken *string        `json:"next_pagination_token,omitempty"`
}

// ListMatches returns the viewer's mutual matches, newest first by the
// viewer's own like timestamp.
//
// Behavior:
//   - Match set is recomputed from visible like rows on every call.
//   - Profiles missing from the profile table are rendered with the
//     "Unknown" placeholder and no avatar, never excluded.
//   - Free viewers get the list blurred: ids and timestamps only.
func (s *Service) ListMatches(ctx context.Context, viewerID uint64) (MatchList, error) {
	rows, err := s.likeRepo.MutualMatches(ctx, viewerID)
	if err != nil {
		return MatchList{}, err
	}

	gate, err := s.resolveGate(ctx, viewerID)
	if err != nil {
		return MatchList{}, err
	}

	list := MatchList{Blurred: !gate.Active, Matches: make([]MatchItem, 0, len(rows))}
	if len(rows) == 0 {
		return list, nil
	}

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}

	profiles := map[uint64]db.Profile{}
	if gate.Active {
		profiles, err = s.profileRepo.GetByUserIDs(ctx, ids)
		if err != nil {
			return MatchList{}, err
		}
	}

	for _, row := range rows {
		item := MatchItem{
			UserID:   row.UserID,
			LikeType: row.Type,
			LikedAt:  row.LikedAt.UnixMilli(),
		}
		if gate.Active {
			if p, ok := profiles[row.UserID]; ok {
				item.FirstName = displayName(p.FirstName, placeholderMatchName)
				item.AvatarURL = s.avatarURL(ctx, &p)
				item.IsVerified = p.IsVerified
			} else {
				item.FirstName = placeholderMatchName
			}
		}
		list.Matches = append(list.Matches, item)
	}

	return list, nil
}

// ListIncoming returns the viewer's unrequited incoming likes.
//
// Behavior:
//   - Senders the viewer already liked back are excluded.
//   - Free viewers get the blurred shape: count plus timestamps, no
//     identifying profile detail.
//   - Supports cursor-based pagination for paid viewers.
func (s *Service) ListIncoming(ctx context.Context, viewerID uint64, paginationToken *string) (IncomingList, error) {
	gate, err := s.resolveGate(ctx, viewerID)
	if err != nil {
		return IncomingList{}, err
	}

	count, err := s.countIncoming(ctx, viewerID)
	if err != nil {
		return IncomingList{}, err
	}

	likes, nextToken, err := s.likeRepo.UnrequitedIncoming(ctx, viewerID, paginationToken, defaultIncomingPageSize)
	if err != nil {
		return IncomingList{}, err
	}

	list := IncomingList{
		Blurred:             !gate.Active,
		TotalCount:          count,
		Likes:               make([]IncomingItem, 0, len(likes)),
		NextPaginationToken: nextToken,
	}

	profiles := map[uint64]db.Profile{}
	if gate.Active && len(likes) > 0 {
		ids := make([]uint64, 0, len(likes))
		for _, l := range likes {
			ids = append(ids, l.FromUserID)
		}
		profiles, err = s.profileRepo.GetByUserIDs(ctx, ids)
		if err != nil {
			return IncomingList{}, err
		}
	}

	for _, l := range likes {
		item := IncomingItem{
			FromUserID: l.FromUserID,
			LikeType:   l.Type,
			LikedAt:    l.CreatedAt.UnixMilli(),
		}
		if gate.Active {
			item.Comment = l.Comment
			if p, ok := profiles[l.FromUserID]; ok {
				item.FirstName = displayName(p.FirstName, placeholderIncomingName)
				item.AvatarURL = s.avatarURL(ctx, &p)
				item.IsVerified = p.IsVerified
			} else {
				item.FirstName = placeholderIncomingName
			}
		}
		list.Likes = append(list.Likes, item)
	}

	return list, nil
}

// CountIncoming returns the likes-to-unlock count.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. On cache miss or parse error, falls back to DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountIncoming(ctx context.Context, viewerID uint64) (int64, error) {
	return s.countIncoming(ctx, viewerID)
}

func (s *Service) countIncoming(ctx context.Context, viewerID uint64) (int64, error) {
	key := s.appCtx.RedisCache.KeyForLikeCount(viewerID)

	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
			// refresh TTL since this user is active
			_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
			return n, nil
		}
	}

	count, err := s.likeRepo.CountIncoming(ctx, viewerID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.UpdateLikeCount(ctx, viewerID, count)
	return count, nil
}

// PutLike records a like (or like-back) from the viewer.
//
// Behavior:
//   - Validates ids and the like type.
//   - Upserts via repository.CreateLike, reviving a previously hidden row.
//   - Invalidates both users' cached like counts: a like-back shrinks the
//     viewer's unrequited set while the recipient's may or may not grow,
//     so the next read recounts from the DB instead of guessing.
//   - Reports whether the like completed a mutual match.
func (s *Service) PutLike(ctx context.Context, viewerID, toID uint64, likeType, comment string) (bool, error) {
	if viewerID == 0 || toID == 0 {
		return false, svcErr.InvalidArgument("user_id and to_user_id are required")
	}
	if viewerID == toID {
		return false, svcErr.InvalidArgument("cannot like yourself")
	}
	if likeType == "" {
		likeType = db.LikeTypePlain
	}
	switch likeType {
	case db.LikeTypePlain, db.LikeTypeSuperlike, db.LikeTypeGift:
	default:
		return false, svcErr.InvalidArgument("type must be one of like, superlike, gift")
	}

	if err := s.likeRepo.CreateLike(ctx, viewerID, toID, likeType, comment); err != nil {
		return false, err
	}

	s.invalidateCounts(ctx, viewerID, toID)

	mutual, _ := s.likeRepo.HasLiked(ctx, toID, viewerID)
	return mutual, nil
}

// SkipLike hides an incoming like without deleting the row.
//
// Behavior:
//   - Idempotent: skipping an already-hidden or absent like is fine.
//   - Removes the sender from the unrequited list and, if the pair was
//     mutual, from the match set, since both are derived from visible rows.
//   - Invalidates both users' cached like counts; hiding the row can also
//     move the sender's own count when the pair was mutual.
func (s *Service) SkipLike(ctx context.Context, viewerID, fromID uint64) error {
	if viewerID == 0 || fromID == 0 {
		return svcErr.InvalidArgument("user_id and from_user_id are required")
	}

	if err := s.likeRepo.HideLike(ctx, fromID, viewerID); err != nil {
		return err
	}

	s.invalidateCounts(ctx, viewerID, fromID)

	return nil
}

// invalidateCounts drops both cached like counts after a like row changes.
// The unrequited count depends on the visible rows of both users, so a
// blind increment or decrement would drift; recounting on the next read
// keeps the cache honest.
func (s *Service) invalidateCounts(ctx context.Context, a, b uint64) {
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForLikeCount(a))
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForLikeCount(b))
}

// resolveGate applies the lazy downgrade, then classifies the viewer's plan.
func (s *Service) resolveGate(ctx context.Context, viewerID uint64) (entitlement.Status, error) {
	now := s.now().UTC()
	if downgraded, err := s.profileRepo.DowngradeIfExpired(ctx, viewerID, now); err != nil {
		return entitlement.Status{}, err
	} else if downgraded {
		s.appCtx.Logger.Info("membership expired, downgraded to free", "user", viewerID)
	}

	p, err := s.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		return entitlement.Status{}, err
	}
	return entitlement.Resolve(p.MembershipPlan, p.MembershipExpiresAt, now), nil
}

func (s *Service) avatarURL(ctx context.Context, p *db.Profile) string {
	if s.appCtx.Media == nil {
		return ""
	}
	return s.appCtx.Media.AvatarURL(ctx, p)
}

func displayName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
