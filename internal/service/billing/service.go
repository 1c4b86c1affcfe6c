package billing

import (
	"context"
	"errors"
	"time"

	"github.com/myanmatch/backend/internal/app"
	"github.com/myanmatch/backend/internal/config"
	"github.com/myanmatch/backend/internal/entitlement"
	svcErr "github.com/myanmatch/backend/internal/errors"
	"github.com/myanmatch/backend/internal/repository"
)

// Service owns plan purchases and the membership snapshot.
// Coin debit and plan write happen in one conditional update, so two
// concurrent purchases cannot both spend the same balance.
type Service struct {
	appCtx      *app.AppContext
	profileRepo *repository.ProfileRepository
	plusCost    int64
	xCost       int64
	term        time.Duration
	now         func() time.Time
}

// NewService creates the billing service with dependencies from AppContext.
func NewService(appCtx *app.AppContext, cfg *config.Config) *Service {
	return &Service{
		appCtx:      appCtx,
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		plusCost:    cfg.Billing.PlusCost,
		xCost:       cfg.Billing.XCost,
		term:        time.Duration(cfg.Billing.TermDays) * 24 * time.Hour,
		now:         time.Now,
	}
}

// PurchaseResult reports the post-purchase state.
type PurchaseResult struct {
	Plan      string `json:"plan"`
	ExpiresAt int64  `json:"expires_at"`
	Coin      int64  `json:"coin"`
	Action    string `json:"action"` // "get" or "renew"
}

// Snapshot is the membership view returned by /billing/me.
type Snapshot struct {
	UserID    uint64 `json:"user_id"`
	Plan      string `json:"plan"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
	Active    bool   `json:"active"`
	Coin      int64  `json:"coin"`
}

// Purchase debits coins for a plan and writes the new term.
//
// Behavior:
//   - Upgrading plus→x while plus is still active keeps the existing
//     expiry; every other transition grants a fresh term from now.
//   - "renew" is reported iff the purchased plan equals the current plan
//     and the current plan is still active; otherwise "get".
//   - The debit is guarded by balance and the profile's version column;
//     a stale version is rejected as a retryable conflict rather than
//     trusting a previously read balance.
func (s *Service) Purchase(ctx context.Context, viewerID uint64, rawPlan string) (PurchaseResult, error) {
	if viewerID == 0 {
		return PurchaseResult{}, svcErr.InvalidArgument("user_id is required")
	}
	plan := entitlement.ParsePlan(rawPlan)
	if !plan.Paid() {
		return PurchaseResult{}, svcErr.InvalidArgument("plan must be plus or x")
	}

	now := s.now().UTC()
	if _, err := s.profileRepo.DowngradeIfExpired(ctx, viewerID, now); err != nil {
		return PurchaseResult{}, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		return PurchaseResult{}, err
	}
	current := entitlement.Resolve(profile.MembershipPlan, profile.MembershipExpiresAt, now)

	cost := s.plusCost
	if plan == entitlement.PlanX {
		cost = s.xCost
	}

	expiresAt := now.Add(s.term)
	if plan == entitlement.PlanX && current.Plan == entitlement.PlanPlus && current.Active {
		// upgrade keeps the remaining plus term
		expiresAt = *profile.MembershipExpiresAt
	}

	action := "get"
	if current.Active && current.Plan == plan {
		action = "renew"
	}

	err = s.profileRepo.PurchasePlan(ctx, viewerID, string(plan), cost, expiresAt, profile.Version)
	switch {
	case errors.Is(err, repository.ErrNotEnoughCoins):
		return PurchaseResult{}, svcErr.Conflict("not enough coins")
	case errors.Is(err, repository.ErrVersionConflict):
		return PurchaseResult{}, svcErr.Conflict("purchase conflicted with another session, please retry")
	case err != nil:
		return PurchaseResult{}, err
	}

	updated, err := s.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		return PurchaseResult{}, err
	}

	s.appCtx.Logger.Info("plan purchased",
		"user", viewerID, "plan", plan, "action", action, "cost", cost)

	return PurchaseResult{
		Plan:      updated.MembershipPlan,
		ExpiresAt: expiresAt.UnixMilli(),
		Coin:      updated.Coin,
		Action:    action,
	}, nil
}

// Me returns the membership snapshot after the lazy expiry check.
func (s *Service) Me(ctx context.Context, viewerID uint64) (Snapshot, error) {
	if viewerID == 0 {
		return Snapshot{}, svcErr.InvalidArgument("user_id is required")
	}

	now := s.now().UTC()
	if downgraded, err := s.profileRepo.DowngradeIfExpired(ctx, viewerID, now); err != nil {
		return Snapshot{}, err
	} else if downgraded {
		s.appCtx.Logger.Info("membership expired, downgraded to free", "user", viewerID)
	}

	profile, err := s.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		return Snapshot{}, err
	}
	st := entitlement.Resolve(profile.MembershipPlan, profile.MembershipExpiresAt, now)

	snap := Snapshot{
		UserID: viewerID,
		Plan:   string(st.Plan),
		Active: st.Active,
		Coin:   profile.Coin,
	}
	if profile.MembershipExpiresAt != nil {
		ms := profile.MembershipExpiresAt.UnixMilli()
		snap.ExpiresAt = &ms
	}
	return snap, nil
}
