package prefs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/myanmatch/backend/internal/app"
	"github.com/myanmatch/backend/internal/db"
	"github.com/myanmatch/backend/internal/entitlement"
	svcErr "github.com/myanmatch/backend/internal/errors"
	"github.com/myanmatch/backend/internal/repository"
)

const (
	minAge = 18
	maxAge = 80
)

// Service owns discovery preferences: one row per user, saved wholesale.
// The free-tier restriction (only age range and genders are writable) is
// enforced here rather than trusted to the client.
type Service struct {
	appCtx      *app.AppContext
	prefRepo    *repository.PreferenceRepository
	profileRepo *repository.ProfileRepository
	now         func() time.Time
}

// NewService creates the preferences service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		prefRepo:    repository.NewPreferenceRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		now:         time.Now,
	}
}

// Preferences is the wire shape for both read and write.
type Preferences struct {
	UserID         uint64   `json:"user_id"`
	AgeMin         int      `json:"age_min"`
	AgeMax         int      `json:"age_max"`
	Genders        []string `json:"genders"`
	Relationship   []string `json:"relationship"`
	DistanceKM     int      `json:"distance_km"`
	Drinking       string   `json:"drinking,omitempty"`
	Smoking        string   `json:"smoking,omitempty"`
	Weed           string   `json:"weed,omitempty"`
	Drugs          string   `json:"drugs,omitempty"`
	Religion       []string `json:"religion"`
	Politics       []string `json:"politics"`
	FamilyPlans    []string `json:"family_plans"`
	Ethnicity      []string `json:"ethnicity"`
	EducationLevel string   `json:"education_level,omitempty"`
	VerifiedOnly   bool     `json:"verified_only"`
	HasVoice       bool     `json:"has_voice"`
}

// Get returns the stored preferences, or defaults for a first-time user.
func (s *Service) Get(ctx context.Context, viewerID uint64) (Preferences, error) {
	if viewerID == 0 {
		return Preferences{}, svcErr.InvalidArgument("user_id is required")
	}

	row, err := s.prefRepo.Get(ctx, viewerID)
	if err != nil {
		return Preferences{}, err
	}
	if row == nil {
		return defaultPreferences(viewerID), nil
	}
	return fromRow(row), nil
}

// Save validates and upserts the row wholesale.
//
// Behavior:
//   - age_min must not exceed age_max; both bounded to 18..80.
//   - Free-tier savers can only change age range and genders: every other
//     submitted field is replaced with the stored value (or default)
//     before the upsert.
func (s *Service) Save(ctx context.Context, in Preferences) (Preferences, error) {
	if in.UserID == 0 {
		return Preferences{}, svcErr.InvalidArgument("user_id is required")
	}
	if in.AgeMin > in.AgeMax {
		return Preferences{}, svcErr.InvalidArgument("age_min must not exceed age_max")
	}
	if in.AgeMin < minAge || in.AgeMax > maxAge {
		return Preferences{}, svcErr.InvalidArgument("age range must be within 18..80")
	}

	gateActive, err := s.gateActive(ctx, in.UserID)
	if err != nil {
		return Preferences{}, err
	}

	if !gateActive {
		stored, err := s.Get(ctx, in.UserID)
		if err != nil {
			return Preferences{}, err
		}
		// keep only the free-tier writable fields from the submission
		ageMin, ageMax, genders := in.AgeMin, in.AgeMax, in.Genders
		in = stored
		in.AgeMin, in.AgeMax, in.Genders = ageMin, ageMax, genders
	}

	row := toRow(in)
	if err := s.prefRepo.Upsert(ctx, row); err != nil {
		return Preferences{}, err
	}
	return fromRow(row), nil
}

func (s *Service) gateActive(ctx context.Context, viewerID uint64) (bool, error) {
	now := s.now().UTC()
	if _, err := s.profileRepo.DowngradeIfExpired(ctx, viewerID, now); err != nil {
		return false, err
	}
	p, err := s.profileRepo.GetByUserID(ctx, viewerID)
	if err != nil {
		return false, err
	}
	return entitlement.Resolve(p.MembershipPlan, p.MembershipExpiresAt, now).Active, nil
}

func defaultPreferences(userID uint64) Preferences {
	return Preferences{
		UserID:     userID,
		AgeMin:     minAge,
		AgeMax:     maxAge,
		DistanceKM: 50,
	}
}

func toRow(p Preferences) *db.Preference {
	return &db.Preference{
		UserID:         p.UserID,
		AgeMin:         p.AgeMin,
		AgeMax:         p.AgeMax,
		Genders:        marshalList(p.Genders),
		Relationship:   marshalList(p.Relationship),
		DistanceKM:     p.DistanceKM,
		Drinking:       p.Drinking,
		Smoking:        p.Smoking,
		Weed:           p.Weed,
		Drugs:          p.Drugs,
		Religion:       marshalList(p.Religion),
		Politics:       marshalList(p.Politics),
		FamilyPlans:    marshalList(p.FamilyPlans),
		Ethnicity:      marshalList(p.Ethnicity),
		EducationLevel: p.EducationLevel,
		VerifiedOnly:   p.VerifiedOnly,
		HasVoice:       p.HasVoice,
	}
}

func fromRow(r *db.Preference) Preferences {
	return Preferences{
		UserID:         r.UserID,
		AgeMin:         r.AgeMin,
		AgeMax:         r.AgeMax,
		Genders:        unmarshalList(r.Genders),
		Relationship:   unmarshalList(r.Relationship),
		DistanceKM:     r.DistanceKM,
		Drinking:       r.Drinking,
		Smoking:        r.Smoking,
		Weed:           r.Weed,
		Drugs:          r.Drugs,
		Religion:       unmarshalList(r.Religion),
		Politics:       unmarshalList(r.Politics),
		FamilyPlans:    unmarshalList(r.FamilyPlans),
		Ethnicity:      unmarshalList(r.Ethnicity),
		EducationLevel: r.EducationLevel,
		VerifiedOnly:   r.VerifiedOnly,
		HasVoice:       r.HasVoice,
	}
}

func marshalList(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
