package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos"
	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/normalization"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

const maxProfileText = 2000

// UpdateProfileInput merges into the stored profile: nil fields are left alone and
// an empty string clears the field.
type UpdateProfileInput struct {
	DisplayName       *string `json:"display_name"`
	SunSign           *string `json:"sun_sign"`
	MoonSign          *string `json:"moon_sign"`
	RisingSign        *string `json:"rising_sign"`
	DominantElement   *string `json:"dominant_element"`
	SpiritualGoals    *string `json:"spiritual_goals"`
	CurrentChallenges *string `json:"current_challenges"`
}

type ProfileService interface {
	Get(ctx context.Context) (*types.UserProfile, error)
	Update(ctx context.Context, in UpdateProfileInput) (*types.UserProfile, error)
}

type profileService struct {
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	now         func() time.Time
}

func NewProfileService(log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	return &profileService{
		log:         log.With("service", "ProfileService"),
		profileRepo: profileRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *profileService) Get(ctx context.Context) (*types.UserProfile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.profileRepo.GetByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("profile_not_found", "profile")
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, in UpdateProfileInput) (*types.UserProfile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	p, err := s.profileRepo.GetByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	now := s.now()
	if p == nil {
		p = &types.UserProfile{UserID: userID, CreatedAt: now}
	}

	signs := []struct {
		field string
		in    *string
		dst   *string
	}{
		{"sun_sign", in.SunSign, &p.SunSign},
		{"moon_sign", in.MoonSign, &p.MoonSign},
		{"rising_sign", in.RisingSign, &p.RisingSign},
	}
	for _, f := range signs {
		if f.in == nil {
			continue
		}
		if strings.TrimSpace(*f.in) == "" {
			*f.dst = ""
			continue
		}
		sign, ok := normalization.ZodiacSign(*f.in)
		if !ok {
			return nil, apierr.BadRequest("invalid_"+f.field, "%s %q is not a zodiac sign", f.field, *f.in)
		}
		*f.dst = sign
	}
	if in.DominantElement != nil {
		p.DominantElement = ""
		if strings.TrimSpace(*in.DominantElement) != "" {
			el, ok := normalization.Element(*in.DominantElement)
			if !ok {
				return nil, apierr.BadRequest("invalid_dominant_element", "dominant_element must be fire, earth, air or water, got %q", *in.DominantElement)
			}
			p.DominantElement = el
		}
	}

	texts := []struct {
		field string
		in    *string
		dst   *string
	}{
		{"display_name", in.DisplayName, &p.DisplayName},
		{"spiritual_goals", in.SpiritualGoals, &p.SpiritualGoals},
		{"current_challenges", in.CurrentChallenges, &p.CurrentChallenges},
	}
	for _, f := range texts {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if len(v) > maxProfileText {
			return nil, apierr.BadRequest("invalid_"+f.field, "%s must be at most %d bytes", f.field, maxProfileText)
		}
		*f.dst = v
	}

	p.UpdatedAt = now
	if err := s.profileRepo.Upsert(dbc, p); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	s.log.Info("profile updated", "user_id", userID, "has_birth_chart", p.HasBirthChart())
	return p, nil
}
