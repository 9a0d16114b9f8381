package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos"
	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/normalization"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/ctxutil"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/pointers"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

const defaultGuidanceType = "general"

type GuidanceRequest struct {
	Question     string `json:"question"`
	GuidanceType string `json:"guidance_type"`
}

type GuidanceResult struct {
	SessionID          *uuid.UUID              `json:"session_id"`
	Guidance           string                  `json:"guidance"`
	GuidanceType       string                  `json:"guidance_type"`
	MoonPhase          MoonPhase               `json:"moon_phase"`
	CollectionSize     int                     `json:"collection_size"`
	CrystalsReferenced []string                `json:"crystals_referenced"`
	Personalization    GuidancePersonalization `json:"personalization_data"`
}

type BirthChart struct {
	SunSign         string `json:"sun_sign"`
	MoonSign        string `json:"moon_sign"`
	RisingSign      string `json:"rising_sign"`
	DominantElement string `json:"dominant_element"`
}

// GuidancePersonalization reports which profile data shaped the answer.
type GuidancePersonalization struct {
	BirthChart     *BirthChart `json:"birth_chart"`
	CrystalCount   int         `json:"crystal_count"`
	SpiritualGoals *string     `json:"spiritual_goals"`
}

type GuidanceService interface {
	Personalized(ctx context.Context, req GuidanceRequest) (*GuidanceResult, error)
	History(ctx context.Context, limit, offset int) ([]*types.GuidanceSession, error)
	Available() bool
}

type guidanceService struct {
	log        *logger.Logger
	text       TextModel
	collection repos.CollectionRepo
	profiles   repos.ProfileRepo
	sessions   repos.GuidanceSessionRepo
	now        func() time.Time
}

// NewGuidanceService builds the guidance service. Any repo may be nil; the prompt then
// goes without that context and sessions are not recorded.
func NewGuidanceService(log *logger.Logger, text TextModel, collection repos.CollectionRepo, profiles repos.ProfileRepo, sessions repos.GuidanceSessionRepo) GuidanceService {
	return &guidanceService{
		log:        log.With("service", "GuidanceService"),
		text:       text,
		collection: collection,
		profiles:   profiles,
		sessions:   sessions,
		now:        time.Now,
	}
}

func (s *guidanceService) Available() bool { return s.text != nil }

func (s *guidanceService) Personalized(ctx context.Context, req GuidanceRequest) (*GuidanceResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apierr.BadRequest("missing_question", "question is required")
	}
	if s.text == nil {
		return nil, apierr.Unavailable("ai_unavailable", "text model")
	}
	gtype := normalization.ParseInputString(req.GuidanceType)
	if gtype == "" {
		gtype = defaultGuidanceType
	}

	uid := ctxutil.UserID(ctx)
	dbc := dbctx.Context{Ctx: ctx}
	var names []string
	if uid != "" && s.collection != nil {
		n, err := collectionNames(dbc, s.collection, uid)
		if err != nil {
			s.log.Warn("guidance without collection", "user_id", uid, "error", err)
		} else {
			names = n
		}
	}
	var profile *types.UserProfile
	if uid != "" && s.profiles != nil {
		p, err := s.profiles.GetByUser(dbc, uid)
		if err != nil {
			s.log.Warn("guidance without profile", "user_id", uid, "error", err)
		} else {
			profile = p
		}
	}

	phase := CurrentPhase(s.now())
	text, err := s.text.GenerateText(ctx, guidanceSystemPrompt, buildGuidancePrompt(question, gtype, phase, names, profile))
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "ai_failed", fmt.Errorf("text model: %w", err))
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apierr.New(http.StatusBadGateway, "ai_failed", fmt.Errorf("text model returned no guidance"))
	}

	res := &GuidanceResult{
		Guidance:           text,
		GuidanceType:       gtype,
		MoonPhase:          phase,
		CollectionSize:     len(names),
		CrystalsReferenced: referencedCrystals(text, names),
		Personalization:    personalizationFor(profile, len(names)),
	}
	res.SessionID = s.recordSession(dbc, uid, question, res)
	return res, nil
}

func (s *guidanceService) History(ctx context.Context, limit, offset int) ([]*types.GuidanceSession, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if s.sessions == nil {
		return []*types.GuidanceSession{}, nil
	}
	limit, offset = clampPage(limit, offset)
	out, err := s.sessions.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list guidance sessions: %w", err)
	}
	return out, nil
}

// recordSession stores the answer for a known caller. The guidance is returned even
// when the write fails.
func (s *guidanceService) recordSession(dbc dbctx.Context, userID, question string, res *GuidanceResult) *uuid.UUID {
	if userID == "" || s.sessions == nil {
		return nil
	}
	session := &types.GuidanceSession{
		UserID:       userID,
		Question:     question,
		GuidanceType: res.GuidanceType,
		Response:     res.Guidance,
		MoonPhase:    res.MoonPhase.Phase,
		CreatedAt:    s.now().UTC(),
	}
	if _, err := s.sessions.Create(dbc, []*types.GuidanceSession{session}); err != nil {
		s.log.Warn("guidance session not recorded", "user_id", userID, "error", err)
		return nil
	}
	return &session.ID
}

func personalizationFor(p *types.UserProfile, crystalCount int) GuidancePersonalization {
	out := GuidancePersonalization{CrystalCount: crystalCount}
	if p.HasBirthChart() {
		out.BirthChart = &BirthChart{
			SunSign:         p.SunSign,
			MoonSign:        p.MoonSign,
			RisingSign:      p.RisingSign,
			DominantElement: p.DominantElement,
		}
	}
	if p != nil {
		out.SpiritualGoals = pointers.NonEmptyString(p.SpiritualGoals)
	}
	return out
}

// referencedCrystals returns the distinct collection names mentioned in text, in collection order.
func referencedCrystals(text string, names []string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	seen := map[string]bool{}
	for _, n := range names {
		k := strings.ToLower(n)
		if seen[k] || !strings.Contains(lower, k) {
			continue
		}
		seen[k] = true
		out = append(out, n)
	}
	return out
}
