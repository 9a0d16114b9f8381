package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos"
	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/normalization"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/ctxutil"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/pointers"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AddCollectionInput struct {
	IdentificationID *uuid.UUID                `json:"identification_id"`
	Unified          *types.UnifiedCrystalData `json:"unified"`
	Name             *string                   `json:"name"`
	Notes            *string                   `json:"notes"`
	Intentions       []string                  `json:"intentions"`
}

// UpdateCollectionInput is a partial update; nil fields are left unchanged.
type UpdateCollectionInput struct {
	PersonalRating *int     `json:"personal_rating"`
	UsageFrequency *string  `json:"usage_frequency"`
	Experiences    []string `json:"user_experiences"`
	Intentions     []string `json:"intention_settings"`
	Notes          *string  `json:"notes"`
	Name           *string  `json:"name"`
}

func (in UpdateCollectionInput) empty() bool {
	return in.PersonalRating == nil && in.UsageFrequency == nil && in.Experiences == nil &&
		in.Intentions == nil && in.Notes == nil && in.Name == nil
}

type CollectionItem struct {
	ID               uuid.UUID                 `json:"id"`
	IdentificationID *uuid.UUID                `json:"identification_id,omitempty"`
	Name             string                    `json:"name"`
	Notes            string                    `json:"notes"`
	AddedAt          time.Time                 `json:"added_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
	Crystal          *types.UnifiedCrystalData `json:"crystal"`
}

type CollectionPage struct {
	Items  []*CollectionItem `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type CollectionStats struct {
	Total            int            `json:"total"`
	ByChakra         map[string]int `json:"by_chakra"`
	ByMineralClass   map[string]int `json:"by_mineral_class"`
	ByUsageFrequency map[string]int `json:"by_usage_frequency"`
	AverageRating    *float64       `json:"average_rating"`
	TopChakra        *string        `json:"top_chakra"`
}

type CollectionService interface {
	Add(ctx context.Context, in AddCollectionInput) (*CollectionItem, error)
	List(ctx context.Context, limit, offset int) (*CollectionPage, error)
	Get(ctx context.Context, id uuid.UUID) (*CollectionItem, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateCollectionInput) (*CollectionItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*CollectionStats, error)
}

type collectionService struct {
	db             *gorm.DB
	log            *logger.Logger
	collectionRepo repos.CollectionRepo
	identRepo      repos.IdentificationRepo
	now            func() time.Time
}

func NewCollectionService(db *gorm.DB, log *logger.Logger, collectionRepo repos.CollectionRepo, identRepo repos.IdentificationRepo) CollectionService {
	return &collectionService{
		db:             db,
		log:            log.With("service", "CollectionService"),
		collectionRepo: collectionRepo,
		identRepo:      identRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func requireUser(ctx context.Context) (string, error) {
	uid := ctxutil.UserID(ctx)
	if uid == "" {
		return "", apierr.Unauthorized()
	}
	return uid, nil
}

func (s *collectionService) Add(ctx context.Context, in AddCollectionInput) (*CollectionItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}

	var src *types.UnifiedCrystalData
	switch {
	case in.IdentificationID != nil:
		row, err := s.identRepo.GetByID(dbc, *in.IdentificationID)
		if err != nil {
			return nil, fmt.Errorf("load identification: %w", err)
		}
		if row == nil || (row.UserID != nil && *row.UserID != userID) {
			return nil, apierr.NotFound("identification_not_found", "identification")
		}
		if src, err = decodeUnified(row.Unified); err != nil {
			return nil, fmt.Errorf("decode identification %s: %w", row.ID, err)
		}
	case in.Unified != nil:
		src = in.Unified
	default:
		return nil, apierr.BadRequest("missing_crystal", "identification_id or unified is required")
	}

	now := s.now()
	u := src.Clone()
	u.UserIntegration = types.EmptyUserIntegrationFor(userID, now)
	u.UserIntegration.IntentionSettings = cleanStrings(in.Intentions)

	name := strings.TrimSpace(u.CrystalCore.Identification.StoneType)
	if custom := pointers.NonEmptyString(pointers.Deref(in.Name)); custom != nil {
		name = *custom
	}
	if name == "" {
		name = "Unknown"
	}

	unifiedJSON, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("marshal unified record: %w", err)
	}
	experiences, err := jsonList(u.UserIntegration.UserExperiences)
	if err != nil {
		return nil, err
	}
	intentions, err := jsonList(u.UserIntegration.IntentionSettings)
	if err != nil {
		return nil, err
	}
	entry := &types.CollectionEntry{
		UserID:            userID,
		IdentificationID:  in.IdentificationID,
		Name:              name,
		PrimaryChakra:     u.CrystalCore.EnergyMapping.PrimaryChakra,
		UserExperiences:   experiences,
		IntentionSettings: intentions,
		Unified:           datatypes.JSON(unifiedJSON),
		AddedAt:           now,
	}
	if u.AutomaticEnrichment != nil {
		entry.MineralClass = u.AutomaticEnrichment.MineralClass
	}
	entry.Notes = strings.TrimSpace(pointers.Deref(in.Notes))
	if _, err := s.collectionRepo.Create(dbc, []*types.CollectionEntry{entry}); err != nil {
		return nil, fmt.Errorf("create collection entry: %w", err)
	}
	s.log.Info("crystal added to collection", "user_id", userID, "entry_id", entry.ID.String(), "name", name)
	return toCollectionItem(entry)
}

func (s *collectionService) List(ctx context.Context, limit, offset int) (*CollectionPage, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	dbc := dbctx.Context{Ctx: ctx}

	entries, err := s.collectionRepo.ListByUser(dbc, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	total, err := s.collectionRepo.CountByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count collection: %w", err)
	}
	items := make([]*CollectionItem, 0, len(entries))
	for _, e := range entries {
		item, err := toCollectionItem(e)
		if err != nil {
			s.log.Warn("skipping unreadable collection entry", "entry_id", e.ID.String(), "error", err)
			continue
		}
		items = append(items, item)
	}
	return &CollectionPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *collectionService) Get(ctx context.Context, id uuid.UUID) (*CollectionItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := s.collectionRepo.GetByID(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get collection entry: %w", err)
	}
	if entry == nil {
		return nil, apierr.NotFound("crystal_not_found", "crystal")
	}
	return toCollectionItem(entry)
}

func (s *collectionService) Update(ctx context.Context, id uuid.UUID, in UpdateCollectionInput) (*CollectionItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, apierr.BadRequest("no_changes", "no fields to update")
	}
	if in.PersonalRating != nil && (*in.PersonalRating < 1 || *in.PersonalRating > 10) {
		return nil, apierr.BadRequest("invalid_rating", "personal_rating must be between 1 and 10, got %d", *in.PersonalRating)
	}
	var freq *types.UsageFrequency
	if p := normalization.ParseInputStringPtr(in.UsageFrequency); p != nil {
		f := types.UsageFrequency(*p)
		if !f.Valid() {
			return nil, apierr.BadRequest("invalid_usage_frequency", "usage_frequency must be daily, weekly, monthly or occasional, got %q", *in.UsageFrequency)
		}
		freq = &f
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apierr.BadRequest("invalid_name", "name must not be empty")
	}

	var updated *types.CollectionEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		entry, err := s.collectionRepo.GetByID(inner, userID, id)
		if err != nil {
			return err
		}
		if entry == nil {
			return apierr.NotFound("crystal_not_found", "crystal")
		}
		u, err := decodeUnified(entry.Unified)
		if err != nil {
			return fmt.Errorf("decode collection entry %s: %w", entry.ID, err)
		}
		u = u.Clone()
		if u.UserIntegration == nil {
			u.UserIntegration = types.EmptyUserIntegrationFor(userID, entry.AddedAt)
		}
		ui := u.UserIntegration

		updates := map[string]interface{}{}
		if in.PersonalRating != nil {
			r := *in.PersonalRating
			ui.PersonalRating = &r
			updates["personal_rating"] = r
		}
		if freq != nil {
			ui.UsageFrequency = freq
			updates["usage_frequency"] = string(*freq)
		}
		if in.Experiences != nil {
			ui.UserExperiences = cleanStrings(in.Experiences)
			if updates["user_experiences"], err = jsonList(ui.UserExperiences); err != nil {
				return err
			}
		}
		if in.Intentions != nil {
			ui.IntentionSettings = cleanStrings(in.Intentions)
			if updates["intention_settings"], err = jsonList(ui.IntentionSettings); err != nil {
				return err
			}
		}
		if in.Notes != nil {
			updates["notes"] = strings.TrimSpace(*in.Notes)
		}
		if in.Name != nil {
			updates["name"] = strings.TrimSpace(*in.Name)
		}
		b, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("marshal unified record: %w", err)
		}
		updates["unified"] = datatypes.JSON(b)

		if err := s.collectionRepo.UpdateFields(inner, userID, id, updates); err != nil {
			return err
		}
		updated, err = s.collectionRepo.GetByID(inner, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apierr.NotFound("crystal_not_found", "crystal")
	}
	return toCollectionItem(updated)
}

func (s *collectionService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	ok, err := s.collectionRepo.SoftDelete(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return fmt.Errorf("delete collection entry: %w", err)
	}
	if !ok {
		return apierr.NotFound("crystal_not_found", "crystal")
	}
	s.log.Info("crystal removed from collection", "user_id", userID, "entry_id", id.String())
	return nil
}

func (s *collectionService) Stats(ctx context.Context) (*CollectionStats, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.collectionRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	return collectionStats(entries), nil
}

func collectionStats(entries []*types.CollectionEntry) *CollectionStats {
	out := &CollectionStats{
		Total:            len(entries),
		ByChakra:         map[string]int{},
		ByMineralClass:   map[string]int{},
		ByUsageFrequency: map[string]int{},
	}
	ratingSum, rated := 0, 0
	for _, e := range entries {
		chakra := e.PrimaryChakra
		if chakra == "" {
			chakra = "Unknown"
		}
		out.ByChakra[chakra]++

		mineral := "Unknown"
		if e.MineralClass != nil && *e.MineralClass != "" {
			mineral = *e.MineralClass
		}
		out.ByMineralClass[mineral]++

		freq := "unset"
		if e.UsageFrequency != nil && *e.UsageFrequency != "" {
			freq = string(*e.UsageFrequency)
		}
		out.ByUsageFrequency[freq]++

		if e.PersonalRating != nil {
			ratingSum += *e.PersonalRating
			rated++
		}
	}
	if rated > 0 {
		avg := round3(float64(ratingSum) / float64(rated))
		out.AverageRating = &avg
	}
	if len(out.ByChakra) > 0 {
		keys := make([]string, 0, len(out.ByChakra))
		for k := range out.ByChakra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		top := keys[0]
		for _, k := range keys[1:] {
			if out.ByChakra[k] > out.ByChakra[top] {
				top = k
			}
		}
		out.TopChakra = &top
	}
	return out
}

func toCollectionItem(e *types.CollectionEntry) (*CollectionItem, error) {
	var u *types.UnifiedCrystalData
	if len(e.Unified) > 0 {
		if err := json.Unmarshal(e.Unified, &u); err != nil {
			return nil, fmt.Errorf("decode collection entry %s: %w", e.ID, err)
		}
	}
	return &CollectionItem{
		ID:               e.ID,
		IdentificationID: e.IdentificationID,
		Name:             e.Name,
		Notes:            e.Notes,
		AddedAt:          e.AddedAt,
		UpdatedAt:        e.UpdatedAt,
		Crystal:          u,
	}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// cleanStrings trims entries and drops blanks; the result is never nil.
func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jsonList(in []string) (datatypes.JSON, error) {
	if in == nil {
		in = []string{}
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return datatypes.JSON(b), nil
}

var errNullUnified = errors.New("unified record is null")

func decodeUnified(raw datatypes.JSON) (*types.UnifiedCrystalData, error) {
	var u *types.UnifiedCrystalData
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNullUnified
	}
	return u, nil
}
