package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/normalization"
)

// Unified returns a normalized record for a named stone with the given color and family.
func Unified(stone, color, family string) *types.UnifiedCrystalData {
	return normalization.Normalize(map[string]any{
		"identification_details": map[string]any{"stone_name": stone, "crystal_family": family},
		"visual_characteristics": map[string]any{"primary_color": color},
	})
}

func MustJSON(tb testing.TB, v any) datatypes.JSON {
	tb.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(b)
}

func SeedIdentification(tb testing.TB, ctx context.Context, tx *gorm.DB, userID *string, stone string) *types.CrystalIdentification {
	tb.Helper()
	u := Unified(stone, "purple", "quartz")
	row := &types.CrystalIdentification{
		ID:          uuid.MustParse(u.CrystalCore.ID),
		UserID:      userID,
		StoneType:   stone,
		Confidence:  0.8,
		ImageHash:   "hash-" + stone,
		Provider:    "fake",
		Model:       "fake-model",
		Unified:     MustJSON(tb, u),
		RawResponse: datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed identification: %v", err)
	}
	return row
}

func SeedCollectionEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, name, color, family string) *types.CollectionEntry {
	tb.Helper()
	u := Unified(name, color, family)
	now := time.Now().UTC()
	u.UserIntegration.UserID = &userID
	u.UserIntegration.AddedToCollection = &now
	var mineral *string
	if u.AutomaticEnrichment != nil {
		mineral = u.AutomaticEnrichment.MineralClass
	}
	e := &types.CollectionEntry{
		ID:                uuid.New(),
		UserID:            userID,
		Name:              name,
		PrimaryChakra:     u.CrystalCore.EnergyMapping.PrimaryChakra,
		MineralClass:      mineral,
		UserExperiences:   datatypes.JSON([]byte("[]")),
		IntentionSettings: datatypes.JSON([]byte("[]")),
		Unified:           MustJSON(tb, u),
		AddedAt:           now,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed collection entry: %v", err)
	}
	return e
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
