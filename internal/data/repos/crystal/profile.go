package crystal

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type ProfileRepo interface {
	GetByUser(dbc dbctx.Context, userID string) (*types.UserProfile, error)
	Upsert(dbc dbctx.Context, profile *types.UserProfile) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{
		db:  db,
		log: baseLog.With("repo", "ProfileRepo"),
	}
}

func (r *profileRepo) GetByUser(dbc dbctx.Context, userID string) (*types.UserProfile, error) {
	if userID == "" {
		return nil, nil
	}
	var out []*types.UserProfile
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// Upsert writes every profile column; created_at is kept on conflict.
func (r *profileRepo) Upsert(dbc dbctx.Context, profile *types.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "sun_sign", "moon_sign", "rising_sign", "dominant_element",
				"spiritual_goals", "current_challenges", "updated_at",
			}),
		}).
		Create(profile).Error
}
