package crystal

import (
	"gorm.io/gorm"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type GuidanceSessionRepo interface {
	Create(dbc dbctx.Context, sessions []*types.GuidanceSession) ([]*types.GuidanceSession, error)
	ListByUser(dbc dbctx.Context, userID string, limit, offset int) ([]*types.GuidanceSession, error)
}

type guidanceSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuidanceSessionRepo(db *gorm.DB, baseLog *logger.Logger) GuidanceSessionRepo {
	return &guidanceSessionRepo{
		db:  db,
		log: baseLog.With("repo", "GuidanceSessionRepo"),
	}
}

func (r *guidanceSessionRepo) Create(dbc dbctx.Context, sessions []*types.GuidanceSession) ([]*types.GuidanceSession, error) {
	if len(sessions) == 0 {
		return []*types.GuidanceSession{}, nil
	}
	if err := dbc.DB(r.db).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *guidanceSessionRepo) ListByUser(dbc dbctx.Context, userID string, limit, offset int) ([]*types.GuidanceSession, error) {
	out := []*types.GuidanceSession{}
	if userID == "" {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
