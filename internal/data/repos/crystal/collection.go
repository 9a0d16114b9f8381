package crystal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type CollectionRepo interface {
	Create(dbc dbctx.Context, entries []*types.CollectionEntry) ([]*types.CollectionEntry, error)
	GetByID(dbc dbctx.Context, userID string, id uuid.UUID) (*types.CollectionEntry, error)
	GetByIDs(dbc dbctx.Context, userID string, ids []uuid.UUID) ([]*types.CollectionEntry, error)
	ListByUser(dbc dbctx.Context, userID string, limit, offset int) ([]*types.CollectionEntry, error)
	CountByUser(dbc dbctx.Context, userID string) (int64, error)
	UpdateFields(dbc dbctx.Context, userID string, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(dbc dbctx.Context, userID string, id uuid.UUID) (bool, error)
}

type collectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return &collectionRepo{
		db:  db,
		log: baseLog.With("repo", "CollectionRepo"),
	}
}

func (r *collectionRepo) Create(dbc dbctx.Context, entries []*types.CollectionEntry) ([]*types.CollectionEntry, error) {
	if len(entries) == 0 {
		return []*types.CollectionEntry{}, nil
	}
	if err := dbc.DB(r.db).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByID scopes the lookup to userID; another user's entry reads as missing (nil, nil).
func (r *collectionRepo) GetByID(dbc dbctx.Context, userID string, id uuid.UUID) (*types.CollectionEntry, error) {
	if userID == "" || id == uuid.Nil {
		return nil, nil
	}
	var out []*types.CollectionEntry
	if err := dbc.DB(r.db).
		Where("user_id = ? AND id = ?", userID, id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *collectionRepo) GetByIDs(dbc dbctx.Context, userID string, ids []uuid.UUID) ([]*types.CollectionEntry, error) {
	out := []*types.CollectionEntry{}
	if userID == "" || len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByUser returns newest entries first. limit <= 0 means no limit.
func (r *collectionRepo) ListByUser(dbc dbctx.Context, userID string, limit, offset int) ([]*types.CollectionEntry, error) {
	out := []*types.CollectionEntry{}
	if userID == "" {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("added_at DESC").
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

func (r *collectionRepo) CountByUser(dbc dbctx.Context, userID string) (int64, error) {
	var count int64
	if userID == "" {
		return 0, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.CollectionEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *collectionRepo) UpdateFields(dbc dbctx.Context, userID string, id uuid.UUID, updates map[string]interface{}) error {
	if userID == "" || id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.CollectionEntry{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(updates).Error
}

func (r *collectionRepo) SoftDelete(dbc dbctx.Context, userID string, id uuid.UUID) (bool, error) {
	if userID == "" || id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&types.CollectionEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
