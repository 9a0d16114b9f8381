package crystal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type JournalRepo interface {
	Create(dbc dbctx.Context, entries []*types.JournalEntry) ([]*types.JournalEntry, error)
	GetByID(dbc dbctx.Context, userID string, id uuid.UUID) (*types.JournalEntry, error)
	ListByUser(dbc dbctx.Context, userID string, limit, offset int) ([]*types.JournalEntry, error)
	// ListByUserSince returns entries dated at or after since, newest first. An empty
	// entryType matches every type.
	ListByUserSince(dbc dbctx.Context, userID string, since time.Time, entryType string) ([]*types.JournalEntry, error)
	SoftDelete(dbc dbctx.Context, userID string, id uuid.UUID) (bool, error)
}

type journalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJournalRepo(db *gorm.DB, baseLog *logger.Logger) JournalRepo {
	return &journalRepo{
		db:  db,
		log: baseLog.With("repo", "JournalRepo"),
	}
}

func (r *journalRepo) Create(dbc dbctx.Context, entries []*types.JournalEntry) ([]*types.JournalEntry, error) {
	if len(entries) == 0 {
		return []*types.JournalEntry{}, nil
	}
	if err := dbc.DB(r.db).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *journalRepo) GetByID(dbc dbctx.Context, userID string, id uuid.UUID) (*types.JournalEntry, error) {
	if userID == "" || id == uuid.Nil {
		return nil, nil
	}
	var out []*types.JournalEntry
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

func (r *journalRepo) ListByUser(dbc dbctx.Context, userID string, limit, offset int) ([]*types.JournalEntry, error) {
	out := []*types.JournalEntry{}
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

func (r *journalRepo) ListByUserSince(dbc dbctx.Context, userID string, since time.Time, entryType string) ([]*types.JournalEntry, error) {
	out := []*types.JournalEntry{}
	if userID == "" {
		return out, nil
	}
	q := dbc.DB(r.db).Where("user_id = ? AND entry_date >= ?", userID, since)
	if entryType != "" {
		q = q.Where("entry_type = ?", entryType)
	}
	if err := q.Order("entry_date DESC").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *journalRepo) SoftDelete(dbc dbctx.Context, userID string, id uuid.UUID) (bool, error) {
	if userID == "" || id == uuid.Nil {
		return false, nil
	}
	res := dbc.DB(r.db).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&types.JournalEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
