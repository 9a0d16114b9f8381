package crystal

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type IdentificationRepo interface {
	Create(dbc dbctx.Context, rows []*types.CrystalIdentification) ([]*types.CrystalIdentification, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CrystalIdentification, error)
	ListByUser(dbc dbctx.Context, userID string, limit int) ([]*types.CrystalIdentification, error)
}

type identificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIdentificationRepo(db *gorm.DB, baseLog *logger.Logger) IdentificationRepo {
	return &identificationRepo{
		db:  db,
		log: baseLog.With("repo", "IdentificationRepo"),
	}
}

func (r *identificationRepo) Create(dbc dbctx.Context, rows []*types.CrystalIdentification) ([]*types.CrystalIdentification, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.CrystalIdentification{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns nil, nil when no row matches.
func (r *identificationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CrystalIdentification, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.CrystalIdentification
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *identificationRepo) ListByUser(dbc dbctx.Context, userID string, limit int) ([]*types.CrystalIdentification, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.CrystalIdentification{}
	if userID == "" {
		return out, nil
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
