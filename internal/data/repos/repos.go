package repos

import (
	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos/crystal"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type IdentificationRepo = crystal.IdentificationRepo
type CollectionRepo = crystal.CollectionRepo
type JournalRepo = crystal.JournalRepo
type ProfileRepo = crystal.ProfileRepo
type GuidanceSessionRepo = crystal.GuidanceSessionRepo

func NewIdentificationRepo(db *gorm.DB, baseLog *logger.Logger) IdentificationRepo {
	return crystal.NewIdentificationRepo(db, baseLog)
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return crystal.NewCollectionRepo(db, baseLog)
}

func NewJournalRepo(db *gorm.DB, baseLog *logger.Logger) JournalRepo {
	return crystal.NewJournalRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return crystal.NewProfileRepo(db, baseLog)
}

func NewGuidanceSessionRepo(db *gorm.DB, baseLog *logger.Logger) GuidanceSessionRepo {
	return crystal.NewGuidanceSessionRepo(db, baseLog)
}
