package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type Repos struct {
	Identification  repos.IdentificationRepo
	Collection      repos.CollectionRepo
	Journal         repos.JournalRepo
	Profile         repos.ProfileRepo
	GuidanceSession repos.GuidanceSessionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Identification:  repos.NewIdentificationRepo(db, log),
		Collection:      repos.NewCollectionRepo(db, log),
		Journal:         repos.NewJournalRepo(db, log),
		Profile:         repos.NewProfileRepo(db, log),
		GuidanceSession: repos.NewGuidanceSessionRepo(db, log),
	}
}
