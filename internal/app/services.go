package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"github.com/yungbote/crystal-grimoire-backend/internal/services"
)

type Services struct {
	Identification services.IdentificationService
	Collection     services.CollectionService
	Moon           services.MoonService
	Guidance       services.GuidanceService
	Journal        services.JournalService
	Profile        services.ProfileService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	vision, text := aiModels(clients)
	vision, text = services.RateLimitedModels(vision, text, cfg.AIRequestsPerMinute, cfg.AIRequestBurst)

	// Interface fields stay untyped nil when the backend is off so services can test for nil.
	var cache services.AICache
	if clients.AICache != nil {
		cache = clients.AICache
	}
	var store services.SpecimenStore
	if clients.Specimens != nil {
		store = clients.Specimens
	}

	return Services{
		Identification: services.NewIdentificationService(log, reposet.Identification, vision, cache, store, cfg.MaxImageBytes),
		Collection:     services.NewCollectionService(db, log, reposet.Collection, reposet.Identification),
		Moon:           services.NewMoonService(log, reposet.Collection),
		Guidance:       services.NewGuidanceService(log, text, reposet.Collection, reposet.Profile, reposet.GuidanceSession),
		Journal:        services.NewJournalService(log, reposet.Journal, reposet.Collection, text),
		Profile:        services.NewProfileService(log, reposet.Profile),
	}
}

func aiModels(clients Clients) (services.VisionModel, services.TextModel) {
	switch {
	case clients.Gemini != nil:
		return clients.Gemini, clients.Gemini
	case clients.OpenAI != nil:
		return clients.OpenAI, clients.OpenAI
	default:
		return nil, nil
	}
}
