package app

import (
	"context"

	"gorm.io/gorm"

	httpapi "github.com/yungbote/crystal-grimoire-backend/internal/http"
	httpH "github.com/yungbote/crystal-grimoire-backend/internal/http/handlers"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Status     *httpH.StatusHandler
	Crystal    *httpH.CrystalHandler
	Collection *httpH.CollectionHandler
	Moon       *httpH.MoonHandler
	Guidance   *httpH.GuidanceHandler
	Journal    *httpH.JournalHandler
	Profile    *httpH.ProfileHandler
}

func wireHandlers(log *logger.Logger, cfg Config, db *gorm.DB, serviceset Services, clientset Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(cfg.ServiceName, serviceset.Identification.Available, pingDB(db)),
		Status:     httpH.NewStatusHandler(cfg.ServiceName, cfg.Version, statusDependencies(db, clientset)...),
		Crystal:    httpH.NewCrystalHandler(serviceset.Identification, cfg.MaxImageBytes),
		Collection: httpH.NewCollectionHandler(serviceset.Collection),
		Moon:       httpH.NewMoonHandler(serviceset.Moon),
		Guidance:   httpH.NewGuidanceHandler(serviceset.Guidance),
		Journal:    httpH.NewJournalHandler(serviceset.Journal),
		Profile:    httpH.NewProfileHandler(serviceset.Profile),
	}
}

// statusDependencies lists the dependencies /api/status reports. Only the database is required;
// everything else degrades a feature, not the service.
func statusDependencies(db *gorm.DB, clientset Clients) []httpH.StatusDependency {
	deps := []httpH.StatusDependency{
		{Name: "database", Configured: true, Required: true, Check: pingDB(db)},
		{Name: "ai_model", Configured: clientset.AIProvider != AIProviderNone},
		{Name: "ai_cache", Configured: clientset.AICache != nil},
		{Name: "specimen_storage", Configured: clientset.Specimens != nil},
	}
	if clientset.AICache != nil {
		deps[2].Check = clientset.AICache.Ping
	}
	return deps
}

func wireServer(log *logger.Logger, cfg Config, handlerset Handlers) *httpapi.Server {
	log.Info("Wiring router...")
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = cfg.ServiceName
	}
	return httpapi.NewServer(httpapi.RouterConfig{
		ServiceName:       serviceName,
		Log:               log,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		HealthHandler:     handlerset.Health,
		StatusHandler:     handlerset.Status,
		CrystalHandler:    handlerset.Crystal,
		CollectionHandler: handlerset.Collection,
		MoonHandler:       handlerset.Moon,
		GuidanceHandler:   handlerset.Guidance,
		JournalHandler:    handlerset.Journal,
		ProfileHandler:    handlerset.Profile,
	})
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
