package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/crystal-grimoire-backend/internal/http/handlers"
	httpMW "github.com/yungbote/crystal-grimoire-backend/internal/http/middleware"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type RouterConfig struct {
	ServiceName    string
	Log            *logger.Logger
	AllowedOrigins []string

	HealthHandler     *httpH.HealthHandler
	StatusHandler     *httpH.StatusHandler
	CrystalHandler    *httpH.CrystalHandler
	CollectionHandler *httpH.CollectionHandler
	MoonHandler       *httpH.MoonHandler
	GuidanceHandler   *httpH.GuidanceHandler
	JournalHandler    *httpH.JournalHandler
	ProfileHandler    *httpH.ProfileHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestIDs())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.AttachUserContext())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.StatusHandler != nil {
			api.GET("/status", cfg.StatusHandler.Status)
		}

		if cfg.CrystalHandler != nil {
			api.POST("/crystal/identify", cfg.CrystalHandler.Identify)
		}

		// Collection
		if cfg.CollectionHandler != nil {
			api.GET("/crystals", cfg.CollectionHandler.List)
			api.POST("/crystals", cfg.CollectionHandler.Add)
			api.GET("/crystals/stats", cfg.CollectionHandler.Stats)
			api.GET("/crystals/:id", cfg.CollectionHandler.Get)
			api.PATCH("/crystals/:id", cfg.CollectionHandler.Update)
			api.DELETE("/crystals/:id", cfg.CollectionHandler.Delete)
		}

		// Moon
		if cfg.MoonHandler != nil {
			api.GET("/moon/current-phase", cfg.MoonHandler.CurrentPhase)
			api.GET("/moon/rituals/:phase", cfg.MoonHandler.Ritual)
		}

		if cfg.GuidanceHandler != nil {
			api.POST("/guidance/personalized", cfg.GuidanceHandler.Personalized)
			api.GET("/guidance/sessions", cfg.GuidanceHandler.Sessions)
		}

		// Journals
		if cfg.JournalHandler != nil {
			api.GET("/journals", cfg.JournalHandler.List)
			api.POST("/journals", cfg.JournalHandler.Create)
			api.GET("/journals/patterns", cfg.JournalHandler.Patterns(""))
			api.GET("/journals/:id", cfg.JournalHandler.Get)
			api.DELETE("/journals/:id", cfg.JournalHandler.Delete)

			// Dreams are journal entries of type dream
			api.POST("/dreams", cfg.JournalHandler.CreateDream)
			api.GET("/dreams/patterns", cfg.JournalHandler.Patterns("dream"))
		}

		// Profile
		if cfg.ProfileHandler != nil {
			api.GET("/users/profile", cfg.ProfileHandler.Get)
			api.PUT("/users/profile", cfg.ProfileHandler.Update)
			api.POST("/users/profile", cfg.ProfileHandler.Update)
		}
	}

	return r
}
