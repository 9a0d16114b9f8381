package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/db"
	httpapi "github.com/yungbote/crystal-grimoire-backend/internal/http"
	"github.com/yungbote/crystal-grimoire-backend/internal/observability"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpapi.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel())

	dbs, err := db.NewService(cfg.DB(), log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	theDB := dbs.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureIndexes(theDB); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	clientset, err := wireClients(ctx, cfg, log)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clientset)
	handlerset := wireHandlers(log, cfg, theDB, serviceset, clientset)
	server := wireServer(log, cfg, handlerset)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clientset,
		dbService:    dbs,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := a.Cfg.Address()
	a.Log.Info("server listening", "address", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
