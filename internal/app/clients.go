package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/crystal-grimoire-backend/internal/clients/gcp"
	"github.com/yungbote/crystal-grimoire-backend/internal/clients/gemini"
	"github.com/yungbote/crystal-grimoire-backend/internal/clients/openai"
	"github.com/yungbote/crystal-grimoire-backend/internal/clients/redis"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

// Clients holds the optional external backends. A nil field means the feature is off.
type Clients struct {
	AIProvider AIProvider
	Gemini     gemini.Client
	OpenAI     openai.Client
	AICache    redis.AICache
	Specimens  gcp.SpecimenBucket
}

func wireClients(ctx context.Context, cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	pcfg, err := resolveAIProviderConfig(cfg)
	if err != nil {
		return Clients{}, err
	}
	out := Clients{AIProvider: pcfg.Provider}

	switch pcfg.Provider {
	case AIProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			MaxRetries: cfg.GeminiMaxRetries,
		}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init gemini client: %w", err)
		}
		out.Gemini = c
	case AIProviderOpenAI:
		c, err := openai.NewClient(openai.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIModel,
			Timeout:    time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
			MaxRetries: cfg.OpenAIMaxRetries,
		}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.OpenAI = c
	default:
		log.Warn("no AI provider configured; identification and guidance are disabled")
	}
	log.Info("ai provider resolved", "provider", pcfg.Provider, "mode_source", pcfg.ModeSource)

	// Redis
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		cache, err := redis.NewAICache(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.AICacheTTL(),
		}, log)
		if err != nil {
			// The cache only saves model calls; run without it.
			log.Warn("redis ai cache unavailable", "error", err)
		} else {
			out.AICache = cache
		}
	}

	// Gcs
	if strings.TrimSpace(cfg.SpecimenBucketName) != "" {
		bucket, err := gcp.NewSpecimenBucket(ctx, gcp.BucketConfig{
			Name:        cfg.SpecimenBucketName,
			CDNDomain:   cfg.SpecimenCDNDomain,
			Credentials: cfg.GCPCredentials,
		}, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init specimen bucket: %w", err)
		}
		out.Specimens = bucket
	}

	return out, nil
}

func (c Clients) Close() {
	if c.AICache != nil {
		_ = c.AICache.Close()
	}
}
