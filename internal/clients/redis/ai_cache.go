package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

// AICache stores raw model responses keyed by the sha256 of the submitted image.
type AICache interface {
	Get(ctx context.Context, imageHash string) ([]byte, bool, error)
	Set(ctx context.Context, imageHash string, raw []byte) error
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

type aiCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewAICache(cfg Config, log *logger.Logger) (AICache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newAICache(rdb, cfg, log), nil
}

func newAICache(rdb *goredis.Client, cfg Config, log *logger.Logger) *aiCache {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = "crystal:ai"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &aiCache{
		log:    log.With("service", "RedisAICache"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *aiCache) key(imageHash string) string {
	return c.prefix + ":" + strings.ToLower(strings.TrimSpace(imageHash))
}

func (c *aiCache) Get(ctx context.Context, imageHash string) ([]byte, bool, error) {
	if strings.TrimSpace(imageHash) == "" {
		return nil, false, nil
	}
	b, err := c.rdb.Get(ctx, c.key(imageHash)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return b, true, nil
}

func (c *aiCache) Set(ctx context.Context, imageHash string, raw []byte) error {
	if strings.TrimSpace(imageHash) == "" || len(raw) == 0 {
		return nil
	}
	if err := c.rdb.Set(ctx, c.key(imageHash), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *aiCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *aiCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
