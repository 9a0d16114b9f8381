package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/db"
	"github.com/yungbote/crystal-grimoire-backend/internal/observability"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/envutil"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"github.com/yungbote/crystal-grimoire-backend/internal/services"
)

type Config struct {
	Port        string `yaml:"port"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`

	DBDriver         string `yaml:"db_driver"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
	SQLitePath       string `yaml:"sqlite_path"`

	AIProvider           string `yaml:"ai_provider"`
	GeminiAPIKey         string `yaml:"gemini_api_key"`
	GeminiModel          string `yaml:"gemini_model"`
	GeminiMaxRetries     int    `yaml:"gemini_max_retries"`
	OpenAIAPIKey         string `yaml:"openai_api_key"`
	OpenAIBaseURL        string `yaml:"openai_base_url"`
	OpenAIModel          string `yaml:"openai_model"`
	OpenAITimeoutSeconds int    `yaml:"openai_timeout_seconds"`
	OpenAIMaxRetries     int    `yaml:"openai_max_retries"`

	AIRequestsPerMinute int    `yaml:"ai_requests_per_minute"`
	AIRequestBurst      int    `yaml:"ai_request_burst"`
	AICacheTTLSeconds   int    `yaml:"ai_cache_ttl_seconds"`
	RedisAddr           string `yaml:"redis_addr"`
	RedisPassword       string `yaml:"redis_password"`
	RedisDB             int    `yaml:"redis_db"`

	SpecimenBucketName string `yaml:"specimen_gcs_bucket_name"`
	SpecimenCDNDomain  string `yaml:"specimen_cdn_domain"`
	GCPCredentials     string `yaml:"gcp_credentials"`

	MaxImageBytes      int64    `yaml:"max_image_bytes"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	OtelEnabled     bool    `yaml:"otel_enabled"`
	OtelEndpoint    string  `yaml:"otel_endpoint"`
	OtelHeaders     string  `yaml:"otel_headers"`
	OtelInsecure    bool    `yaml:"otel_insecure"`
	OtelSampleRatio float64 `yaml:"otel_sample_ratio"`
}

// LoadConfig reads the environment, then overlays the YAML file named by CONFIG_PATH if set.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		Port:        envutil.String("PORT", "8080", log),
		ServiceName: envutil.String("SERVICE_NAME", "crystal-grimoire", log),
		Environment: envutil.String("APP_ENV", "development", log),
		Version:     envutil.String("APP_VERSION", "dev", log),

		DBDriver:         envutil.String("DB_DRIVER", db.DriverPostgres, log),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", nil),
		PostgresName:     envutil.String("POSTGRES_NAME", "crystal_grimoire", log),
		PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
		SQLitePath:       envutil.String("SQLITE_PATH", "crystal_grimoire.db", log),

		AIProvider:           envutil.String("AI_PROVIDER", "", log),
		GeminiAPIKey:         envutil.String("GEMINI_API_KEY", "", nil),
		GeminiModel:          envutil.String("GEMINI_MODEL", "gemini-2.5-flash", log),
		GeminiMaxRetries:     envutil.Int("GEMINI_MAX_RETRIES", 2, log),
		OpenAIAPIKey:         envutil.String("OPENAI_API_KEY", "", nil),
		OpenAIBaseURL:        envutil.String("OPENAI_BASE_URL", "https://api.openai.com", log),
		OpenAIModel:          envutil.String("OPENAI_MODEL", "gpt-4o-mini", log),
		OpenAITimeoutSeconds: envutil.Int("OPENAI_TIMEOUT_SECONDS", 90, log),
		OpenAIMaxRetries:     envutil.Int("OPENAI_MAX_RETRIES", 2, log),

		AIRequestsPerMinute: envutil.Int("AI_REQUESTS_PER_MINUTE", 0, log),
		AIRequestBurst:      envutil.Int("AI_REQUEST_BURST", 2, log),
		AICacheTTLSeconds:   envutil.Int("AI_CACHE_TTL_SECONDS", 86400, log),
		RedisAddr:           envutil.String("REDIS_ADDR", "", log),
		RedisPassword:       envutil.String("REDIS_PASSWORD", "", nil),
		RedisDB:             envutil.Int("REDIS_DB", 0, log),

		SpecimenBucketName: envutil.String("SPECIMEN_GCS_BUCKET_NAME", "", log),
		SpecimenCDNDomain:  envutil.String("SPECIMEN_CDN_DOMAIN", "", log),
		GCPCredentials:     envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "", nil),

		MaxImageBytes:      int64(envutil.Int("MAX_IMAGE_BYTES", int(services.DefaultMaxImageBytes), log)),
		CORSAllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", nil),

		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
		OtelHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", nil),
		OtelInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1, log),
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := overlayConfigFile(&cfg, path); err != nil {
			return Config{}, err
		}
		log.Info("config file applied", "path", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// overlayConfigFile decodes path over cfg; keys absent from the file keep their current value.
func overlayConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (want postgres or sqlite)", c.DBDriver)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	}
	if _, err := resolveAIProviderConfig(c); err != nil {
		return err
	}
	return nil
}

func (c Config) DB() db.Config {
	return db.Config{
		Driver:           c.DBDriver,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		PostgresSSLMode:  c.PostgresSSLMode,
		SQLitePath:       c.SQLitePath,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Endpoint:    c.OtelEndpoint,
		Headers:     observability.ParseHeaders(c.OtelHeaders),
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func (c Config) AICacheTTL() time.Duration {
	return time.Duration(c.AICacheTTLSeconds) * time.Second
}

func (c Config) Address() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}
