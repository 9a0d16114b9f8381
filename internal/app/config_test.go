package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/grimoire.db")
	t.Setenv("MAX_IMAGE_BYTES", "1024")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("OTEL_SAMPLER_RATIO", "not-a-number")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Address() != ":9090" {
		t.Fatalf("address: got=%q want=%q", cfg.Address(), ":9090")
	}
	if cfg.DB().Driver != "sqlite" || cfg.DB().SQLitePath != "/tmp/grimoire.db" {
		t.Fatalf("db config: got=%+v", cfg.DB())
	}
	if cfg.MaxImageBytes != 1024 {
		t.Fatalf("max image bytes: got=%d want=1024", cfg.MaxImageBytes)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins); diff != "" {
		t.Fatalf("cors origins (-want +got):\n%s", diff)
	}
	if cfg.OtelSampleRatio != 0.1 {
		t.Fatalf("sample ratio: got=%v want=0.1", cfg.OtelSampleRatio)
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grimoire.yaml")
	body := "port: \"7000\"\nai_provider: none\nmax_image_bytes: 2048\nredis_addr: cache:6379\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "from-env.db")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "7000" {
		t.Fatalf("port: got=%q want=%q", cfg.Port, "7000")
	}
	if cfg.SQLitePath != "from-env.db" {
		t.Fatalf("sqlite path should keep env value: got=%q", cfg.SQLitePath)
	}
	if cfg.MaxImageBytes != 2048 || cfg.RedisAddr != "cache:6379" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	base := Config{Port: "8080", DBDriver: "postgres", MaxImageBytes: 1}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", func(*Config) {}, false},
		{"bad driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"no port", func(c *Config) { c.Port = " " }, true},
		{"zero image cap", func(c *Config) { c.MaxImageBytes = 0 }, true},
		{"bad provider", func(c *Config) { c.AIProvider = "watson" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate: got err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
