package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("BOT_ATELIER_ID", "144227441")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{DSN: "postgres://u:p@localhost:5432/testdb"},
		Bot: BotConfig{
			Token:         "123:abc",
			AtelierID:     144227441,
			Mode:          BotModePolling,
			PollTimeout:   30 * time.Second,
			RatePerMinute: 60,
		},
		Session: SessionConfig{SweepInterval: 10 * time.Minute},
		Icon:    IconConfig{Size: 128, Quality: 80, MaxUploadBytes: 1 << 20},
		Log:     LogConfig{Level: "info", Format: "json"},
	}
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 4
  min_conns: 1

bot:
  token: "123:abc"
  atelier_id: 144227441
  mode: "webhook"
  webhook_secret: "s3cret"
  rate_per_minute: 30

session:
  ttl: "24h"
  sweep_interval: "1h"

icon:
  size: 96
  quality: 70

log:
  level: "debug"
  format: "text"
`

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("server.read_timeout = %v, want %v", cfg.Server.ReadTimeout, 5*time.Second)
	}

	if cfg.Database.MaxConns != 4 {
		t.Errorf("database.max_conns = %d, want 4", cfg.Database.MaxConns)
	}
	if !cfg.Database.MigrateOnStart {
		t.Error("database.migrate_on_start should default to true")
	}

	if cfg.Bot.AtelierID != 144227441 {
		t.Errorf("bot.atelier_id = %d", cfg.Bot.AtelierID)
	}
	if !cfg.Bot.IsWebhook() {
		t.Errorf("bot.mode = %q, want webhook", cfg.Bot.Mode)
	}
	if cfg.Bot.RatePerMinute != 30 {
		t.Errorf("bot.rate_per_minute = %d, want 30", cfg.Bot.RatePerMinute)
	}
	if cfg.Bot.APIURL != "https://api.telegram.org" {
		t.Errorf("bot.api_url = %q (default expected)", cfg.Bot.APIURL)
	}

	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("session.ttl = %v, want 24h", cfg.Session.TTL)
	}
	if cfg.Icon.Size != 96 || cfg.Icon.Quality != 70 {
		t.Errorf("icon = %+v", cfg.Icon)
	}
	if cfg.Icon.MaxUploadBytes != 10485760 {
		t.Errorf("icon.max_upload_bytes = %d, want default", cfg.Icon.MaxUploadBytes)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log.format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("BOT_MODE", "polling")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server.port = %d, want 3000 (ENV override)", cfg.Server.Port)
	}
	if cfg.Bot.IsWebhook() {
		t.Error("bot.mode should be overridden to polling by ENV")
	}
}

func TestLoad_NoFile_ENVOnly(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")

	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	_ = os.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.Session.TTL != 0 {
		t.Errorf("session.ttl = %v, want 0 (no expiry by default)", cfg.Session.TTL)
	}
	if cfg.Bot.Mode != BotModePolling {
		t.Errorf("bot.mode = %q, want polling", cfg.Bot.Mode)
	}
}

func TestLoadFrom_ExplicitPathNotFound(t *testing.T) {
	_, err := LoadFrom("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty token", func(c *Config) { c.Bot.Token = "" }},
		{"zero atelier", func(c *Config) { c.Bot.AtelierID = 0 }},
		{"negative atelier", func(c *Config) { c.Bot.AtelierID = -5 }},
		{"unknown mode", func(c *Config) { c.Bot.Mode = "push" }},
		{"webhook without secret", func(c *Config) { c.Bot.Mode = BotModeWebhook }},
		{"negative poll timeout", func(c *Config) { c.Bot.PollTimeout = -time.Second }},
		{"zero rate", func(c *Config) { c.Bot.RatePerMinute = 0 }},
		{"negative ttl", func(c *Config) { c.Session.TTL = -time.Minute }},
		{"ttl without sweep", func(c *Config) { c.Session.TTL = time.Hour; c.Session.SweepInterval = 0 }},
		{"icon too small", func(c *Config) { c.Icon.Size = 8 }},
		{"icon too large", func(c *Config) { c.Icon.Size = 4096 }},
		{"quality zero", func(c *Config) { c.Icon.Quality = 0 }},
		{"quality over 100", func(c *Config) { c.Icon.Quality = 101 }},
		{"zero upload limit", func(c *Config) { c.Icon.MaxUploadBytes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestValidate_WebhookWithSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Bot.Mode = BotModeWebhook
	cfg.Bot.WebhookSecret = "s3cret"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
