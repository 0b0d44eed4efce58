package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Bot      BotConfig      `yaml:"bot"`
	Session  SessionConfig  `yaml:"session"`
	Icon     IconConfig     `yaml:"icon"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings (health probes and webhook intake).
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"   env:"DATABASE_MIGRATE_ON_START"   env-default:"true"`
}

// BotConfig holds chat platform settings.
type BotConfig struct {
	Token         string        `yaml:"token"           env:"BOT_TOKEN"           env-required:"true"`
	AtelierID     int64         `yaml:"atelier_id"      env:"BOT_ATELIER_ID"      env-required:"true"`
	APIURL        string        `yaml:"api_url"         env:"BOT_API_URL"         env-default:"https://api.telegram.org"`
	Mode          string        `yaml:"mode"            env:"BOT_MODE"            env-default:"polling"`
	PollTimeout   time.Duration `yaml:"poll_timeout"    env:"BOT_POLL_TIMEOUT"    env-default:"30s"`
	WebhookSecret string        `yaml:"webhook_secret"  env:"BOT_WEBHOOK_SECRET"`
	RatePerMinute int           `yaml:"rate_per_minute" env:"BOT_RATE_PER_MINUTE" env-default:"60"`
}

// SessionConfig holds conversation session settings.
// A zero TTL keeps abandoned sessions until the user's next interaction.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"            env:"SESSION_TTL"            env-default:"0s"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL" env-default:"10m"`
}

// IconConfig holds thumbnail pipeline settings.
type IconConfig struct {
	Size           int   `yaml:"size"             env:"ICON_SIZE"             env-default:"128"`
	Quality        int   `yaml:"quality"          env:"ICON_QUALITY"          env-default:"80"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"ICON_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

const (
	BotModePolling = "polling"
	BotModeWebhook = "webhook"
)

// IsWebhook reports whether updates arrive through the HTTP webhook.
func (c BotConfig) IsWebhook() bool {
	return c.Mode == BotModeWebhook
}
