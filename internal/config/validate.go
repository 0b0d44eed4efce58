package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Bot.validate(); err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	if err := c.Icon.validate(); err != nil {
		return fmt.Errorf("icon: %w", err)
	}

	return nil
}

func (b *BotConfig) validate() error {
	if b.Token == "" {
		return fmt.Errorf("token is required")
	}
	if b.AtelierID <= 0 {
		return fmt.Errorf("atelier_id must be > 0 (got %d)", b.AtelierID)
	}
	switch b.Mode {
	case BotModePolling:
	case BotModeWebhook:
		if b.WebhookSecret == "" {
			return fmt.Errorf("webhook_secret is required in webhook mode")
		}
	default:
		return fmt.Errorf("mode must be %q or %q (got %q)", BotModePolling, BotModeWebhook, b.Mode)
	}
	if b.PollTimeout < 0 {
		return fmt.Errorf("poll_timeout must be >= 0 (got %v)", b.PollTimeout)
	}
	if b.RatePerMinute <= 0 {
		return fmt.Errorf("rate_per_minute must be > 0 (got %d)", b.RatePerMinute)
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.TTL < 0 {
		return fmt.Errorf("ttl must be >= 0 (got %v)", s.TTL)
	}
	if s.TTL > 0 && s.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be > 0 when ttl is set (got %v)", s.SweepInterval)
	}
	return nil
}

func (i *IconConfig) validate() error {
	if i.Size < 16 || i.Size > 1024 {
		return fmt.Errorf("size must be between 16 and 1024 (got %d)", i.Size)
	}
	if i.Quality < 1 || i.Quality > 100 {
		return fmt.Errorf("quality must be between 1 and 100 (got %d)", i.Quality)
	}
	if i.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0 (got %d)", i.MaxUploadBytes)
	}
	return nil
}
