package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Bot run modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string `env:"ENV" envDefault:"development"` // "development", "production", etc.

	// Telegram
	BotToken      string `env:"BOT_TOKEN"`
	BotMode       string `env:"BOT_MODE" envDefault:"polling"`
	WebhookURL    string `env:"WEBHOOK_URL"`    // public URL Telegram posts updates to
	WebhookSecret string `env:"WEBHOOK_SECRET"` // echoed back in X-Telegram-Bot-Api-Secret-Token
	BotDebug      bool   `env:"BOT_DEBUG"`

	// Server
	ServerAddr string `env:"SERVER_ADDR" envDefault:":3000"`

	// Storage
	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`
	StateBackend string `env:"STATE_BACKEND" envDefault:"postgres"`
	DatabaseURL  string `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/linkchain?sslmode=disable"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Timing
	StateTTL        time.Duration `env:"STATE_TTL" envDefault:"30m"`
	ArchiveTimeout  time.Duration `env:"ARCHIVE_TIMEOUT" envDefault:"5s"`
	EventTimeout    time.Duration `env:"EVENT_TIMEOUT" envDefault:"15s"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"10m"`

	// Copy file
	ConfigFile string `env:"CONFIG_FILE" envDefault:"config.yaml"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the combinations Load cannot express with tags.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	switch c.BotMode {
	case ModePolling:
	case ModeWebhook:
		if c.WebhookURL == "" {
			return fmt.Errorf("WEBHOOK_URL is required when BOT_MODE=%s", ModeWebhook)
		}
	default:
		return fmt.Errorf("unknown BOT_MODE %q", c.BotMode)
	}
	switch c.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	switch c.StateBackend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend)
	}
	if c.StateBackend == BackendPostgres && c.StoreBackend != BackendPostgres {
		return fmt.Errorf("STATE_BACKEND=%s requires STORE_BACKEND=%s", BackendPostgres, BackendPostgres)
	}
	return nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// UsesPostgres reports whether any backend needs the database.
func (c *Config) UsesPostgres() bool {
	return c.StoreBackend == BackendPostgres || c.StateBackend == BackendPostgres
}
