package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string
	JWTSecret   string

	// Background jobs
	AIUsageRetentionDays int
	DailySummaryCron     string

	// WhatsApp channel
	WhatsAppStoreURL   string
	WhatsAppEnabled    bool
	WhatsAppPendingTTL time.Duration

	// Confirmation dedup window
	DedupWindow time.Duration

	// Where report export links point to
	PublicBaseURL string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		Port:                 os.Getenv("PORT"),
		Env:                  os.Getenv("ENV"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AIUsageRetentionDays: envInt("AI_USAGE_RETENTION_DAYS", 90),
		DailySummaryCron:     os.Getenv("DAILY_SUMMARY_CRON"),
		WhatsAppStoreURL:     os.Getenv("WHATSAPP_STORE_URL"),
		WhatsAppEnabled:      os.Getenv("WHATSAPP_ENABLED") == "true",
		WhatsAppPendingTTL:   time.Duration(envInt("WHATSAPP_PENDING_TTL_MINUTES", 10)) * time.Minute,
		DedupWindow:          time.Duration(envInt("DEDUP_WINDOW_SECONDS", 30)) * time.Second,
		PublicBaseURL:        os.Getenv("PUBLIC_BASE_URL"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.JWTSecret == "" {
		log.Warn().Msg("⚠️ JWT_SECRET not set, using development secret")
		cfg.JWTSecret = "sokotally-dev-secret"
	}
	if cfg.DailySummaryCron == "" {
		// seconds field first: 20:00 every day
		cfg.DailySummaryCron = "0 0 20 * * *"
	}
	if cfg.WhatsAppStoreURL == "" {
		// Default to main database if not specified
		cfg.WhatsAppStoreURL = cfg.DatabaseURL
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}

	return cfg
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("⚠️ Invalid integer env, using default")
		return def
	}
	return v
}
