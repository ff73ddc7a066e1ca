package bot

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the runtime configuration of the bot, read from the
// environment (a .env file is loaded by main before this runs).
type Config struct {
	Token       string
	AdminID     int64
	DatabaseURL string
	LogLevel    string
	SessionTTL  time.Duration
}

const defaultSessionTTL = time.Hour

// ConfigFromEnv builds the configuration from environment variables.
func ConfigFromEnv() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	adminStr := os.Getenv("BOT_ADMIN_ID")
	if adminStr == "" {
		return nil, errors.New("BOT_ADMIN_ID environment variable is not set")
	}
	adminID, err := strconv.ParseInt(adminStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_ADMIN_ID %q: %w", adminStr, err)
	}

	cfg := &Config{
		Token:       token,
		AdminID:     adminID,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		SessionTTL:  defaultSessionTTL,
	}

	if ttlStr := os.Getenv("SESSION_TTL_MINUTES"); ttlStr != "" {
		minutes, err := strconv.Atoi(ttlStr)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES %q", ttlStr)
		}
		cfg.SessionTTL = time.Duration(minutes) * time.Minute
	}

	return cfg, nil
}
