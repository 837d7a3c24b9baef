package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath   string
	HTTPAddr       string
	AllowedOrigins []string
	BackupDir      string

	JWTSecret     string
	TokenTTLHours int

	// Optional integrations
	GeminiAPIKey     string
	TelegramBotToken string
	TelegramChatID   int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	jwtSecret := os.Getenv("PANTRY_JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("PANTRY_JWT_SECRET environment variable not set")
	}

	dbPath := os.Getenv("PANTRY_DB_PATH")
	if dbPath == "" {
		dbPath = "data/pantry.db"
	}

	httpAddr := os.Getenv("PANTRY_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	backupDir := os.Getenv("PANTRY_BACKUP_DIR")
	if backupDir == "" {
		backupDir = "data/backups"
	}

	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("PANTRY_ALLOWED_ORIGINS"); raw != "" {
		origins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	ttlHours := 72
	if raw := os.Getenv("PANTRY_TOKEN_TTL_HOURS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid PANTRY_TOKEN_TTL_HOURS value %q", raw)
		}
		ttlHours = parsed
	}

	// Telegram Config (optional, notifier is disabled without it)
	var telegramChatID int64
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID value %q", raw)
		}
		telegramChatID = parsed
	}

	return &Config{
		DatabasePath:     dbPath,
		HTTPAddr:         httpAddr,
		AllowedOrigins:   origins,
		BackupDir:        backupDir,
		JWTSecret:        jwtSecret,
		TokenTTLHours:    ttlHours,
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   telegramChatID,
	}, nil
}
