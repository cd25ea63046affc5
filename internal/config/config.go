package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/telegram-relay-bot/internal/models"
)

// Load loads configuration from environment variables
// It first attempts to load from .env file, then reads environment variables
func Load() (*models.BotConfig, error) {
	// Try to load .env file (optional, ignore error if not found)
	_ = godotenv.Load()

	config := &models.BotConfig{
		// Telegram settings
		TelegramToken: getEnv("BOT_TOKEN", ""),
		AdminID:       getEnvInt64("ADMIN_ID", 0),

		// Webhook settings
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", "supersecret123"),
		Port:          getEnvInt("PORT", 8000),

		// Gemini API settings
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiTimeout: getEnvInt("GEMINI_TIMEOUT", 60),

		// Image provider settings
		BananaAPIKey:   getEnv("BANANA_API_KEY", ""),
		BananaModelKey: getEnv("BANANA_MODEL_KEY", "banana-model-id-here"),

		// App settings
		Timezone:    getEnv("TIMEZONE", "Europe/Moscow"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "production"),
		DataDir:     getEnv("DATA_DIR", "."),

		// Conversation and report limits
		HistorySize:      getEnvInt("HISTORY_SIZE", 10),
		ReportDailyLimit: getEnvInt("REPORT_DAILY_LIMIT", 5),
	}

	// Validate configuration
	if err := validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validate checks if all required configuration values are set
func validate(cfg *models.BotConfig) error {
	if cfg.TelegramToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID is required")
	}
	if cfg.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}

	// Validate positive values
	if cfg.Port <= 0 {
		return fmt.Errorf("PORT must be positive, got %d", cfg.Port)
	}
	if cfg.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive, got %d", cfg.GeminiTimeout)
	}
	if cfg.HistorySize <= 0 {
		return fmt.Errorf("HISTORY_SIZE must be positive, got %d", cfg.HistorySize)
	}
	if cfg.ReportDailyLimit <= 0 {
		return fmt.Errorf("REPORT_DAILY_LIMIT must be positive, got %d", cfg.ReportDailyLimit)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %s", cfg.LogLevel)
	}

	return nil
}

// getEnv retrieves environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves environment variable as integer or returns default value
func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvInt64 retrieves environment variable as int64 or returns default value
func getEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}
