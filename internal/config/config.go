package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string

	JWTSecret string

	F1APIBase string

	GeminiAPIBase string
	GeminiAPIKey  string
	TextModel     string
	ImageModel    string

	NewsRefreshCron string // cron expression; empty disables the background refresher

	FrontendOrigin string
	Env            string // "development" or "production"
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./f1kz.db"),
		JWTSecret:       secret,
		F1APIBase:       getEnv("F1_API_BASE", "https://f1api.dev/api/"),
		GeminiAPIBase:   getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		TextModel:       getEnv("GEMINI_TEXT_MODEL", "gemini-3-flash-preview"),
		ImageModel:      getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		NewsRefreshCron: getEnv("NEWS_REFRESH_CRON", ""),
		FrontendOrigin:  getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		Env:             getEnv("APP_ENV", "development"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
