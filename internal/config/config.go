package config

import (
	"log"
	"os"
)

// Summary style constants
const (
	SummaryStyleStructured     = "structured"
	SummaryStyleConversational = "conversational"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	DatabaseURL string
	RedisURL    string
	Port        string
	Env         string
	LogLevel    string
	LogFormat   string

	// Video platform (webhook signing + call control)
	StreamAPIKey    string
	StreamAPISecret string
	StreamBaseURL   string

	// Summarization
	OpenAIAPIKey string
	SummaryModel string
	SummaryStyle string

	// Dashboard API bearer token
	APIToken string

	// Optional base64 AES-256 key for encrypting transcript/recording URLs at rest
	URLEncryptionKey string

	SeedDevData bool
}

// Load reads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),
		Port:             getEnvWithDefault("PORT", "8080"),
		Env:              getEnvWithDefault("ENV", "development"),
		LogLevel:         getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:        getEnvWithDefault("LOG_FORMAT", "text"),
		StreamAPIKey:     os.Getenv("STREAM_API_KEY"),
		StreamAPISecret:  os.Getenv("STREAM_API_SECRET"),
		StreamBaseURL:    getEnvWithDefault("STREAM_BASE_URL", "https://video.stream-io-api.com/api/v2"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		SummaryModel:     getEnvWithDefault("SUMMARY_MODEL", "gpt-4o-mini"),
		SummaryStyle:     getEnvWithDefault("SUMMARY_STYLE", SummaryStyleStructured),
		APIToken:         os.Getenv("API_TOKEN"),
		URLEncryptionKey: os.Getenv("URL_ENCRYPTION_KEY"),
		SeedDevData:      os.Getenv("SEED_DEV_DATA") == "true",
	}

	if cfg.SummaryStyle != SummaryStyleStructured && cfg.SummaryStyle != SummaryStyleConversational {
		log.Printf("WARNING: unknown SUMMARY_STYLE %q, falling back to %q", cfg.SummaryStyle, SummaryStyleStructured)
		cfg.SummaryStyle = SummaryStyleStructured
	}

	// Warn if the dashboard API is left unprotected (fine for local development)
	if cfg.APIToken == "" && cfg.Env != "development" {
		log.Println("WARNING: API_TOKEN is not set; dashboard API endpoints are unauthenticated")
	}

	return cfg
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
