package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Cache backend selectors for CACHE_BACKEND.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string

	// Data source
	ServiceAccountFile string
	SheetID            string
	WorksheetName      string
	RawResponsesFile   string

	// Inference
	LLMModel         string
	LLMBaseURL       string
	LLMAPIKey        string
	LLMTimeout       time.Duration
	LLMRetryAttempts int
	LLMMaxConcurrent int

	// Assessment cache
	CacheBackend string
	CacheDBPath  string
	RedisAddr    string

	// Output
	OutputPath  string
	MentorsFile string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "data/service_account.json"),
		SheetID:            getEnv("GOOGLE_SHEET_ID", ""),
		WorksheetName:      getEnv("GOOGLE_WORKSHEET_NAME", "Form responses 1"),
		RawResponsesFile:   getEnv("RAW_RESPONSES_FILE", "data/responses_raw.json"),
		LLMModel:           getEnv("LLM_MODEL", ""),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "ollama"),
		LLMTimeout:         time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
		LLMRetryAttempts:   getEnvInt("LLM_RETRY_ATTEMPTS", 2),
		LLMMaxConcurrent:   getEnvInt("LLM_MAX_CONCURRENT", 1),
		CacheBackend:       getEnv("CACHE_BACKEND", CacheBackendSQLite),
		CacheDBPath:        getEnv("CACHE_DB_PATH", "./data/analysis_cache.db"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		OutputPath:         getEnv("OUTPUT_MARKDOWN_FILE", "team_role_report.md"),
		MentorsFile:        getEnv("MENTORS_FILE", ""),
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil || val <= 0 {
		return fallback
	}
	return val
}
