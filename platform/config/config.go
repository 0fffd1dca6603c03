// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// ReasoningConfig provides settings for the reasoning service clients.
type ReasoningConfig interface {
	GetReasoningProvider() string
	GetReasoningAPIKey() string
	GetReasoningBaseURL() string
	GetReasoningModel() string
	GetReasoningMaxAttempts() int
	GetReasoningTimeout() time.Duration
}

// ScoringConfig provides settings for the scoring engine.
type ScoringConfig interface {
	GetReferenceTimezone() string
	GetBatchConcurrency() int
	IsFallbackScoringEnabled() bool
}

// WhatsAppConfig provides settings for the WhatsApp messaging client.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppToken() string
	IsWhatsAppEnabled() bool
}

// SchedulerConfig provides settings for the asynq scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Config implementation
// =============================================================================

// Config holds all application settings loaded from the environment.
type Config struct {
	Env          string
	HTTPAddr     string
	DatabaseURL  string
	CORSAllowAll bool
	CORSOrigins  []string

	ReasoningProvider    string
	ReasoningAPIKey      string
	ReasoningBaseURL     string
	ReasoningModel       string
	ReasoningMaxAttempts int
	ReasoningTimeout     time.Duration

	ReferenceTimezone string
	BatchConcurrency  int
	FallbackScoring   bool

	WhatsAppURL   string
	WhatsAppToken string

	RedisURL         string
	AsynqQueue       string
	AsynqConcurrency int
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:          getEnv("APP_ENV", "development"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		CORSAllowAll: corsAllowAll,
		CORSOrigins:  corsOrigins,

		ReasoningProvider:    strings.ToLower(getEnv("REASONING_PROVIDER", "openai")),
		ReasoningAPIKey:      getEnv("OPENAI_API_KEY", getEnv("GEMINI_API_KEY", "")),
		ReasoningBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ReasoningModel:       getEnv("REASONING_MODEL", "gpt-4o-mini"),
		ReasoningMaxAttempts: getEnvInt("REASONING_MAX_ATTEMPTS", 3),
		ReasoningTimeout:     mustDuration(getEnv("REASONING_TIMEOUT", "30s")),

		ReferenceTimezone: getEnv("REFERENCE_TIMEZONE", "Asia/Kolkata"),
		BatchConcurrency:  getEnvInt("SCORING_BATCH_CONCURRENCY", 4),
		FallbackScoring:   strings.EqualFold(getEnv("FALLBACK_SCORING", "false"), "true"),

		WhatsAppURL:   getEnv("WHATSAPP_API_URL", ""),
		WhatsAppToken: getEnv("WHATSAPP_API_TOKEN", ""),

		RedisURL:         getEnv("REDIS_URL", ""),
		AsynqQueue:       getEnv("ASYNQ_QUEUE", "scoring"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 2),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ReasoningAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY (or GEMINI_API_KEY) is required")
	}
	if cfg.ReasoningProvider != "openai" && cfg.ReasoningProvider != "gemini" {
		return nil, fmt.Errorf("REASONING_PROVIDER must be openai or gemini, got %q", cfg.ReasoningProvider)
	}
	if cfg.ReasoningMaxAttempts < 1 {
		return nil, fmt.Errorf("REASONING_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.ReasoningTimeout <= 0 {
		return nil, fmt.Errorf("REASONING_TIMEOUT must be a positive duration")
	}
	if cfg.WhatsAppURL != "" && cfg.WhatsAppToken == "" {
		return nil, fmt.Errorf("WHATSAPP_API_TOKEN is required when WHATSAPP_API_URL is set")
	}

	return cfg, nil
}

// Interface implementations.

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetReasoningProvider() string       { return c.ReasoningProvider }
func (c *Config) GetReasoningAPIKey() string         { return c.ReasoningAPIKey }
func (c *Config) GetReasoningBaseURL() string        { return c.ReasoningBaseURL }
func (c *Config) GetReasoningModel() string          { return c.ReasoningModel }
func (c *Config) GetReasoningMaxAttempts() int       { return c.ReasoningMaxAttempts }
func (c *Config) GetReasoningTimeout() time.Duration { return c.ReasoningTimeout }

func (c *Config) GetReferenceTimezone() string   { return c.ReferenceTimezone }
func (c *Config) GetBatchConcurrency() int       { return c.BatchConcurrency }
func (c *Config) IsFallbackScoringEnabled() bool { return c.FallbackScoring }

func (c *Config) GetWhatsAppURL() string   { return c.WhatsAppURL }
func (c *Config) GetWhatsAppToken() string { return c.WhatsAppToken }
func (c *Config) IsWhatsAppEnabled() bool  { return c.WhatsAppURL != "" }

func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueue }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// Helpers.

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return fallback
	}
	return parsed
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
