// Package config loads application configuration from environment variables.
// All variables use the LEARN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Session  SessionConfig
	Prompt   PromptConfig
	Tracing  TracingConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string
}

// AIConfig holds the generative-language service settings.
type AIConfig struct {
	Google      GoogleConfig
	Backend     string // "rest" or "sdk"
	Timeout     time.Duration
	MaxAttempts int
}

// GoogleConfig holds Google Gemini provider settings.
type GoogleConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// CacheConfig holds Dragonfly/Redis connection settings.
type CacheConfig struct {
	Enabled   bool
	URL       string
	TrendsTTL time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings for the event sink.
// An empty URL disables the sink.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// SessionConfig holds designer session settings.
type SessionConfig struct {
	TTL time.Duration
}

// PromptConfig points at an optional prompt catalogue override.
// An empty path uses the built-in catalogue.
type PromptConfig struct {
	CataloguePath string
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with LEARN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           envInt("LEARN_SERVER_PORT", 8080),
			Host:           envStr("LEARN_SERVER_HOST", "0.0.0.0"),
			AllowedOrigins: envList("LEARN_SERVER_ALLOWED_ORIGINS", []string{"*"}),
		},
		AI: AIConfig{
			Google: GoogleConfig{
				APIKey:  envStr("LEARN_AI_GOOGLE_API_KEY", ""),
				Model:   envStr("LEARN_AI_MODEL", "gemini-2.5-flash"),
				BaseURL: envStr("LEARN_AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			},
			Backend:     envStr("LEARN_AI_BACKEND", "rest"),
			Timeout:     envDuration("LEARN_AI_TIMEOUT", 60*time.Second),
			MaxAttempts: envInt("LEARN_AI_MAX_ATTEMPTS", 1),
		},
		Cache: CacheConfig{
			Enabled:   envBool("LEARN_CACHE_ENABLED", false),
			URL:       envStr("LEARN_CACHE_URL", "redis://localhost:6379"),
			TrendsTTL: envDuration("LEARN_CACHE_TRENDS_TTL", 15*time.Minute),
		},
		Database: DatabaseConfig{
			URL:      envStr("LEARN_DATABASE_URL", ""),
			MaxConns: envInt("LEARN_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("LEARN_DATABASE_MIN_CONNS", 1),
		},
		Session: SessionConfig{
			TTL: envDuration("LEARN_SESSION_TTL", 2*time.Hour),
		},
		Prompt: PromptConfig{
			CataloguePath: envStr("LEARN_PROMPT_CATALOGUE", ""),
		},
		Tracing: TracingConfig{
			Enabled: envBool("LEARN_TRACING_ENABLED", false),
		},
		Log: LogConfig{
			Level:  envStr("LEARN_LOG_LEVEL", "info"),
			Format: envStr("LEARN_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that configuration values are usable.
// A missing API key is not an error here: the agent degrades per operation.
func (c *Config) Validate() error {
	if c.AI.Backend != "rest" && c.AI.Backend != "sdk" {
		return fmt.Errorf("LEARN_AI_BACKEND must be 'rest' or 'sdk', got %q", c.AI.Backend)
	}

	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("LEARN_AI_MAX_ATTEMPTS must be at least 1, got %d", c.AI.MaxAttempts)
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LEARN_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("LEARN_SESSION_TTL must be positive")
	}

	return nil
}

// HasAPIKey reports whether the generative-language credential is configured.
func (c *Config) HasAPIKey() bool {
	return c.AI.Google.APIKey != ""
}

// HasDatabase reports whether the event sink should connect to PostgreSQL.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
