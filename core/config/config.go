package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel    OTelConfig
	Dataset DatasetConfig
	LLM     LLMConfig
	CORS    CORSConfig
	Env     string
	Port    string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type DatasetConfig struct {
	SourceURL    string
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

type LLMConfig struct {
	APIKey    string
	BaseURL   string // OpenAI-compatible endpoint, OpenRouter by default
	Model     string
	Timeout   time.Duration
	MaxTokens int // 0 = provider default
	Referer   string
	Title     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables.
// In development, values from a local .env file are loaded first; real
// environment variables always take precedence.
//
// Missing DATA_URL or OPENROUTER_API_KEY do not fail loading: the service
// starts and reports a configuration error on the requests that need them.
func Load() (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8000"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "recommender"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Dataset: DatasetConfig{
			SourceURL:    strings.TrimSpace(getEnv("DATA_URL", "")),
			CacheTTL:     getEnvSeconds("CACHE_TTL_SECONDS", 300*time.Second),
			FetchTimeout: getEnvSeconds("DATA_FETCH_TIMEOUT_SECONDS", 30*time.Second),
		},
		LLM: LLMConfig{
			APIKey:    getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:   getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:     getEnv("MODEL", "openai/gpt-oss-20b:free"),
			Timeout:   getEnvSeconds("LLM_TIMEOUT_SECONDS", 60*time.Second),
			MaxTokens: getEnvInt("LLM_MAX_TOKENS", 0),
			Referer:   getEnv("OPENROUTER_REFERER", ""),
			Title:     getEnv("OPENROUTER_TITLE", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		},
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// AllowAll reports whether any origin may call the API.
func (c CORSConfig) AllowAll() bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
