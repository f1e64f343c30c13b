package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	LogLevel    string
	DataDir     string
	DatabaseURL string
	StaticDir   string
	CORSOrigins string

	LLMProvider      string
	OpenRouterAPIKey string
	OpenRouterModel  string
	SiteURL          string
	SiteName         string
	AnthropicAPIKey  string
	AnthropicModel   string
	Temperature      float64
	MaxTokens        int
	LLMTimeout       time.Duration
	MaxFAQContext    int

	NatsURL       string
	NatsToken     string
	SlackBotToken string
	SlackChannel  string
}

func Load() Config {
	return Config{
		Port:        envInt("PORT", 3000),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		DataDir:     envStr("DATA_DIR", "data"),
		DatabaseURL: envStr("DATABASE_URL", ""),
		StaticDir:   envStr("STATIC_DIR", "public"),
		CORSOrigins: envStr("CORS_ORIGINS", "*"),

		LLMProvider:      envStr("LLM_PROVIDER", "openrouter"),
		OpenRouterAPIKey: envStr("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  envStr("OPENROUTER_MODEL", "google/gemini-2.5-flash-preview-09-2025"),
		SiteURL:          envStr("SITE_URL", "http://localhost:3000"),
		SiteName:         envStr("SITE_NAME", "AI Customer Support Bot"),
		AnthropicAPIKey:  envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   envStr("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		Temperature:      envFloat("LLM_TEMPERATURE", 0.7),
		MaxTokens:        envInt("LLM_MAX_TOKENS", 1024),
		LLMTimeout:       envDuration("LLM_TIMEOUT", 30*time.Second),
		MaxFAQContext:    envInt("MAX_FAQ_CONTEXT", 0),

		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		SlackBotToken: envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:  envStr("SLACK_CHANNEL", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("45s", "2m") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
