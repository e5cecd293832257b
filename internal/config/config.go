// Package config provides configuration management for CoinPulse.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Secondary provider kinds.
const (
	SecondaryQwen      = "qwen"
	SecondaryAnthropic = "anthropic"
)

// Config holds all application configuration.
type Config struct {
	// CoinGecko settings
	CoinGeckoBaseURL   string
	CoinGeckoAPIKey    string
	CoinGeckoTimeout   time.Duration
	CoinGeckoRetryWait time.Duration

	// Primary text provider (OpenAI-compatible, OpenRouter by default)
	OpenRouterAPIKey   string
	OpenRouterEndpoint string
	PrimaryModel       string

	// Secondary text provider
	SecondaryProvider string
	DashScopeAPIKey   string
	DashScopeEndpoint string
	QwenModel         string
	AnthropicAPIKey   string
	AnthropicModel    string

	// Shared generation settings
	LLMTimeout     time.Duration
	LLMTemperature float64
	LLMMaxTokens   int

	// News
	CryptoPanicToken string

	// MongoDB settings
	MongoURI string
	MongoDB  string

	// Redis cache (empty disables caching)
	RedisURL string

	// Server settings
	HTTPAddr string
	Debug    bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		// CoinGecko
		CoinGeckoBaseURL:   getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		CoinGeckoAPIKey:    getEnv("COINGECKO_API_KEY", ""),
		CoinGeckoTimeout:   getEnvDuration("COINGECKO_TIMEOUT", 10*time.Second),
		CoinGeckoRetryWait: getEnvDuration("COINGECKO_RETRY_WAIT", 1500*time.Millisecond),

		// Primary provider
		OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterEndpoint: getEnv("OPENROUTER_ENDPOINT", "https://openrouter.ai/api/v1"),
		PrimaryModel:       getEnv("PRIMARY_MODEL", "deepseek/deepseek-chat-v3-0324:free"),

		// Secondary provider
		SecondaryProvider: getEnv("SECONDARY_PROVIDER", SecondaryQwen),
		DashScopeAPIKey:   getEnv("DASHSCOPE_API_KEY", ""),
		DashScopeEndpoint: getEnv("DASHSCOPE_ENDPOINT", "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"),
		QwenModel:         getEnv("QWEN_MODEL", "qwen-plus"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		// Generation
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 8*time.Second),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 400),

		// News
		CryptoPanicToken: getEnv("CRYPTOPANIC_TOKEN", "demo"),

		// MongoDB
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "coinpulse"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Debug:    getEnvBool("DEBUG", false),
	}

	return cfg, nil
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	switch c.SecondaryProvider {
	case SecondaryQwen, SecondaryAnthropic:
	default:
		return fmt.Errorf("unknown SECONDARY_PROVIDER %q (want %q or %q)", c.SecondaryProvider, SecondaryQwen, SecondaryAnthropic)
	}

	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}

	if c.OpenRouterAPIKey == "" {
		log.Warn().Msg("OPENROUTER_API_KEY not set, primary insight provider disabled")
	}
	if c.SecondaryProvider == SecondaryQwen && c.DashScopeAPIKey == "" {
		log.Warn().Msg("DASHSCOPE_API_KEY not set, secondary insight provider disabled")
	}
	if c.SecondaryProvider == SecondaryAnthropic && c.AnthropicAPIKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, secondary insight provider disabled")
	}
	if c.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, using in-process response cache")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
