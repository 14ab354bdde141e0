package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nourish-chain/liquidity-pool/internal/constants"
)

type Config struct {
	// HTTP API settings
	APIAddr string
	APIKey  string
	DevMode bool

	// Pool protocol parameters, both in basis points
	FeeRateBps      uint64
	TreasuryRateBps uint64

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// Humanity verification API (empty URL = allow everyone)
	VerifierBaseURL string
	VerifierAPIKey  string

	// LLM settings for the analytics agent
	OpenRouterAPIKey string

	// HTTP client settings
	HTTPTimeout time.Duration
}

func Load() *Config {
	return &Config{
		// API
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// Pool
		FeeRateBps:      getUint64Env("POOL_FEE_RATE_BPS", constants.DefaultFeeRateBps),
		TreasuryRateBps: getUint64Env("POOL_TREASURY_RATE_BPS", constants.DefaultTreasuryRateBps),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "pool"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// Verifier
		VerifierBaseURL: getEnv("VERIFIER_BASE_URL", ""),
		VerifierAPIKey:  getEnv("VERIFIER_API_KEY", ""),

		// LLM
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),

		// HTTP
		HTTPTimeout: getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
	}
}

// Validate rejects configurations the pool constructor would refuse anyway,
// so misconfiguration fails at startup rather than on the first request.
func (c *Config) Validate() error {
	if c.APIAddr == "" {
		return fmt.Errorf("API_ADDR is required")
	}
	if c.FeeRateBps > 10000 {
		return fmt.Errorf("POOL_FEE_RATE_BPS must be at most 10000, got %d", c.FeeRateBps)
	}
	if c.TreasuryRateBps > 10000 {
		return fmt.Errorf("POOL_TREASURY_RATE_BPS must be at most 10000, got %d", c.TreasuryRateBps)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getUint64Env(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
