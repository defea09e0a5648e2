package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	Host string
	Port string

	Redis RedisConfig

	// CaseFile is an optional path to a YAML case table. Empty means the
	// embedded demo table.
	CaseFile string

	// FinancialToolEnabled toggles the financial forensics tool
	FinancialToolEnabled bool

	// LeaderboardTopN caps the leaderboard responses
	LeaderboardTopN int

	LogLevel slog.Level
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	// Addr is the Redis host:port. Empty selects the in-memory stores.
	Addr     string
	Password string
	DB       int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	host := getEnv("HOST", "0.0.0.0")
	port := getEnv("PORT", "8080")

	redisAddr := getEnv("REDIS_ADDR", "")
	redisPassword := getEnv("REDIS_PASSWORD", "")
	redisDBStr := getEnv("REDIS_DB", "0")
	redisDB, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	caseFile := getEnv("CASE_FILE", "")

	financialStr := getEnv("FINANCIAL_TOOL_ENABLED", "true")
	financialEnabled, err := strconv.ParseBool(financialStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FINANCIAL_TOOL_ENABLED value: %w", err)
	}

	topNStr := getEnv("LEADERBOARD_TOP_N", "50")
	topN, err := strconv.Atoi(topNStr)
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_TOP_N value: %w", err)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("LEADERBOARD_TOP_N must be positive, got %d", topN)
	}

	logLevel, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Host: host,
		Port: port,
		Redis: RedisConfig{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		},
		CaseFile:             caseFile,
		FinancialToolEnabled: financialEnabled,
		LeaderboardTopN:      topN,
		LogLevel:             logLevel,
	}, nil
}

// Address returns the full address (host:port)
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL value %q: %w", value, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
