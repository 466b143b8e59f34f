package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	RedisURL           string
	LogLevel           string
	CORSAllowedOrigins []string

	DatabaseHost     string
	DatabasePort     int
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string

	JWTSecret string

	// FeedDefaultLimit / FeedMaxLimit bound pagination of the match feed
	FeedDefaultLimit int
	FeedMaxLimit     int
	// FeedRankingScanLimit caps how many eligible candidates a ranked feed
	// request will score in memory
	FeedRankingScanLimit int
	// FeedCacheTTL is how long a feed page stays valid in Redis
	FeedCacheTTL time.Duration

	// ReconcileInterval is how often the mutual-match reconciler runs
	ReconcileInterval time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DATABASE_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_PORT: %w", err)
	}

	feedDefaultLimit, err := strconv.Atoi(getEnv("FEED_DEFAULT_LIMIT", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_DEFAULT_LIMIT: %w", err)
	}

	feedMaxLimit, err := strconv.Atoi(getEnv("FEED_MAX_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_MAX_LIMIT: %w", err)
	}

	feedScanLimit, err := strconv.Atoi(getEnv("FEED_RANKING_SCAN_LIMIT", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_RANKING_SCAN_LIMIT: %w", err)
	}

	feedCacheTTL, err := time.ParseDuration(getEnv("FEED_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_CACHE_TTL: %w", err)
	}

	reconcileInterval, err := time.ParseDuration(getEnv("RECONCILE_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_INTERVAL: %w", err)
	}

	rateLimitRequests, err := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		DatabaseHost:         getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:         dbPort,
		DatabaseUser:         getEnv("DATABASE_USER", "talentmatch"),
		DatabasePassword:     getEnv("DATABASE_PASSWORD", "dev"),
		DatabaseName:         getEnv("DATABASE_NAME", "talentmatch"),
		DatabaseSSLMode:      getEnv("DATABASE_SSLMODE", "disable"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		FeedDefaultLimit:     feedDefaultLimit,
		FeedMaxLimit:         feedMaxLimit,
		FeedRankingScanLimit: feedScanLimit,
		FeedCacheTTL:         feedCacheTTL,
		ReconcileInterval:    reconcileInterval,
		RateLimitRequests:    rateLimitRequests,
		RateLimitWindow:      rateLimitWindow,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
