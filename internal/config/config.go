package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	AppEnv          string
	LogLevel        string
	JWTSecret       string
	TokenTTL        time.Duration
	AsyncDelay      time.Duration // Artificial delay for the async catalog routes
	CatalogPath     string        // Optional JSON seed file; empty means the built-in catalog
	PasswordStorage string        // "plain" or "bcrypt"
	AllowedOrigins  []string
	AuthRateLimit   float64
	AuthRateBurst   int
	EventsDSN       string
	StatsInterval   string // Cron spec for the stats broadcast
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "5000"))
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "1h"))
	if err != nil {
		return nil, err
	}
	delay, err := time.ParseDuration(getEnv("ASYNC_DELAY", "100ms"))
	if err != nil {
		return nil, err
	}
	rateLimit, err := strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT", "5"), 64)
	if err != nil {
		return nil, err
	}
	rateBurst, err := strconv.Atoi(getEnv("AUTH_RATE_BURST", "10"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:      port,
		AppEnv:          getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		JWTSecret:       getEnv("JWT_SECRET", "access"),
		TokenTTL:        ttl,
		AsyncDelay:      delay,
		CatalogPath:     getEnv("CATALOG_PATH", ""),
		PasswordStorage: getEnv("PASSWORD_STORAGE", "plain"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		AuthRateLimit:   rateLimit,
		AuthRateBurst:   rateBurst,
		EventsDSN:       getEnv("EVENTS_DSN", "file:events?mode=memory&cache=shared"),
		StatsInterval:   getEnv("STATS_INTERVAL", "@every 30s"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
