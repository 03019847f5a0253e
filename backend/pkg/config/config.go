package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	apperrors "wordweave/backend/pkg/errors"
)

// Backend names accepted in BACKEND
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNeo4j  = "neo4j"
)

// MinLearningInterval is the shortest cycle interval the scheduler accepts.
const MinLearningInterval = 5

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string
	Language string

	// Persistence
	Backend    string
	SQLitePath string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Cache
	CacheDir string // empty keeps the cache in memory
	CacheTTL time.Duration

	// Learning
	LearningIntervalSeconds int
	LearningRate            float64
	RandomSeed              int64 // 0 seeds from the clock

	// Circuit breaker around the persistence backend
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
	BreakerTripRatio   float64

	// Discord
	DiscordBotToken string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", ""),
		Language:                getEnv("LANGUAGE", "en"),
		Backend:                 getEnv("BACKEND", BackendSQLite),
		SQLitePath:              getEnv("SQLITE_PATH", "wordweave.db"),
		Neo4jURI:                getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:               getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:           getEnv("NEO4J_PASSWORD", "password"),
		CacheDir:                getEnv("CACHE_DIR", ""),
		CacheTTL:                time.Duration(getEnvInt("CACHE_TTL_SECONDS", 86400)) * time.Second,
		LearningIntervalSeconds: getEnvInt("LEARNING_INTERVAL_SECONDS", 30),
		LearningRate:            getEnvFloat("LEARNING_RATE", 0.1),
		RandomSeed:              int64(getEnvInt("RANDOM_SEED", 0)),
		BreakerMaxRequests:      uint32(getEnvInt("BREAKER_MAX_REQUESTS", 1)),
		BreakerInterval:         time.Duration(getEnvInt("BREAKER_INTERVAL_SECONDS", 60)) * time.Second,
		BreakerTimeout:          time.Duration(getEnvInt("BREAKER_TIMEOUT_SECONDS", 30)) * time.Second,
		BreakerTripRatio:        getEnvFloat("BREAKER_TRIP_RATIO", 0.6),
		DiscordBotToken:         getEnv("DISCORD_BOT_TOKEN", ""),
	}

	if cfg.LearningIntervalSeconds < MinLearningInterval {
		cfg.LearningIntervalSeconds = MinLearningInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return apperrors.NewConfigValidationFailed("SQLITE_PATH", "required for the sqlite backend")
		}
	case BackendNeo4j:
		if c.Neo4jURI == "" {
			return apperrors.NewConfigValidationFailed("NEO4J_URI", "required for the neo4j backend")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigValidationFailed("NEO4J_USER", "required for the neo4j backend")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigValidationFailed("NEO4J_PASSWORD", "required for the neo4j backend")
		}
	default:
		return apperrors.NewConfigValidationFailed("BACKEND", fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return apperrors.NewConfigValidationFailed("LEARNING_RATE", fmt.Sprintf("must be in (0,1], got %v", c.LearningRate))
	}
	if c.BreakerTripRatio <= 0 || c.BreakerTripRatio > 1 {
		return apperrors.NewConfigValidationFailed("BREAKER_TRIP_RATIO", fmt.Sprintf("must be in (0,1], got %v", c.BreakerTripRatio))
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LearningInterval returns the cycle interval as a duration.
func (c *Config) LearningInterval() time.Duration {
	return time.Duration(c.LearningIntervalSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
