package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Catalog    CatalogConfig
	Engine     EngineConfig
	Redis      RedisConfig
	Grok       GrokConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, takes precedence when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// CatalogConfig holds catalog backend configuration
type CatalogConfig struct {
	Backend           string // "memory" or "postgres"
	DefaultCurrency   string
	LowStockThreshold int
	SeedDemoData      bool
	SeedFakeProducts  int
}

// EngineConfig holds the rule engine and resolver tuning knobs
type EngineConfig struct {
	MinActionConfidence   float64 // below this, requires_action is never set
	PrimaryMinConfidence  float64 // below this, AI results fall back to the rules
	PenaltyMissingParam   float64
	PenaltyUnresolved     float64
	UnknownConfidence     float64
	ResolverTimeout       int // per catalog query, seconds
	ResolverMinSimilarity float64
	ProcessTimeout        int // full chat turn budget, seconds
}

// RedisConfig holds the optional resolution cache configuration.
// An empty Addr disables the cache entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL int // seconds
}

// GrokConfig holds the xAI API configuration for the primary classifier
type GrokConfig struct {
	APIKey              string
	APIBase             string
	ChatModel           string // Model for intent classification
	ChatTemperature     float64
	ChatTopP            float64
	ChatMaxTokens       int
	EmbeddingModel      string // empty disables the embedding pipeline
	EmbeddingDimensions int
	BatchSize           int
	Timeout             int
	Enabled             bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			// Full DSN first (DATABASE_URL, POSTGRESQL_URI, PG_DSN)
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "egile"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Catalog: CatalogConfig{
			Backend:           getEnv("CATALOG_BACKEND", "memory"),
			DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "USD"),
			LowStockThreshold: getEnvAsInt("LOW_STOCK_THRESHOLD", 10),
			SeedDemoData:      getEnvAsBool("SEED_DEMO_DATA", true),
			SeedFakeProducts:  getEnvAsInt("SEED_FAKE_PRODUCTS", 25),
		},
		Engine: EngineConfig{
			MinActionConfidence:   getEnvAsFloat("ENGINE_MIN_ACTION_CONFIDENCE", 0.6),
			PrimaryMinConfidence:  getEnvAsFloat("ENGINE_PRIMARY_MIN_CONFIDENCE", 0.7),
			PenaltyMissingParam:   getEnvAsFloat("ENGINE_PENALTY_MISSING_PARAM", 0.15),
			PenaltyUnresolved:     getEnvAsFloat("ENGINE_PENALTY_UNRESOLVED", 0.2),
			UnknownConfidence:     getEnvAsFloat("ENGINE_UNKNOWN_CONFIDENCE", 0.3),
			ResolverTimeout:       getEnvAsInt("RESOLVER_TIMEOUT", 2),
			ResolverMinSimilarity: getEnvAsFloat("RESOLVER_MIN_SIMILARITY", 0.55),
			ProcessTimeout:        getEnvAsInt("CHAT_PROCESS_TIMEOUT", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsInt("RESOLVER_CACHE_TTL", 300),
		},
		Grok: GrokConfig{
			APIKey:              getEnv("XAI_API_KEY", ""),
			APIBase:             getEnv("XAI_API_BASE", "https://api.x.ai/v1"),
			ChatModel:           getEnv("XAI_CHAT_MODEL", "grok-3"),
			ChatTemperature:     getEnvAsFloat("XAI_CHAT_TEMPERATURE", 0.1),
			ChatTopP:            getEnvAsFloat("XAI_CHAT_TOP_P", 1.0),
			ChatMaxTokens:       getEnvAsInt("XAI_CHAT_MAX_TOKENS", 1024),
			EmbeddingModel:      getEnv("XAI_EMBEDDING_MODEL", ""),
			EmbeddingDimensions: getEnvAsInt("XAI_EMBEDDING_DIMENSIONS", 1536),
			BatchSize:           getEnvAsInt("XAI_BATCH_SIZE", 100),
			Timeout:             getEnvAsInt("XAI_TIMEOUT", 30),
			Enabled:             getEnv("XAI_API_KEY", "") != "",
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	// Full DSN wins when provided
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	// Otherwise assemble from the individual fields
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
