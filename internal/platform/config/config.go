package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	dbi "github.com/qolzam/telar/apps/social/internal/database/interfaces"
)

// Config is the process configuration of the social server.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	JWT        JWTConfig        `json:"jwt"`
	Cache      CacheConfig      `json:"cache"`
	Pagination PaginationConfig `json:"pagination"`
	RateLimit  RateLimitConfig  `json:"rateLimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	BaseRoute string `json:"baseRoute"`
	WebDomain string `json:"webDomain"`
	// Prefork spawns one process per CPU sharing the listening port.
	Prefork   bool `json:"prefork"`
	BodyLimit int  `json:"bodyLimit"`
	Debug     bool `json:"debug"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Postgres PostgreSQLConfig `json:"postgres"`
	// Provision creates the schema objects on start.
	Provision bool `json:"provision"`
}

// PostgreSQLConfig holds PostgreSQL-specific configuration
type PostgreSQLConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	Database        string        `json:"database"`
	SSLMode         string        `json:"sslMode"`
	Schema          string        `json:"schema"`
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnectTimeout  int           `json:"connectTimeout"`
}

// Client converts the settings into the pool configuration.
func (p PostgreSQLConfig) Client() *dbi.PostgreSQLConfig {
	return &dbi.PostgreSQLConfig{
		Host:               p.Host,
		Port:               p.Port,
		Username:           p.Username,
		Password:           p.Password,
		Database:           p.Database,
		SSLMode:            p.SSLMode,
		ConnectTimeout:     p.ConnectTimeout,
		MaxOpenConnections: p.MaxOpenConns,
		MaxIdleConnections: p.MaxIdleConns,
		MaxLifetime:        int(p.ConnMaxLifetime.Seconds()),
		Schema:             p.Schema,
	}
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	PublicKey string `json:"publicKey"`
	ClaimKey  string `json:"claimKey"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Enabled   bool          `json:"enabled"`
	Prefix    string        `json:"prefix"`
	TrendsTTL time.Duration `json:"trendsTtl"`
	// Sessions turns on the JWT session allowlist.
	Sessions bool        `json:"sessions"`
	Redis    RedisConfig `json:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	Address      string        `json:"address"`
	Password     string        `json:"password"`
	Database     int           `json:"database"`
	PoolSize     int           `json:"poolSize"`
	MinIdleConns int           `json:"minIdleConns"`
	MaxConnAge   time.Duration `json:"maxConnAge"`
}

// PaginationConfig bounds the page sizes accepted from clients.
type PaginationConfig struct {
	DefaultSize int `json:"defaultSize"`
	MaxSize     int `json:"maxSize"`
}

// RateLimitConfig holds per-endpoint request budgets.
type RateLimitConfig struct {
	Enabled       bool          `json:"enabled"`
	SignupMax     int           `json:"signupMax"`
	SignupWindow  time.Duration `json:"signupWindow"`
	MessageMax    int           `json:"messageMax"`
	MessageWindow time.Duration `json:"messageWindow"`
	PostMax       int           `json:"postMax"`
	PostWindow    time.Duration `json:"postWindow"`
}

// lookup reads one raw setting.
type lookup func(key string) (string, bool)

func (l lookup) str(key, defaultValue string) string {
	if value, ok := l(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func (l lookup) int(key string, defaultValue int) int {
	if value, ok := l(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (l lookup) bool(key string, defaultValue bool) bool {
	if value, ok := l(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (l lookup) duration(key string, defaultValue time.Duration) time.Duration {
	if value, ok := l(key); ok {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// LoadFromEnv loads configuration from the environment.
// It follows a clear precedence:
// 1. Explicit Environment Variables (e.g., set in the shell or by CI)
// 2. Values from the .env file (if it exists)
// 3. Hardcoded defaults (if applicable)
func LoadFromEnv() (*Config, error) {
	// godotenv.Load never overrides variables that are already set.
	envPaths := []string{".env", "../.env", "../../.env"}

	var loadErr error
	for _, envPath := range envPaths {
		loadErr = godotenv.Load(envPath)
		if loadErr == nil {
			break
		}
	}
	if loadErr != nil {
		fmt.Println("INFO: .env file not found, using environment variables and defaults.")
	}

	return load(os.LookupEnv)
}

// LoadFromMap loads configuration from an in-memory map.
// This is the primary helper for testing configuration logic in isolation
// without manipulating global environment variables.
func LoadFromMap(envMap map[string]string) (*Config, error) {
	return load(func(key string) (string, bool) {
		value, ok := envMap[key]
		return value, ok
	})
}

func load(env lookup) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:      env.str("HOST", "0.0.0.0"),
			Port:      env.int("SERVER_PORT", 8080),
			BaseRoute: env.str("BASE_ROUTE", "/api"),
			WebDomain: env.str("WEB_DOMAIN", "http://localhost:3000"),
			Prefork:   env.bool("PREFORK", false),
			BodyLimit: env.int("BODY_LIMIT", 4*1024*1024),
			Debug:     env.bool("DEBUG", false),
		},
		Database: DatabaseConfig{
			Provision: env.bool("DB_PROVISION", true),
			Postgres: PostgreSQLConfig{
				Host:            env.str("POSTGRES_HOST", "localhost"),
				Port:            env.int("POSTGRES_PORT", 5432),
				Username:        env.str("POSTGRES_USERNAME", "postgres"),
				Password:        env.str("POSTGRES_PASSWORD", ""),
				Database:        env.str("POSTGRES_DATABASE", "telar_social"),
				SSLMode:         env.str("POSTGRES_SSL_MODE", "disable"),
				Schema:          env.str("POSTGRES_SCHEMA", "public"),
				MaxOpenConns:    env.int("POSTGRES_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    env.int("POSTGRES_MAX_IDLE_CONNS", 25),
				ConnMaxLifetime: time.Duration(env.int("POSTGRES_CONN_MAX_LIFETIME", 300)) * time.Second,
				ConnectTimeout:  env.int("POSTGRES_CONNECT_TIMEOUT", 10),
			},
		},
		JWT: JWTConfig{
			PublicKey: env.str("JWT_PUBLIC_KEY", ""),
			ClaimKey:  env.str("JWT_CLAIM_KEY", "claim"),
		},
		Cache: CacheConfig{
			Enabled:   env.bool("CACHE_ENABLED", false),
			Prefix:    env.str("CACHE_PREFIX", "telar:"),
			TrendsTTL: env.duration("CACHE_TRENDS_TTL", 5*time.Minute),
			Sessions:  env.bool("CACHE_SESSIONS", false),
			Redis: RedisConfig{
				Address:      env.str("REDIS_ADDRESS", "localhost:6379"),
				Password:     env.str("REDIS_PASSWORD", ""),
				Database:     env.int("REDIS_DATABASE", 0),
				PoolSize:     env.int("REDIS_POOL_SIZE", 10),
				MinIdleConns: env.int("REDIS_MIN_IDLE_CONNS", 5),
				MaxConnAge:   time.Duration(env.int("REDIS_MAX_CONN_AGE", 300)) * time.Second,
			},
		},
		Pagination: PaginationConfig{
			DefaultSize: env.int("PAGE_SIZE_DEFAULT", 20),
			MaxSize:     env.int("PAGE_SIZE_MAX", 100),
		},
		RateLimit: RateLimitConfig{
			Enabled:       env.bool("RATE_LIMIT_ENABLED", true),
			SignupMax:     env.int("RATE_LIMIT_SIGNUP_MAX", 10),
			SignupWindow:  env.duration("RATE_LIMIT_SIGNUP_WINDOW", time.Hour),
			MessageMax:    env.int("RATE_LIMIT_MESSAGE_MAX", 60),
			MessageWindow: env.duration("RATE_LIMIT_MESSAGE_WINDOW", time.Minute),
			PostMax:       env.int("RATE_LIMIT_POST_MAX", 30),
			PostWindow:    env.duration("RATE_LIMIT_POST_WINDOW", time.Minute),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for required fields
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.JWT.PublicKey) == "" {
		errors = append(errors, "JWT_PUBLIC_KEY is required")
	}
	if strings.TrimSpace(c.JWT.ClaimKey) == "" {
		errors = append(errors, "JWT_CLAIM_KEY must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("SERVER_PORT %d is out of range", c.Server.Port))
	}
	if c.Pagination.DefaultSize <= 0 || c.Pagination.MaxSize < c.Pagination.DefaultSize {
		errors = append(errors, "PAGE_SIZE_DEFAULT must be positive and not above PAGE_SIZE_MAX")
	}
	if c.Database.Postgres.Schema != "" && !identifier(c.Database.Postgres.Schema) {
		errors = append(errors, fmt.Sprintf("POSTGRES_SCHEMA %q is not a plain identifier", c.Database.Postgres.Schema))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func identifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
