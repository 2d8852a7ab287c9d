package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	// SourceAPI reads route data from the MBTA v3 API
	SourceAPI = "api"
	// SourceFile reads route data from a YAML fixture
	SourceFile = "file"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// MBTA route data configuration
	MBTA MBTAConfig

	// Database configuration, optional
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Admin API configuration
	Admin AdminConfig

	// CORS configuration
	CORS CORSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=development staging production"`
	LogLevel    string `validate:"oneof=trace debug info warn warning error fatal panic"`
}

// MBTAConfig holds route data source configuration
type MBTAConfig struct {
	Source         string        `validate:"oneof=api file"`
	BaseURL        string        `validate:"required,url"`
	APIKey         string        // Optional: raises the API rate limit
	Timeout        time.Duration `validate:"gt=0"`
	FixturePath    string        `validate:"required_if=Source file"`
	ReloadSchedule string        // cron spec with seconds; empty disables reloads
	PathCacheSize  int           `validate:"gte=0"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int `validate:"gte=1"`
	MaxIdleConnections int `validate:"gte=0"`
	ConnMaxLifetime    time.Duration
	ConnectTimeout     time.Duration `validate:"gt=0"`
}

// Enabled reports whether a database has been configured
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration `validate:"gt=0"`
}

// AdminConfig holds admin API configuration
type AdminConfig struct {
	Enabled bool
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		MBTA: MBTAConfig{
			Source:         getEnv("MBTA_SOURCE", SourceAPI),
			BaseURL:        getEnv("MBTA_API_BASE_URL", "https://api-v3.mbta.com/"),
			APIKey:         getEnv("MBTA_API_KEY", ""),
			Timeout:        getEnvAsDuration("MBTA_TIMEOUT_SECONDS", 30*time.Second),
			FixturePath:    getEnv("MBTA_FIXTURE_PATH", ""),
			ReloadSchedule: getEnv("ROUTE_RELOAD_SCHEDULE", ""),
			PathCacheSize:  getEnvAsInt("PATH_CACHE_SIZE", 512),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    getEnvAsDuration("DATABASE_CONN_MAX_LIFETIME", 300*time.Second),
			ConnectTimeout:     getEnvAsDuration("DATABASE_CONNECT_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: getEnvAsDuration("JWT_ACCESS_TOKEN_EXPIRY", 3600*time.Second),
		},
		Admin: AdminConfig{
			Enabled: getEnvAsBool("ADMIN_API_ENABLED", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

var validate = validator.New()

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Admin.Enabled && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required when ADMIN_API_ENABLED is set")
	}

	if c.Admin.Enabled && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
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
		logrus.Warnf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads a whole number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	seconds := getEnvAsInt(key, -1)
	if seconds < 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logrus.Warnf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
