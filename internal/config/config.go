package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port      string
	JWTSecret string
	Database  DatabaseConfig
	ERP       ERPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Quiet    bool
}

// ERPConfig holds the upstream ERP connection used by the document sync
// bridge. Sync is disabled when URL is empty.
type ERPConfig struct {
	URL          string
	Database     string
	Username     string
	Password     string
	SyncInterval int // minutes
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Port:      getEnv("PORT", "3220"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "eckscale"),
			Quiet:    getEnv("DB_QUIET", "false") == "true",
		},
		ERP: ERPConfig{
			URL:          os.Getenv("ERP_URL"),
			Database:     os.Getenv("ERP_DATABASE"),
			Username:     os.Getenv("ERP_USERNAME"),
			Password:     os.Getenv("ERP_PASSWORD"),
			SyncInterval: getEnvInt("ERP_SYNC_INTERVAL", 15),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
