package config

import (
	"os"
)

// Config holds all configuration values
type Config struct {
	ListenAddr  string
	LogLevel    string
	CatalogPath string
	Environment string
}

// New creates a new configuration from environment variables
func New() *Config {
	return &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		CatalogPath: getEnv("CATALOG_PATH", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// IsDevelopment reports whether the app runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
