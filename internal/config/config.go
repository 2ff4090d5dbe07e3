// Package config loads runtime configuration from the environment. A .env
// file is honored when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything main needs to wire the service.
type Config struct {
	HTTPAddr string

	DBHost        string
	DBPort        uint
	DBName        string
	DBUser        string
	DBPassword    string
	DBSSLDisabled bool

	JWTSecret string
	AccessTTL time.Duration
}

// Load reads the environment, applying defaults suitable for local
// development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnvUint("DB_PORT", 5432),
		DBName:        getEnv("DB_NAME", "vantagecrm"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBSSLDisabled: getEnv("DB_SSL_MODE_DISABLE", "true") == "true",
		JWTSecret:     getEnv("JWT_SECRET", ""),
		AccessTTL:     getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvUint(key string, fallback uint) uint {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint(n)
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
