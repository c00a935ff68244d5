// Package config holds environment-driven configuration for the server.
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds all settings the server reads at startup.
type Config struct {
	// Addr is the listen address for the HTTP server (default ":8080").
	Addr string

	// DBPath is the SQLite database file (default "./data/lexhour.db").
	DBPath string

	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// TokenTTL is how long issued tokens stay valid (default 24h).
	TokenTTL time.Duration

	// CurrencySymbol prefixes formatted amounts (default "$").
	CurrencySymbol string
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{
		Addr:           getEnv("LEXHOUR_ADDR", ":8080"),
		DBPath:         getEnv("DB_PATH", "./data/lexhour.db"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       24 * time.Hour,
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "$"),
	}

	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return cfg, errors.New("TOKEN_TTL must be a positive duration (e.g. 24h)")
		}
		cfg.TokenTTL = d
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
