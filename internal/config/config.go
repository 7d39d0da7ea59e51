// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the decode service.
type Config struct {
	// Server
	Port        int
	AuthEnabled bool
	APIKeys     []string

	// Backing store selection: "postgres" or "sqlite".
	StoreBackend string
	SQLitePath   string

	// PostgreSQL
	PGHost     string
	PGPort     int
	PGDatabase string
	PGUser     string
	PGPassword string

	// ClickHouse telemetry (optional; empty host disables it)
	CHHost     string
	CHPort     int
	CHDatabase string
	CHUser     string
	CHPassword string

	// NATS telemetry (optional; empty URL disables it)
	NATSURL     string
	NATSSubject string

	// Parsing
	StripMetadata bool
	BatchWorkers  int
}

// Load reads configuration from environment variables, with an optional .env
// file for local development.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:        getEnvAsInt("PORT", 8085),
		AuthEnabled: getEnvAsBool("AUTH_ENABLED", false),
		APIKeys:     splitList(getEnv("API_KEYS", "")),

		StoreBackend: getEnv("STORE_BACKEND", "sqlite"),
		SQLitePath:   getEnv("SQLITE_PATH", "pnr_catalog.db"),

		PGHost:     getEnv("PG_HOST", "localhost"),
		PGPort:     getEnvAsInt("PG_PORT", 5432),
		PGDatabase: getEnv("PG_DATABASE", "pnr"),
		PGUser:     getEnv("PG_USER", "pnr"),
		PGPassword: getEnv("PG_PASSWORD", ""),

		CHHost:     getEnv("CH_HOST", ""),
		CHPort:     getEnvAsInt("CH_PORT", 9000),
		CHDatabase: getEnv("CH_DATABASE", "pnr"),
		CHUser:     getEnv("CH_USER", "default"),
		CHPassword: getEnv("CH_PASSWORD", ""),

		NATSURL:     getEnv("NATS_URL", ""),
		NATSSubject: getEnv("NATS_SUBJECT", ""),

		StripMetadata: getEnvAsBool("STRIP_METADATA", false),
		BatchWorkers:  getEnvAsInt("BATCH_WORKERS", 4),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
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
