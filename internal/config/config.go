// Package config loads and validates application configuration from environment
// variables and the trip roster.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all configuration values for the planner server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// SessionSecret signs the session cookie that remembers the last used
	// display name. Required.
	SessionSecret string

	// AdminName is the participant allowed to unlock admin mode. Defaults to "Marco".
	AdminName string

	// AdminPIN unlocks admin mode for AdminName. Defaults to "4040".
	// A shared convenience PIN, not a credential.
	AdminPIN string

	// PollInterval is how often a logged-in session reloads all trip data.
	// Defaults to 15s.
	PollInterval time.Duration

	// PersistTimeout bounds each background write to the database. Defaults to 10s.
	PersistTimeout time.Duration

	// RosterFile is an optional YAML roster. Empty uses the embedded default.
	RosterFile string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		AdminName:   getEnv("ADMIN_NAME", "Marco"),
		AdminPIN:    getEnv("ADMIN_PIN", "4040"),
		RosterFile:  os.Getenv("ROSTER_FILE"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.PollInterval, err = getDuration("POLL_INTERVAL", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PersistTimeout, err = getDuration("PERSIST_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses a positive Go duration ("15s", "1m") from key.
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %s", key, v)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// LoadDatabaseURL returns DATABASE_URL for commands that only talk to the
// database, such as running migrations.
func LoadDatabaseURL() (string, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", fmt.Errorf("required environment variables not set: DATABASE_URL")
	}
	return url, nil
}
