// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/dive-logbook/internal/divelist"
	"github.com/pkordes/dive-logbook/internal/grouping"
	"github.com/pkordes/dive-logbook/internal/units"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// StoreDriver selects the dive store: "postgres" (default) or "sqlite".
	StoreDriver string

	// DatabaseURL is the Postgres connection string.
	// Required when StoreDriver is "postgres".
	DatabaseURL string

	// SQLitePath is the database file used when StoreDriver is "sqlite".
	// Defaults to "divelog.sqlite".
	SQLitePath string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Autogroup starts the dive list with automatic trip grouping on.
	Autogroup bool

	// TripWindow is how far apart two dives may be and still share a trip.
	TripWindow time.Duration

	// Units are the initial display units.
	Units units.Units

	// Font is the dive list font passed through to clients.
	Font string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Every missing or malformed variable is reported in a single error.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		SQLitePath:  getEnv("SQLITE_PATH", "divelog.sqlite"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Font:        getEnv("DIVELIST_FONT", divelist.DefaultFont),
	}

	var errs []error

	switch cfg.StoreDriver {
	case DriverPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("required environment variables not set: DATABASE_URL"))
		}
	case DriverSQLite:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}

	var err error
	if cfg.Autogroup, err = strconv.ParseBool(getEnv("AUTOGROUP", "false")); err != nil {
		errs = append(errs, fmt.Errorf("AUTOGROUP: %w", err))
	}
	if cfg.TripWindow, err = time.ParseDuration(getEnv("TRIP_WINDOW", grouping.DefaultWindow.String())); err != nil {
		errs = append(errs, fmt.Errorf("TRIP_WINDOW: %w", err))
	} else if cfg.TripWindow <= 0 {
		errs = append(errs, errors.New("TRIP_WINDOW: must be positive"))
	}
	if cfg.Units, err = units.Parse(getEnv("UNITS", "metric")); err != nil {
		errs = append(errs, fmt.Errorf("UNITS: %w", err))
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES: %w", err))
	} else if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES: must be positive"))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
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
