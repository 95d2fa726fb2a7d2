// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// Config holds the application configuration.
type Config struct {
	BaseURL              string
	AccessToken          string
	DatabasePath         string
	FiltersPath          string
	LogPath              string
	LogLevel             string
	GroupType            models.GroupType
	Range                models.RangePreset
	UserID               int
	RequestTimeout       time.Duration
	RatePollInterval     time.Duration
	RateHistoryRetention time.Duration
	// RateAlertThreshold is the RPM usage percentage that triggers a
	// desktop alert. Zero disables alerts.
	RateAlertThreshold float64
}

// Default values
const (
	defaultRequestTimeout       = 30 * time.Second
	defaultRatePollInterval     = 15 * time.Second
	defaultRateHistoryRetention = 7 * 24 * time.Hour
	defaultRateAlertThreshold   = 80.0
	defaultLogLevel             = "info"
)

// ErrMissingBaseURL is returned when ONEHUB_BASE_URL is not set.
var ErrMissingBaseURL = errors.New("ONEHUB_BASE_URL is required (set via env or .env file)")

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	group, err := models.ParseGroupType(getEnvString("ONEHUB_GROUP_TYPE", string(models.GroupModelType)))
	if err != nil {
		return nil, fmt.Errorf("ONEHUB_GROUP_TYPE: %w", err)
	}
	rangePreset, err := models.ParseRangePreset(getEnvString("ONEHUB_RANGE", models.RangeToday.Key()))
	if err != nil {
		return nil, fmt.Errorf("ONEHUB_RANGE: %w", err)
	}

	cfg := &Config{
		BaseURL:              getEnvString("ONEHUB_BASE_URL", ""),
		AccessToken:          getEnvString("ONEHUB_ACCESS_TOKEN", ""),
		UserID:               getEnvInt("ONEHUB_USER_ID", 0),
		GroupType:            group,
		Range:                rangePreset,
		RequestTimeout:       getEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		RatePollInterval:     getEnvDuration("RATE_POLL_INTERVAL", defaultRatePollInterval),
		RateHistoryRetention: getEnvDuration("RATE_HISTORY_RETENTION", defaultRateHistoryRetention),
		RateAlertThreshold:   getEnvFloat("RATE_ALERT_THRESHOLD", defaultRateAlertThreshold),
		DatabasePath:         getEnvString("DATABASE_PATH", defaultPath("analytics.db")),
		FiltersPath:          getEnvString("FILTERS_PATH", defaultPath("filters.json")),
		LogPath:              getEnvString("LOG_PATH", defaultPath("oat.log")),
		LogLevel:             getEnvString("LOG_LEVEL", defaultLogLevel),
	}

	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	for _, path := range []string{cfg.DatabasePath, cfg.FiltersPath, cfg.LogPath} {
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// DefaultQuery returns the filters configured at startup.
func (c *Config) DefaultQuery() models.Query {
	return models.Query{Group: c.GroupType, Range: c.Range, UserID: c.UserID}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "onehub", "oat", ".env"),
			filepath.Join(home, ".config", "onehub", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// defaultPath returns name inside the application config directory.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", "onehub", "oat", name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
