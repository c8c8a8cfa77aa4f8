package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process-level settings read from the environment.
type Config struct {
	DBPath      string
	ProfilePath string
	OutDir      string
	LogLevel    string
	HTTP        HTTPConfig
}

// HTTPConfig is shared by the time-tracking and exchange-rate clients.
type HTTPConfig struct {
	TimeoutMs      int
	MaxRetries     int
	RetryWaitMinMs int
	RetryWaitMaxMs int
}

func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c HTTPConfig) RetryWaitMin() time.Duration {
	return time.Duration(c.RetryWaitMinMs) * time.Millisecond
}

func (c HTTPConfig) RetryWaitMax() time.Duration {
	return time.Duration(c.RetryWaitMaxMs) * time.Millisecond
}

// DefaultConfig returns a Config with sensible defaults. DBPath is resolved
// against the home directory by LoadConfig.
func DefaultConfig() Config {
	return Config{
		ProfilePath: "profile.yaml",
		OutDir:      "out",
		LogLevel:    "info",
		HTTP: HTTPConfig{
			TimeoutMs:      15000,
			MaxRetries:     2,
			RetryWaitMinMs: 500,
			RetryWaitMaxMs: 5000,
		},
	}
}

// LoadDotEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads configuration from environment variables, falling back
// to defaults for unset values. Malformed numbers are errors.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	cfg.DBPath = os.Getenv("INVOICER_DB")
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".invoicer", "invoicer.db")
	}
	if v := os.Getenv("INVOICER_PROFILE"); v != "" {
		cfg.ProfilePath = v
	}
	if v := os.Getenv("INVOICER_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("INVOICER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	ints := []struct {
		env string
		dst *int
		min int
	}{
		{"INVOICER_HTTP_TIMEOUT_MS", &cfg.HTTP.TimeoutMs, 1},
		{"INVOICER_HTTP_MAX_RETRIES", &cfg.HTTP.MaxRetries, 0},
		{"INVOICER_HTTP_RETRY_WAIT_MIN_MS", &cfg.HTTP.RetryWaitMinMs, 0},
		{"INVOICER_HTTP_RETRY_WAIT_MAX_MS", &cfg.HTTP.RetryWaitMaxMs, 0},
	}
	for _, iv := range ints {
		v := os.Getenv(iv.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < iv.min {
			return Config{}, fmt.Errorf("invalid %s %q: must be an integer >= %d", iv.env, v, iv.min)
		}
		*iv.dst = n
	}

	return cfg, nil
}
