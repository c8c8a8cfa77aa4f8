package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("INVOICER_DB", "/tmp/invoicer-test.db")
	t.Setenv("INVOICER_PROFILE", "")
	t.Setenv("INVOICER_HTTP_TIMEOUT_MS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/invoicer-test.db", cfg.DBPath)
	assert.Equal(t, "profile.yaml", cfg.ProfilePath)
	assert.Equal(t, "out", cfg.OutDir)
	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout())
	assert.Equal(t, 2, cfg.HTTP.MaxRetries)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("INVOICER_DB", "/tmp/x.db")
	t.Setenv("INVOICER_PROFILE", "custom.yaml")
	t.Setenv("INVOICER_OUT_DIR", "invoices")
	t.Setenv("INVOICER_LOG_LEVEL", "debug")
	t.Setenv("INVOICER_HTTP_TIMEOUT_MS", "250")
	t.Setenv("INVOICER_HTTP_MAX_RETRIES", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "custom.yaml", cfg.ProfilePath)
	assert.Equal(t, "invoices", cfg.OutDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTP.Timeout())
	assert.Equal(t, 0, cfg.HTTP.MaxRetries)
}

func TestLoadConfig_InvalidNumber(t *testing.T) {
	t.Setenv("INVOICER_DB", "/tmp/x.db")
	t.Setenv("INVOICER_HTTP_TIMEOUT_MS", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVOICER_HTTP_TIMEOUT_MS")
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INVOICER_LOG_LEVEL=debug\nINVOICER_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("INVOICER_LOG_LEVEL", "warn")
	t.Setenv("INVOICER_TEST_DOTENV", "")
	os.Unsetenv("INVOICER_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "warn", os.Getenv("INVOICER_LOG_LEVEL"))
	assert.Equal(t, "loaded", os.Getenv("INVOICER_TEST_DOTENV"))
}
