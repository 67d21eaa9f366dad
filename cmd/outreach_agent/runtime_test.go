package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRuntimeConfig_EnvFallback(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/outreach_test")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("OUTREACH_ACCOUNTS", "planner@example.com, backup@example.com")

	cfg, err := loadRuntimeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/outreach_test", cfg.DatabaseURL)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, []string{"planner@example.com", "backup@example.com"}, cfg.Accounts)

	// Defaults fill everything the environment did not
	assert.Equal(t, 2, cfg.MaxFollowUps)
	assert.Equal(t, 72, cfg.FirstFollowUpDelayHours)
	assert.Equal(t, 96, cfg.NextFollowUpDelayHours)
	assert.Equal(t, 1.15, cfg.BudgetEdgeMultiplier)
	assert.Equal(t, 300, cfg.PollIntervalSeconds)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadRuntimeConfig_FileValuesWinOverEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("OUTREACH_ACCOUNTS", "env@example.com")

	path := writeConfigFile(t, `{
		"database_url": "postgres://file/db",
		"accounts": ["file@example.com"],
		"max_follow_ups": 3
	}`)

	cfg, err := loadRuntimeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	assert.Equal(t, []string{"file@example.com"}, cfg.Accounts)
	assert.Equal(t, 3, cfg.MaxFollowUps)
}

func TestLoadRuntimeConfig_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OUTREACH_ACCOUNTS", "planner@example.com")

	_, err := loadRuntimeConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadRuntimeConfig_InvalidFile(t *testing.T) {
	path := writeConfigFile(t, `{"max_follow_ups": -1}`)

	_, err := loadRuntimeConfig(path)
	require.Error(t, err)
}

func TestFollowUpDelays(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/outreach_test")

	cfg, err := loadRuntimeConfig("")
	require.NoError(t, err)

	assert.Equal(t, 72*time.Hour, firstFollowUpDelay(cfg))
	assert.Equal(t, 96*time.Hour, nextFollowUpDelay(cfg))
}
