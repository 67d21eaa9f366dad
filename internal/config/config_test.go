package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"database_url": "postgres://localhost/outreach",
		"accounts": ["planner@example.com"],
		"max_follow_ups": 3,
		"budget_edge_multiplier": 1.2,
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/outreach", cfg.DatabaseURL)
	assert.Equal(t, []string{"planner@example.com"}, cfg.Accounts)
	assert.Equal(t, 3, cfg.MaxFollowUps)
	assert.Equal(t, 1.2, cfg.BudgetEdgeMultiplier)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, `{not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty is valid", Config{}, false},
		{"defaults are valid", Defaults(), false},
		{"negative follow ups", Config{MaxFollowUps: -1}, true},
		{"negative first delay", Config{FirstFollowUpDelayHours: -1}, true},
		{"negative next delay", Config{NextFollowUpDelayHours: -24}, true},
		{"multiplier below one", Config{BudgetEdgeMultiplier: 0.9}, true},
		{"multiplier of one", Config{BudgetEdgeMultiplier: 1.0}, false},
		{"negative poll interval", Config{PollIntervalSeconds: -5}, true},
		{"port out of range", Config{Port: 70000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{
		DatabaseURL:  "postgres://localhost/outreach",
		MaxFollowUps: 5,
	}

	merged := cfg.MergeWithDefaults(Defaults())

	// Explicit values survive the merge.
	assert.Equal(t, "postgres://localhost/outreach", merged.DatabaseURL)
	assert.Equal(t, 5, merged.MaxFollowUps)

	// Unset values pick up defaults.
	assert.Equal(t, 72, merged.FirstFollowUpDelayHours)
	assert.Equal(t, 96, merged.NextFollowUpDelayHours)
	assert.Equal(t, 1.15, merged.BudgetEdgeMultiplier)
	assert.Equal(t, 8080, merged.Port)
}

func TestMergeWithDefaults_MultiplierFallback(t *testing.T) {
	cfg := Config{}
	merged := cfg.MergeWithDefaults(Config{})
	assert.Equal(t, 1.15, merged.BudgetEdgeMultiplier)
}
