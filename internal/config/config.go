// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the agent configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Connections
	DatabaseURL string   `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string   `json:"api_key,omitempty"`      // Gemini API key
	Accounts    []string `json:"accounts,omitempty"`     // Mailbox addresses polled for replies

	// Follow-up policy
	MaxFollowUps            int `json:"max_follow_ups,omitempty"`              // Automated nudges per thread
	FirstFollowUpDelayHours int `json:"first_follow_up_delay_hours,omitempty"` // Delay after the initial outreach
	NextFollowUpDelayHours  int `json:"next_follow_up_delay_hours,omitempty"`  // Delay between later follow-ups

	// Decision policy
	BudgetEdgeMultiplier float64 `json:"budget_edge_multiplier,omitempty"` // Quotes up to flex*multiplier escalate instead of rejecting

	// Behavior
	PollIntervalSeconds int  `json:"poll_interval_seconds,omitempty"` // Worker inbox poll cadence
	Port                int  `json:"port,omitempty"`                  // HTTP server port
	Verbose             bool `json:"verbose,omitempty"`               // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MaxFollowUps < 0 {
		return fmt.Errorf("config error: 'max_follow_ups' must be non-negative")
	}
	if c.FirstFollowUpDelayHours < 0 {
		return fmt.Errorf("config error: 'first_follow_up_delay_hours' must be non-negative")
	}
	if c.NextFollowUpDelayHours < 0 {
		return fmt.Errorf("config error: 'next_follow_up_delay_hours' must be non-negative")
	}
	if c.BudgetEdgeMultiplier != 0 && c.BudgetEdgeMultiplier < 1 {
		return fmt.Errorf("config error: 'budget_edge_multiplier' must be at least 1.0")
	}
	if c.PollIntervalSeconds < 0 {
		return fmt.Errorf("config error: 'poll_interval_seconds' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be a valid port number")
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if len(result.Accounts) == 0 {
		result.Accounts = defaults.Accounts
	}

	// Int fields: use default if zero
	if result.MaxFollowUps == 0 {
		result.MaxFollowUps = defaults.MaxFollowUps
	}
	if result.FirstFollowUpDelayHours == 0 {
		result.FirstFollowUpDelayHours = defaults.FirstFollowUpDelayHours
	}
	if result.NextFollowUpDelayHours == 0 {
		result.NextFollowUpDelayHours = defaults.NextFollowUpDelayHours
	}
	if result.PollIntervalSeconds == 0 {
		result.PollIntervalSeconds = defaults.PollIntervalSeconds
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Float fields
	if result.BudgetEdgeMultiplier == 0 {
		if defaults.BudgetEdgeMultiplier > 0 {
			result.BudgetEdgeMultiplier = defaults.BudgetEdgeMultiplier
		} else {
			result.BudgetEdgeMultiplier = 1.15 // Default 15% over flexible budget goes to a human
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the built-in configuration used when neither a config
// file nor a flag sets a value.
func Defaults() Config {
	return Config{
		MaxFollowUps:            2,
		FirstFollowUpDelayHours: 72,
		NextFollowUpDelayHours:  96,
		BudgetEdgeMultiplier:    1.15,
		PollIntervalSeconds:     300,
		Port:                    8080,
	}
}
