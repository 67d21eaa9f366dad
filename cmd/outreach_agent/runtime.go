package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jonathan/vendor-outreach/internal/config"
	"github.com/jonathan/vendor-outreach/internal/llm"
	"github.com/jonathan/vendor-outreach/internal/mail"
)

// loadRuntimeConfig merges the optional config file with defaults and
// environment fallbacks. Environment variables fill gaps the file left;
// they do not override explicit file values.
func loadRuntimeConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if len(cfg.Accounts) == 0 {
		if raw := os.Getenv("OUTREACH_ACCOUNTS"); raw != "" {
			for _, a := range strings.Split(raw, ",") {
				if a = strings.TrimSpace(a); a != "" {
					cfg.Accounts = append(cfg.Accounts, a)
				}
			}
		}
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())

	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return cfg, nil
}

// buildTransports creates one Gmail transport per configured account. The
// first account is the sending identity.
func buildTransports(ctx context.Context, cfg config.Config) ([]mail.Transport, error) {
	if len(cfg.Accounts) == 0 {
		return nil, fmt.Errorf("at least one mail account is required (accounts in config or OUTREACH_ACCOUNTS)")
	}
	transports := make([]mail.Transport, 0, len(cfg.Accounts))
	for _, account := range cfg.Accounts {
		t, err := mail.NewGmailTransport(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport for %s: %w", account, err)
		}
		transports = append(transports, t)
	}
	return transports, nil
}

// buildLLMClient returns nil when no API key is configured; callers treat a
// nil client as "skip LLM features" where they can.
func buildLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

func firstFollowUpDelay(cfg config.Config) time.Duration {
	return time.Duration(cfg.FirstFollowUpDelayHours) * time.Hour
}

func nextFollowUpDelay(cfg config.Config) time.Duration {
	return time.Duration(cfg.NextFollowUpDelayHours) * time.Hour
}
