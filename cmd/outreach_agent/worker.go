package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/decision"
	"github.com/jonathan/vendor-outreach/internal/extractor"
	"github.com/jonathan/vendor-outreach/internal/inbound"
	"github.com/jonathan/vendor-outreach/internal/scheduler"
	"github.com/spf13/cobra"
)

var (
	workerConfigPath string
	workerInterval   int
	workerOnce       bool
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background worker (inbox polling + follow-up timers)",
	Long: `Polls the configured mail accounts for vendor replies, runs each reply
through extraction and the decision engine, and fires due follow-up timers.
Runs until interrupted; use --once for a single cycle.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().StringVar(&workerConfigPath, "config", "", "Path to config.json file")
	workerCmd.Flags().IntVar(&workerInterval, "interval", 0, "Seconds between cycles (overrides config)")
	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "Run one poll/tick cycle and exit")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadRuntimeConfig(workerConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("interval") {
		cfg.PollIntervalSeconds = workerInterval
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	transports, err := buildTransports(ctx, cfg)
	if err != nil {
		return err
	}

	llmClient, err := buildLLMClient(ctx, cfg)
	if err != nil {
		return err
	}

	decisionCfg := decision.DefaultConfig()
	if cfg.BudgetEdgeMultiplier > 0 {
		decisionCfg.BudgetEdgeMultiplier = cfg.BudgetEdgeMultiplier
	}

	pipeline := inbound.NewPipeline(database, extractor.New(llmClient), transports[0], decisionCfg)

	accounts := make([]inbound.Account, len(transports))
	for i, t := range transports {
		accounts[i] = inbound.Account{ID: cfg.Accounts[i], Transport: t}
	}
	poller := inbound.NewPoller(accounts, pipeline)

	sched := scheduler.New(database, transports[0], scheduler.Config{
		MaxFollowUps:      cfg.MaxFollowUps,
		NextFollowUpDelay: nextFollowUpDelay(cfg),
	})

	interval := time.Duration(cfg.PollIntervalSeconds) * time.Second
	fmt.Printf("Worker started: %d account(s), cycle every %s\n", len(accounts), interval)

	for {
		if err := poller.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Printf("Warning: poll cycle failed: %v\n", err)
		}
		if err := sched.Tick(ctx, time.Now()); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Printf("Warning: timer tick failed: %v\n", err)
		}

		if workerOnce {
			return nil
		}

		select {
		case <-ctx.Done():
			fmt.Println("Worker shutting down")
			return nil
		case <-time.After(interval):
		}
	}

	fmt.Println("Worker shutting down")
	return nil
}
