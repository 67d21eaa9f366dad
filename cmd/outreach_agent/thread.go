package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/observability"
	"github.com/spf13/cobra"
)

var threadConfigPath string

var threadCmd = &cobra.Command{
	Use:   "thread <thread-id>",
	Short: "Show a vendor thread with its automation trail",
	Args:  cobra.ExactArgs(1),
	RunE:  runThread,
}

func init() {
	threadCmd.Flags().StringVar(&threadConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(threadCmd)
}

func runThread(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	threadID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid thread id %q: %w", args[0], err)
	}

	cfg, err := loadRuntimeConfig(threadConfigPath)
	if err != nil {
		return err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	tc, err := database.GetThreadContext(ctx, threadID)
	if err != nil {
		return fmt.Errorf("failed to load thread: %w", err)
	}
	if tc == nil {
		return fmt.Errorf("thread not found: %s", threadID)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintThread(tc)

	steps, err := database.ListLog(ctx, threadID)
	if err != nil {
		return fmt.Errorf("failed to load automation log: %w", err)
	}
	if len(steps) > 0 {
		fmt.Println("Automation trail:")
		for _, step := range steps {
			fmt.Printf("  %3d  %-16s %s\n", step.Seq, step.Type, step.CreatedAt.Format("2006-01-02 15:04"))
		}
	}

	messages, err := database.ListMessages(ctx, threadID)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}
	if len(messages) > 0 {
		fmt.Printf("Messages: %d\n", len(messages))
	}
	return nil
}
