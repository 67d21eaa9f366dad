package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/vendor-outreach/internal/db"
	"github.com/jonathan/vendor-outreach/internal/outreach"
	"github.com/spf13/cobra"
)

var (
	approveConfigPath string
	approveVendorIDs  []string
	approveApprovedBy string
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve outreach for one or more vendors and send the first message",
	RunE:  runApprove,
}

func init() {
	approveCmd.Flags().StringVar(&approveConfigPath, "config", "", "Path to config.json file")
	approveCmd.Flags().StringSliceVar(&approveVendorIDs, "vendor", nil, "Vendor UUID (repeatable)")
	approveCmd.Flags().StringVar(&approveApprovedBy, "approved-by", "", "Who approved the outreach")
	_ = approveCmd.MarkFlagRequired("vendor")
	_ = approveCmd.MarkFlagRequired("approved-by")
	rootCmd.AddCommand(approveCmd)
}

func runApprove(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(approveConfigPath)
	if err != nil {
		return err
	}

	vendorIDs := make([]uuid.UUID, 0, len(approveVendorIDs))
	for _, raw := range approveVendorIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid vendor id %q: %w", raw, err)
		}
		vendorIDs = append(vendorIDs, id)
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

	dispatcher := outreach.NewDispatcher(database, transports[0], llmClient, outreach.Config{
		FirstFollowUpDelay: firstFollowUpDelay(cfg),
	})

	results := dispatcher.BulkApprove(ctx, vendorIDs, approveApprovedBy)
	failed := 0
	for _, r := range results {
		switch {
		case r.Error != "":
			failed++
			fmt.Printf("✗ %s: %s\n", r.VendorID, r.Error)
		case r.AlreadyApproved:
			fmt.Printf("- %s: already approved\n", r.VendorID)
		case r.Dispatched:
			fmt.Printf("✓ %s: outreach sent\n", r.VendorID)
		default:
			fmt.Printf("✓ %s: approved\n", r.VendorID)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d approvals failed", failed, len(results))
	}
	return nil
}
