package main

import (
	"context"
	"fmt"

	"github.com/jonathan/vendor-outreach/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for approving outreach, inspecting threads and replying to escalations.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadRuntimeConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	transports, err := buildTransports(ctx, cfg)
	if err != nil {
		return err
	}

	llmClient, err := buildLLMClient(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:               cfg.Port,
		DatabaseURL:        cfg.DatabaseURL,
		Transport:          transports[0],
		LLMClient:          llmClient,
		FirstFollowUpDelay: firstFollowUpDelay(cfg),
		FollowUpDelay:      nextFollowUpDelay(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
