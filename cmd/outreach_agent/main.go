// Package main provides the entry point for the vendor outreach agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "outreach_agent",
	Short: "Vendor outreach automation agent",
	Long:  "Vendor outreach agent contacts event vendors by email, parses their replies, decides follow-ups automatically and escalates edge cases to a human planner.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
