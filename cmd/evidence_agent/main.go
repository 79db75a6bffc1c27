// Package main provides the entry point for the evidence engine CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evidence_agent",
	Short: "Market evidence and signal scoring for product features",
	Long: `evidence_agent gathers public market evidence for a product feature (web search results,
competitor products and forum discussions) and scores it into market signals.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
