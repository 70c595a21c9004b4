package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fusionops-sim",
	Short: "Synthetic situational-awareness backend",
	Long:  "fusionops-sim serves a situational-awareness dashboard with synthetic, internally consistent telemetry: moving assets, derived events, and correlated alerts over a live push stream.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}
