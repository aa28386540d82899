// Package main is the entry point of auditctl, a command line client for the
// revision service.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	apiAddr    string
	token      string
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:           "auditctl",
	Short:         "Inspect revision history and notification audits",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", envOr("AUDITCTL_API", "http://localhost:8080"), "Base URL of the revision service")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("AUDITCTL_TOKEN"), "Bearer token used for requests")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Print raw JSON instead of tables")

	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newTimelineCmd())
	rootCmd.AddCommand(newAuditCmd())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
