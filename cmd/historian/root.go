// Root command for the historian CLI.
package main

import (
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfig  string
	flagDataDir string
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "historian",
	Short: "Historian stores and analyzes versioned team changelog history",
	Long: `Historian maintains an auditable, versioned record of periodically
generated changelog documents for many teams, with rich retrieval, trend
analysis, export, retention lifecycle, and backup/restore.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./historian.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(retentionCmd)
	rootCmd.AddCommand(backupCmd)
}
