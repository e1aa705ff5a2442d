// Package main provides the historian CLI: versioned changelog history
// storage with query, trend analysis, export, retention, and backup
// commands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
