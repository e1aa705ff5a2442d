// Version command for the historian CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags.
var version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the historian version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("historian %s\n", version)
	},
}
