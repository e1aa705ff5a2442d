// Audit command: show the audit trail for an entry.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit <entry-id>",
	Short: "Show the audit trail for an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		records, err := backend.AuditTrail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(records, func() {
			for _, rec := range records {
				fmt.Printf("%s  %-8s  %s", rec.CreatedAt.Format(time.RFC3339), rec.Action, rec.Actor)
				if len(rec.Details) > 0 {
					fmt.Printf("  %s", string(rec.Details))
				}
				fmt.Println()
			}
		})
	},
}
