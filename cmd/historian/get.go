// Get command: retrieve an entry for a team and period.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/historian/pkg/types"
)

var (
	getVersion int
	getHistory bool
)

var getCmd = &cobra.Command{
	Use:   "get <team-id> <week-start>",
	Short: "Get the latest (or a specific) entry version for a period",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		teamID := args[0]
		weekStart, err := parseDate(args[1])
		if err != nil {
			return err
		}

		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		if getHistory {
			entries, err := backend.History(cmd.Context(), teamID, weekStart)
			if err != nil {
				return err
			}
			return printResult(entries, func() { printEntries(entries) })
		}

		var entry *types.ChangelogEntry
		if getVersion > 0 {
			entry, err = backend.GetVersion(cmd.Context(), teamID, weekStart, getVersion)
		} else {
			entry, err = backend.Get(cmd.Context(), teamID, weekStart)
		}
		if err != nil {
			return err
		}
		return printResult(entry, func() {
			fmt.Printf("%s v%d (%s) %s..%s\n%s\n",
				entry.EntryID, entry.Version, entry.Status,
				entry.WeekStartDate.Format(time.DateOnly),
				entry.WeekEndDate.Format(time.DateOnly),
				string(entry.Content))
		})
	},
}

func init() {
	getCmd.Flags().IntVar(&getVersion, "version", 0, "specific version (default: latest)")
	getCmd.Flags().BoolVar(&getHistory, "history", false, "list all versions for the period")
}
