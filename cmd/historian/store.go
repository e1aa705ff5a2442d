// Store command: persist a changelog entry read as JSON.
package main

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/historian/pkg/types"
)

var (
	storeFile  string
	storeActor string
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Store a changelog entry (JSON from --file or stdin)",
	Long: `Store persists a changelog entry and assigns the next version for its
(team_id, week_start_date) period. The entry is read as JSON from --file,
or from stdin when --file is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(storeFile)
		if err != nil {
			return err
		}

		var entry types.ChangelogEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return fmt.Errorf("parsing entry JSON: %w", err)
		}

		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		result := backend.Store(cmd.Context(), &entry, storeActor)
		printErr := printResult(result, func() {
			fmt.Println(result.Message)
		})
		if printErr != nil {
			return printErr
		}
		if !result.Success {
			return errors.New(strings.Join(result.Errors, "; "))
		}
		return nil
	},
}

func init() {
	storeCmd.Flags().StringVar(&storeFile, "file", "", "entry JSON file (default: stdin)")
	storeCmd.Flags().StringVar(&storeActor, "actor", "", "actor recorded in the audit trail")
}
