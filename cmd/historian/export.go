// Export command: materialize filtered history into an artifact.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/historian/internal/export"
	"github.com/mesh-intelligence/historian/internal/logging"
	"github.com/mesh-intelligence/historian/pkg/types"
)

var exportFlags struct {
	format          string
	includeMetadata bool
	compress        bool
	schedule        string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export filtered history to JSON, CSV, or Markdown",
	Long: `Export serializes the entries matching the query flags into an artifact
under the configured export directory. With --schedule a recurring export
is registered as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := buildFilters()
		if err != nil {
			return err
		}

		cfg := types.ExportConfig{
			Format:          exportFlags.format,
			Filters:         filters,
			IncludeMetadata: exportFlags.includeMetadata,
			Compress:        exportFlags.compress,
		}
		if exportFlags.schedule != "" {
			cfg.Schedule = &types.ExportSchedule{
				Frequency: exportFlags.schedule,
				Format:    exportFlags.format,
				Filters:   filters,
			}
		}

		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		engine, err := export.New(backend, backend.Config().ExportDir,
			logging.New(backend.Config().LogLevel))
		if err != nil {
			return err
		}

		result := engine.Export(cmd.Context(), cfg)
		if printErr := printResult(result, func() {
			if result.Success {
				fmt.Printf("%s (%d records, %d bytes) -> %s\n",
					result.Message, result.RecordCount, result.FileSize, result.FilePath)
			} else {
				fmt.Println(result.Message)
			}
		}); printErr != nil {
			return printErr
		}
		if !result.Success {
			return errors.New(strings.Join(result.Errors, "; "))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFlags.format, "format", types.FormatJSON, "export format (json|csv|markdown)")
	exportCmd.Flags().BoolVar(&exportFlags.includeMetadata, "include-metadata", false, "include entry metadata")
	exportCmd.Flags().BoolVar(&exportFlags.compress, "compress", false, "zstd-compress the artifact")
	exportCmd.Flags().StringVar(&exportFlags.schedule, "schedule", "", "register a recurring export (daily|weekly|monthly)")

	// Exports reuse the query filter flags.
	exportCmd.Flags().AddFlagSet(queryCmd.Flags())
}
