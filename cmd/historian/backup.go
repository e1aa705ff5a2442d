// Backup commands: snapshot creation and verified restore.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/historian/internal/backup"
	"github.com/mesh-intelligence/historian/internal/export"
	"github.com/mesh-intelligence/historian/internal/logging"
	"github.com/mesh-intelligence/historian/internal/sqlite"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create and restore verified backups",
}

var backupTeam string

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot all entries (or one team's) to a verified artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		manager, err := newBackupManager(backend)
		if err != nil {
			return err
		}

		result := manager.CreateBackup(cmd.Context(), backupTeam)
		if printErr := printResult(result, func() {
			if result.Success {
				fmt.Printf("backup %s: %d records, %d bytes, validated\n",
					result.BackupID, result.RecordCount, result.FileSize)
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

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Restore entries from a verified backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		manager, err := newBackupManager(backend)
		if err != nil {
			return err
		}

		result := manager.RestoreFromBackup(cmd.Context(), args[0])
		if printErr := printResult(result, func() {
			fmt.Printf("backup %s: restored %d records\n", result.BackupID, result.RestoredRecords)
		}); printErr != nil {
			return printErr
		}
		if !result.Success {
			return errors.New(strings.Join(result.Errors, "; "))
		}
		return nil
	},
}

// newBackupManager wires the export engine and backup manager over an
// attached backend.
func newBackupManager(backend *sqlite.Backend) (*backup.Manager, error) {
	log := logging.New(backend.Config().LogLevel)
	engine, err := export.New(backend, backend.Config().ExportDir, log)
	if err != nil {
		return nil, err
	}
	return backup.New(backend, engine, backend.Config().BackupDir, log)
}

func init() {
	backupCreateCmd.Flags().StringVar(&backupTeam, "team", "", "limit the backup to one team")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}
