// Package backup snapshots the changelog corpus to a compressed artifact
// with integrity verification, and restores from it. Every artifact's
// SHA-256 is recorded in a manifest and re-verified immediately after the
// backup is written; a hash mismatch on restore is fatal and non-retryable.
package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/historian/internal/compress"
	"github.com/mesh-intelligence/historian/pkg/types"
)

// backupLimit bounds the snapshot query. Backups must cover the whole
// scope, so it is far above any realistic corpus size.
const backupLimit = 10000000

// Exporter runs the structured export a backup is built from.
type Exporter interface {
	ExportTo(ctx context.Context, cfg types.ExportConfig, dir string) types.ExportResult
}

// Store is the slice of the backend restore needs.
type Store interface {
	ImportEntry(ctx context.Context, entry *types.ChangelogEntry) error
}

// Manager creates and restores backups under a dedicated directory.
type Manager struct {
	store    Store
	exporter Exporter
	dir      string
	codec    *compress.Zstd
	log      zerolog.Logger
}

// New creates a backup manager writing under dir.
func New(store Store, exporter Exporter, dir string, log zerolog.Logger) (*Manager, error) {
	codec, err := compress.NewZstd()
	if err != nil {
		return nil, err
	}
	return &Manager{store: store, exporter: exporter, dir: dir, codec: codec, log: log}, nil
}

// CreateBackup snapshots all entries, or one team's entries when teamID is
// non-empty. The artifact is a compressed structured export; its hash is
// recorded in the manifest and validated against the freshly written file
// before success is reported.
func (m *Manager) CreateBackup(ctx context.Context, teamID string) types.BackupResult {
	backupID := uuid.New().String()

	filters := types.HistoryFilters{Limit: backupLimit}
	if teamID != "" {
		filters.TeamIDs = []string{teamID}
	}

	exportRes := m.exporter.ExportTo(ctx, types.ExportConfig{
		Format:          types.FormatJSON,
		Filters:         filters,
		IncludeMetadata: true,
		Compress:        true,
	}, m.dir)
	if !exportRes.Success {
		return types.BackupResult{
			Success: false,
			Errors:  append([]string{exportRes.Message}, exportRes.Errors...),
		}
	}

	artifactPath := filepath.Join(m.dir, artifactName(backupID))
	if err := os.Rename(exportRes.FilePath, artifactPath); err != nil {
		return backupFailure(fmt.Errorf("placing backup artifact: %w", err))
	}

	digest, size, err := hashFile(artifactPath)
	if err != nil {
		return backupFailure(fmt.Errorf("hashing backup artifact: %w", err))
	}

	manifest := types.BackupManifest{
		BackupID:     backupID,
		TeamID:       teamID,
		CreatedAt:    time.Now().UTC(),
		RecordCount:  exportRes.RecordCount,
		FileSize:     size,
		SHA256:       digest,
		ArtifactFile: artifactName(backupID),
	}
	if err := writeManifest(filepath.Join(m.dir, manifestName(backupID)), manifest); err != nil {
		return backupFailure(err)
	}

	// Re-validate the freshly written artifact against the recorded hash.
	verified, _, err := hashFile(artifactPath)
	if err != nil {
		return backupFailure(fmt.Errorf("re-reading backup artifact: %w", err))
	}
	if verified != manifest.SHA256 {
		return types.BackupResult{
			Success:          false,
			BackupID:         backupID,
			RecordCount:      manifest.RecordCount,
			FileSize:         manifest.FileSize,
			ValidationPassed: false,
			Errors:           []string{types.ErrBackupValidation.Error()},
		}
	}

	m.log.Info().Str("backup_id", backupID).Str("team_id", teamID).
		Int("records", manifest.RecordCount).Int64("size", manifest.FileSize).
		Msg("backup created")
	return types.BackupResult{
		Success:          true,
		BackupID:         backupID,
		RecordCount:      manifest.RecordCount,
		FileSize:         manifest.FileSize,
		ValidationPassed: true,
	}
}

// RestoreFromBackup loads entries from a verified backup. A missing backup
// fails with not-found; a hash mismatch is fatal for this attempt. Per-row
// import failures are collected and the restore continues.
func (m *Manager) RestoreFromBackup(ctx context.Context, backupID string) types.RestoreResult {
	result := types.RestoreResult{BackupID: backupID}

	manifest, err := readManifest(filepath.Join(m.dir, manifestName(backupID)))
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	artifactPath := filepath.Join(m.dir, manifest.ArtifactFile)
	digest, _, err := hashFile(artifactPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.Errors = append(result.Errors, types.ErrBackupNotFound.Error())
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		return result
	}
	if digest != manifest.SHA256 {
		result.Errors = append(result.Errors, types.ErrBackupValidation.Error())
		return result
	}

	compressed, err := os.ReadFile(artifactPath)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	data, err := m.codec.Decompress(compressed)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("decompressing artifact: %v", err))
		return result
	}

	var entries []*types.ChangelogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("parsing artifact: %v", err))
		return result
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, ctx.Err().Error())
			break
		}
		if err := m.store.ImportEntry(ctx, entry); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %s: %v", entry.EntryID, err))
			continue
		}
		result.RestoredRecords++
	}

	result.Success = len(result.Errors) == 0
	m.log.Info().Str("backup_id", backupID).
		Int("restored", result.RestoredRecords).Int("errors", len(result.Errors)).
		Msg("restore complete")
	return result
}

func artifactName(backupID string) string {
	return "backup_" + backupID + ".json.zst"
}

func manifestName(backupID string) string {
	return "backup_" + backupID + ".manifest.json"
}

// hashFile returns the hex SHA-256 digest and size of the file at path.
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// writeManifest persists the manifest next to the artifact.
func writeManifest(path string, manifest types.BackupManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// readManifest loads a manifest, mapping a missing file to
// ErrBackupNotFound.
func readManifest(path string) (*types.BackupManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrBackupNotFound
		}
		return nil, err
	}
	var manifest types.BackupManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &manifest, nil
}

func backupFailure(err error) types.BackupResult {
	return types.BackupResult{Success: false, Errors: []string{err.Error()}}
}
