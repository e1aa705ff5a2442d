// Package export materializes filtered changelog history into external
// artifacts: structured JSON, tabular CSV, or a Markdown document, with
// optional zstd compression. Recurring exports are registered in the store
// as a side-effect separate from the one-shot run.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/historian/internal/compress"
	"github.com/mesh-intelligence/historian/pkg/types"
)

// Store is the slice of the backend the export engine needs.
type Store interface {
	Query(ctx context.Context, filters types.HistoryFilters) ([]*types.ChangelogEntry, error)
	RegisterExportSchedule(ctx context.Context, schedule *types.ExportSchedule) (string, error)
}

// Engine runs exports against a store.
type Engine struct {
	store Store
	dir   string
	codec *compress.Zstd
	log   zerolog.Logger
}

// New creates an export engine writing artifacts under dir.
func New(store Store, dir string, log zerolog.Logger) (*Engine, error) {
	codec, err := compress.NewZstd()
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, dir: dir, codec: codec, log: log}, nil
}

// Export runs one export into the engine's artifact directory.
func (e *Engine) Export(ctx context.Context, cfg types.ExportConfig) types.ExportResult {
	return e.ExportTo(ctx, cfg, e.dir)
}

// ExportTo runs one export into dir. Zero matching rows is a failure with a
// clear message, never a silently empty artifact. When cfg carries a
// schedule it is registered before the run.
func (e *Engine) ExportTo(ctx context.Context, cfg types.ExportConfig, dir string) types.ExportResult {
	if err := cfg.Validate(); err != nil {
		return exportFailure("export config failed validation", err)
	}

	if cfg.Schedule != nil {
		scheduleID, err := e.store.RegisterExportSchedule(ctx, cfg.Schedule)
		if err != nil {
			return exportFailure("registering export schedule", err)
		}
		e.log.Info().Str("schedule_id", scheduleID).
			Str("frequency", cfg.Schedule.Frequency).
			Msg("export schedule registered")
	}

	filters := cfg.Filters
	filters.Limit = filters.EffectiveLimit(types.DefaultExportLimit)
	entries, err := e.store.Query(ctx, filters)
	if err != nil {
		return exportFailure("querying entries for export", err)
	}
	if len(entries) == 0 {
		return exportFailure("no data matched the export filters", types.ErrNoData)
	}

	data, err := serialize(cfg.Format, entries, cfg.IncludeMetadata)
	if err != nil {
		return exportFailure("serializing export", err)
	}

	exportID := uuid.New().String()
	name := "export_" + exportID + formatExtension(cfg.Format)
	if cfg.Compress {
		data = e.codec.Compress(data)
		name += ".zst"
	}

	path := filepath.Join(dir, name)
	if err := writeArtifact(path, data); err != nil {
		return exportFailure("writing export artifact", err)
	}

	e.log.Info().Str("export_id", exportID).Str("path", path).
		Int("records", len(entries)).Msg("export complete")
	return types.ExportResult{
		Success:     true,
		ExportID:    exportID,
		FilePath:    path,
		FileSize:    int64(len(data)),
		RecordCount: len(entries),
		Message:     fmt.Sprintf("exported %d entries", len(entries)),
	}
}

// formatExtension maps a format token to its file extension.
func formatExtension(format string) string {
	switch format {
	case types.FormatCSV:
		return ".csv"
	case types.FormatMarkdown:
		return ".md"
	default:
		return ".json"
	}
}

// writeArtifact writes data to path atomically via the temp-file, sync,
// rename pattern, creating the directory if needed.
func writeArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming artifact: %w", err)
	}
	return nil
}

// exportFailure builds a failed ExportResult.
func exportFailure(message string, err error) types.ExportResult {
	return types.ExportResult{
		Success: false,
		Message: message,
		Errors:  []string{err.Error()},
	}
}
