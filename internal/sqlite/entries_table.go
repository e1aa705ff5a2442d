// This file implements versioned persistence of changelog entries: Store
// with linearizable version assignment, latest/specific-version retrieval,
// and the explicit status transitions (Archive, Compress, Delete).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// Store persists the entry and assigns the next version for its
// (team_id, week_start_date) period: 1 for the first entry, max+1 after.
// Version assignment and insert run in one transaction; the UNIQUE index on
// (team_id, week_start_date, version) catches concurrent writers and the
// loser retries once against the re-read max. Failures are captured in the
// result's error list, never raised.
func (b *Backend) Store(ctx context.Context, entry *types.ChangelogEntry, actor string) types.StorageResult {
	if entry == nil {
		return storeFailure("entry is nil", types.ErrContentEmpty)
	}
	if err := entry.Validate(); err != nil {
		return storeFailure("entry failed validation", err)
	}
	db, err := b.handle()
	if err != nil {
		return storeFailure("store unavailable", err)
	}

	if entry.EntryID == "" {
		entry.EntryID = generateUUID()
	}
	if entry.Status == "" {
		entry.Status = types.StatusDraft
	}
	if entry.GeneratedAt.IsZero() {
		entry.GeneratedAt = time.Now().UTC()
	}

	version, err := b.insertVersioned(ctx, db, entry)
	if err != nil && isUniqueViolation(err) {
		// Lost the version race; re-read the max and try once more.
		version, err = b.insertVersioned(ctx, db, entry)
	}
	if err != nil {
		return storeFailure(
			fmt.Sprintf("storing entry for team %s", entry.TeamID), err)
	}
	entry.Version = version

	details, _ := json.Marshal(map[string]any{
		"team_id":         entry.TeamID,
		"week_start_date": entry.WeekStartDate.Format(time.DateOnly),
		"version":         version,
	})
	b.appendAuditBestEffort(ctx, entry.EntryID, types.ActionCreate, actor, details)

	return types.StorageResult{
		Success: true,
		EntryID: entry.EntryID,
		Version: version,
		Message: fmt.Sprintf("stored version %d for team %s period %s",
			version, entry.TeamID, entry.WeekStartDate.Format(time.DateOnly)),
	}
}

// insertVersioned runs one version-assignment attempt in its own
// transaction and returns the assigned version.
func (b *Backend) insertVersioned(ctx context.Context, db *sql.DB, entry *types.ChangelogEntry) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	weekStart := entry.WeekStartDate.Format(time.DateOnly)

	var maxVersion int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM changelog_entries WHERE team_id = ? AND week_start_date = ?",
		entry.TeamID, weekStart,
	).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("reading max version: %w", err)
	}
	version := maxVersion + 1

	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return 0, fmt.Errorf("marshaling tags: %w", err)
	}
	if entry.Tags == nil {
		tagsJSON = []byte("[]")
	}

	var metadata any
	if len(entry.Metadata) > 0 {
		metadata = string(entry.Metadata)
	}
	var publishedAt any
	if entry.PublishedAt != nil {
		publishedAt = entry.PublishedAt.UTC().Format(time.RFC3339)
	}
	var createdBy any
	if entry.CreatedBy != "" {
		createdBy = entry.CreatedBy
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO changelog_entries
    (entry_id, team_id, week_start_date, week_end_date, version, status,
     content, content_encoding, metadata, generated_at, published_at, created_by, tags)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, entry.TeamID, weekStart,
		entry.WeekEndDate.Format(time.DateOnly), version, entry.Status,
		string(entry.Content), types.EncodingJSON, metadata,
		entry.GeneratedAt.UTC().Format(time.RFC3339), publishedAt, createdBy,
		string(tagsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing entry: %w", err)
	}
	return version, nil
}

// Get returns the latest version of the entry for the given team and
// period. Returns ErrNotFound if no entry exists for the period.
func (b *Backend) Get(ctx context.Context, teamID string, weekStart time.Time) (*types.ChangelogEntry, error) {
	return b.getVersion(ctx, teamID, weekStart, 0)
}

// GetVersion returns a specific version of the entry for the given team and
// period.
func (b *Backend) GetVersion(ctx context.Context, teamID string, weekStart time.Time, version int) (*types.ChangelogEntry, error) {
	if version <= 0 {
		return nil, types.ErrInvalidVersion
	}
	return b.getVersion(ctx, teamID, weekStart, version)
}

// getVersion retrieves one entry row; version 0 selects the latest.
func (b *Backend) getVersion(ctx context.Context, teamID string, weekStart time.Time, version int) (*types.ChangelogEntry, error) {
	if teamID == "" {
		return nil, types.ErrTeamIDEmpty
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	query := selectEntryColumns + " WHERE team_id = ? AND week_start_date = ?"
	args := []any{teamID, weekStart.Format(time.DateOnly)}
	if version > 0 {
		query += " AND version = ?"
		args = append(args, version)
	} else {
		query += " ORDER BY version DESC LIMIT 1"
	}

	row := db.QueryRowContext(ctx, query, args...)
	entry, err := b.hydrateEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting entry for team %s: %w", teamID, err)
	}
	return entry, nil
}

// GetByID returns the entry with the given ID.
func (b *Backend) GetByID(ctx context.Context, entryID string) (*types.ChangelogEntry, error) {
	if entryID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, selectEntryColumns+" WHERE entry_id = ?", entryID)
	entry, err := b.hydrateEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting entry %s: %w", entryID, err)
	}
	return entry, nil
}

// History returns all versions for the given team and period, newest
// version first. Returns an empty slice when the period has no entries.
func (b *Backend) History(ctx context.Context, teamID string, weekStart time.Time) ([]*types.ChangelogEntry, error) {
	if teamID == "" {
		return nil, types.ErrTeamIDEmpty
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		selectEntryColumns+" WHERE team_id = ? AND week_start_date = ? ORDER BY version DESC",
		teamID, weekStart.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()
	return b.collectEntries(rows)
}

// Archive marks the entry archived and appends an ARCHIVE audit record.
// Returns false without error when the entry is already archived.
func (b *Backend) Archive(ctx context.Context, entryID, actor string, opts types.TransitionOptions) (bool, error) {
	entry, err := b.GetByID(ctx, entryID)
	if err != nil {
		return false, err
	}
	if err := b.checkLegalHold(ctx, entry.TeamID, opts); err != nil {
		return false, err
	}
	if entry.Status == types.StatusArchived {
		return false, nil
	}

	db, err := b.handle()
	if err != nil {
		return false, err
	}
	_, err = db.ExecContext(ctx,
		"UPDATE changelog_entries SET status = ? WHERE entry_id = ?",
		types.StatusArchived, entryID,
	)
	if err != nil {
		return false, fmt.Errorf("archiving entry %s: %w", entryID, err)
	}

	details, _ := json.Marshal(map[string]string{"previous_status": entry.Status})
	b.appendAuditBestEffort(ctx, entryID, types.ActionArchive, actor, details)
	return true, nil
}

// Compress recompresses the entry content in place with zstd and appends a
// COMPRESS audit record. Returns false without error when the content is
// already compressed. Reads keep returning the original payload; hydration
// decompresses transparently.
func (b *Backend) Compress(ctx context.Context, entryID, actor string, opts types.TransitionOptions) (bool, error) {
	if entryID == "" {
		return false, types.ErrInvalidID
	}
	db, err := b.handle()
	if err != nil {
		return false, err
	}

	var teamID, encoding string
	var content []byte
	err = db.QueryRowContext(ctx,
		"SELECT team_id, content, content_encoding FROM changelog_entries WHERE entry_id = ?",
		entryID,
	).Scan(&teamID, &content, &encoding)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, types.ErrNotFound
		}
		return false, fmt.Errorf("reading entry %s for compression: %w", entryID, err)
	}
	if err := b.checkLegalHold(ctx, teamID, opts); err != nil {
		return false, err
	}
	if encoding == types.EncodingZstd {
		return false, nil
	}

	compressed := b.codec.Compress(content)
	_, err = db.ExecContext(ctx,
		"UPDATE changelog_entries SET content = ?, content_encoding = ? WHERE entry_id = ?",
		compressed, types.EncodingZstd, entryID,
	)
	if err != nil {
		return false, fmt.Errorf("compressing entry %s: %w", entryID, err)
	}

	details, _ := json.Marshal(map[string]int{
		"original_size":   len(content),
		"compressed_size": len(compressed),
	})
	b.appendAuditBestEffort(ctx, entryID, types.ActionCompress, actor, details)
	return true, nil
}

// Delete permanently removes the entry. The DELETE audit record is written
// in the same transaction, before the row is removed; an entry is never
// deleted without its audit record.
func (b *Backend) Delete(ctx context.Context, entryID, actor string, opts types.TransitionOptions) error {
	entry, err := b.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if err := b.checkLegalHold(ctx, entry.TeamID, opts); err != nil {
		return err
	}

	db, err := b.handle()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	details, _ := json.Marshal(map[string]any{
		"team_id":         entry.TeamID,
		"week_start_date": entry.WeekStartDate.Format(time.DateOnly),
		"version":         entry.Version,
		"status":          entry.Status,
	})
	if err := appendAuditTx(ctx, tx, entryID, types.ActionDelete, actor, details); err != nil {
		return fmt.Errorf("writing delete audit record: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM changelog_entries WHERE entry_id = ?", entryID,
	); err != nil {
		return fmt.Errorf("deleting entry %s: %w", entryID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entry deletion: %w", err)
	}
	return nil
}

// ImportEntry inserts an entry preserving its ID and version, used by
// backup restore. The UNIQUE index rejects collisions with existing rows.
func (b *Backend) ImportEntry(ctx context.Context, entry *types.ChangelogEntry) error {
	if entry == nil {
		return types.ErrContentEmpty
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.EntryID == "" {
		return types.ErrInvalidID
	}
	if entry.Version <= 0 {
		return types.ErrInvalidVersion
	}
	db, err := b.handle()
	if err != nil {
		return err
	}

	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	if entry.Tags == nil {
		tagsJSON = []byte("[]")
	}
	var metadata any
	if len(entry.Metadata) > 0 {
		metadata = string(entry.Metadata)
	}
	var publishedAt any
	if entry.PublishedAt != nil {
		publishedAt = entry.PublishedAt.UTC().Format(time.RFC3339)
	}
	var createdBy any
	if entry.CreatedBy != "" {
		createdBy = entry.CreatedBy
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO changelog_entries
    (entry_id, team_id, week_start_date, week_end_date, version, status,
     content, content_encoding, metadata, generated_at, published_at, created_by, tags)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EntryID, entry.TeamID,
		entry.WeekStartDate.Format(time.DateOnly),
		entry.WeekEndDate.Format(time.DateOnly),
		entry.Version, entry.Status, string(entry.Content), types.EncodingJSON,
		metadata, entry.GeneratedAt.UTC().Format(time.RFC3339), publishedAt,
		createdBy, string(tagsJSON),
	)
	if err != nil {
		return fmt.Errorf("importing entry %s: %w", entry.EntryID, err)
	}

	b.appendAuditBestEffort(ctx, entry.EntryID, types.ActionRestore, types.ActorBackup, nil)
	return nil
}

// checkLegalHold refuses the transition when options demand hold
// enforcement and the owning team's policy has legal_hold set. Teams
// without a policy are not under hold.
func (b *Backend) checkLegalHold(ctx context.Context, teamID string, opts types.TransitionOptions) error {
	if !opts.EnforceLegalHold {
		return nil
	}
	policy, err := b.GetRetentionPolicy(ctx, teamID)
	if err != nil {
		if err == types.ErrPolicyNotFound {
			return nil
		}
		return err
	}
	if policy.LegalHold {
		return types.ErrLegalHold
	}
	return nil
}

// selectEntryColumns is the shared column list for entry hydration.
const selectEntryColumns = `SELECT entry_id, team_id, week_start_date, week_end_date, version, status,
    content, content_encoding, metadata, generated_at, published_at, created_by, tags
    FROM changelog_entries`

// hydrateEntry scans one row into a ChangelogEntry, decompressing content
// when it is stored zstd-encoded so callers always see the payload
// verbatim.
func (b *Backend) hydrateEntry(scan func(...any) error) (*types.ChangelogEntry, error) {
	var e types.ChangelogEntry
	var weekStart, weekEnd, generatedAt, encoding, tagsJSON string
	var content []byte
	var metadata, publishedAt, createdBy sql.NullString

	err := scan(&e.EntryID, &e.TeamID, &weekStart, &weekEnd, &e.Version,
		&e.Status, &content, &encoding, &metadata, &generatedAt, &publishedAt,
		&createdBy, &tagsJSON)
	if err != nil {
		return nil, err
	}

	if encoding == types.EncodingZstd {
		content, err = b.codec.Decompress(content)
		if err != nil {
			return nil, fmt.Errorf("decompressing content: %w", err)
		}
	}
	e.Content = json.RawMessage(content)

	if e.WeekStartDate, err = time.Parse(time.DateOnly, weekStart); err != nil {
		return nil, fmt.Errorf("parsing week_start_date: %w", err)
	}
	if e.WeekEndDate, err = time.Parse(time.DateOnly, weekEnd); err != nil {
		return nil, fmt.Errorf("parsing week_end_date: %w", err)
	}
	if e.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
		return nil, fmt.Errorf("parsing generated_at: %w", err)
	}
	if publishedAt.Valid {
		t, err := time.Parse(time.RFC3339, publishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing published_at: %w", err)
		}
		e.PublishedAt = &t
	}
	if metadata.Valid {
		e.Metadata = json.RawMessage(metadata.String)
	}
	if createdBy.Valid {
		e.CreatedBy = createdBy.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return nil, fmt.Errorf("parsing tags: %w", err)
	}
	return &e, nil
}

// collectEntries hydrates all rows of a query result.
func (b *Backend) collectEntries(rows *sql.Rows) ([]*types.ChangelogEntry, error) {
	results := []*types.ChangelogEntry{}
	for rows.Next() {
		entry, err := b.hydrateEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating entry: %w", err)
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return results, nil
}

// storeFailure builds a failed StorageResult carrying the retry context.
func storeFailure(message string, err error) types.StorageResult {
	return types.StorageResult{
		Success: false,
		Message: message,
		Errors:  []string{err.Error()},
	}
}

// isUniqueViolation reports whether err is the UNIQUE constraint failure
// raised when two writers race on the same (team_id, week_start_date).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
