// This file implements the append-only audit trail. Records are written
// after (or, for deletions, atomically with) the state change they
// describe; they are never updated or deleted by normal operation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// appendAuditBestEffort writes an audit record after a committed state
// change. A failed audit write is logged and does not roll back the change.
func (b *Backend) appendAuditBestEffort(ctx context.Context, entryID, action, actor string, details json.RawMessage) {
	db, err := b.handle()
	if err != nil {
		b.log.Warn().Err(err).Str("entry_id", entryID).Str("action", action).
			Msg("audit write skipped")
		return
	}
	if err := appendAudit(ctx, db, entryID, action, actor, details); err != nil {
		b.log.Warn().Err(err).Str("entry_id", entryID).Str("action", action).
			Msg("audit write failed")
	}
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// appendAudit inserts one audit record.
func appendAudit(ctx context.Context, db execer, entryID, action, actor string, details json.RawMessage) error {
	var actorVal any
	if actor != "" {
		actorVal = actor
	}
	var detailsVal any
	if len(details) > 0 {
		detailsVal = string(details)
	}
	_, err := db.ExecContext(ctx,
		"INSERT INTO audit_trail (audit_id, entry_id, action, actor, created_at, details) VALUES (?, ?, ?, ?, ?, ?)",
		generateUUID(), entryID, action, actorVal,
		time.Now().UTC().Format(time.RFC3339), detailsVal,
	)
	if err != nil {
		return fmt.Errorf("appending audit record: %w", err)
	}
	return nil
}

// appendAuditTx inserts an audit record inside the caller's transaction,
// used when the record must land atomically with the state change.
func appendAuditTx(ctx context.Context, tx *sql.Tx, entryID, action, actor string, details json.RawMessage) error {
	return appendAudit(ctx, tx, entryID, action, actor, details)
}

// AuditTrail returns all audit records for an entry, oldest first.
func (b *Backend) AuditTrail(ctx context.Context, entryID string) ([]types.AuditRecord, error) {
	if entryID == "" {
		return nil, types.ErrInvalidID
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT audit_id, entry_id, action, actor, created_at, details FROM audit_trail WHERE entry_id = ? ORDER BY created_at ASC, audit_id ASC",
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying audit trail: %w", err)
	}
	defer rows.Close()

	records := []types.AuditRecord{}
	for rows.Next() {
		var rec types.AuditRecord
		var actor, details sql.NullString
		var createdAt string
		if err := rows.Scan(&rec.AuditID, &rec.EntryID, &rec.Action, &actor, &createdAt, &details); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing audit timestamp: %w", err)
		}
		if actor.Valid {
			rec.Actor = actor.String
		}
		if details.Valid {
			rec.Details = json.RawMessage(details.String)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit trail: %w", err)
	}
	return records, nil
}
