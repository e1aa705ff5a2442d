package types

import (
	"time"

	json "github.com/goccy/go-json"
)

// Audit actions recorded for mutating operations against entries.
const (
	ActionCreate   = "CREATE"
	ActionArchive  = "ARCHIVE"
	ActionCompress = "COMPRESS"
	ActionDelete   = "DELETE"
	ActionRestore  = "RESTORE"
)

// Actors recorded on audit entries written by automated passes.
const (
	ActorRetention = "retention-manager"
	ActorBackup    = "backup-manager"
)

// AuditRecord is an immutable log record of a mutating action against a
// changelog entry. Records are append-only; they are never updated or
// deleted by normal operation.
type AuditRecord struct {
	AuditID   string          `json:"audit_id"`
	EntryID   string          `json:"entry_id"`
	Action    string          `json:"action"`
	Actor     string          `json:"actor,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Details   json.RawMessage `json:"details,omitempty"`
}
