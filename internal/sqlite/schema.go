// Package sqlite implements the SQLite storage backend for the historian
// changelog history store.
package sqlite

// Schema DDL. The database file is durable across Attach calls, so every
// statement is IF NOT EXISTS.
const (
	createEntries = `CREATE TABLE IF NOT EXISTS changelog_entries (
    entry_id TEXT PRIMARY KEY,
    team_id TEXT NOT NULL,
    week_start_date TEXT NOT NULL,
    week_end_date TEXT NOT NULL,
    version INTEGER NOT NULL,
    status TEXT NOT NULL,
    content TEXT NOT NULL,
    content_encoding TEXT NOT NULL DEFAULT 'json',
    metadata TEXT,
    generated_at TEXT NOT NULL,
    published_at TEXT,
    created_by TEXT,
    tags TEXT NOT NULL DEFAULT '[]'
);`

	createAuditTrail = `CREATE TABLE IF NOT EXISTS audit_trail (
    audit_id TEXT PRIMARY KEY,
    entry_id TEXT NOT NULL,
    action TEXT NOT NULL,
    actor TEXT,
    created_at TEXT NOT NULL,
    details TEXT
);`

	createRetentionPolicies = `CREATE TABLE IF NOT EXISTS retention_policies (
    team_id TEXT PRIMARY KEY,
    archive_after_days INTEGER NOT NULL,
    delete_after_days INTEGER NOT NULL,
    compress_after_days INTEGER NOT NULL DEFAULT 0,
    legal_hold INTEGER NOT NULL DEFAULT 0,
    compliance_tags TEXT NOT NULL DEFAULT '[]',
    updated_at TEXT NOT NULL
);`

	createExportSchedules = `CREATE TABLE IF NOT EXISTS export_schedules (
    schedule_id TEXT PRIMARY KEY,
    frequency TEXT NOT NULL,
    format TEXT NOT NULL,
    filters TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries. Version assignment relies on the UNIQUE
// index over (team_id, week_start_date, version): the losing writer of a
// concurrent Store hits the constraint and retries against the new max.
const (
	idxEntriesTeamWeekVersion = `CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_team_week_version
    ON changelog_entries(team_id, week_start_date, version);`
	idxEntriesTeamWeek = `CREATE INDEX IF NOT EXISTS idx_entries_team_week
    ON changelog_entries(team_id, week_start_date);`
	idxEntriesStatus = `CREATE INDEX IF NOT EXISTS idx_entries_status
    ON changelog_entries(status);`
	idxEntriesCreatedBy = `CREATE INDEX IF NOT EXISTS idx_entries_created_by
    ON changelog_entries(created_by);`
	idxEntriesGeneratedAt = `CREATE INDEX IF NOT EXISTS idx_entries_generated_at
    ON changelog_entries(generated_at);`
	idxAuditEntry = `CREATE INDEX IF NOT EXISTS idx_audit_entry
    ON audit_trail(entry_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createEntries,
	createAuditTrail,
	createRetentionPolicies,
	createExportSchedules,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxEntriesTeamWeekVersion,
	idxEntriesTeamWeek,
	idxEntriesStatus,
	idxEntriesCreatedBy,
	idxEntriesGeneratedAt,
	idxAuditEntry,
}
