package types

import "time"

// BackupManifest is the metadata record written alongside a backup artifact.
// SHA256 is the hex digest of the artifact as written; it is re-verified
// immediately after the backup is created and again before any restore.
type BackupManifest struct {
	BackupID     string    `json:"backup_id"`
	TeamID       string    `json:"team_id,omitempty"` // empty means all teams
	CreatedAt    time.Time `json:"created_at"`
	RecordCount  int       `json:"record_count"`
	FileSize     int64     `json:"file_size"`
	SHA256       string    `json:"sha256"`
	ArtifactFile string    `json:"artifact_file"`
}

// BackupResult reports a CreateBackup call.
type BackupResult struct {
	Success          bool     `json:"success"`
	BackupID         string   `json:"backup_id,omitempty"`
	RecordCount      int      `json:"record_count"`
	FileSize         int64    `json:"file_size"`
	ValidationPassed bool     `json:"validation_passed"`
	Errors           []string `json:"errors,omitempty"`
}

// RestoreResult reports a RestoreFromBackup call.
type RestoreResult struct {
	Success         bool     `json:"success"`
	BackupID        string   `json:"backup_id"`
	RestoredRecords int      `json:"restored_records"`
	Errors          []string `json:"errors,omitempty"`
}
