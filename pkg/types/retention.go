package types

import "time"

// RetentionPolicy is the per-team data lifecycle configuration. When
// LegalHold is set, no archive, compress or delete action may execute for
// the team regardless of entry age.
type RetentionPolicy struct {
	TeamID            string    `json:"team_id"`
	ArchiveAfterDays  int       `json:"archive_after_days"`
	DeleteAfterDays   int       `json:"delete_after_days"`
	CompressAfterDays int       `json:"compress_after_days,omitempty"` // 0 disables compression
	LegalHold         bool      `json:"legal_hold"`
	ComplianceTags    []string  `json:"compliance_tags,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// Validate checks the policy thresholds.
func (p *RetentionPolicy) Validate() error {
	if p.TeamID == "" {
		return ErrTeamIDEmpty
	}
	if p.ArchiveAfterDays <= 0 || p.DeleteAfterDays <= 0 {
		return ErrThresholdInvalid
	}
	if p.CompressAfterDays < 0 {
		return ErrThresholdInvalid
	}
	return nil
}

// RetentionResult reports one retention pass. Success is true only when the
// error list is empty; counts are accurate for everything that succeeded
// regardless.
type RetentionResult struct {
	Success    bool     `json:"success"`
	TeamID     string   `json:"team_id,omitempty"`
	Processed  int      `json:"processed"`
	Archived   int      `json:"archived"`
	Deleted    int      `json:"deleted"`
	Compressed int      `json:"compressed"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}
