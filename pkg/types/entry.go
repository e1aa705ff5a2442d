package types

import (
	"time"

	json "github.com/goccy/go-json"
)

// Entry statuses. Status tokens are part of the wire contract and must stay
// stable lowercase strings.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
	StatusDeleted   = "deleted"
)

// validStatuses is the set of recognized entry status values.
var validStatuses = map[string]bool{
	StatusDraft:     true,
	StatusPublished: true,
	StatusArchived:  true,
	StatusDeleted:   true,
}

// ValidStatus reports whether s is a recognized entry status token.
func ValidStatus(s string) bool {
	return validStatuses[s]
}

// Content encodings for the stored payload.
const (
	EncodingJSON = "json"
	EncodingZstd = "zstd"
)

// ChangelogEntry is one versioned snapshot of a team's reporting-period
// changelog. Content and Metadata are opaque payloads owned by the caller;
// the store persists and returns them verbatim.
type ChangelogEntry struct {
	EntryID       string          `json:"entry_id"`
	TeamID        string          `json:"team_id"`
	WeekStartDate time.Time       `json:"week_start_date"`
	WeekEndDate   time.Time       `json:"week_end_date"`
	Version       int             `json:"version"`
	Status        string          `json:"status"`
	Content       json.RawMessage `json:"content"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	GeneratedAt   time.Time       `json:"generated_at"`
	PublishedAt   *time.Time      `json:"published_at,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
}

// Validate checks that the entry is well-formed for storage. Version is
// assigned by the store and is not validated here.
func (e *ChangelogEntry) Validate() error {
	if e.TeamID == "" {
		return ErrTeamIDEmpty
	}
	if !e.WeekEndDate.After(e.WeekStartDate) {
		return ErrInvalidPeriod
	}
	if e.Status != "" && !validStatuses[e.Status] {
		return ErrInvalidStatus
	}
	if len(e.Content) == 0 {
		return ErrContentEmpty
	}
	return nil
}

// HasTag reports whether the entry carries the given tag.
func (e *ChangelogEntry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// StorageResult reports the outcome of a Store call. On failure the partial
// context needed for a retry is preserved in Errors rather than raised.
type StorageResult struct {
	Success bool     `json:"success"`
	EntryID string   `json:"entry_id,omitempty"`
	Version int      `json:"version,omitempty"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// TransitionOptions controls a status transition. EnforceLegalHold is set by
// the retention manager so holds block its actions; explicit API calls leave
// it unset.
type TransitionOptions struct {
	EnforceLegalHold bool
}
