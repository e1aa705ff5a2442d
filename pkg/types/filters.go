package types

import "time"

// Query limits. Interactive queries default to DefaultQueryLimit; exports
// default to DefaultExportLimit.
const (
	DefaultQueryLimit  = 50
	DefaultExportLimit = 10000
)

// HistoryFilters describes a history query. All set fields combine with AND
// semantics; zero values mean "no constraint". Date bounds are inclusive:
// StartDate is compared against week_start_date and EndDate against
// week_end_date.
type HistoryFilters struct {
	TeamIDs    []string   `json:"team_ids,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Status     string     `json:"status,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	SearchText string     `json:"search_text,omitempty"`
	CreatedBy  string     `json:"created_by,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

// Validate rejects malformed filters before any query executes.
func (f *HistoryFilters) Validate() error {
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return ErrInvalidDateRange
	}
	if f.Status != "" && !validStatuses[f.Status] {
		return ErrInvalidStatus
	}
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}

// EffectiveLimit returns the limit to apply, substituting def when the
// filter leaves it unset.
func (f *HistoryFilters) EffectiveLimit(def int) int {
	if f.Limit > 0 {
		return f.Limit
	}
	return def
}
