package types

import "time"

// Export formats. Format tokens are part of the wire contract.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// validFormats is the set of recognized export formats.
var validFormats = map[string]bool{
	FormatJSON:     true,
	FormatCSV:      true,
	FormatMarkdown: true,
}

// ValidFormat reports whether f is a recognized export format token.
func ValidFormat(f string) bool {
	return validFormats[f]
}

// Schedule frequencies for recurring exports.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

var validFrequencies = map[string]bool{
	FrequencyDaily:   true,
	FrequencyWeekly:  true,
	FrequencyMonthly: true,
}

// ExportSchedule registers a recurring export. Registration is a storage
// side-effect separate from any one-shot run.
type ExportSchedule struct {
	ScheduleID string         `json:"schedule_id"`
	Frequency  string         `json:"frequency"`
	Format     string         `json:"format"`
	Filters    HistoryFilters `json:"filters"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Validate checks the schedule descriptor.
func (s *ExportSchedule) Validate() error {
	if !validFrequencies[s.Frequency] {
		return ErrInvalidFrequency
	}
	if !validFormats[s.Format] {
		return ErrInvalidFormat
	}
	return s.Filters.Validate()
}

// ExportConfig describes one export request.
type ExportConfig struct {
	Format          string          `json:"format"`
	Filters         HistoryFilters  `json:"filters"`
	IncludeMetadata bool            `json:"include_metadata"`
	Compress        bool            `json:"compress"`
	Schedule        *ExportSchedule `json:"schedule,omitempty"`
}

// Validate rejects malformed export requests before any query executes.
func (c *ExportConfig) Validate() error {
	if !validFormats[c.Format] {
		return ErrInvalidFormat
	}
	if c.Schedule != nil {
		if err := c.Schedule.Validate(); err != nil {
			return err
		}
	}
	return c.Filters.Validate()
}

// ExportResult reports the outcome of an export run.
type ExportResult struct {
	Success     bool     `json:"success"`
	ExportID    string   `json:"export_id,omitempty"`
	FilePath    string   `json:"file_path,omitempty"`
	FileSize    int64    `json:"file_size,omitempty"`
	RecordCount int      `json:"record_count"`
	Message     string   `json:"message"`
	Errors      []string `json:"errors,omitempty"`
}
