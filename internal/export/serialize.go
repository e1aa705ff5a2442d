// This file serializes entry sets into the export formats. Datetime fields
// render as RFC 3339 strings and enums as their lowercase string tokens in
// every format.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// serialize renders entries in the requested format.
func serialize(format string, entries []*types.ChangelogEntry, includeMetadata bool) ([]byte, error) {
	switch format {
	case types.FormatJSON:
		return serializeJSON(entries, includeMetadata)
	case types.FormatCSV:
		return serializeCSV(entries)
	case types.FormatMarkdown:
		return serializeMarkdown(entries), nil
	default:
		return nil, types.ErrInvalidFormat
	}
}

// serializeJSON renders one JSON array with a record per entry. The result
// round-trips back into []ChangelogEntry, which backup restore relies on.
func serializeJSON(entries []*types.ChangelogEntry, includeMetadata bool) ([]byte, error) {
	out := make([]*types.ChangelogEntry, len(entries))
	if includeMetadata {
		copy(out, entries)
	} else {
		for i, e := range entries {
			stripped := *e
			stripped.Metadata = nil
			out[i] = &stripped
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling entries: %w", err)
	}
	return data, nil
}

// serializeCSV renders the flattened tabular subset.
func serializeCSV(entries []*types.ChangelogEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "team_id", "week_start_date", "status", "version"}); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.EntryID,
			e.TeamID,
			e.WeekStartDate.Format(time.DateOnly),
			e.Status,
			strconv.Itoa(e.Version),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing CSV record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// serializeMarkdown renders a human-readable document with one section per
// entry.
func serializeMarkdown(entries []*types.ChangelogEntry) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Changelog History Export\n\n")
	fmt.Fprintf(&buf, "%d entries\n\n", len(entries))

	for _, e := range entries {
		fmt.Fprintf(&buf, "## %s: %s to %s (v%d)\n\n",
			e.TeamID,
			e.WeekStartDate.Format(time.DateOnly),
			e.WeekEndDate.Format(time.DateOnly),
			e.Version)
		fmt.Fprintf(&buf, "- Status: %s\n", e.Status)
		fmt.Fprintf(&buf, "- Generated: %s\n", e.GeneratedAt.Format(time.RFC3339))
		if e.PublishedAt != nil {
			fmt.Fprintf(&buf, "- Published: %s\n", e.PublishedAt.Format(time.RFC3339))
		}
		if e.CreatedBy != "" {
			fmt.Fprintf(&buf, "- Author: %s\n", e.CreatedBy)
		}
		if len(e.Tags) > 0 {
			fmt.Fprintf(&buf, "- Tags: %v\n", e.Tags)
		}
		buf.WriteString("\n```json\n")
		buf.Write(e.Content)
		buf.WriteString("\n```\n\n")
	}
	return buf.Bytes()
}
