// This file implements the history query engine: stateless translation of
// HistoryFilters into a single SQL query with AND semantics, ordered by
// week_start_date descending and paginated by limit/offset.
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// Query returns entries matching the filters. All set filters combine with
// AND. An empty result is an empty slice, never an error; malformed filters
// are rejected before any query executes.
func (b *Backend) Query(ctx context.Context, filters types.HistoryFilters) ([]*types.ChangelogEntry, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	query, args := buildEntryQuery(filters)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()
	return b.collectEntries(rows)
}

// buildEntryQuery translates validated filters into SQL.
func buildEntryQuery(f types.HistoryFilters) (string, []any) {
	query := selectEntryColumns
	var conditions []string
	var args []any

	if len(f.TeamIDs) > 0 {
		placeholders := make([]string, len(f.TeamIDs))
		for i, id := range f.TeamIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		conditions = append(conditions, "team_id IN ("+strings.Join(placeholders, ", ")+")")
	}

	// Inclusive bounds: the start bound constrains week_start_date, the end
	// bound constrains week_end_date.
	if f.StartDate != nil {
		conditions = append(conditions, "week_start_date >= ?")
		args = append(args, f.StartDate.Format(time.DateOnly))
	}
	if f.EndDate != nil {
		conditions = append(conditions, "week_end_date <= ?")
		args = append(args, f.EndDate.Format(time.DateOnly))
	}

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.CreatedBy != "" {
		conditions = append(conditions, "created_by = ?")
		args = append(args, f.CreatedBy)
	}

	// Tag containment: any of the requested tags appears in the entry's
	// tags JSON array.
	if len(f.Tags) > 0 {
		placeholders := make([]string, len(f.Tags))
		for i, tag := range f.Tags {
			placeholders[i] = "?"
			args = append(args, tag)
		}
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM json_each(changelog_entries.tags) WHERE json_each.value IN ("+
				strings.Join(placeholders, ", ")+"))")
	}

	// Free text is a substring filter over the stored content, not ranked
	// relevance. Entries compressed in place no longer match; search covers
	// the live, uncompressed corpus.
	if f.SearchText != "" {
		conditions = append(conditions, `content LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(f.SearchText)+"%")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY week_start_date DESC, version DESC"
	query += fmt.Sprintf(" LIMIT %d", f.EffectiveLimit(types.DefaultQueryLimit))
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}
	return query, args
}

// escapeLike escapes LIKE metacharacters in a user-supplied search string.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
