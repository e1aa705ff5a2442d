// Integration-style tests exercising the store together with the analyzer.
package sqlite

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/historian/internal/analyzer"
	"github.com/mesh-intelligence/historian/pkg/types"
)

// Two consecutive reporting periods for one team: queries return both with
// the newer period first, and trend analysis counts both.
func TestTwoPeriodTeamScenario(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan8 := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	for _, weekStart := range []time.Time{jan1, jan8} {
		result := b.Store(ctx, &types.ChangelogEntry{
			TeamID:        "eng",
			WeekStartDate: weekStart,
			WeekEndDate:   weekStart.AddDate(0, 0, 6),
			Status:        types.StatusPublished,
			Content:       json.RawMessage(`{"summary":"weekly report"}`),
			GeneratedAt:   weekStart,
		}, "generator")
		require.True(t, result.Success, "errors: %v", result.Errors)
	}

	entries, err := b.Query(ctx, types.HistoryFilters{TeamIDs: []string{"eng"}})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].WeekStartDate.Equal(jan8), "newer period first")
	assert.True(t, entries[1].WeekStartDate.Equal(jan1))

	a := analyzer.New(b, zerolog.Nop())
	analysis := a.AnalyzeTrends(ctx, "eng", types.Period{
		Start: jan1,
		End:   jan8.AddDate(0, 0, 6),
	})
	assert.Equal(t, 2, analysis.Metrics["total_entries"])
	assert.Equal(t, 2, analysis.Metrics["published_entries"])
	assert.Empty(t, analysis.Anomalies)
}
