package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// fakeQuerier returns a fixed entry set, or an error.
type fakeQuerier struct {
	entries []*types.ChangelogEntry
	err     error
}

func (f *fakeQuerier) Query(ctx context.Context, filters types.HistoryFilters) ([]*types.ChangelogEntry, error) {
	return f.entries, f.err
}

// weeklyEntry builds an entry whose period starts at weekStart and runs
// seven days.
func weeklyEntry(weekStart time.Time, status string) *types.ChangelogEntry {
	return &types.ChangelogEntry{
		EntryID:       "entry-" + weekStart.Format(time.DateOnly),
		TeamID:        "team-alpha",
		WeekStartDate: weekStart,
		WeekEndDate:   weekStart.AddDate(0, 0, 6),
		Version:       1,
		Status:        status,
		Content:       json.RawMessage(`{"summary":"work"}`),
		GeneratedAt:   weekStart,
	}
}

// consecutiveWeeks builds n entries in adjacent weeks starting at start.
func consecutiveWeeks(start time.Time, n int, status string) []*types.ChangelogEntry {
	entries := make([]*types.ChangelogEntry, n)
	for i := 0; i < n; i++ {
		entries[i] = weeklyEntry(start.AddDate(0, 0, 7*i), status)
	}
	return entries
}

func analysisPeriod() types.Period {
	return types.Period{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestAnalyzeTrendsMetrics(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	entries := []*types.ChangelogEntry{
		weeklyEntry(start, types.StatusPublished),
		weeklyEntry(start.AddDate(0, 0, 7), types.StatusDraft),
	}
	a := New(&fakeQuerier{entries: entries}, zerolog.Nop())

	analysis := a.AnalyzeTrends(context.Background(), "team-alpha", analysisPeriod())

	assert.Equal(t, "team-alpha", analysis.TeamID)
	assert.Equal(t, 2, analysis.Metrics["total_entries"])
	assert.Equal(t, 1, analysis.Metrics["published_entries"])
	assert.InDelta(t, 0.5, analysis.Metrics["publication_rate"], 1e-9)
	assert.Equal(t, "2026-01-05", analysis.Metrics["first_week_start"])
	assert.Equal(t, "2026-01-18", analysis.Metrics["last_week_end"])
}

func TestAnalyzeTrendsDegradesToEmpty(t *testing.T) {
	a := New(&fakeQuerier{err: errors.New("backend down")}, zerolog.Nop())

	analysis := a.AnalyzeTrends(context.Background(), "team-alpha", analysisPeriod())

	assert.Equal(t, "team-alpha", analysis.TeamID)
	assert.Empty(t, analysis.Metrics)
	assert.Empty(t, analysis.Patterns)
	assert.Empty(t, analysis.Predictions)
	assert.Empty(t, analysis.Anomalies)
	assert.NotNil(t, analysis.Metrics, "collections are initialized, not nil")
}

func TestAnalyzeTrendsEmptyHistory(t *testing.T) {
	a := New(&fakeQuerier{}, zerolog.Nop())
	analysis := a.AnalyzeTrends(context.Background(), "team-alpha", analysisPeriod())
	assert.Empty(t, analysis.Metrics)
	assert.Empty(t, analysis.Anomalies)
}

func TestPredictionRequiresWindow(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	// Below the window no prediction is emitted.
	a := New(&fakeQuerier{entries: consecutiveWeeks(start, predictionWindow-1, types.StatusPublished)}, zerolog.Nop())
	analysis := a.AnalyzeTrends(context.Background(), "team-alpha", analysisPeriod())
	assert.Empty(t, analysis.Predictions)

	// At the window a prediction appears with its confidence.
	a = New(&fakeQuerier{entries: consecutiveWeeks(start, predictionWindow, types.StatusPublished)}, zerolog.Nop())
	analysis = a.AnalyzeTrends(context.Background(), "team-alpha", analysisPeriod())
	require.NotEmpty(t, analysis.Predictions)
	assert.Equal(t, predictionWindow, analysis.Predictions["next_week_entries"])
	assert.Equal(t, predictionConfidence, analysis.Predictions["confidence"])
}

func TestDetectPatternsWeeklyConsistency(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	a := New(&fakeQuerier{entries: consecutiveWeeks(start, 6, types.StatusPublished)}, zerolog.Nop())

	analysis := a.AnalyzeTrends(context.Background(), "team-alpha", analysisPeriod())

	require.Len(t, analysis.Patterns, 1)
	assert.Equal(t, "weekly_consistency", analysis.Patterns[0].Name)
	assert.Equal(t, patternConfidence, analysis.Patterns[0].Confidence)
}

func TestDetectGaps(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		gapDays  int
		wantGaps int
	}{
		{name: "gap at threshold is normal", gapDays: gapThresholdDays, wantGaps: 0},
		{name: "gap above threshold flagged", gapDays: gapThresholdDays + 1, wantGaps: 1},
		{name: "adjacent weeks have no gap", gapDays: 1, wantGaps: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := weeklyEntry(start, types.StatusPublished)
			second := weeklyEntry(first.WeekEndDate.AddDate(0, 0, tt.gapDays), types.StatusPublished)
			a := New(&fakeQuerier{entries: []*types.ChangelogEntry{first, second}}, zerolog.Nop())

			analysis := a.AnalyzeTrends(context.Background(), "team-alpha", analysisPeriod())

			require.Len(t, analysis.Anomalies, tt.wantGaps)
			if tt.wantGaps > 0 {
				anomaly := analysis.Anomalies[0]
				assert.Equal(t, "publication_gap", anomaly.Type)
				assert.Equal(t, types.SeverityMedium, anomaly.Severity)
				assert.Equal(t, tt.gapDays, anomaly.GapDays)
				assert.True(t, anomaly.GapStart.Equal(first.WeekEndDate))
				assert.True(t, anomaly.GapEnd.Equal(second.WeekStartDate))
			}
		})
	}
}

func TestAnalyzeTrendsSortsUnorderedInput(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	entries := consecutiveWeeks(start, 3, types.StatusPublished)
	// Reverse to mimic the store's newest-first ordering.
	entries[0], entries[2] = entries[2], entries[0]

	a := New(&fakeQuerier{entries: entries}, zerolog.Nop())
	analysis := a.AnalyzeTrends(context.Background(), "team-alpha", analysisPeriod())

	assert.Equal(t, "2026-01-05", analysis.Metrics["first_week_start"])
	assert.Empty(t, analysis.Anomalies, "adjacent weeks in any input order have no gaps")
}
