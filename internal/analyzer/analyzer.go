// Package analyzer derives trend and anomaly signals from changelog
// history. Analysis is a pure projection over a bounded query result: it is
// never persisted, and it never fails. Any internal error degrades to an
// empty analysis, because trend output is advisory.
package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// Fixed analysis parameters.
const (
	// predictionWindow is the number of most recent entries required
	// before any prediction is emitted.
	predictionWindow = 4
	// gapThresholdDays is the largest period-to-period gap considered
	// normal. Strictly larger gaps are flagged.
	gapThresholdDays = 14

	patternConfidence    = 0.75
	predictionConfidence = 0.6
)

// Querier is the slice of the store the analyzer needs.
type Querier interface {
	Query(ctx context.Context, filters types.HistoryFilters) ([]*types.ChangelogEntry, error)
}

// Analyzer computes TrendAnalysis projections.
type Analyzer struct {
	store Querier
	log   zerolog.Logger
}

// New creates an analyzer over the given store.
func New(store Querier, log zerolog.Logger) *Analyzer {
	return &Analyzer{store: store, log: log}
}

// AnalyzeTrends computes metrics, patterns, predictions, and anomalies for
// a team over the period. It always returns a usable analysis; on any
// failure the result is empty rather than an error.
func (a *Analyzer) AnalyzeTrends(ctx context.Context, teamID string, period types.Period) types.TrendAnalysis {
	entries, err := a.store.Query(ctx, types.HistoryFilters{
		TeamIDs:   []string{teamID},
		StartDate: &period.Start,
		EndDate:   &period.End,
		Limit:     types.DefaultExportLimit,
	})
	if err != nil {
		a.log.Debug().Err(err).Str("team_id", teamID).
			Msg("trend analysis degraded to empty result")
		return types.EmptyAnalysis(teamID, period)
	}

	analysis := types.EmptyAnalysis(teamID, period)
	if len(entries) == 0 {
		return analysis
	}

	// Oldest first for pattern, prediction, and gap scans.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].WeekStartDate.Before(entries[j].WeekStartDate)
	})

	analysis.Metrics = computeMetrics(entries)
	analysis.Patterns = detectPatterns(entries)
	analysis.Predictions = predict(entries)
	analysis.Anomalies = detectGaps(entries)
	return analysis
}

// computeMetrics aggregates the basic counters over entries sorted oldest
// first.
func computeMetrics(entries []*types.ChangelogEntry) map[string]any {
	total := len(entries)
	published := 0
	var contentBytes int
	for _, e := range entries {
		if e.Status == types.StatusPublished {
			published++
		}
		contentBytes += len(e.Content)
	}

	rate := 0.0
	if total > 0 {
		rate = float64(published) / float64(total)
	}

	return map[string]any{
		"total_entries":     total,
		"published_entries": published,
		"publication_rate":  rate,
		"avg_content_size":  float64(contentBytes) / float64(total),
		"first_week_start":  entries[0].WeekStartDate.Format(time.DateOnly),
		"last_week_end":     entries[total-1].WeekEndDate.Format(time.DateOnly),
	}
}

// detectPatterns groups entries by ISO week and reports the weekly
// consistency pattern with a fixed confidence.
func detectPatterns(entries []*types.ChangelogEntry) []types.Pattern {
	weeks := map[string]int{}
	for _, e := range entries {
		year, week := e.WeekStartDate.ISOWeek()
		weeks[fmt.Sprintf("%04d-W%02d", year, week)]++
	}
	if len(weeks) == 0 {
		return []types.Pattern{}
	}

	avg := float64(len(entries)) / float64(len(weeks))
	return []types.Pattern{{
		Name:       "weekly_consistency",
		Confidence: patternConfidence,
		Description: fmt.Sprintf("averages %.1f entries per ISO week across %d weeks",
			avg, len(weeks)),
	}}
}

// predict emits a next-period entry count from the most recent entries.
// Below the window threshold no prediction is fabricated: the map stays
// empty.
func predict(entries []*types.ChangelogEntry) map[string]any {
	if len(entries) < predictionWindow {
		return map[string]any{}
	}
	recent := entries[len(entries)-predictionWindow:]
	return map[string]any{
		"next_week_entries": len(recent),
		"confidence":        predictionConfidence,
		"basis":             fmt.Sprintf("count of the %d most recent entries", predictionWindow),
	}
}

// detectGaps flags adjacent periods whose end-to-start gap exceeds the
// threshold. A gap of exactly the threshold is normal.
func detectGaps(entries []*types.ChangelogEntry) []types.Anomaly {
	anomalies := []types.Anomaly{}
	for i := 0; i+1 < len(entries); i++ {
		cur, next := entries[i], entries[i+1]
		gapDays := int(next.WeekStartDate.Sub(cur.WeekEndDate).Hours() / 24)
		if gapDays <= gapThresholdDays {
			continue
		}
		anomalies = append(anomalies, types.Anomaly{
			Type:     "publication_gap",
			Severity: types.SeverityMedium,
			Description: fmt.Sprintf("%d days without entries between %s and %s",
				gapDays, cur.WeekEndDate.Format(time.DateOnly),
				next.WeekStartDate.Format(time.DateOnly)),
			GapDays:  gapDays,
			GapStart: cur.WeekEndDate,
			GapEnd:   next.WeekStartDate,
		})
	}
	return anomalies
}
