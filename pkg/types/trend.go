package types

import "time"

// Period is an inclusive analysis window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Pattern is a recurring publication pattern detected in a team's history.
type Pattern struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Anomaly severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Anomaly flags an irregularity in a team's publication history.
type Anomaly struct {
	Type        string    `json:"type"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	GapDays     int       `json:"gap_days,omitempty"`
	GapStart    time.Time `json:"gap_start,omitempty"`
	GapEnd      time.Time `json:"gap_end,omitempty"`
}

// TrendAnalysis is a derived projection over a team's history for a period.
// It is never persisted and always computable from a finite entry set.
type TrendAnalysis struct {
	TeamID      string         `json:"team_id"`
	Period      Period         `json:"period"`
	Metrics     map[string]any `json:"metrics"`
	Patterns    []Pattern      `json:"patterns"`
	Predictions map[string]any `json:"predictions"`
	Anomalies   []Anomaly      `json:"anomalies"`
}

// EmptyAnalysis returns a degraded analysis with initialized empty
// collections. Analyzer failures return this rather than an error; trend
// output is advisory and must never block the caller.
func EmptyAnalysis(teamID string, period Period) TrendAnalysis {
	return TrendAnalysis{
		TeamID:      teamID,
		Period:      period,
		Metrics:     map[string]any{},
		Patterns:    []Pattern{},
		Predictions: map[string]any{},
		Anomalies:   []Anomaly{},
	}
}
