// Trends command: derived trend and anomaly analysis for a team.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/historian/internal/analyzer"
	"github.com/mesh-intelligence/historian/internal/logging"
	"github.com/mesh-intelligence/historian/pkg/types"
)

var trendsWeeks int

var trendsCmd = &cobra.Command{
	Use:   "trends <team-id>",
	Short: "Analyze trends and anomalies for a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		end := time.Now().UTC()
		period := types.Period{
			Start: end.AddDate(0, 0, -7*trendsWeeks),
			End:   end,
		}

		a := analyzer.New(backend, logging.New(backend.Config().LogLevel))
		analysis := a.AnalyzeTrends(cmd.Context(), args[0], period)
		return printResult(analysis, func() {
			fmt.Printf("team %s, %s .. %s\n", analysis.TeamID,
				analysis.Period.Start.Format(time.DateOnly),
				analysis.Period.End.Format(time.DateOnly))
			for k, v := range analysis.Metrics {
				fmt.Printf("  %s: %v\n", k, v)
			}
			for _, p := range analysis.Patterns {
				fmt.Printf("  pattern %s (%.2f): %s\n", p.Name, p.Confidence, p.Description)
			}
			for k, v := range analysis.Predictions {
				fmt.Printf("  prediction %s: %v\n", k, v)
			}
			for _, an := range analysis.Anomalies {
				fmt.Printf("  anomaly %s [%s]: %s\n", an.Type, an.Severity, an.Description)
			}
		})
	},
}

func init() {
	trendsCmd.Flags().IntVar(&trendsWeeks, "weeks", 12, "analysis window in weeks")
}
