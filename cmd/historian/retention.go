// Retention commands: policy management and retention passes.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/historian/internal/logging"
	"github.com/mesh-intelligence/historian/internal/retention"
	"github.com/mesh-intelligence/historian/pkg/types"
)

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Manage retention policies and run retention passes",
}

var policyFlags struct {
	archiveDays    int
	deleteDays     int
	compressDays   int
	legalHold      bool
	complianceTags []string
}

var retentionSetCmd = &cobra.Command{
	Use:   "set <team-id>",
	Short: "Create or replace a team's retention policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		policy := types.RetentionPolicy{
			TeamID:            args[0],
			ArchiveAfterDays:  policyFlags.archiveDays,
			DeleteAfterDays:   policyFlags.deleteDays,
			CompressAfterDays: policyFlags.compressDays,
			LegalHold:         policyFlags.legalHold,
			ComplianceTags:    policyFlags.complianceTags,
		}
		if err := backend.SetRetentionPolicy(cmd.Context(), policy); err != nil {
			return err
		}
		fmt.Printf("policy saved for team %s\n", args[0])
		return nil
	},
}

var retentionShowCmd = &cobra.Command{
	Use:   "show [team-id]",
	Short: "Show one team's policy, or all policies",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		if len(args) == 1 {
			policy, err := backend.GetRetentionPolicy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(policy, func() { printPolicy(*policy) })
		}

		policies, err := backend.ListRetentionPolicies(cmd.Context())
		if err != nil {
			return err
		}
		return printResult(policies, func() {
			for _, p := range policies {
				printPolicy(p)
			}
		})
	},
}

var retentionApplyTeam string

var retentionApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run a retention pass for one team or all teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return err
		}
		defer backend.Detach()

		manager := retention.New(backend, logging.New(backend.Config().LogLevel))

		var results []types.RetentionResult
		if retentionApplyTeam != "" {
			policy, err := backend.GetRetentionPolicy(cmd.Context(), retentionApplyTeam)
			if err != nil {
				return err
			}
			results = []types.RetentionResult{manager.Apply(cmd.Context(), *policy)}
		} else {
			results = manager.ApplyAll(cmd.Context())
		}

		var failures []string
		if printErr := printResult(results, func() {
			for _, r := range results {
				fmt.Printf("team %s: processed=%d archived=%d compressed=%d deleted=%d skipped=%d errors=%d\n",
					r.TeamID, r.Processed, r.Archived, r.Compressed, r.Deleted, r.Skipped, len(r.Errors))
			}
		}); printErr != nil {
			return printErr
		}
		for _, r := range results {
			failures = append(failures, r.Errors...)
		}
		if len(failures) > 0 {
			return errors.New(strings.Join(failures, "; "))
		}
		return nil
	},
}

func printPolicy(p types.RetentionPolicy) {
	fmt.Printf("%s: archive=%dd delete=%dd compress=%dd legal_hold=%v tags=%v\n",
		p.TeamID, p.ArchiveAfterDays, p.DeleteAfterDays, p.CompressAfterDays,
		p.LegalHold, p.ComplianceTags)
}

func init() {
	retentionSetCmd.Flags().IntVar(&policyFlags.archiveDays, "archive-after", 90, "archive entries older than this many days")
	retentionSetCmd.Flags().IntVar(&policyFlags.deleteDays, "delete-after", 365, "delete entries older than this many days")
	retentionSetCmd.Flags().IntVar(&policyFlags.compressDays, "compress-after", 0, "compress entries older than this many days (0 disables)")
	retentionSetCmd.Flags().BoolVar(&policyFlags.legalHold, "legal-hold", false, "suppress all retention actions for this team")
	retentionSetCmd.Flags().StringSliceVar(&policyFlags.complianceTags, "compliance-tag", nil, "compliance tags (repeatable)")

	retentionApplyCmd.Flags().StringVar(&retentionApplyTeam, "team", "", "apply only this team's policy")

	retentionCmd.AddCommand(retentionSetCmd)
	retentionCmd.AddCommand(retentionShowCmd)
	retentionCmd.AddCommand(retentionApplyCmd)
}
