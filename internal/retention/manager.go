// Package retention enforces per-team data lifecycle policy: archive,
// compress, and delete thresholds evaluated independently per entry, with
// legal holds suppressing every action. A pass has partial-failure
// semantics: per-entry errors are collected and the pass continues.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// passLimit bounds how many entries one pass loads per team.
const passLimit = 1000000

// Store is the slice of the backend the retention manager needs.
type Store interface {
	Query(ctx context.Context, filters types.HistoryFilters) ([]*types.ChangelogEntry, error)
	ListRetentionPolicies(ctx context.Context) ([]types.RetentionPolicy, error)
	Archive(ctx context.Context, entryID, actor string, opts types.TransitionOptions) (bool, error)
	Compress(ctx context.Context, entryID, actor string, opts types.TransitionOptions) (bool, error)
	Delete(ctx context.Context, entryID, actor string, opts types.TransitionOptions) error
}

// Manager runs retention passes against a store.
type Manager struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// New creates a retention manager.
func New(store Store, log zerolog.Logger) *Manager {
	return &Manager{store: store, log: log, now: time.Now}
}

// Apply runs one retention pass for the policy's team. The archive,
// compress, and delete checks are independent: an entry old enough for
// several actions receives all of them in the same pass (a deletion ends
// processing for that entry because the row is gone). Re-running a pass
// with no new entries performs no additional actions.
func (m *Manager) Apply(ctx context.Context, policy types.RetentionPolicy) types.RetentionResult {
	result := types.RetentionResult{TeamID: policy.TeamID}
	if err := policy.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	entries, err := m.store.Query(ctx, types.HistoryFilters{
		TeamIDs: []string{policy.TeamID},
		Limit:   passLimit,
	})
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Processed = len(entries)

	// Legal hold suppresses every action regardless of age.
	if policy.LegalHold {
		result.Skipped = len(entries)
		result.Success = true
		m.log.Info().Str("team_id", policy.TeamID).Int("entries", len(entries)).
			Msg("retention pass skipped: legal hold")
		return result
	}

	opts := types.TransitionOptions{EnforceLegalHold: true}
	now := m.now().UTC()

	for _, entry := range entries {
		if ctx.Err() != nil {
			// Cancellation leaves completed work in place; re-running the
			// pass resumes it.
			result.Errors = append(result.Errors, ctx.Err().Error())
			break
		}

		ageDays := int(now.Sub(entry.GeneratedAt).Hours() / 24)

		if ageDays >= policy.ArchiveAfterDays && entry.Status != types.StatusArchived {
			changed, err := m.store.Archive(ctx, entry.EntryID, types.ActorRetention, opts)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("archive %s: %v", entry.EntryID, err))
			} else if changed {
				result.Archived++
			}
		}

		if policy.CompressAfterDays > 0 && ageDays >= policy.CompressAfterDays {
			changed, err := m.store.Compress(ctx, entry.EntryID, types.ActorRetention, opts)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("compress %s: %v", entry.EntryID, err))
			} else if changed {
				result.Compressed++
			}
		}

		if ageDays >= policy.DeleteAfterDays {
			if err := m.store.Delete(ctx, entry.EntryID, types.ActorRetention, opts); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", entry.EntryID, err))
			} else {
				result.Deleted++
			}
		}
	}

	result.Success = len(result.Errors) == 0
	m.log.Info().Str("team_id", policy.TeamID).
		Int("processed", result.Processed).
		Int("archived", result.Archived).
		Int("compressed", result.Compressed).
		Int("deleted", result.Deleted).
		Int("errors", len(result.Errors)).
		Msg("retention pass complete")
	return result
}

// ApplyAll runs a pass for every stored policy.
func (m *Manager) ApplyAll(ctx context.Context) []types.RetentionResult {
	policies, err := m.store.ListRetentionPolicies(ctx)
	if err != nil {
		return []types.RetentionResult{{
			Errors: []string{err.Error()},
		}}
	}

	results := make([]types.RetentionResult, 0, len(policies))
	for _, policy := range policies {
		if ctx.Err() != nil {
			break
		}
		results = append(results, m.Apply(ctx, policy))
	}
	return results
}
