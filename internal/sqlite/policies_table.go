// This file implements per-team retention policy storage. Policies are the
// durable source of truth for the retention manager and legal-hold checks.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// SetRetentionPolicy creates or replaces the policy for a team.
func (b *Backend) SetRetentionPolicy(ctx context.Context, policy types.RetentionPolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	db, err := b.handle()
	if err != nil {
		return err
	}

	tagsJSON, err := json.Marshal(policy.ComplianceTags)
	if err != nil {
		return fmt.Errorf("marshaling compliance tags: %w", err)
	}
	if policy.ComplianceTags == nil {
		tagsJSON = []byte("[]")
	}

	legalHold := 0
	if policy.LegalHold {
		legalHold = 1
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO retention_policies
    (team_id, archive_after_days, delete_after_days, compress_after_days, legal_hold, compliance_tags, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(team_id) DO UPDATE SET
        archive_after_days = excluded.archive_after_days,
        delete_after_days = excluded.delete_after_days,
        compress_after_days = excluded.compress_after_days,
        legal_hold = excluded.legal_hold,
        compliance_tags = excluded.compliance_tags,
        updated_at = excluded.updated_at`,
		policy.TeamID, policy.ArchiveAfterDays, policy.DeleteAfterDays,
		policy.CompressAfterDays, legalHold, string(tagsJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving retention policy for team %s: %w", policy.TeamID, err)
	}
	return nil
}

// GetRetentionPolicy returns the policy for a team, or ErrPolicyNotFound.
func (b *Backend) GetRetentionPolicy(ctx context.Context, teamID string) (*types.RetentionPolicy, error) {
	if teamID == "" {
		return nil, types.ErrTeamIDEmpty
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		"SELECT team_id, archive_after_days, delete_after_days, compress_after_days, legal_hold, compliance_tags, updated_at FROM retention_policies WHERE team_id = ?",
		teamID,
	)
	policy, err := hydratePolicy(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.ErrPolicyNotFound
		}
		return nil, fmt.Errorf("getting retention policy for team %s: %w", teamID, err)
	}
	return policy, nil
}

// ListRetentionPolicies returns all stored policies.
func (b *Backend) ListRetentionPolicies(ctx context.Context) ([]types.RetentionPolicy, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT team_id, archive_after_days, delete_after_days, compress_after_days, legal_hold, compliance_tags, updated_at FROM retention_policies ORDER BY team_id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying retention policies: %w", err)
	}
	defer rows.Close()

	policies := []types.RetentionPolicy{}
	for rows.Next() {
		policy, err := hydratePolicy(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("hydrating retention policy: %w", err)
		}
		policies = append(policies, *policy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating retention policies: %w", err)
	}
	return policies, nil
}

// hydratePolicy scans one retention_policies row.
func hydratePolicy(scan func(...any) error) (*types.RetentionPolicy, error) {
	var p types.RetentionPolicy
	var legalHold int
	var tagsJSON, updatedAt string
	err := scan(&p.TeamID, &p.ArchiveAfterDays, &p.DeleteAfterDays,
		&p.CompressAfterDays, &legalHold, &tagsJSON, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.LegalHold = legalHold != 0
	if err := json.Unmarshal([]byte(tagsJSON), &p.ComplianceTags); err != nil {
		return nil, fmt.Errorf("parsing compliance tags: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
