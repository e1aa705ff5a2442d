package retention

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

// fakeStore records transition calls and simulates per-entry state.
type fakeStore struct {
	entries  []*types.ChangelogEntry
	policies []types.RetentionPolicy

	archived   map[string]int
	compressed map[string]int
	deleted    map[string]int

	archiveErr error
}

func newFakeStore(entries ...*types.ChangelogEntry) *fakeStore {
	return &fakeStore{
		entries:    entries,
		archived:   map[string]int{},
		compressed: map[string]int{},
		deleted:    map[string]int{},
	}
}

func (f *fakeStore) Query(ctx context.Context, filters types.HistoryFilters) ([]*types.ChangelogEntry, error) {
	return f.entries, nil
}

func (f *fakeStore) ListRetentionPolicies(ctx context.Context) ([]types.RetentionPolicy, error) {
	return f.policies, nil
}

func (f *fakeStore) Archive(ctx context.Context, entryID, actor string, opts types.TransitionOptions) (bool, error) {
	if f.archiveErr != nil {
		return false, f.archiveErr
	}
	f.archived[entryID]++
	for _, e := range f.entries {
		if e.EntryID == entryID {
			if e.Status == types.StatusArchived {
				return false, nil
			}
			e.Status = types.StatusArchived
		}
	}
	return true, nil
}

func (f *fakeStore) Compress(ctx context.Context, entryID, actor string, opts types.TransitionOptions) (bool, error) {
	f.compressed[entryID]++
	return f.compressed[entryID] == 1, nil
}

func (f *fakeStore) Delete(ctx context.Context, entryID, actor string, opts types.TransitionOptions) error {
	f.deleted[entryID]++
	return nil
}

// agedEntry builds an entry whose generated_at lies ageDays in the past
// relative to the fixed clock below.
func agedEntry(id string, ageDays int) *types.ChangelogEntry {
	generated := fixedNow().AddDate(0, 0, -ageDays)
	return &types.ChangelogEntry{
		EntryID:       id,
		TeamID:        "team-alpha",
		WeekStartDate: generated,
		WeekEndDate:   generated.AddDate(0, 0, 6),
		Version:       1,
		Status:        types.StatusPublished,
		Content:       json.RawMessage(`{"summary":"old work"}`),
		GeneratedAt:   generated,
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newManager(store Store) *Manager {
	m := New(store, zerolog.Nop())
	m.now = fixedNow
	return m
}

func standardPolicy() types.RetentionPolicy {
	return types.RetentionPolicy{
		TeamID:            "team-alpha",
		ArchiveAfterDays:  90,
		CompressAfterDays: 180,
		DeleteAfterDays:   365,
	}
}

func TestApplyThresholds(t *testing.T) {
	store := newFakeStore(
		agedEntry("fresh", 10),
		agedEntry("archivable", 100),
		agedEntry("compressible", 200),
		agedEntry("expired", 400),
	)
	m := newManager(store)

	result := m.Apply(context.Background(), standardPolicy())

	assert.True(t, result.Success)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 3, result.Archived, "everything past the archive threshold")
	assert.Equal(t, 2, result.Compressed)
	assert.Equal(t, 1, result.Deleted)

	assert.Zero(t, store.archived["fresh"])
	assert.Equal(t, 1, store.archived["archivable"])
	assert.Equal(t, 1, store.compressed["compressible"])
	assert.Equal(t, 1, store.deleted["expired"])
	assert.Zero(t, store.deleted["compressible"])
}

func TestApplyIsIdempotent(t *testing.T) {
	store := newFakeStore(agedEntry("archivable", 100), agedEntry("compressible", 200))
	m := newManager(store)

	first := m.Apply(context.Background(), standardPolicy())
	require.True(t, first.Success)
	assert.Equal(t, 2, first.Archived)
	assert.Equal(t, 1, first.Compressed)

	// A second pass over the same corpus performs no new actions.
	second := m.Apply(context.Background(), standardPolicy())
	assert.True(t, second.Success)
	assert.Zero(t, second.Archived)
	assert.Zero(t, second.Compressed)
	assert.Zero(t, second.Deleted)
}

func TestApplyLegalHoldSkipsEverything(t *testing.T) {
	store := newFakeStore(agedEntry("expired", 400))
	m := newManager(store)

	policy := standardPolicy()
	policy.LegalHold = true
	result := m.Apply(context.Background(), policy)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Archived)
	assert.Zero(t, result.Deleted)
	assert.Empty(t, store.archived)
	assert.Empty(t, store.deleted)
}

func TestApplyCompressionDisabled(t *testing.T) {
	store := newFakeStore(agedEntry("old", 200))
	m := newManager(store)

	policy := standardPolicy()
	policy.CompressAfterDays = 0
	result := m.Apply(context.Background(), policy)

	assert.True(t, result.Success)
	assert.Zero(t, result.Compressed)
	assert.Empty(t, store.compressed)
}

func TestApplyCollectsPartialFailures(t *testing.T) {
	store := newFakeStore(agedEntry("a", 100), agedEntry("b", 400))
	store.archiveErr = errors.New("archive blew up")
	m := newManager(store)

	result := m.Apply(context.Background(), standardPolicy())

	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 2, "one archive failure per eligible entry")
	assert.Equal(t, 1, result.Deleted, "the pass continues past failures")
}

func TestApplyRejectsInvalidPolicy(t *testing.T) {
	m := newManager(newFakeStore())
	result := m.Apply(context.Background(), types.RetentionPolicy{TeamID: "team-alpha"})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}

func TestApplyHonorsCancellation(t *testing.T) {
	store := newFakeStore(agedEntry("a", 400), agedEntry("b", 400))
	m := newManager(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := m.Apply(ctx, standardPolicy())

	assert.False(t, result.Success)
	assert.Empty(t, store.deleted, "no actions after cancellation")
}

func TestApplyAll(t *testing.T) {
	store := newFakeStore(agedEntry("old", 400))
	store.policies = []types.RetentionPolicy{standardPolicy()}
	m := newManager(store)

	results := m.ApplyAll(context.Background())

	require.Len(t, results, 1)
	assert.Equal(t, "team-alpha", results[0].TeamID)
	assert.Equal(t, 1, results[0].Deleted)
}
