// Unit tests for export schedule registration.
package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/historian/pkg/types"
)

func TestRegisterAndListExportSchedules(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	schedule := &types.ExportSchedule{
		Frequency: types.FrequencyWeekly,
		Format:    types.FormatCSV,
		Filters:   types.HistoryFilters{TeamIDs: []string{"team-alpha"}},
	}
	id, err := b.RegisterExportSchedule(ctx, schedule)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, schedule.ScheduleID)

	schedules, err := b.ListExportSchedules(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, id, schedules[0].ScheduleID)
	assert.Equal(t, types.FrequencyWeekly, schedules[0].Frequency)
	assert.Equal(t, types.FormatCSV, schedules[0].Format)
	assert.Equal(t, []string{"team-alpha"}, schedules[0].Filters.TeamIDs)
	assert.False(t, schedules[0].CreatedAt.IsZero())
}

func TestRegisterExportScheduleRejectsInvalid(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	_, err := b.RegisterExportSchedule(ctx, &types.ExportSchedule{
		Frequency: "hourly",
		Format:    types.FormatJSON,
	})
	assert.ErrorIs(t, err, types.ErrInvalidFrequency)

	_, err = b.RegisterExportSchedule(ctx, &types.ExportSchedule{
		Frequency: types.FrequencyDaily,
		Format:    "pdf",
	})
	assert.ErrorIs(t, err, types.ErrInvalidFormat)
}

func TestListExportSchedulesEmpty(t *testing.T) {
	b := setupBackend(t)
	schedules, err := b.ListExportSchedules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, schedules)
}
