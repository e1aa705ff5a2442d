// This file implements recurring export schedule registration. Registering
// a schedule is a storage side-effect separate from any one-shot export
// run; a host-level scheduler reads these rows back and triggers the runs.
package sqlite

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/historian/pkg/types"
)

// RegisterExportSchedule stores a recurring export descriptor and returns
// its assigned schedule ID.
func (b *Backend) RegisterExportSchedule(ctx context.Context, schedule *types.ExportSchedule) (string, error) {
	if err := schedule.Validate(); err != nil {
		return "", err
	}
	db, err := b.handle()
	if err != nil {
		return "", err
	}

	if schedule.ScheduleID == "" {
		schedule.ScheduleID = generateUUID()
	}
	schedule.CreatedAt = time.Now().UTC()

	filtersJSON, err := json.Marshal(schedule.Filters)
	if err != nil {
		return "", fmt.Errorf("marshaling schedule filters: %w", err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO export_schedules (schedule_id, frequency, format, filters, created_at) VALUES (?, ?, ?, ?, ?)",
		schedule.ScheduleID, schedule.Frequency, schedule.Format,
		string(filtersJSON), schedule.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("registering export schedule: %w", err)
	}
	return schedule.ScheduleID, nil
}

// ListExportSchedules returns all registered schedules, oldest first.
func (b *Backend) ListExportSchedules(ctx context.Context) ([]types.ExportSchedule, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT schedule_id, frequency, format, filters, created_at FROM export_schedules ORDER BY created_at ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying export schedules: %w", err)
	}
	defer rows.Close()

	schedules := []types.ExportSchedule{}
	for rows.Next() {
		var s types.ExportSchedule
		var filtersJSON, createdAt string
		if err := rows.Scan(&s.ScheduleID, &s.Frequency, &s.Format, &filtersJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning export schedule: %w", err)
		}
		if err := json.Unmarshal([]byte(filtersJSON), &s.Filters); err != nil {
			return nil, fmt.Errorf("parsing schedule filters: %w", err)
		}
		if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing schedule created_at: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating export schedules: %w", err)
	}
	return schedules, nil
}
