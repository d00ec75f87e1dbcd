package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/smilecare/scheduler-api/internal/model"
)

func (r *scheduleRepository) GetWeeklySchedule(ctx context.Context, dentistID uuid.UUID) (model.WeeklySchedule, error) {
	query := `
		SELECT id, dentist_id, weekday, start_time, end_time, closed
		FROM dentist_schedules
		WHERE dentist_id = $1
	`
	var entries []*model.DaySchedule
	if err := r.db.SelectContext(ctx, &entries, query, dentistID); err != nil {
		return nil, fmt.Errorf("failed to get dentist schedule: %w", err)
	}

	schedule := make(model.WeeklySchedule, len(entries))
	for _, e := range entries {
		schedule[e.Weekday] = e
	}
	return schedule, nil
}
