package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/scheduler-api/internal/model"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// createDispatchEvents enqueues events through ex, which is either the
// pool or the mutation's transaction. Sharing the transaction keeps the
// intent and the status change atomic.
func createDispatchEvents(ctx context.Context, ex execer, events []*model.DispatchEvent) error {
	query := `
		INSERT INTO dispatch_events (
			id, event_type, payload, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, event := range events {
		if event.Payload == nil {
			return fmt.Errorf("event payload cannot be nil")
		}

		event.ID = uuid.New()
		event.Status = model.DispatchStatusPending
		event.CreatedAt = time.Now()
		event.UpdatedAt = time.Now()

		_, err := ex.ExecContext(ctx, query,
			event.ID,
			event.EventType,
			event.Payload,
			event.Status,
			event.CreatedAt,
			event.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create dispatch event: %w", err)
		}
	}
	return nil
}

func (r *dispatchRepository) Create(ctx context.Context, event *model.DispatchEvent) error {
	return createDispatchEvents(ctx, r.db, []*model.DispatchEvent{event})
}

func (r *dispatchRepository) GetPendingWithLock(ctx context.Context, limit int) ([]*model.DispatchEvent, error) {
	query := `
		SELECT id, event_type, payload, status, error_message,
			   retry_count, retry_at, processed_at, created_at, updated_at
		FROM dispatch_events
		WHERE status IN ('pending', 'retry')
		AND (retry_at IS NULL OR retry_at <= NOW())
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`
	var events []*model.DispatchEvent
	err := r.db.SelectContext(ctx, &events, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending dispatch events: %w", err)
	}
	return events, nil
}

func (r *dispatchRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE dispatch_events
		SET status = 'processed', processed_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark dispatch event processed: %w", err)
	}
	return nil
}

// MarkFailed records the failure; a non-nil retryAt schedules another
// attempt, nil retryAt parks the event as failed.
func (r *dispatchRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error {
	status := model.DispatchStatusFailed
	if retryAt != nil {
		status = model.DispatchStatusRetry
	}

	query := `
		UPDATE dispatch_events
		SET status = $1,
			error_message = $2,
			retry_count = retry_count + 1,
			retry_at = $3,
			updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, errorMessage, retryAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark dispatch event failed: %w", err)
	}
	return nil
}

func (r *dispatchRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM dispatch_events
		WHERE status = 'processed'
		AND processed_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return result.RowsAffected()
}
