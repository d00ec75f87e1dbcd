package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/smilecare/scheduler-api/internal/model"
	apperrors "github.com/smilecare/scheduler-api/pkg/errors"
)

// uniqueViolation is the Postgres error code raised by the partial unique
// index over active appointments.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// CreateActive inserts a new pending appointment together with its
// dispatch events, in one transaction. The active-slot unique index makes
// the conflict check and the insert one atomic unit; a concurrent booking
// for the same tuple surfaces here as a conflict.
func (r *appointmentRepository) CreateActive(ctx context.Context, appointment *model.Appointment, events []*model.DispatchEvent) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, dentist_id, service_id,
			date, time_slot, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.PatientID,
			appointment.DentistID,
			appointment.ServiceID,
			appointment.Date,
			appointment.TimeSlot,
			appointment.Status,
			appointment.Notes,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict("slot already booked", err)
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return createDispatchEvents(ctx, tx, events)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, dentist_id, service_id,
			   date, time_slot, status, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

// UpdateStatus applies the status change as a single atomic UPDATE and
// enqueues the resulting dispatch events in the same transaction.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string, events []*model.DispatchEvent) error {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4
	`
	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, status, cancelReason, time.Now(), id)
		if err != nil {
			return fmt.Errorf("failed to update appointment status: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}
		return createDispatchEvents(ctx, tx, events)
	})
}

// Reschedule moves the appointment to a new tuple without touching its
// status. The unique index rejects a move into an occupied slot.
func (r *appointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, date time.Time, timeSlot string, events []*model.DispatchEvent) error {
	query := `
		UPDATE appointments
		SET date = $1, time_slot = $2, updated_at = $3
		WHERE id = $4
	`
	return r.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, date, timeSlot, time.Now(), id)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict("slot already booked", err)
			}
			return fmt.Errorf("failed to reschedule appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}
		return createDispatchEvents(ctx, tx, events)
	})
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters, now time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, dentist_id, service_id,
			   date, time_slot, status, notes, cancel_reason,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.DentistID != uuid.Nil {
		query += fmt.Sprintf(" AND dentist_id = $%d", argCount)
		args = append(args, filters.DentistID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND date <= $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	if filters.Today {
		query += fmt.Sprintf(" AND date >= $%d AND date < $%d", argCount, argCount+1)
		args = append(args, model.Day(now), model.Day(now).AddDate(0, 0, 1))
		argCount += 2
	} else if filters.Upcoming {
		query += fmt.Sprintf(" AND date >= $%d", argCount)
		args = append(args, model.Day(now))
		argCount++
	}

	query += " ORDER BY date ASC, time_slot ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListActiveSlots returns the slot tokens occupied by active appointments
// for one dentist/date, in slot order.
func (r *appointmentRepository) ListActiveSlots(ctx context.Context, dentistID uuid.UUID, date time.Time) ([]string, error) {
	query := `
		SELECT time_slot
		FROM appointments
		WHERE dentist_id = $1
		AND date = $2
		AND status IN ('pending', 'confirmed')
		ORDER BY time_slot ASC
	`
	var slots []string
	err := r.db.SelectContext(ctx, &slots, query, dentistID, model.Day(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list active slots: %w", err)
	}
	return slots, nil
}

func (r *appointmentRepository) IsSlotTaken(ctx context.Context, dentistID uuid.UUID, date time.Time, timeSlot string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE dentist_id = $1
			AND date = $2
			AND time_slot = $3
			AND status IN ('pending', 'confirmed')
	`
	args := []interface{}{dentistID, model.Day(date), timeSlot}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	query += ")"

	var taken bool
	err := r.db.GetContext(ctx, &taken, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check slot occupancy: %w", err)
	}
	return taken, nil
}

// BulkUpdateStatus forcefully sets the status for all ids in one batch
// UPDATE. No per-row state-machine validation happens here; that is the
// bulk path's documented contract. cancel_reason is written on every row,
// so confirm/complete clear any stale reason left by an earlier
// cancellation. Re-activating a row whose slot has since been rebooked
// trips the active-slot unique index and fails the whole batch with a
// conflict.
func (r *appointmentRepository) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status model.AppointmentStatus, cancelReason *string) (int64, error) {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = ANY($4)
	`
	result, err := r.db.ExecContext(ctx, query, status, cancelReason, time.Now(), pq.Array(uuidStrings(ids)))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.Conflict("slot already booked", err)
		}
		return 0, fmt.Errorf("failed to bulk update appointments: %w", err)
	}
	return result.RowsAffected()
}

func (r *appointmentRepository) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	query := `
		DELETE FROM appointments
		WHERE id = ANY($1)
	`
	result, err := r.db.ExecContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete appointments: %w", err)
	}
	return result.RowsAffected()
}

func (r *appointmentRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
