package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/scheduler-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository owns the appointments table. The mutating
	// operations accept the dispatch events produced by the change and
	// persist both in one transaction, so a status change and its
	// side-effect intents commit or roll back together.
	//
	// CreateActive and Reschedule rely on the partial unique index over
	// (dentist_id, date, time_slot) for active statuses; they return a
	// conflict error when the tuple is occupied.
	AppointmentRepository interface {
		CreateActive(ctx context.Context, appointment *model.Appointment, events []*model.DispatchEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string, events []*model.DispatchEvent) error
		Reschedule(ctx context.Context, id uuid.UUID, date time.Time, timeSlot string, events []*model.DispatchEvent) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters, now time.Time) ([]*model.Appointment, error)
		ListActiveSlots(ctx context.Context, dentistID uuid.UUID, date time.Time) ([]string, error)
		IsSlotTaken(ctx context.Context, dentistID uuid.UUID, date time.Time, timeSlot string, excludeID *uuid.UUID) (bool, error)
		BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status model.AppointmentStatus, cancelReason *string) (int64, error)
		BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
	}

	// ScheduleRepository reads the per-dentist working-hours template.
	ScheduleRepository interface {
		GetWeeklySchedule(ctx context.Context, dentistID uuid.UUID) (model.WeeklySchedule, error)
	}

	DentistRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Dentist, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	}

	ServiceRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
	}

	// DispatchRepository is the side-effect outbox.
	DispatchRepository interface {
		Create(ctx context.Context, event *model.DispatchEvent) error
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.DispatchEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
