package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smilecare/scheduler-api/internal/model"
	"github.com/smilecare/scheduler-api/internal/repository"
	"github.com/smilecare/scheduler-api/pkg/clock"
	apperrors "github.com/smilecare/scheduler-api/pkg/errors"
	"github.com/smilecare/scheduler-api/pkg/logger"
)

// Service owns the appointment lifecycle: it is the sole writer of
// status and cancel_reason. Every status change enqueues its side-effect
// intents to the dispatch outbox in the same transaction; delivery is the
// worker's problem.
type Service struct {
	repo         repository.AppointmentRepository
	dispatchRepo repository.DispatchRepository
	patientRepo  repository.PatientRepository
	dentistRepo  repository.DentistRepository
	clock        clock.Clock
	logger       *logger.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	dispatchRepo repository.DispatchRepository,
	patientRepo repository.PatientRepository,
	dentistRepo repository.DentistRepository,
	clk clock.Clock,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:         repo,
		dispatchRepo: dispatchRepo,
		patientRepo:  patientRepo,
		dentistRepo:  dentistRepo,
		clock:        clk,
		logger:       logger,
	}
}

// Book creates a pending appointment. The conflict check happens at write
// time: the insert and the active-slot uniqueness check are one atomic
// unit, so of N concurrent bookings for the same tuple exactly one
// succeeds and the rest get a conflict error.
func (s *Service) Book(ctx context.Context, apt *model.Appointment) (*model.Appointment, []model.SideEffect, error) {
	if err := s.validateBooking(apt); err != nil {
		return nil, nil, err
	}

	patient, err := s.patientRepo.Get(ctx, apt.PatientID)
	if err != nil {
		return nil, nil, err
	}
	dentist, err := s.dentistRepo.Get(ctx, apt.DentistID)
	if err != nil {
		return nil, nil, err
	}

	apt.Date = model.Day(apt.Date)
	apt.Status = model.AppointmentStatusPending

	effects := bookingEffects(apt, patient, dentist)
	events, err := toDispatchEvents(effects)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.CreateActive(ctx, apt, events); err != nil {
		return nil, nil, err
	}

	return apt, effects, nil
}

// Transition moves the appointment along one edge of the state machine
// and enqueues the side effects appropriate to the target status.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target model.AppointmentStatus, reason *string) (*model.Appointment, []model.SideEffect, error) {
	if !target.Valid() {
		return nil, nil, apperrors.BadRequest(fmt.Sprintf("unknown status %q", target), nil)
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !apt.Status.CanTransitionTo(target) {
		return nil, nil, apperrors.InvalidTransition(string(apt.Status), string(target))
	}

	var cancelReason *string
	if target == model.AppointmentStatusCancelled {
		cancelReason = reason
		if cancelReason == nil || *cancelReason == "" {
			def := model.DefaultCancelReason
			cancelReason = &def
		}
	}

	patient, dentist, err := s.participants(ctx, apt)
	if err != nil {
		return nil, nil, err
	}

	effects := transitionEffects(apt, target, cancelReason, patient, dentist)
	events, err := toDispatchEvents(effects)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, target, cancelReason, events); err != nil {
		return nil, nil, err
	}

	apt.Status = target
	apt.CancelReason = cancelReason
	return apt, effects, nil
}

// Reschedule moves the appointment to a new date/slot tuple. The status
// is left as it was; "rescheduled" is an event, not a state. The guard is
// re-run for the new tuple excluding the appointment's own occupancy, and
// the unique index backs it up at write time.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time, newSlot string) (*model.Appointment, []model.SideEffect, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if apt.Status.Terminal() {
		return nil, nil, apperrors.InvalidTransition(string(apt.Status), "rescheduled")
	}

	newDate = model.Day(newDate)

	taken, err := s.repo.IsSlotTaken(ctx, apt.DentistID, newDate, newSlot, &apt.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check slot: %w", err)
	}
	if taken {
		return nil, nil, apperrors.Conflict("slot already booked", nil)
	}

	patient, dentist, err := s.participants(ctx, apt)
	if err != nil {
		return nil, nil, err
	}

	apt.Date = newDate
	apt.TimeSlot = newSlot
	effects := rescheduleEffects(apt, patient, dentist)
	events, err := toDispatchEvents(effects)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.Reschedule(ctx, id, newDate, newSlot, events); err != nil {
		return nil, nil, err
	}

	return apt, effects, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Delete removes the record outright. No side effects, no soft delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) validateBooking(apt *model.Appointment) error {
	if apt.PatientID == uuid.Nil {
		return apperrors.BadRequest("patient ID is required", nil)
	}
	if apt.DentistID == uuid.Nil {
		return apperrors.BadRequest("dentist ID is required", nil)
	}
	if apt.ServiceID == uuid.Nil {
		return apperrors.BadRequest("service ID is required", nil)
	}
	if apt.TimeSlot == "" {
		return apperrors.BadRequest("time slot is required", nil)
	}
	if model.Day(apt.Date).Before(model.Day(s.clock.Now())) {
		return apperrors.BadRequest("appointment cannot be scheduled in the past", nil)
	}
	return nil
}

func (s *Service) participants(ctx context.Context, apt *model.Appointment) (*model.Patient, *model.Dentist, error) {
	patient, err := s.patientRepo.Get(ctx, apt.PatientID)
	if err != nil {
		return nil, nil, err
	}
	dentist, err := s.dentistRepo.Get(ctx, apt.DentistID)
	if err != nil {
		return nil, nil, err
	}
	return patient, dentist, nil
}

func toDispatchEvents(effects []model.SideEffect) ([]*model.DispatchEvent, error) {
	events := make([]*model.DispatchEvent, 0, len(effects))
	for _, effect := range effects {
		event, err := toDispatchEvent(effect)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func toDispatchEvent(effect model.SideEffect) (*model.DispatchEvent, error) {
	payload, err := json.Marshal(effect)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal side effect: %w", err)
	}
	return &model.DispatchEvent{
		EventType: effect.EventType(),
		Payload:   payload,
	}, nil
}
