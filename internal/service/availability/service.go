package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/smilecare/scheduler-api/internal/model"
	"github.com/smilecare/scheduler-api/internal/repository"
	"github.com/smilecare/scheduler-api/pkg/clock"
	apperrors "github.com/smilecare/scheduler-api/pkg/errors"
)

const (
	scheduleCacheTTL     = 5 * time.Minute
	scheduleCacheCleanup = 10 * time.Minute
)

// Availability is the availability-endpoint payload.
type Availability struct {
	Available bool     `json:"available"`
	TimeSlots []string `json:"timeSlots,omitempty"`
	Message   string   `json:"message,omitempty"`
}

type Service struct {
	appointmentRepo repository.AppointmentRepository
	scheduleRepo    repository.ScheduleRepository
	dentistRepo     repository.DentistRepository
	serviceRepo     repository.ServiceRepository
	scheduleCache   *gocache.Cache
	defaultSlot     time.Duration
	clock           clock.Clock
}

func NewService(
	appointmentRepo repository.AppointmentRepository,
	scheduleRepo repository.ScheduleRepository,
	dentistRepo repository.DentistRepository,
	serviceRepo repository.ServiceRepository,
	defaultSlotMinutes int,
	clk clock.Clock,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		scheduleRepo:    scheduleRepo,
		dentistRepo:     dentistRepo,
		serviceRepo:     serviceRepo,
		scheduleCache:   gocache.New(scheduleCacheTTL, scheduleCacheCleanup),
		defaultSlot:     time.Duration(defaultSlotMinutes) * time.Minute,
		clock:           clk,
	}
}

// GetAvailability answers "what can a patient pick right now" for one
// dentist and date. The result is advisory: slots can be taken between
// this query and a booking attempt; the booking path re-checks at write
// time.
func (s *Service) GetAvailability(ctx context.Context, dentistID uuid.UUID, date time.Time, serviceID *uuid.UUID) (*Availability, error) {
	if _, err := s.dentistRepo.Get(ctx, dentistID); err != nil {
		return nil, err
	}

	if model.Day(date).Before(model.Day(s.clock.Now())) {
		return nil, apperrors.BadRequest("date cannot be in the past", nil)
	}

	duration := s.defaultSlot
	if serviceID != nil {
		svc, err := s.serviceRepo.Get(ctx, *serviceID)
		if err != nil {
			return nil, err
		}
		duration = time.Duration(svc.Duration) * time.Minute
	}

	schedule, err := s.weeklySchedule(ctx, dentistID)
	if err != nil {
		return nil, err
	}

	candidates := ComputeSlots(schedule, date, duration)
	if len(candidates) == 0 {
		return &Availability{
			Available: false,
			Message:   "dentist is not available on this day",
		}, nil
	}

	free, err := s.FilterAvailable(ctx, candidates, dentistID, date)
	if err != nil {
		return nil, err
	}
	if len(free) == 0 {
		return &Availability{
			Available: false,
			Message:   "all slots are booked for this day",
		}, nil
	}

	return &Availability{
		Available: true,
		TimeSlots: free,
	}, nil
}

// IsSlotFree is a point-in-time answer; it grants no reservation.
func (s *Service) IsSlotFree(ctx context.Context, dentistID uuid.UUID, date time.Time, timeSlot string) (bool, error) {
	taken, err := s.appointmentRepo.IsSlotTaken(ctx, dentistID, date, timeSlot, nil)
	if err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return !taken, nil
}

// FilterAvailable drops candidate slots occupied by active appointments,
// preserving candidate order.
func (s *Service) FilterAvailable(ctx context.Context, candidates []string, dentistID uuid.UUID, date time.Time) ([]string, error) {
	booked, err := s.appointmentRepo.ListActiveSlots(ctx, dentistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, slot := range booked {
		taken[slot] = struct{}{}
	}

	free := make([]string, 0, len(candidates))
	for _, slot := range candidates {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free, nil
}

func (s *Service) weeklySchedule(ctx context.Context, dentistID uuid.UUID) (model.WeeklySchedule, error) {
	key := dentistID.String()
	if cached, ok := s.scheduleCache.Get(key); ok {
		return cached.(model.WeeklySchedule), nil
	}

	schedule, err := s.scheduleRepo.GetWeeklySchedule(ctx, dentistID)
	if err != nil {
		return nil, err
	}

	s.scheduleCache.Set(key, schedule, gocache.DefaultExpiration)
	return schedule, nil
}
