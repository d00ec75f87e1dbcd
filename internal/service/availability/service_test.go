package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare/scheduler-api/internal/model"
	"github.com/smilecare/scheduler-api/pkg/clock"
	apperrors "github.com/smilecare/scheduler-api/pkg/errors"
)

type fakeAppointmentRepo struct {
	bookedSlots []string
	slotTaken   bool
}

func (f *fakeAppointmentRepo) CreateActive(ctx context.Context, apt *model.Appointment, events []*model.DispatchEvent) error {
	return nil
}

func (f *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NotFound("appointment", nil)
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string, events []*model.DispatchEvent) error {
	return nil
}

func (f *fakeAppointmentRepo) Reschedule(ctx context.Context, id uuid.UUID, date time.Time, timeSlot string, events []*model.DispatchEvent) error {
	return nil
}

func (f *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters, now time.Time) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListActiveSlots(ctx context.Context, dentistID uuid.UUID, date time.Time) ([]string, error) {
	return f.bookedSlots, nil
}

func (f *fakeAppointmentRepo) IsSlotTaken(ctx context.Context, dentistID uuid.UUID, date time.Time, timeSlot string, excludeID *uuid.UUID) (bool, error) {
	return f.slotTaken, nil
}

func (f *fakeAppointmentRepo) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status model.AppointmentStatus, cancelReason *string) (int64, error) {
	return 0, nil
}

func (f *fakeAppointmentRepo) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return 0, nil
}

type fakeScheduleRepo struct {
	schedule model.WeeklySchedule
	calls    int
}

func (f *fakeScheduleRepo) GetWeeklySchedule(ctx context.Context, dentistID uuid.UUID) (model.WeeklySchedule, error) {
	f.calls++
	return f.schedule, nil
}

type fakeDentistRepo struct {
	err error
}

func (f *fakeDentistRepo) Get(ctx context.Context, id uuid.UUID) (*model.Dentist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Dentist{Name: "Dr. Adams"}, nil
}

type fakeServiceRepo struct {
	duration int
}

func (f *fakeServiceRepo) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	return &model.Service{Duration: f.duration}, nil
}

func newTestService(aptRepo *fakeAppointmentRepo, schedRepo *fakeScheduleRepo, dentistRepo *fakeDentistRepo, svcRepo *fakeServiceRepo) *Service {
	// Clock pinned to Sunday 2026-03-01 so the Monday test date is in
	// the future.
	clk := clock.Fixed{T: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	return NewService(aptRepo, schedRepo, dentistRepo, svcRepo, 60, clk)
}

func TestGetAvailabilityFiltersBookedSlots(t *testing.T) {
	aptRepo := &fakeAppointmentRepo{bookedSlots: []string{"10:00-11:00"}}
	schedRepo := &fakeScheduleRepo{schedule: scheduleWith(time.Monday, "09:00", "12:00")}
	svc := newTestService(aptRepo, schedRepo, &fakeDentistRepo{}, &fakeServiceRepo{})

	result, err := svc.GetAvailability(context.Background(), uuid.New(), monday, nil)
	require.NoError(t, err)

	assert.True(t, result.Available)
	assert.Equal(t, []string{"09:00-10:00", "11:00-12:00"}, result.TimeSlots)
}

func TestGetAvailabilityClosedDay(t *testing.T) {
	aptRepo := &fakeAppointmentRepo{}
	schedRepo := &fakeScheduleRepo{schedule: model.WeeklySchedule{}}
	svc := newTestService(aptRepo, schedRepo, &fakeDentistRepo{}, &fakeServiceRepo{})

	result, err := svc.GetAvailability(context.Background(), uuid.New(), monday, nil)
	require.NoError(t, err)

	assert.False(t, result.Available)
	assert.Empty(t, result.TimeSlots)
	assert.Equal(t, "dentist is not available on this day", result.Message)
}

func TestGetAvailabilityAllBooked(t *testing.T) {
	aptRepo := &fakeAppointmentRepo{
		bookedSlots: []string{"09:00-10:00", "10:00-11:00", "11:00-12:00"},
	}
	schedRepo := &fakeScheduleRepo{schedule: scheduleWith(time.Monday, "09:00", "12:00")}
	svc := newTestService(aptRepo, schedRepo, &fakeDentistRepo{}, &fakeServiceRepo{})

	result, err := svc.GetAvailability(context.Background(), uuid.New(), monday, nil)
	require.NoError(t, err)

	assert.False(t, result.Available)
	assert.Equal(t, "all slots are booked for this day", result.Message)
}

func TestGetAvailabilityPastDate(t *testing.T) {
	schedRepo := &fakeScheduleRepo{schedule: scheduleWith(time.Monday, "09:00", "12:00")}
	svc := newTestService(&fakeAppointmentRepo{}, schedRepo, &fakeDentistRepo{}, &fakeServiceRepo{})

	past := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	_, err := svc.GetAvailability(context.Background(), uuid.New(), past, nil)

	assert.True(t, apperrors.IsBadRequest(err))
}

func TestGetAvailabilityUnknownDentist(t *testing.T) {
	dentistRepo := &fakeDentistRepo{err: apperrors.NotFound("dentist", nil)}
	svc := newTestService(&fakeAppointmentRepo{}, &fakeScheduleRepo{}, dentistRepo, &fakeServiceRepo{})

	_, err := svc.GetAvailability(context.Background(), uuid.New(), monday, nil)

	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetAvailabilityServiceDuration(t *testing.T) {
	aptRepo := &fakeAppointmentRepo{}
	schedRepo := &fakeScheduleRepo{schedule: scheduleWith(time.Monday, "09:00", "11:00")}
	svcRepo := &fakeServiceRepo{duration: 30}
	svc := newTestService(aptRepo, schedRepo, &fakeDentistRepo{}, svcRepo)

	serviceID := uuid.New()
	result, err := svc.GetAvailability(context.Background(), uuid.New(), monday, &serviceID)
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00-09:30", "09:30-10:00", "10:00-10:30", "10:30-11:00"}, result.TimeSlots)
}

func TestGetAvailabilityCachesSchedule(t *testing.T) {
	aptRepo := &fakeAppointmentRepo{}
	schedRepo := &fakeScheduleRepo{schedule: scheduleWith(time.Monday, "09:00", "12:00")}
	svc := newTestService(aptRepo, schedRepo, &fakeDentistRepo{}, &fakeServiceRepo{})

	dentistID := uuid.New()
	_, err := svc.GetAvailability(context.Background(), dentistID, monday, nil)
	require.NoError(t, err)
	_, err = svc.GetAvailability(context.Background(), dentistID, monday, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, schedRepo.calls)
}

func TestIsSlotFree(t *testing.T) {
	svc := newTestService(&fakeAppointmentRepo{slotTaken: true}, &fakeScheduleRepo{}, &fakeDentistRepo{}, &fakeServiceRepo{})

	free, err := svc.IsSlotFree(context.Background(), uuid.New(), monday, "09:00-10:00")
	require.NoError(t, err)
	assert.False(t, free)
}
