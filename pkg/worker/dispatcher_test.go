package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare/scheduler-api/internal/model"
	"github.com/smilecare/scheduler-api/pkg/logger"
	"github.com/smilecare/scheduler-api/pkg/metrics"
)

// promauto registers on the default registry, so all dispatcher tests
// share one Metrics instance.
var testMetrics = metrics.NewMetrics("scheduler_test", "dispatcher")

type fakeDispatchRepo struct {
	mu          sync.Mutex
	pending     []*model.DispatchEvent
	processed   []uuid.UUID
	failed      map[uuid.UUID]*time.Time
	purgeCutoff time.Time
	purged      int64
}

func newFakeDispatchRepo(events ...*model.DispatchEvent) *fakeDispatchRepo {
	return &fakeDispatchRepo{pending: events, failed: make(map[uuid.UUID]*time.Time)}
}

func (r *fakeDispatchRepo) Create(ctx context.Context, event *model.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, event)
	return nil
}

func (r *fakeDispatchRepo) GetPendingWithLock(ctx context.Context, limit int) ([]*model.DispatchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *fakeDispatchRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, id)
	return nil
}

func (r *fakeDispatchRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[id] = retryAt
	return nil
}

func (r *fakeDispatchRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeCutoff = before
	return r.purged, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*model.Notification
	err     error
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, n)
	return nil
}

type fakeEmailService struct {
	mu   sync.Mutex
	sent []model.SideEffect
	err  error
}

func (s *fakeEmailService) SendAppointmentEmail(ctx context.Context, effect model.SideEffect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, effect)
	return nil
}

type fakeBroker struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, channel)
	return nil
}

func (b *fakeBroker) Close() error { return nil }

func testDispatcher(repo *fakeDispatchRepo, notifRepo *fakeNotificationRepo, emailSvc *fakeEmailService, broker *fakeBroker) *Dispatcher {
	log := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	return NewDispatcher(repo, notifRepo, emailSvc, broker, DispatcherConfig{
		BatchSize:       10,
		PollInterval:    time.Second,
		RetryAttempts:   3,
		RetryDelay:      time.Minute,
		CleanupInterval: time.Hour,
		Retention:       24 * time.Hour,
	}, log, testMetrics)
}

func eventFor(t *testing.T, effect model.SideEffect) *model.DispatchEvent {
	t.Helper()
	payload, err := json.Marshal(effect)
	require.NoError(t, err)
	return &model.DispatchEvent{
		ID:        uuid.New(),
		EventType: effect.EventType(),
		Payload:   payload,
		Status:    model.DispatchStatusPending,
	}
}

func TestProcessBatchEmail(t *testing.T) {
	event := eventFor(t, model.SideEffect{
		Kind:      model.SideEffectEmail,
		Template:  model.EmailTemplateBookingConfirmation,
		Recipient: "jane@example.com",
	})
	repo := newFakeDispatchRepo(event)
	emailSvc := &fakeEmailService{}
	d := testDispatcher(repo, &fakeNotificationRepo{}, emailSvc, &fakeBroker{})

	require.NoError(t, d.processBatch(context.Background()))

	require.Len(t, emailSvc.sent, 1)
	assert.Equal(t, "jane@example.com", emailSvc.sent[0].Recipient)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
	assert.Empty(t, repo.failed)
}

func TestProcessBatchNotification(t *testing.T) {
	userID := uuid.New()
	event := eventFor(t, model.SideEffect{
		Kind:    model.SideEffectNotification,
		UserID:  userID,
		Title:   "Appointment confirmed",
		Message: "See you Monday",
		Type:    model.NotificationTypeConfirmation,
	})
	repo := newFakeDispatchRepo(event)
	notifRepo := &fakeNotificationRepo{}
	broker := &fakeBroker{}
	d := testDispatcher(repo, notifRepo, &fakeEmailService{}, broker)

	require.NoError(t, d.processBatch(context.Background()))

	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, userID, notifRepo.created[0].UserID)
	assert.Equal(t, []string{"notifications"}, broker.published)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
}

func TestProcessBatchSchedulesRetry(t *testing.T) {
	event := eventFor(t, model.SideEffect{
		Kind:      model.SideEffectEmail,
		Template:  model.EmailTemplateCancellation,
		Recipient: "jane@example.com",
	})
	repo := newFakeDispatchRepo(event)
	emailSvc := &fakeEmailService{err: fmt.Errorf("smtp connection refused")}
	d := testDispatcher(repo, &fakeNotificationRepo{}, emailSvc, &fakeBroker{})

	require.NoError(t, d.processBatch(context.Background()))

	assert.Empty(t, repo.processed)
	retryAt, ok := repo.failed[event.ID]
	require.True(t, ok)
	require.NotNil(t, retryAt, "first failure should schedule a retry")
	assert.True(t, retryAt.After(time.Now()))
}

func TestProcessBatchExhaustedRetriesParksEvent(t *testing.T) {
	event := eventFor(t, model.SideEffect{
		Kind:      model.SideEffectEmail,
		Template:  model.EmailTemplateCancellation,
		Recipient: "jane@example.com",
	})
	event.RetryCount = 2 // third attempt of three
	repo := newFakeDispatchRepo(event)
	emailSvc := &fakeEmailService{err: fmt.Errorf("smtp connection refused")}
	d := testDispatcher(repo, &fakeNotificationRepo{}, emailSvc, &fakeBroker{})

	require.NoError(t, d.processBatch(context.Background()))

	retryAt, ok := repo.failed[event.ID]
	require.True(t, ok)
	assert.Nil(t, retryAt, "exhausted events must not be rescheduled")
}

func TestProcessBatchBadPayload(t *testing.T) {
	event := &model.DispatchEvent{
		ID:        uuid.New(),
		EventType: "email.booking_confirmation",
		Payload:   json.RawMessage(`{not json`),
	}
	repo := newFakeDispatchRepo(event)
	d := testDispatcher(repo, &fakeNotificationRepo{}, &fakeEmailService{}, &fakeBroker{})

	require.NoError(t, d.processBatch(context.Background()))

	retryAt, ok := repo.failed[event.ID]
	require.True(t, ok)
	assert.Nil(t, retryAt, "unparseable payloads are terminal")
	assert.Empty(t, repo.processed)
}

func TestPurgeProcessedUsesRetentionCutoff(t *testing.T) {
	repo := newFakeDispatchRepo()
	repo.purged = 7
	d := testDispatcher(repo, &fakeNotificationRepo{}, &fakeEmailService{}, &fakeBroker{})

	before := time.Now()
	d.purgeProcessed(context.Background())

	want := before.Add(-24 * time.Hour)
	assert.WithinDuration(t, want, repo.purgeCutoff, time.Minute)
}

func TestBrokerFailureDoesNotFailNotification(t *testing.T) {
	event := eventFor(t, model.SideEffect{
		Kind:   model.SideEffectNotification,
		UserID: uuid.New(),
		Title:  "Appointment booked",
		Type:   model.NotificationTypeBooking,
	})
	repo := newFakeDispatchRepo(event)
	notifRepo := &fakeNotificationRepo{}
	broker := &fakeBroker{err: fmt.Errorf("redis down")}
	d := testDispatcher(repo, notifRepo, &fakeEmailService{}, broker)

	require.NoError(t, d.processBatch(context.Background()))

	// The stored notification stands even when the fan-out fails.
	require.Len(t, notifRepo.created, 1)
	assert.Equal(t, []uuid.UUID{event.ID}, repo.processed)
	assert.Empty(t, repo.failed)
}
