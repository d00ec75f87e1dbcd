package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/smilecare/scheduler-api/internal/email"
	"github.com/smilecare/scheduler-api/internal/model"
	"github.com/smilecare/scheduler-api/internal/repository"
	"github.com/smilecare/scheduler-api/pkg/logger"
	"github.com/smilecare/scheduler-api/pkg/messaging"
	"github.com/smilecare/scheduler-api/pkg/metrics"
)

const notificationChannel = "notifications"

type DispatcherConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// Processed events older than Retention are purged every
	// CleanupInterval so the outbox table does not grow unboundedly.
	CleanupInterval time.Duration
	Retention       time.Duration
}

// Dispatcher drains the side-effect outbox: emails go out over SMTP,
// notifications are stored and fanned out over the broker. Failures are
// retried with backoff bookkeeping and never reach the request path.
type Dispatcher struct {
	repo             repository.DispatchRepository
	notificationRepo repository.NotificationRepository
	emailSvc         email.Service
	broker           messaging.Broker
	config           DispatcherConfig
	logger           *logger.Logger
	metrics          *metrics.Metrics
}

func NewDispatcher(
	repo repository.DispatchRepository,
	notificationRepo repository.NotificationRepository,
	emailSvc email.Service,
	broker messaging.Broker,
	config DispatcherConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Dispatcher {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.CleanupInterval <= 0 {
		panic("CleanupInterval must be greater than 0")
	}
	if config.Retention <= 0 {
		panic("Retention must be greater than 0")
	}

	return &Dispatcher{
		repo:             repo,
		notificationRepo: notificationRepo,
		emailSvc:         emailSvc,
		broker:           broker,
		config:           config,
		logger:           logger,
		metrics:          metrics,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(d.config.CleanupInterval)
	defer cleanup.Stop()

	d.logger.Info("Starting side-effect dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Shutting down dispatcher")
			return
		case <-ticker.C:
			if err := d.processBatch(ctx); err != nil {
				d.logger.Error(err, "Failed to process dispatch batch")
			}
		case <-cleanup.C:
			d.purgeProcessed(ctx)
		}
	}
}

// purgeProcessed drops delivered outbox rows past their retention window.
func (d *Dispatcher) purgeProcessed(ctx context.Context) {
	cutoff := time.Now().Add(-d.config.Retention)
	deleted, err := d.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		d.logger.Error(err, "Failed to purge processed dispatch events")
		return
	}
	if deleted > 0 {
		d.logger.Info("Purged processed dispatch events", "deleted", deleted)
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	timer := prometheus.NewTimer(d.metrics.DispatchLatency)
	defer timer.ObserveDuration()

	events, err := d.repo.GetPendingWithLock(ctx, d.config.BatchSize)
	if err != nil {
		d.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	d.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := d.processEvent(ctx, event); err != nil {
			d.logger.Error(err, "Failed to process dispatch event",
				"event_id", event.ID.String(),
				"event_type", event.EventType)
		}
	}
	return nil
}

func (d *Dispatcher) processEvent(ctx context.Context, event *model.DispatchEvent) error {
	var effect model.SideEffect
	if err := json.Unmarshal(event.Payload, &effect); err != nil {
		// Unparseable payloads cannot succeed on retry.
		msg := err.Error()
		if markErr := d.repo.MarkFailed(ctx, event.ID, msg, nil); markErr != nil {
			d.logger.Error(markErr, "Failed to mark event failed")
		}
		return fmt.Errorf("failed to decode side effect: %w", err)
	}

	if err := d.deliver(ctx, effect); err != nil {
		d.metrics.DispatchRetries.WithLabelValues(event.EventType).Inc()
		return d.recordFailure(ctx, event, err)
	}

	d.metrics.DispatchEventsProcessed.Inc()
	if err := d.repo.MarkProcessed(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, effect model.SideEffect) error {
	switch effect.Kind {
	case model.SideEffectEmail:
		return d.emailSvc.SendAppointmentEmail(ctx, effect)

	case model.SideEffectNotification:
		notification := &model.Notification{
			UserID:  effect.UserID,
			Title:   effect.Title,
			Message: effect.Message,
			Type:    effect.Type,
		}
		if err := d.notificationRepo.Create(ctx, notification); err != nil {
			return err
		}
		if err := d.broker.Publish(ctx, notificationChannel, notification); err != nil {
			// Stored notification stands; the live fan-out is advisory.
			d.logger.Error(err, "Failed to publish notification",
				"user_id", effect.UserID.String())
		}
		return nil
	}
	return fmt.Errorf("unsupported side-effect kind %q", effect.Kind)
}

func (d *Dispatcher) recordFailure(ctx context.Context, event *model.DispatchEvent, cause error) error {
	msg := cause.Error()

	var retryAt *time.Time
	if event.RetryCount+1 < d.config.RetryAttempts {
		next := time.Now().Add(d.config.RetryDelay * time.Duration(event.RetryCount+1))
		retryAt = &next
	} else {
		d.metrics.DispatchEventsFailed.Inc()
	}

	if err := d.repo.MarkFailed(ctx, event.ID, msg, retryAt); err != nil {
		d.logger.Error(err, "Failed to record dispatch failure", "event_id", event.ID.String())
	}
	return cause
}
