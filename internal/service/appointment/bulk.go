package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/smilecare/scheduler-api/internal/model"
	apperrors "github.com/smilecare/scheduler-api/pkg/errors"
)

// ApplyBulk applies one action to all ids. The field mutation is a single
// batch statement sharing one action-to-status mapping; it deliberately
// skips per-row state-machine validation, unlike the single-item path.
// Side effects are then enqueued per item, independently: one item's
// failure is logged and does not abort the rest or touch the committed
// batch update. Delete performs no side effects.
func (s *Service) ApplyBulk(ctx context.Context, ids []uuid.UUID, action model.BulkAction, cancelReason *string) (*model.BulkResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.BadRequest("appointment IDs are required", nil)
	}

	if action == model.BulkActionDelete {
		updated, err := s.repo.BulkDelete(ctx, ids)
		if err != nil {
			return nil, err
		}
		return &model.BulkResult{Action: action, Updated: updated}, nil
	}

	status, ok := action.TargetStatus()
	if !ok {
		return nil, apperrors.BadRequest("unrecognized bulk action", nil)
	}

	var reason *string
	if status == model.AppointmentStatusCancelled {
		reason = cancelReason
		if reason == nil || *reason == "" {
			def := model.DefaultCancelReason
			reason = &def
		}
	}

	updated, err := s.repo.BulkUpdateStatus(ctx, ids, status, reason)
	if err != nil {
		return nil, err
	}

	// Batch committed; everything below is best-effort per item.
	for _, id := range ids {
		s.enqueueBulkEffects(ctx, id, status, reason)
	}

	return &model.BulkResult{Action: action, Updated: updated}, nil
}

func (s *Service) enqueueBulkEffects(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, reason *string) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		s.logger.Error(err, "bulk: skipping side effects for missing appointment", "appointment_id", id.String())
		return
	}

	patient, dentist, err := s.participants(ctx, apt)
	if err != nil {
		s.logger.Error(err, "bulk: failed to load participants", "appointment_id", id.String())
		return
	}

	for _, effect := range transitionEffects(apt, status, reason, patient, dentist) {
		event, err := toDispatchEvent(effect)
		if err != nil {
			s.logger.Error(err, "bulk: failed to encode side effect", "appointment_id", id.String())
			continue
		}
		if err := s.dispatchRepo.Create(ctx, event); err != nil {
			s.logger.Error(err, "bulk: failed to enqueue side effect",
				"appointment_id", id.String(),
				"event_type", event.EventType)
		}
	}
}
