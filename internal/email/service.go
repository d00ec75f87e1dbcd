package email

import (
	"context"

	"github.com/smilecare/scheduler-api/internal/model"
)

// Service renders and sends appointment emails. Delivery is best-effort:
// callers log failures, they never propagate them to the booking path.
type Service interface {
	SendAppointmentEmail(ctx context.Context, effect model.SideEffect) error
}
