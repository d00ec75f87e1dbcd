package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a fire-and-forget in-app record created as a side
// effect of a lifecycle transition. The scheduling core never reads it
// back.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	NotificationTypeBooking      = "appointment_booked"
	NotificationTypeConfirmation = "appointment_confirmed"
	NotificationTypeCancellation = "appointment_cancelled"
	NotificationTypeCompletion   = "appointment_completed"
	NotificationTypeReschedule   = "appointment_rescheduled"
)
