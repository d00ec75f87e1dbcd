package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DispatchStatus string

const (
	DispatchStatusPending   DispatchStatus = "pending"
	DispatchStatusRetry     DispatchStatus = "retry"
	DispatchStatusProcessed DispatchStatus = "processed"
	DispatchStatusFailed    DispatchStatus = "failed"
)

// DispatchEvent is an outbox row holding one side-effect intent. It is
// written in the same transaction as the status change that produced it
// and consumed by the dispatcher worker.
type DispatchEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       DispatchStatus  `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

type SideEffectKind string

const (
	SideEffectEmail        SideEffectKind = "email"
	SideEffectNotification SideEffectKind = "notification"
)

const (
	EmailTemplateBookingConfirmation = "booking_confirmation"
	EmailTemplateCancellation        = "cancellation"
	EmailTemplateReschedule          = "reschedule"
)

// SideEffect is one delivery intent computed by the lifecycle manager.
// Delivery is best-effort and asynchronous; a failed side effect never
// rolls back the status change that produced it.
type SideEffect struct {
	Kind          SideEffectKind `json:"kind"`
	AppointmentID uuid.UUID      `json:"appointment_id"`

	// Email fields
	Template  string `json:"template,omitempty"`
	Recipient string `json:"recipient,omitempty"`

	// Notification fields
	UserID  uuid.UUID `json:"user_id,omitempty"`
	Title   string    `json:"title,omitempty"`
	Message string    `json:"message,omitempty"`
	Type    string    `json:"type,omitempty"`

	// Template context
	PatientName string `json:"patient_name,omitempty"`
	DentistName string `json:"dentist_name,omitempty"`
	Date        string `json:"date,omitempty"`
	TimeSlot    string `json:"time_slot,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// EventType names the outbox event for a side effect.
func (s SideEffect) EventType() string {
	if s.Kind == SideEffectEmail {
		return "email." + s.Template
	}
	return "notification." + s.Type
}
