package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// DefaultCancelReason is applied when a cancellation arrives without one.
const DefaultCancelReason = "cancelled by clinic"

// ActiveStatuses are the statuses that occupy a slot and block rebooking.
var ActiveStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
}

// validTransitions is the single-appointment state machine. Terminal
// statuses have no outgoing edges.
var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCancelled, AppointmentStatusCompleted},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

// Active reports whether the status occupies its slot.
func (s AppointmentStatus) Active() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// Terminal reports whether any further transition is permitted.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// CanTransitionTo reports whether the edge s -> target exists in the
// state machine.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

type Appointment struct {
	Base
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	DentistID    uuid.UUID         `db:"dentist_id" json:"dentist_id"`
	ServiceID    uuid.UUID         `db:"service_id" json:"service_id"`
	Date         time.Time         `db:"date" json:"date"`
	TimeSlot     string            `db:"time_slot" json:"time_slot"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type BookAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	DentistID uuid.UUID `json:"dentist_id" binding:"required"`
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	TimeSlot  string    `json:"time_slot" binding:"required,timeslot"`
	Notes     string    `json:"notes" binding:"max=1000"`
}

// UpdateAppointmentRequest is a partial update; only supplied fields are
// applied.
type UpdateAppointmentRequest struct {
	Status       *AppointmentStatus `json:"status"`
	CancelReason *string            `json:"cancel_reason"`
	Date         *string            `json:"date"`
	TimeSlot     *string            `json:"time_slot" binding:"omitempty,timeslot"`
}

type AppointmentFilters struct {
	DentistID uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
	Upcoming  bool
	Today     bool
}

// BulkAction is the closed set of operations the bulk endpoint accepts.
type BulkAction int

const (
	BulkActionConfirm BulkAction = iota
	BulkActionCancel
	BulkActionComplete
	BulkActionDelete
)

func ParseBulkAction(s string) (BulkAction, error) {
	switch s {
	case "confirm":
		return BulkActionConfirm, nil
	case "cancel":
		return BulkActionCancel, nil
	case "complete":
		return BulkActionComplete, nil
	case "delete":
		return BulkActionDelete, nil
	}
	return 0, fmt.Errorf("unrecognized bulk action %q", s)
}

func (a BulkAction) String() string {
	switch a {
	case BulkActionConfirm:
		return "confirm"
	case BulkActionCancel:
		return "cancel"
	case BulkActionComplete:
		return "complete"
	case BulkActionDelete:
		return "delete"
	}
	return "unknown"
}

// PastVerb is the verb used in the bulk result message.
func (a BulkAction) PastVerb() string {
	switch a {
	case BulkActionConfirm:
		return "confirmed"
	case BulkActionCancel:
		return "cancelled"
	case BulkActionComplete:
		return "completed"
	case BulkActionDelete:
		return "deleted"
	}
	return "updated"
}

// TargetStatus returns the status a non-delete action forces.
func (a BulkAction) TargetStatus() (AppointmentStatus, bool) {
	switch a {
	case BulkActionConfirm:
		return AppointmentStatusConfirmed, true
	case BulkActionCancel:
		return AppointmentStatusCancelled, true
	case BulkActionComplete:
		return AppointmentStatusCompleted, true
	}
	return "", false
}

type BulkAppointmentRequest struct {
	Action         string      `json:"action" binding:"required"`
	AppointmentIDs []uuid.UUID `json:"appointment_ids" binding:"required,min=1"`
	CancelReason   *string     `json:"cancel_reason"`
}

type BulkResult struct {
	Action  BulkAction `json:"-"`
	Updated int64      `json:"updated"`
}

func (r *BulkResult) Message() string {
	return fmt.Sprintf("%d appointment(s) %s", r.Updated, r.Action.PastVerb())
}
