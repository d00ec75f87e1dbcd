package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	assert.True(t, AppointmentStatusPending.CanTransitionTo(AppointmentStatusConfirmed))
	assert.True(t, AppointmentStatusPending.CanTransitionTo(AppointmentStatusCancelled))
	assert.True(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusCancelled))
	assert.True(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusCompleted))

	assert.False(t, AppointmentStatusPending.CanTransitionTo(AppointmentStatusCompleted))
	assert.False(t, AppointmentStatusConfirmed.CanTransitionTo(AppointmentStatusPending))

	// Terminal statuses have no outgoing edges at all.
	for _, terminal := range []AppointmentStatus{AppointmentStatusCancelled, AppointmentStatusCompleted} {
		for _, target := range []AppointmentStatus{
			AppointmentStatusPending, AppointmentStatusConfirmed,
			AppointmentStatusCancelled, AppointmentStatusCompleted,
		} {
			assert.False(t, terminal.CanTransitionTo(target), "%s -> %s", terminal, target)
		}
	}
}

func TestAppointmentStatusPredicates(t *testing.T) {
	assert.True(t, AppointmentStatusPending.Active())
	assert.True(t, AppointmentStatusConfirmed.Active())
	assert.False(t, AppointmentStatusCancelled.Active())
	assert.False(t, AppointmentStatusCompleted.Active())

	assert.True(t, AppointmentStatusCancelled.Terminal())
	assert.True(t, AppointmentStatusCompleted.Terminal())
	assert.False(t, AppointmentStatusPending.Terminal())

	assert.True(t, AppointmentStatusPending.Valid())
	assert.False(t, AppointmentStatus("archived").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestParseBulkAction(t *testing.T) {
	cases := map[string]BulkAction{
		"confirm":  BulkActionConfirm,
		"cancel":   BulkActionCancel,
		"complete": BulkActionComplete,
		"delete":   BulkActionDelete,
	}
	for input, want := range cases {
		got, err := ParseBulkAction(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, input, got.String())
	}

	_, err := ParseBulkAction("archive")
	assert.Error(t, err)
	_, err = ParseBulkAction("")
	assert.Error(t, err)
}

func TestBulkActionTargetStatus(t *testing.T) {
	status, ok := BulkActionConfirm.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, AppointmentStatusConfirmed, status)

	status, ok = BulkActionCancel.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, AppointmentStatusCancelled, status)

	status, ok = BulkActionComplete.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, AppointmentStatusCompleted, status)

	// Delete maps to no status.
	_, ok = BulkActionDelete.TargetStatus()
	assert.False(t, ok)
}

func TestBulkResultMessage(t *testing.T) {
	result := &BulkResult{Action: BulkActionCancel, Updated: 3}
	assert.Equal(t, "3 appointment(s) cancelled", result.Message())

	result = &BulkResult{Action: BulkActionDelete, Updated: 1}
	assert.Equal(t, "1 appointment(s) deleted", result.Message())

	result = &BulkResult{Action: BulkActionConfirm, Updated: 0}
	assert.Equal(t, "0 appointment(s) confirmed", result.Message())
}
