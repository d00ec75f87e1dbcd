package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilecare/scheduler-api/internal/model"
)

func TestRenderBookingConfirmation(t *testing.T) {
	subject, body, err := render(model.SideEffect{
		Kind:        model.SideEffectEmail,
		Template:    model.EmailTemplateBookingConfirmation,
		PatientName: "Jane Roe",
		DentistName: "Dr. Adams",
		Date:        "2026-03-02",
		TimeSlot:    "09:00-10:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "Your appointment request", subject)
	assert.Contains(t, body, "Jane Roe")
	assert.Contains(t, body, "Dr. Adams")
	assert.Contains(t, body, "2026-03-02")
	assert.Contains(t, body, "09:00-10:00")
}

func TestRenderCancellationIncludesReason(t *testing.T) {
	subject, body, err := render(model.SideEffect{
		Kind:        model.SideEffectEmail,
		Template:    model.EmailTemplateCancellation,
		PatientName: "Jane Roe",
		DentistName: "Dr. Adams",
		Date:        "2026-03-02",
		TimeSlot:    "09:00-10:00",
		Reason:      model.DefaultCancelReason,
	})
	require.NoError(t, err)

	assert.Equal(t, "Your appointment was cancelled", subject)
	assert.Contains(t, body, "Reason: cancelled by clinic")
}

func TestRenderReschedule(t *testing.T) {
	subject, body, err := render(model.SideEffect{
		Kind:        model.SideEffectEmail,
		Template:    model.EmailTemplateReschedule,
		PatientName: "Jane Roe",
		DentistName: "Dr. Adams",
		Date:        "2026-03-05",
		TimeSlot:    "11:00-12:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "Your appointment was rescheduled", subject)
	assert.Contains(t, body, "2026-03-05")
	assert.Contains(t, body, "11:00-12:00")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := render(model.SideEffect{Template: "newsletter"})
	assert.Error(t, err)
}

func TestRenderEscapesHTML(t *testing.T) {
	_, body, err := render(model.SideEffect{
		Template:    model.EmailTemplateBookingConfirmation,
		PatientName: "<script>alert(1)</script>",
		DentistName: "Dr. Adams",
	})
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}
