package appointment

import (
	"fmt"

	"github.com/smilecare/scheduler-api/internal/model"
)

// Side-effect builders. These only describe what should be delivered;
// the dispatcher worker does the delivering.

func bookingEffects(apt *model.Appointment, patient *model.Patient, dentist *model.Dentist) []model.SideEffect {
	when := apt.Date.Format(model.DateLayout)
	return []model.SideEffect{
		emailEffect(apt, patient, dentist, model.EmailTemplateBookingConfirmation, ""),
		{
			Kind:          model.SideEffectNotification,
			AppointmentID: apt.ID,
			UserID:        apt.PatientID,
			Title:         "Appointment booked",
			Message:       fmt.Sprintf("Your appointment with %s on %s (%s) is awaiting confirmation.", dentist.Name, when, apt.TimeSlot),
			Type:          model.NotificationTypeBooking,
		},
		{
			Kind:          model.SideEffectNotification,
			AppointmentID: apt.ID,
			UserID:        apt.DentistID,
			Title:         "New appointment",
			Message:       fmt.Sprintf("%s booked %s on %s.", patient.Name, apt.TimeSlot, when),
			Type:          model.NotificationTypeBooking,
		},
	}
}

func transitionEffects(apt *model.Appointment, target model.AppointmentStatus, cancelReason *string, patient *model.Patient, dentist *model.Dentist) []model.SideEffect {
	when := apt.Date.Format(model.DateLayout)

	switch target {
	case model.AppointmentStatusConfirmed:
		return []model.SideEffect{
			{
				Kind:          model.SideEffectNotification,
				AppointmentID: apt.ID,
				UserID:        apt.PatientID,
				Title:         "Appointment confirmed",
				Message:       fmt.Sprintf("Your appointment with %s on %s (%s) is confirmed.", dentist.Name, when, apt.TimeSlot),
				Type:          model.NotificationTypeConfirmation,
			},
		}

	case model.AppointmentStatusCancelled:
		reason := model.DefaultCancelReason
		if cancelReason != nil {
			reason = *cancelReason
		}
		return []model.SideEffect{
			emailEffect(apt, patient, dentist, model.EmailTemplateCancellation, reason),
			{
				Kind:          model.SideEffectNotification,
				AppointmentID: apt.ID,
				UserID:        apt.PatientID,
				Title:         "Appointment cancelled",
				Message:       fmt.Sprintf("Your appointment on %s (%s) was cancelled: %s", when, apt.TimeSlot, reason),
				Type:          model.NotificationTypeCancellation,
			},
			{
				Kind:          model.SideEffectNotification,
				AppointmentID: apt.ID,
				UserID:        apt.DentistID,
				Title:         "Appointment cancelled",
				Message:       fmt.Sprintf("Appointment with %s on %s (%s) was cancelled.", patient.Name, when, apt.TimeSlot),
				Type:          model.NotificationTypeCancellation,
			},
		}

	case model.AppointmentStatusCompleted:
		// No email on completion.
		return []model.SideEffect{
			{
				Kind:          model.SideEffectNotification,
				AppointmentID: apt.ID,
				UserID:        apt.PatientID,
				Title:         "Visit completed",
				Message:       fmt.Sprintf("Your visit with %s on %s is marked completed.", dentist.Name, when),
				Type:          model.NotificationTypeCompletion,
			},
		}
	}
	return nil
}

func rescheduleEffects(apt *model.Appointment, patient *model.Patient, dentist *model.Dentist) []model.SideEffect {
	when := apt.Date.Format(model.DateLayout)
	return []model.SideEffect{
		emailEffect(apt, patient, dentist, model.EmailTemplateReschedule, ""),
		{
			Kind:          model.SideEffectNotification,
			AppointmentID: apt.ID,
			UserID:        apt.PatientID,
			Title:         "Appointment rescheduled",
			Message:       fmt.Sprintf("Your appointment with %s moved to %s (%s).", dentist.Name, when, apt.TimeSlot),
			Type:          model.NotificationTypeReschedule,
		},
		{
			Kind:          model.SideEffectNotification,
			AppointmentID: apt.ID,
			UserID:        apt.DentistID,
			Title:         "Appointment rescheduled",
			Message:       fmt.Sprintf("Appointment with %s moved to %s (%s).", patient.Name, when, apt.TimeSlot),
			Type:          model.NotificationTypeReschedule,
		},
	}
}

func emailEffect(apt *model.Appointment, patient *model.Patient, dentist *model.Dentist, template, reason string) model.SideEffect {
	return model.SideEffect{
		Kind:          model.SideEffectEmail,
		AppointmentID: apt.ID,
		Template:      template,
		Recipient:     patient.Email,
		PatientName:   patient.Name,
		DentistName:   dentist.Name,
		Date:          apt.Date.Format(model.DateLayout),
		TimeSlot:      apt.TimeSlot,
		Reason:        reason,
	}
}
