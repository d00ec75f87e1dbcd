package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/smilecare/scheduler-api/internal/model"
)

var templates = map[string]struct {
	subject string
	body    *template.Template
}{
	model.EmailTemplateBookingConfirmation: {
		subject: "Your appointment request",
		body: template.Must(template.New("booking").Parse(`
<p>Hi {{.PatientName}},</p>
<p>We received your appointment request with {{.DentistName}} on
<strong>{{.Date}}</strong> at <strong>{{.TimeSlot}}</strong>.
You will get another email once the clinic confirms it.</p>`)),
	},
	model.EmailTemplateCancellation: {
		subject: "Your appointment was cancelled",
		body: template.Must(template.New("cancellation").Parse(`
<p>Hi {{.PatientName}},</p>
<p>Your appointment with {{.DentistName}} on <strong>{{.Date}}</strong>
at <strong>{{.TimeSlot}}</strong> was cancelled.</p>
<p>Reason: {{.Reason}}</p>`)),
	},
	model.EmailTemplateReschedule: {
		subject: "Your appointment was rescheduled",
		body: template.Must(template.New("reschedule").Parse(`
<p>Hi {{.PatientName}},</p>
<p>Your appointment with {{.DentistName}} has moved to
<strong>{{.Date}}</strong> at <strong>{{.TimeSlot}}</strong>.</p>`)),
	},
}

func render(effect model.SideEffect) (subject, body string, err error) {
	tpl, ok := templates[effect.Template]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", effect.Template)
	}

	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, effect); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", effect.Template, err)
	}
	return tpl.subject, buf.String(), nil
}
