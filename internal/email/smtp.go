package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/smilecare/scheduler-api/internal/config"
	"github.com/smilecare/scheduler-api/internal/model"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAppointmentEmail(_ context.Context, effect model.SideEffect) error {
	if effect.Recipient == "" {
		return fmt.Errorf("email effect has no recipient")
	}

	subject, body, err := render(effect)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", effect.Recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send %s email: %w", effect.Template, err)
	}
	return nil
}
