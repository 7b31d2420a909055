package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendClientAccessInvite(email, companyName, portalURL string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService returns nil when no SMTP host is configured; callers treat a
// nil service as "email disabled".
func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	if smtpHost == "" {
		return nil
	}
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendClientAccessInvite(email, companyName, portalURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Seu acesso ao portal do cliente")

	body := fmt.Sprintf(`
		<h2>Bem-vindo, %s!</h2>
		<p>Seu projeto foi fechado e o acesso ao portal do cliente já está liberado.</p>
		<p><a href="%s">Acessar o portal</a></p>
	`, html.EscapeString(companyName), html.EscapeString(portalURL))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send access invite: %w", err)
	}

	return nil
}
