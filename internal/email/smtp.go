// Package email envía mails salientes (hoy solo el newsletter) por SMTP.
package email

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/socis-ca/website/internal/observability/logger"
)

// Sender es lo que consume el servicio de newsletter.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host    string
	Port    int
	From    string
	User    string
	Pass    string
	TLSMode string // "auto" | "starttls" | "ssl" | "none"
}

// NewSMTPSender crea un sender con los parámetros dados.
func NewSMTPSender(host string, port int, from, user, pass, tlsMode string) *SMTPSender {
	if tlsMode == "" {
		tlsMode = "auto"
	}
	return &SMTPSender{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: tlsMode,
	}
}

// Send envía un email con cuerpo HTML y alternativa en texto plano.
func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.L().With(
		logger.Component("SMTPSender"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	if textBody != "" {
		m.SetBody("text/plain", textBody)
		m.AddAlternative("text/html", htmlBody)
	} else {
		m.SetBody("text/html", htmlBody)
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default: // auto
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	d.TLSConfig = &tls.Config{ServerName: s.Host}

	if err := d.DialAndSend(m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("email: enviando a %s: %w", to, err)
	}
	return nil
}
