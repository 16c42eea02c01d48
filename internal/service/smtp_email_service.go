package service

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/config"
)

var _ Mailer = (*SMTPEmailService)(nil)

// SMTPEmailService implements Mailer on top of gomail.
type SMTPEmailService struct {
	cfg    *config.SmtpConfig
	dialer *gomail.Dialer
	send   func(m ...*gomail.Message) error
}

// unencryptedAuth lets PLAIN auth run against relays that do not offer TLS.
type unencryptedAuth struct {
	smtp.Auth
}

func (a unencryptedAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	s := *server
	s.TLS = true
	return a.Auth.Start(&s)
}

// NewSMTPEmailService creates a new SMTPEmailService.
func NewSMTPEmailService(smtpCfg *config.SmtpConfig) *SMTPEmailService {
	if smtpCfg == nil {
		log.Warn().Msg("SMTP configuration is nil. Email sending will likely fail.")
		smtpCfg = &config.SmtpConfig{}
	}

	dialer := gomail.NewDialer(smtpCfg.Host, smtpCfg.Port, smtpCfg.User, smtpCfg.Password)
	if smtpCfg.NOTLS && smtpCfg.User != "" {
		dialer.Auth = unencryptedAuth{smtp.PlainAuth("", smtpCfg.User, smtpCfg.Password, smtpCfg.Host)}
	}

	return &SMTPEmailService{cfg: smtpCfg, dialer: dialer, send: dialer.DialAndSend}
}

func (s *SMTPEmailService) sender() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.User
}

func (s *SMTPEmailService) buildMessage(toEmail, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.sender())
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetDateHeader("Date", time.Now().UTC())
	m.SetBody("text/plain", body)
	return m
}

// Send delivers a plain-text email. It gives up when ctx is done; the SMTP
// conversation itself is not interruptible and finishes in the background.
func (s *SMTPEmailService) Send(ctx context.Context, toEmail, subject, body string) error {
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.sender() == "" {
		return fmt.Errorf("SMTP service not fully configured (host, port, or sender missing)")
	}

	m := s.buildMessage(toEmail, subject, body)
	done := make(chan error, 1)
	go func() {
		done <- s.send(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		log.Debug().Str("toEmail", toEmail).Msg("Email sent")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

var _ Mailer = LogMailer{}

// LogMailer only records that a message would have been sent. Used in development
// when no SMTP relay is configured. The body is not logged since it carries the reset link.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, toEmail, subject, body string) error {
	log.Info().Str("toEmail", toEmail).Str("subject", subject).Int("bodyLength", len(body)).Msg("Email delivery disabled, message dropped")
	return nil
}
