package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/config"
)

func testSmtpConfig() *config.SmtpConfig {
	return &config.SmtpConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "mailer@example.com",
		Password: "secret",
		From:     "no-reply@example.com",
		Timeout:  time.Second,
	}
}

func TestSMTPEmailService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc := NewSMTPEmailService(testSmtpConfig())
		var sent *gomail.Message
		svc.send = func(m ...*gomail.Message) error {
			sent = m[0]
			return nil
		}

		err := svc.Send(ctx, testOwner, "Subject line", "body")
		require.NoError(t, err)
		require.NotNil(t, sent)
		assert.Equal(t, []string{"no-reply@example.com"}, sent.GetHeader("From"))
		assert.Equal(t, []string{testOwner}, sent.GetHeader("To"))
		assert.Equal(t, []string{"Subject line"}, sent.GetHeader("Subject"))
	})

	t.Run("FromFallsBackToUser", func(t *testing.T) {
		cfg := testSmtpConfig()
		cfg.From = ""
		svc := NewSMTPEmailService(cfg)

		m := svc.buildMessage(testOwner, "s", "b")
		assert.Equal(t, []string{cfg.User}, m.GetHeader("From"))
	})

	t.Run("ErrorNotConfigured", func(t *testing.T) {
		svc := NewSMTPEmailService(nil)
		err := svc.Send(ctx, testOwner, "s", "b")
		require.Error(t, err)
	})

	t.Run("ErrorRelay", func(t *testing.T) {
		svc := NewSMTPEmailService(testSmtpConfig())
		relayErr := errors.New("550 mailbox unavailable")
		svc.send = func(m ...*gomail.Message) error { return relayErr }

		err := svc.Send(ctx, testOwner, "s", "b")
		assert.ErrorIs(t, err, relayErr)
	})

	t.Run("ErrorContextDeadline", func(t *testing.T) {
		svc := NewSMTPEmailService(testSmtpConfig())
		release := make(chan struct{})
		defer close(release)
		svc.send = func(m ...*gomail.Message) error {
			<-release
			return nil
		}

		tctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		err := svc.Send(tctx, testOwner, "s", "b")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("NoTLSUsesPlainAuthWrapper", func(t *testing.T) {
		cfg := testSmtpConfig()
		cfg.NOTLS = true
		svc := NewSMTPEmailService(cfg)
		_, ok := svc.dialer.Auth.(unencryptedAuth)
		assert.True(t, ok)
	})
}

func TestLogMailer_Send(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), testOwner, "s", "b"))
}
