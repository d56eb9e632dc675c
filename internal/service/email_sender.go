package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/resendlabs/resend-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jotbox/jotbox/internal/config"
	appErr "github.com/jotbox/jotbox/internal/pkg/errors"
)

type EmailSender interface {
	Send(to, subject, body string) error
}

func NewEmailSender(cfg config.MailConfig) EmailSender {
	switch cfg.Type {
	case "smtp":
		return &smtpSender{cfg: cfg}
	case "resend":
		return &resendSender{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.From}
	default:
		return logSender{}
	}
}

type smtpSender struct {
	cfg config.MailConfig
}

func (s *smtpSender) Send(to, subject, body string) error {
	from := strings.TrimSpace(s.cfg.From)
	if s.cfg.Host == "" || s.cfg.Port == 0 || from == "" {
		return appErr.ErrInvalid
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	msg := []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body)
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}

type resendSender struct {
	client *resend.Client
	from   string
}

func (s *resendSender) Send(to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}
	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return err
	}
	logutil.GetLogger(context.Background()).Debug("email sent", zap.String("id", sent.Id), zap.String("to", to))
	return nil
}

// logSender is the development fallback: no mail leaves the process, the
// message is only logged.
type logSender struct{}

func (logSender) Send(to, subject, body string) error {
	logutil.GetLogger(context.Background()).Info("mail not configured, logging instead",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
