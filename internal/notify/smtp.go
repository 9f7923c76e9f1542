package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/servicedesk/internal/config"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends plain text mail through gomail.
type SMTPNotifier struct {
	config config.SMTPConfig
	sender mailSender
	logger *zap.Logger
}

// NewSMTPNotifier dials the configured relay for every message.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		config: cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, templateKey, toEmail, toName string, vars map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, body := Render(templateKey, toName, vars)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.config.FromAddress, n.config.FromName)
	if toName != "" {
		m.SetAddressHeader("To", toEmail, toName)
	} else {
		m.SetHeader("To", toEmail)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s mail: %w", templateKey, err)
	}
	n.logger.Debug("notification sent", zap.String("template", templateKey), zap.String("to", toEmail))
	return nil
}

// LogNotifier only logs what would have been sent. Used when no SMTP host is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, templateKey, toEmail, toName string, vars map[string]any) error {
	subject, _ := Render(templateKey, toName, vars)
	n.logger.Info("notification",
		zap.String("template", templateKey),
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.Any("vars", vars),
	)
	return nil
}

// New picks the SMTP notifier when a host is configured.
func New(cfg config.SMTPConfig, logger *zap.Logger) Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		return NewLogNotifier(logger)
	}
	return NewSMTPNotifier(cfg, logger)
}
