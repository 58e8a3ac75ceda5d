package notification

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/resendlabs/resend-go"
	"github.com/sprinkle-fairydust/site-api/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message is a fully rendered email
type Message struct {
	From     string
	FromName string
	To       string
	ToName   string
	BCC      []string
	ReplyTo  string
	Subject  string
	HTML     string
	Text     string
}

// Mailer delivers a rendered message and returns the transport message id
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
	Name() string
}

// NewMailer creates the transport selected by cfg.Driver
func NewMailer(cfg *config.MailConfig, logger *zap.Logger) (Mailer, error) {
	switch strings.ToLower(cfg.Driver) {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend mail driver requires an API key")
		}
		return NewResendMailer(cfg.ResendAPIKey), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp mail driver requires a host")
		}
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), nil
	case "", "log":
		return NewLogMailer(logger), nil
	}
	return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
}

func address(email, name string) string {
	if name == "" {
		return email
	}
	return (&mail.Address{Name: name, Address: email}).String()
}

// ResendMailer sends through the Resend HTTP API
type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

func (m *ResendMailer) Name() string {
	return "resend"
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    address(msg.From, msg.FromName),
		To:      []string{address(msg.To, msg.ToName)},
		Bcc:     msg.BCC,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	type result struct {
		id  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := m.client.Emails.Send(params)
		if err != nil {
			done <- result{err: err}
			return
		}
		done <- result{id: res.Id}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("failed to send email: %w", r.err)
		}
		return r.id, nil
	}
}

// SMTPMailer sends through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	host   string
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		host:   host,
	}
}

func (m *SMTPMailer) Name() string {
	return "smtp"
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), m.host)

	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", msg.From, msg.FromName)
	gm.SetAddressHeader("To", msg.To, msg.ToName)
	if len(msg.BCC) > 0 {
		gm.SetHeader("Bcc", msg.BCC...)
	}
	if msg.ReplyTo != "" {
		gm.SetHeader("Reply-To", msg.ReplyTo)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetHeader("Message-ID", messageID)
	gm.SetBody("text/plain", msg.Text)
	gm.AddAlternative("text/html", msg.HTML)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(gm)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", fmt.Errorf("failed to send email: %w", err)
		}
		return messageID, nil
	}
}

// LogMailer writes messages to the log instead of delivering them
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Name() string {
	return "log"
}

func (m *LogMailer) Send(_ context.Context, msg Message) (string, error) {
	id := uuid.New().String()
	m.logger.Info("email logged",
		zap.String("message_id", id),
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.Strings("bcc", msg.BCC),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
		zap.String("text", msg.Text),
	)
	return id, nil
}
