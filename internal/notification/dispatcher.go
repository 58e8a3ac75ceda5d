package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sprinkle-fairydust/site-api/internal/config"
	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"go.uber.org/zap"
)

const (
	staffName       = "Sprinkle Fairydust Admin"
	defaultClientTo = "Valued Client"
)

// DeliveryResult is the outcome of one send. It is returned, never thrown,
// so callers decide what to persist.
type DeliveryResult struct {
	OK        bool
	Skipped   bool
	Mailer    string
	To        string
	BCC       string
	MessageID string
	Error     string
	Exception string
}

// Record converts the result into the payload stored on the quote
func (r DeliveryResult) Record() domain.DeliveryRecord {
	rec := domain.DeliveryRecord{
		OK:     r.OK,
		Mailer: r.Mailer,
		To:     r.To,
	}
	if r.BCC != "" {
		rec.BCC = &r.BCC
	}
	if r.OK {
		rec.MessageID = &r.MessageID
	} else {
		rec.Error = &r.Error
		rec.Exception = &r.Exception
	}
	return rec
}

// Dispatcher renders and sends notifications
type Dispatcher struct {
	mailer        Mailer
	renderer      Renderer
	mail          config.MailConfig
	notifications config.NotificationsConfig
	appURL        string
	logger        *zap.Logger
}

func NewDispatcher(
	mailer Mailer,
	renderer Renderer,
	mailCfg config.MailConfig,
	notificationsCfg config.NotificationsConfig,
	appURL string,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		mailer:        mailer,
		renderer:      renderer,
		mail:          mailCfg,
		notifications: notificationsCfg,
		appURL:        appURL,
		logger:        logger,
	}
}

// SenderConfigured reports whether a from address is set
func (d *Dispatcher) SenderConfigured() bool {
	return strings.TrimSpace(d.mail.FromAddress) != ""
}

// MailerName returns the active transport name
func (d *Dispatcher) MailerName() string {
	return d.mailer.Name()
}

type recipient struct {
	to      string
	toName  string
	bcc     string
	replyTo string
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (d *Dispatcher) recipient(kind Kind, quote *domain.Quote) recipient {
	n := d.notifications
	switch kind {
	case KindNewRequestToStaff:
		r := recipient{to: firstNonEmpty(n.QuoteNotificationEmail), toName: staffName}
		if quote != nil {
			r.replyTo = address(quote.Email, quote.Name)
		}
		return r
	case KindConfirmedToStaff:
		return recipient{to: firstNonEmpty(n.QuoteConfirmedNotificationEmail, n.QuoteNotificationEmail), toName: staffName}
	case KindSuggestedTimeToStaff:
		return recipient{to: firstNonEmpty(n.QuoteRescheduleNotificationEmail, n.QuoteNotificationEmail), toName: staffName}
	case KindNewTestimonialToStaff:
		return recipient{to: firstNonEmpty(n.TestimonialNotificationEmail, n.QuoteNotificationEmail), toName: staffName}
	}

	if quote == nil {
		return recipient{}
	}
	r := recipient{
		to:     strings.TrimSpace(quote.Email),
		toName: firstNonEmpty(quote.Name, defaultClientTo),
	}
	if kind == KindPricedQuoteToClient {
		r.bcc = strings.TrimSpace(n.QuoteAdminCopyEmail)
	}
	return r
}

// Send renders kind for quote and delivers it. A missing recipient yields
// a skipped result; rendering and transport errors yield a failed result.
func (d *Dispatcher) Send(ctx context.Context, kind Kind, quote *domain.Quote, extra Extra) DeliveryResult {
	rcpt := d.recipient(kind, quote)
	result := DeliveryResult{
		Mailer: d.mailer.Name(),
		To:     rcpt.to,
		BCC:    rcpt.bcc,
	}

	logger := d.logger.With(zap.String("kind", string(kind)))
	if quote != nil {
		logger = logger.With(zap.Uint("quote_id", quote.ID))
	}

	if rcpt.to == "" {
		logger.Debug("notification skipped, no recipient configured")
		result.Skipped = true
		return result
	}
	if !d.SenderConfigured() {
		return d.fail(logger, result, errors.New("mail sender address is not configured"))
	}

	view := NewView(d.appURL, d.mail.FromAddress, quote, extra)
	html, text, err := d.renderer.Render(kind, view)
	if err != nil {
		return d.fail(logger, result, err)
	}

	msg := Message{
		From:     d.mail.FromAddress,
		FromName: d.mail.FromName,
		To:       rcpt.to,
		ToName:   rcpt.toName,
		ReplyTo:  rcpt.replyTo,
		Subject:  kind.Subject(view),
		HTML:     html,
		Text:     text,
	}
	if rcpt.bcc != "" {
		msg.BCC = []string{rcpt.bcc}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.mail.TimeoutDuration())
	defer cancel()

	messageID, err := d.mailer.Send(sendCtx, msg)
	if err != nil {
		return d.fail(logger, result, err)
	}

	result.OK = true
	result.MessageID = messageID
	logger.Info("notification sent",
		zap.String("mailer", result.Mailer),
		zap.String("message_id", messageID),
	)
	return result
}

func (d *Dispatcher) fail(logger *zap.Logger, result DeliveryResult, err error) DeliveryResult {
	result.OK = false
	result.Error = err.Error()
	result.Exception = exceptionName(err)
	logger.Warn("notification failed",
		zap.String("mailer", result.Mailer),
		zap.Error(err),
	)
	return result
}

// exceptionName reports the concrete type of the innermost wrapped error
func exceptionName(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
