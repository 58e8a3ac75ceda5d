package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/mapper"
	"github.com/sprinkle-fairydust/site-api/internal/notification"
	"github.com/sprinkle-fairydust/site-api/internal/signedlink"
	"go.uber.org/zap"
)

// ============================================================================
// Quote Lifecycle Methods
// ============================================================================

// Price stores the staff pricing snapshot. A submitted quote moves to
// priced; confirmed quotes are frozen.
func (s *QuoteService) Price(ctx context.Context, id uint, req *domain.QuotePricingRequest) (*domain.QuoteDTO, error) {
	applied, err := s.quoteRepo.ApplyPricing(ctx, id, pricingFields(req))
	if err != nil {
		return nil, fmt.Errorf("failed to price quote: %w", err)
	}
	if !applied {
		return nil, s.rejectedTransition(ctx, id)
	}

	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote priced",
		zap.Uint("quote_id", id),
		zap.String("state", string(quote.State)),
	)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// SendPricedEmail sends the priced quote to the client with signed confirm
// and open-tracking links, then records the delivery outcome on the quote.
func (s *QuoteService) SendPricedEmail(ctx context.Context, id uint) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(quote.Email) == "" {
		return nil, ErrQuoteEmailMissing
	}
	if !s.notifier.SenderConfigured() {
		return nil, ErrMailNotConfigured
	}

	confirmURL, err := s.links.Issue(signedlink.ActionConfirm, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign confirm link: %w", err)
	}
	openURL, err := s.links.Issue(signedlink.ActionOpen, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign open link: %w", err)
	}

	result := s.notify(ctx, notification.KindPricedQuoteToClient, quote, notification.Extra{
		ConfirmURL: confirmURL,
		OpenURL:    openURL,
	})

	status := domain.EmailSendStatusSent
	if !result.OK {
		status = domain.EmailSendStatusFailed
	}
	s.recordEmailSend(ctx, quote.ID, status, result)

	if !result.OK {
		return nil, ErrDeliveryFailed
	}

	quote, err = s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) recordEmailSend(ctx context.Context, id uint, status domain.EmailSendStatus, result notification.DeliveryResult) {
	payload, err := json.Marshal(result.Record())
	if err != nil {
		s.logger.Warn("failed to encode email send record", zap.Uint("quote_id", id), zap.Error(err))
		return
	}
	if err := s.quoteRepo.RecordEmailSend(ctx, id, status, s.now(), payload); err != nil {
		s.logger.Warn("failed to record email send", zap.Uint("quote_id", id), zap.Error(err))
	}
}

// Confirm marks the quote confirmed by the client. Confirming twice is not
// an error: the second call reports alreadyConfirmed and sends nothing.
func (s *QuoteService) Confirm(ctx context.Context, id uint) (quote *domain.Quote, alreadyConfirmed bool, err error) {
	quote, err = s.getQuote(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if quote.IsConfirmed() {
		return quote, true, nil
	}

	applied, err := s.quoteRepo.Transition(ctx, id, domain.QuoteEventConfirm, map[string]interface{}{
		"state":               domain.QuoteStateConfirmed,
		"client_confirmed_at": s.now(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to confirm quote: %w", err)
	}

	quote, err = s.getQuote(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		// A concurrent confirmation won the race
		return quote, true, nil
	}

	s.logger.Info("quote confirmed", zap.Uint("quote_id", id))

	s.notify(ctx, notification.KindConfirmedToStaff, quote, notification.Extra{})
	s.notify(ctx, notification.KindConfirmedToClient, quote, notification.Extra{})

	return quote, false, nil
}

// Decline records that staff cannot take the booking and invites the
// client to suggest another time. Any previous suggestion is cleared.
func (s *QuoteService) Decline(ctx context.Context, id uint, reason *string) (*domain.QuoteDTO, error) {
	text := DefaultDeclineReason
	if r := trimmed(reason); r != nil {
		text = *r
	}

	fields := map[string]interface{}{
		"state":                 domain.QuoteStateDeclined,
		"artist_declined_at":    s.now(),
		"artist_decline_reason": text,
	}
	for _, column := range domain.SuggestedTimeFields {
		fields[column] = nil
	}

	applied, err := s.quoteRepo.Transition(ctx, id, domain.QuoteEventDecline, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to decline quote: %w", err)
	}
	if !applied {
		return nil, s.rejectedTransition(ctx, id)
	}

	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote declined", zap.Uint("quote_id", id))

	suggestURL, err := s.links.Issue(signedlink.ActionSuggestTimeForm, quote.ID)
	if err != nil {
		s.logger.Warn("failed to sign suggest time link", zap.Uint("quote_id", id), zap.Error(err))
	} else {
		s.notify(ctx, notification.KindDeclinedToClient, quote, notification.Extra{SuggestTimeURL: suggestURL})
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// SuggestTimePrefill holds the values shown in the suggest-time form
type SuggestTimePrefill struct {
	EventDate string
	StartTime string
	EndTime   string
	Notes     string
}

// SuggestTimeForm is everything needed to render the suggest-time page
type SuggestTimeForm struct {
	Quote     *domain.Quote
	SubmitURL string
	Prefill   SuggestTimePrefill
}

// SuggestTimeForm prepares the suggest-time page. The form is prefilled
// with the last suggestion, or the original booking when there is none.
func (s *QuoteService) SuggestTimeForm(ctx context.Context, id uint) (*SuggestTimeForm, error) {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.IsConfirmed() {
		return nil, ErrQuoteAlreadyConfirmed
	}

	submitURL, err := s.links.Issue(signedlink.ActionSuggestTimeSubmit, quote.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign suggest time link: %w", err)
	}

	form := &SuggestTimeForm{Quote: quote, SubmitURL: submitURL}
	if quote.HasSuggestion() {
		form.Prefill = SuggestTimePrefill{
			EventDate: quote.SuggestedDateString(),
			StartTime: deref(quote.ClientSuggestedStartTime),
			EndTime:   deref(quote.ClientSuggestedEndTime),
			Notes:     deref(quote.ClientSuggestedTimeNotes),
		}
	} else {
		form.Prefill = SuggestTimePrefill{
			EventDate: quote.EventDateString(),
			StartTime: deref(quote.StartTime),
			EndTime:   deref(quote.EndTime),
		}
	}
	return form, nil
}

// SubmitTimeSuggestion stores the client's alternative time and notifies
// staff and the client
func (s *QuoteService) SubmitTimeSuggestion(ctx context.Context, id uint, req *domain.SuggestTimeRequest) (*domain.Quote, error) {
	minutes, err := minutesBetween(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if minutes <= 0 {
		return nil, ErrInvalidTimeRange
	}
	eventDate, err := domain.ParseDate(strings.TrimSpace(req.EventDate))
	if err != nil {
		return nil, fmt.Errorf("invalid event date: %w", err)
	}

	var notes interface{}
	if n := strings.TrimSpace(req.Notes); n != "" {
		notes = n
	}

	applied, err := s.quoteRepo.Transition(ctx, id, domain.QuoteEventSuggest, map[string]interface{}{
		"state":                       domain.QuoteStateTimeSuggested,
		"client_suggested_time_at":    s.now(),
		"client_suggested_event_date": *eventDate,
		"client_suggested_start_time": strings.TrimSpace(req.StartTime),
		"client_suggested_end_time":   strings.TrimSpace(req.EndTime),
		"client_suggested_time_notes": notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store time suggestion: %w", err)
	}
	if !applied {
		return nil, s.rejectedTransition(ctx, id)
	}

	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("time suggestion received", zap.Uint("quote_id", id))

	s.notify(ctx, notification.KindSuggestedTimeToStaff, quote, notification.Extra{})
	s.notify(ctx, notification.KindSuggestedTimeReceiptToClient, quote, notification.Extra{})

	return quote, nil
}

// TrackOpen counts an open of the priced-quote email. Errors are logged
// only; the caller always answers with the tracking pixel.
func (s *QuoteService) TrackOpen(ctx context.Context, id uint) {
	recorded, err := s.quoteRepo.RecordOpen(ctx, id, s.now())
	if err != nil {
		s.logger.Warn("failed to record email open", zap.Uint("quote_id", id), zap.Error(err))
		return
	}
	if !recorded {
		s.logger.Debug("email open for unknown quote", zap.Uint("quote_id", id))
	}
}

// rejectedTransition explains why a guarded update touched no rows
func (s *QuoteService) rejectedTransition(ctx context.Context, id uint) error {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return err
	}
	if quote.IsConfirmed() {
		return ErrQuoteAlreadyConfirmed
	}
	return fmt.Errorf("quote %d rejected transition from state %s", id, quote.State)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
