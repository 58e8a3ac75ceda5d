package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"github.com/sprinkle-fairydust/site-api/internal/mapper"
	"github.com/sprinkle-fairydust/site-api/internal/notification"
	"github.com/sprinkle-fairydust/site-api/internal/repository"
	"github.com/sprinkle-fairydust/site-api/internal/signedlink"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultDeclineReason is sent to the client when staff gives no reason
const DefaultDeclineReason = "Unfortunately I am not available at the requested time."

// Notifier sends lifecycle notifications
type Notifier interface {
	Send(ctx context.Context, kind notification.Kind, quote *domain.Quote, extra notification.Extra) notification.DeliveryResult
	SenderConfigured() bool
}

// LinkIssuer mints signed quote links
type LinkIssuer interface {
	Issue(action signedlink.Action, quoteID uint) (string, error)
}

type QuoteService struct {
	quoteRepo *repository.QuoteRepository
	notifier  Notifier
	links     LinkIssuer
	logger    *zap.Logger
	now       func() time.Time
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	notifier Notifier,
	links LinkIssuer,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		notifier:  notifier,
		links:     links,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ============================================================================
// Intake and admin CRUD
// ============================================================================

// Submit stores a public quote request and notifies staff. The staff
// notification is best-effort and never fails the submission.
func (s *QuoteService) Submit(ctx context.Context, req *domain.SubmitQuoteRequest) (*domain.Quote, error) {
	totalHours, err := bookingHours(req.StartTime, req.EndTime, true)
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		Name:              strings.TrimSpace(req.Name),
		Email:             strings.TrimSpace(req.Email),
		Phone:             trimmed(req.Phone),
		AnonymousID:       SanitizeQuoteAnonymousID(req.AnonymousID),
		State:             domain.QuoteStateSubmitted,
		EventType:         trimmed(req.Event),
		Address:           trimmed(req.Address),
		StartTime:         trimmed(req.StartTime),
		EndTime:           trimmed(req.EndTime),
		TotalHours:        totalHours,
		GuestCount:        req.GuestCount,
		PackageName:       trimmed(req.PackageName),
		ServicesRequested: req.ServicesRequested,
		TravelArea:        trimmed(req.TravelArea),
		HeardAbout:        trimmed(req.HeardAbout),
		Notes:             firstNonBlank(req.Notes, req.Details),
		TermsAccepted:     req.TermsAccepted,
	}
	if req.VenueType != nil {
		venue := domain.VenueType(*req.VenueType)
		quote.VenueType = &venue
	}
	if req.TermsAccepted {
		now := s.now()
		quote.TermsAcceptedAt = &now
	}
	if quote.EventDate, err = parseOptionalDate(req.Date); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.notify(ctx, notification.KindNewRequestToStaff, quote, notification.Extra{})

	return quote, nil
}

// Create stores a quote entered by staff
func (s *QuoteService) Create(ctx context.Context, req *domain.AdminQuoteRequest) (*domain.QuoteDTO, error) {
	quote := &domain.Quote{State: domain.QuoteStateSubmitted}
	if err := applyAdminQuote(quote, req); err != nil {
		return nil, err
	}
	if req.HasAny() {
		quote.State = domain.QuoteStatePriced
	}

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Update replaces the editable fields of a quote. Lifecycle and engagement
// columns are never written. Supplying any pricing field applies the price
// transition under the state guard, so a confirmed quote can no longer be
// repriced.
func (s *QuoteService) Update(ctx context.Context, id uint, req *domain.AdminQuoteRequest) (*domain.QuoteDTO, error) {
	var edited domain.Quote
	if err := applyAdminQuote(&edited, req); err != nil {
		return nil, err
	}
	fields := detailFields(&edited, req.AnonymousID != nil)

	if req.HasAny() {
		for column, value := range pricingFields(&req.QuotePricingRequest) {
			fields[column] = value
		}
		applied, err := s.quoteRepo.ApplyPricing(ctx, id, fields)
		if err != nil {
			return nil, fmt.Errorf("failed to update quote: %w", err)
		}
		if !applied {
			return nil, s.rejectedTransition(ctx, id)
		}
	} else {
		found, err := s.quoteRepo.UpdateDetails(ctx, id, fields)
		if err != nil {
			return nil, fmt.Errorf("failed to update quote: %w", err)
		}
		if !found {
			return nil, ErrQuoteNotFound
		}
	}

	return s.GetByID(ctx, id)
}

func (s *QuoteService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.quoteRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if !deleted {
		return ErrQuoteNotFound
	}
	return nil
}

func (s *QuoteService) GetByID(ctx context.Context, id uint) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// List returns all quotes, latest first
func (s *QuoteService) List(ctx context.Context) ([]domain.QuoteDTO, error) {
	quotes, err := s.quoteRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return mapper.ToQuoteDTOs(quotes), nil
}

func (s *QuoteService) getQuote(ctx context.Context, id uint) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

// notify sends a notification and logs the outcome. Failures are never
// returned to the caller.
func (s *QuoteService) notify(ctx context.Context, kind notification.Kind, quote *domain.Quote, extra notification.Extra) notification.DeliveryResult {
	result := s.notifier.Send(ctx, kind, quote, extra)
	if !result.OK && !result.Skipped {
		s.logger.Warn("quote notification failed",
			zap.Uint("quote_id", quote.ID),
			zap.String("kind", string(kind)),
			zap.String("error", result.Error),
		)
	}
	return result
}

// ============================================================================
// Input helpers
// ============================================================================

func applyAdminQuote(quote *domain.Quote, req *domain.AdminQuoteRequest) error {
	totalHours := req.TotalHours
	if totalHours == nil {
		hours, err := bookingHours(req.StartTime, req.EndTime, false)
		if err != nil {
			return err
		}
		totalHours = hours
	} else if _, err := bookingHours(req.StartTime, req.EndTime, false); err != nil {
		return err
	}

	eventDate, err := parseOptionalDate(req.EventDate)
	if err != nil {
		return err
	}

	quote.Name = strings.TrimSpace(req.Name)
	quote.Email = strings.TrimSpace(req.Email)
	quote.Phone = trimmed(req.Phone)
	if req.AnonymousID != nil {
		quote.AnonymousID = SanitizeQuoteAnonymousID(req.AnonymousID)
	}
	quote.EventType = trimmed(req.EventType)
	quote.EventDate = eventDate
	quote.Address = trimmed(req.Address)
	quote.StartTime = trimmed(req.StartTime)
	quote.EndTime = trimmed(req.EndTime)
	quote.TotalHours = totalHours
	quote.GuestCount = req.GuestCount
	quote.PackageName = trimmed(req.PackageName)
	quote.ServicesRequested = req.ServicesRequested
	quote.TravelArea = trimmed(req.TravelArea)
	quote.HeardAbout = trimmed(req.HeardAbout)
	quote.Notes = trimmed(req.Notes)
	quote.VenueType = nil
	if req.VenueType != nil {
		venue := domain.VenueType(*req.VenueType)
		quote.VenueType = &venue
	}
	if req.HasAny() {
		applyPricing(quote, &req.QuotePricingRequest)
	}
	return nil
}

func applyPricing(quote *domain.Quote, req *domain.QuotePricingRequest) {
	quote.CalcPaymentType = nil
	if req.CalcPaymentType != nil {
		pt := domain.PaymentType(*req.CalcPaymentType)
		quote.CalcPaymentType = &pt
	}
	quote.CalcBaseAmount = req.CalcBaseAmount
	quote.CalcSetupAmount = req.CalcSetupAmount
	quote.CalcTravelAmount = req.CalcTravelAmount
	quote.CalcSubtotal = req.CalcSubtotal
	quote.CalcGSTAmount = req.CalcGSTAmount
	quote.CalcTotalAmount = req.CalcTotalAmount
}

// detailFields maps the staff-editable intake columns of quote for a
// partial update. The tracking id is only written when supplied.
func detailFields(quote *domain.Quote, withAnonymousID bool) map[string]interface{} {
	var venueType interface{}
	if quote.VenueType != nil {
		venueType = string(*quote.VenueType)
	}
	var eventDate interface{}
	if quote.EventDate != nil {
		eventDate = *quote.EventDate
	}
	fields := map[string]interface{}{
		"name":               quote.Name,
		"email":              quote.Email,
		"phone":              quote.Phone,
		"event_type":         quote.EventType,
		"event_date":         eventDate,
		"address":            quote.Address,
		"start_time":         quote.StartTime,
		"end_time":           quote.EndTime,
		"total_hours":        quote.TotalHours,
		"guest_count":        quote.GuestCount,
		"package_name":       quote.PackageName,
		"services_requested": quote.ServicesRequested,
		"travel_area":        quote.TravelArea,
		"heard_about":        quote.HeardAbout,
		"notes":              quote.Notes,
		"venue_type":         venueType,
	}
	if withAnonymousID {
		fields["anonymous_id"] = quote.AnonymousID
	}
	return fields
}

// pricingFields maps a pricing request onto quote columns for a
// conditional update
func pricingFields(req *domain.QuotePricingRequest) map[string]interface{} {
	var paymentType interface{}
	if req.CalcPaymentType != nil {
		paymentType = *req.CalcPaymentType
	}
	return map[string]interface{}{
		"calc_payment_type":  paymentType,
		"calc_base_amount":   req.CalcBaseAmount,
		"calc_setup_amount":  req.CalcSetupAmount,
		"calc_travel_amount": req.CalcTravelAmount,
		"calc_subtotal":      req.CalcSubtotal,
		"calc_gst_amount":    req.CalcGSTAmount,
		"calc_total_amount":  req.CalcTotalAmount,
	}
}

// bookingHours derives the booking length in hours from HH:MM times. Both
// times must be present for a value; requireMinimum enforces the one hour
// booking minimum of the public form.
func bookingHours(start, end *string, requireMinimum bool) (*float64, error) {
	if start == nil || end == nil || strings.TrimSpace(*start) == "" || strings.TrimSpace(*end) == "" {
		return nil, nil
	}
	minutes, err := minutesBetween(*start, *end)
	if err != nil {
		return nil, err
	}
	if minutes <= 0 {
		return nil, ErrInvalidTimeRange
	}
	if requireMinimum && minutes < 60 {
		return nil, ErrDurationTooShort
	}
	hours := math.Round(float64(minutes)/60*100) / 100
	return &hours, nil
}

func minutesBetween(start, end string) (int, error) {
	s, err := time.Parse(domain.ClockLayout, strings.TrimSpace(start))
	if err != nil {
		return 0, ErrInvalidTimeRange
	}
	e, err := time.Parse(domain.ClockLayout, strings.TrimSpace(end))
	if err != nil {
		return 0, ErrInvalidTimeRange
	}
	return int(e.Sub(s).Minutes()), nil
}

func parseOptionalDate(value *string) (*datatypes.Date, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	return domain.ParseDate(strings.TrimSpace(*value))
}

var anonymousIDUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// sanitizeAnonymousID strips anything outside [A-Za-z0-9_-] and caps the
// length at 80
func sanitizeAnonymousID(value string) string {
	cleaned := anonymousIDUnsafe.ReplaceAllString(strings.TrimSpace(value), "")
	if len(cleaned) > 80 {
		cleaned = cleaned[:80]
	}
	return cleaned
}

// SanitizeQuoteAnonymousID cleans the tracking id stored on a quote; an
// id that is empty after cleaning is dropped
func SanitizeQuoteAnonymousID(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := sanitizeAnonymousID(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func firstNonBlank(values ...*string) *string {
	for _, v := range values {
		if t := trimmed(v); t != nil {
			return t
		}
	}
	return nil
}
