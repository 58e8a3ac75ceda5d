package mapper

import (
	"encoding/json"

	"github.com/sprinkle-fairydust/site-api/internal/domain"
	"gorm.io/datatypes"
)

func dateString(d *datatypes.Date) *string {
	if d == nil {
		return nil
	}
	s := domain.FormatDate(d)
	return &s
}

// ToDeliveryRecord decodes the stored email send payload. Malformed or
// empty payloads map to nil.
func ToDeliveryRecord(raw datatypes.JSON) *domain.DeliveryRecord {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var rec domain.DeliveryRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil
	}
	return &rec
}

// ToQuoteDTO converts Quote to QuoteDTO
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	services := []string(quote.ServicesRequested)
	if services == nil {
		services = []string{}
	}

	return domain.QuoteDTO{
		ID:                       quote.ID,
		Name:                     quote.Name,
		Email:                    quote.Email,
		Phone:                    quote.Phone,
		AnonymousID:              quote.AnonymousID,
		State:                    quote.State,
		EventType:                quote.EventType,
		EventDate:                dateString(quote.EventDate),
		Address:                  quote.Address,
		StartTime:                quote.StartTime,
		EndTime:                  quote.EndTime,
		TotalHours:               quote.TotalHours,
		GuestCount:               quote.GuestCount,
		PackageName:              quote.PackageName,
		ServicesRequested:        services,
		TravelArea:               quote.TravelArea,
		VenueType:                quote.VenueType,
		HeardAbout:               quote.HeardAbout,
		Notes:                    quote.Notes,
		TermsAccepted:            quote.TermsAccepted,
		TermsAcceptedAt:          quote.TermsAcceptedAt,
		CalcPaymentType:          quote.CalcPaymentType,
		CalcBaseAmount:           quote.CalcBaseAmount,
		CalcSetupAmount:          quote.CalcSetupAmount,
		CalcTravelAmount:         quote.CalcTravelAmount,
		CalcSubtotal:             quote.CalcSubtotal,
		CalcGSTAmount:            quote.CalcGSTAmount,
		CalcTotalAmount:          quote.CalcTotalAmount,
		EmailSendStatus:          quote.EmailSendStatus,
		EmailSendAttemptedAt:     quote.EmailSendAttemptedAt,
		EmailSendResponse:        ToDeliveryRecord(quote.EmailSendResponse),
		ClientConfirmedAt:        quote.ClientConfirmedAt,
		ArtistDeclinedAt:         quote.ArtistDeclinedAt,
		ArtistDeclineReason:      quote.ArtistDeclineReason,
		ClientSuggestedTimeAt:    quote.ClientSuggestedTimeAt,
		ClientSuggestedEventDate: dateString(quote.ClientSuggestedEventDate),
		ClientSuggestedStartTime: quote.ClientSuggestedStartTime,
		ClientSuggestedEndTime:   quote.ClientSuggestedEndTime,
		ClientSuggestedTimeNotes: quote.ClientSuggestedTimeNotes,
		EmailOpenedAt:            quote.EmailOpenedAt,
		EmailLastOpenedAt:        quote.EmailLastOpenedAt,
		EmailOpenCount:           quote.EmailOpenCount,
		CreatedAt:                quote.CreatedAt,
		UpdatedAt:                quote.UpdatedAt,
	}
}

// ToQuoteDTOs converts a slice of quotes
func ToQuoteDTOs(quotes []domain.Quote) []domain.QuoteDTO {
	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = ToQuoteDTO(&quotes[i])
	}
	return dtos
}

// ToTestimonialDTO converts Testimonial to TestimonialDTO
func ToTestimonialDTO(testimonial *domain.Testimonial) domain.TestimonialDTO {
	urls := []string(testimonial.URLs)
	if urls == nil {
		urls = []string{}
	}

	return domain.TestimonialDTO{
		ID:          testimonial.ID,
		Name:        testimonial.Name,
		Testimonial: testimonial.Testimonial,
		URLs:        urls,
		IsApproved:  testimonial.IsApproved,
		ApprovedAt:  testimonial.ApprovedAt,
		CreatedAt:   testimonial.CreatedAt,
		UpdatedAt:   testimonial.UpdatedAt,
	}
}

// ToTestimonialDTOs converts a slice of testimonials
func ToTestimonialDTOs(testimonials []domain.Testimonial) []domain.TestimonialDTO {
	dtos := make([]domain.TestimonialDTO, len(testimonials))
	for i := range testimonials {
		dtos[i] = ToTestimonialDTO(&testimonials[i])
	}
	return dtos
}
