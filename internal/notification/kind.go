// Package notification renders and delivers the transactional emails sent
// during the quote lifecycle.
package notification

import "fmt"

// Kind identifies a notification template
type Kind string

const (
	KindNewRequestToStaff            Kind = "new_request_to_staff"
	KindPricedQuoteToClient          Kind = "priced_quote_to_client"
	KindConfirmedToStaff             Kind = "confirmed_to_staff"
	KindConfirmedToClient            Kind = "confirmed_to_client"
	KindDeclinedToClient             Kind = "declined_to_client"
	KindSuggestedTimeToStaff         Kind = "suggested_time_to_staff"
	KindSuggestedTimeReceiptToClient Kind = "suggested_time_receipt_to_client"
	KindNewTestimonialToStaff        Kind = "new_testimonial_to_staff"
)

// Kinds lists every notification kind
var Kinds = []Kind{
	KindNewRequestToStaff,
	KindPricedQuoteToClient,
	KindConfirmedToStaff,
	KindConfirmedToClient,
	KindDeclinedToClient,
	KindSuggestedTimeToStaff,
	KindSuggestedTimeReceiptToClient,
	KindNewTestimonialToStaff,
}

// IsStaff reports whether the kind is addressed to the business rather
// than the client
func (k Kind) IsStaff() bool {
	switch k {
	case KindNewRequestToStaff, KindConfirmedToStaff, KindSuggestedTimeToStaff, KindNewTestimonialToStaff:
		return true
	}
	return false
}

// Subject returns the email subject for the kind
func (k Kind) Subject(v *View) string {
	switch k {
	case KindNewRequestToStaff:
		return fmt.Sprintf("New Quote Request: %s from %s", v.EventType, v.Name)
	case KindPricedQuoteToClient:
		if v.RawEventType == "" {
			return "Your Sprinkle Fairydust Quote"
		}
		return "Your Sprinkle Fairydust Quote - " + v.RawEventType
	case KindConfirmedToStaff:
		return fmt.Sprintf("Quote Confirmed: %s (%s)", v.Name, v.EventType)
	case KindConfirmedToClient:
		return "Your Sprinkle Fairydust booking is confirmed"
	case KindDeclinedToClient:
		return "About your Sprinkle Fairydust quote"
	case KindSuggestedTimeToStaff:
		return fmt.Sprintf("New Time Suggested: %s (%s)", v.Name, v.EventType)
	case KindSuggestedTimeReceiptToClient:
		return "We received your suggested time"
	case KindNewTestimonialToStaff:
		return fmt.Sprintf("New Testimonial Submission from %s", v.Testimonial.Name)
	}
	return "Sprinkle Fairydust"
}
